package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sarpras/inventaris/internal/domain"
	"github.com/sarpras/inventaris/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// Migrate creates or updates the database schema, including the partial
// unique index enforcing one active loan per asset (not expressible as a
// GORM tag).
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&schema.Category{},
		&schema.Location{},
		&schema.AssetCodeCounter{},
		&schema.Asset{},
		&schema.AssetResponsibility{},
		&schema.AssetLocationHistory{},
		&schema.AssetDeletion{},
		&schema.MeterReading{},
		&schema.MaintenanceSchedule{},
		&schema.Maintenance{},
		&schema.Loan{},
		&schema.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	err = db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_loan_per_asset
		 ON loans (asset_id) WHERE returned_at IS NULL`,
	).Error
	if err != nil {
		return fmt.Errorf("failed to create active-loan index: %w", err)
	}

	return nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to reasonable defaults:
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// Transaction runs fn inside a transaction. The Store passed to fn is bound
// to the transaction, so nested calls compose via savepoints.
func (s *pgStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pgStore{db: tx})
	})
}

// NextAssetCode atomically allocates the next sequential code for the
// (year, month) period of acquired. The counter row is created on first use,
// then bumped under a FOR UPDATE lock so concurrent callers for the same
// period observe strictly increasing values. Failure to enter the critical
// section surfaces as StorageUnavailableError so the enclosing asset
// creation aborts as one unit.
func (s *pgStore) NextAssetCode(ctx context.Context, acquired time.Time) (string, error) {
	year := acquired.Year()
	month := int(acquired.Month())

	var counter schema.AssetCodeCounter
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := schema.AssetCodeCounter{Year: year, Month: month}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("year = ? AND month = ?", year, month).
			First(&counter).Error; err != nil {
			return err
		}

		counter.Counter++
		return tx.Model(&schema.AssetCodeCounter{}).
			Where("id = ?", counter.ID).
			Update("counter", counter.Counter).Error
	})
	if err != nil {
		return "", domain.NewStorageUnavailableError("asset code allocation", err)
	}

	return domain.FormatAssetCode(year, month, counter.Counter), nil
}

// CreateAsset inserts a new asset row
func (s *pgStore) CreateAsset(ctx context.Context, asset *schema.Asset) error {
	if err := s.db.WithContext(ctx).Create(asset).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("asset", fmt.Sprintf("code %q already exists", asset.Code))
		}
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// GetAssetByID retrieves an asset by its internal ID, nil if absent
func (s *pgStore) GetAssetByID(ctx context.Context, id int64) (*schema.Asset, error) {
	var asset schema.Asset
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &asset, nil
}

// GetAssetForUpdate retrieves an asset under a FOR UPDATE row lock
func (s *pgStore) GetAssetForUpdate(ctx context.Context, id int64) (*schema.Asset, error) {
	var asset schema.Asset
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock asset: %w", err)
	}
	return &asset, nil
}

// SaveAsset persists all fields of an existing asset
func (s *pgStore) SaveAsset(ctx context.Context, asset *schema.Asset) error {
	if err := s.db.WithContext(ctx).Save(asset).Error; err != nil {
		return fmt.Errorf("failed to save asset: %w", err)
	}
	return nil
}

// ListAssets retrieves assets matching the filter plus the unpaginated total
func (s *pgStore) ListAssets(ctx context.Context, filter AssetFilter) ([]*schema.Asset, int64, error) {
	q := s.db.WithContext(ctx).Model(&schema.Asset{})
	if !filter.IncludeRetired {
		q = q.Where("deleted_at IS NULL")
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.LocationID != nil {
		q = q.Where("current_location_id = ?", *filter.LocationID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count assets: %w", err)
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var assets []*schema.Asset
	if err := q.Order("code").Find(&assets).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, total, nil
}

// CountAssetsAtLocation counts non-retired assets held at a location
func (s *pgStore) CountAssetsAtLocation(ctx context.Context, locationID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.Asset{}).
		Where("current_location_id = ? AND deleted_at IS NULL", locationID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count assets at location: %w", err)
	}
	return count, nil
}

// CountAssetsInCategory counts non-retired assets in a category
func (s *pgStore) CountAssetsInCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.Asset{}).
		Where("category_id = ? AND deleted_at IS NULL", categoryID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count assets in category: %w", err)
	}
	return count, nil
}

// ListResponsibleUserIDs returns the user IDs responsible for an asset,
// ordered for deterministic audit diffs
func (s *pgStore) ListResponsibleUserIDs(ctx context.Context, assetID int64) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Model(&schema.AssetResponsibility{}).
		Where("asset_id = ?", assetID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list responsible users: %w", err)
	}
	return ids, nil
}

// AddResponsibility links a user to an asset
func (s *pgStore) AddResponsibility(ctx context.Context, rel *schema.AssetResponsibility) error {
	if err := s.db.WithContext(ctx).Create(rel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("responsibility", "user already responsible for asset")
		}
		return fmt.Errorf("failed to add responsibility: %w", err)
	}
	return nil
}

// RemoveResponsibility unlinks a user from an asset
func (s *pgStore) RemoveResponsibility(ctx context.Context, assetID, userID int64) error {
	err := s.db.WithContext(ctx).
		Where("asset_id = ? AND user_id = ?", assetID, userID).
		Delete(&schema.AssetResponsibility{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove responsibility: %w", err)
	}
	return nil
}

// CreateLocationHistory appends a custody move record
func (s *pgStore) CreateLocationHistory(ctx context.Context, h *schema.AssetLocationHistory) error {
	if err := s.db.WithContext(ctx).Create(h).Error; err != nil {
		return fmt.Errorf("failed to create location history: %w", err)
	}
	return nil
}

// ListLocationHistory returns an asset's moves, newest first
func (s *pgStore) ListLocationHistory(ctx context.Context, assetID int64) ([]*schema.AssetLocationHistory, error) {
	var histories []*schema.AssetLocationHistory
	err := s.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("moved_at DESC, id DESC").
		Find(&histories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list location history: %w", err)
	}
	return histories, nil
}

// CreateAssetDeletion writes the retirement reason record
func (s *pgStore) CreateAssetDeletion(ctx context.Context, d *schema.AssetDeletion) error {
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to create asset deletion record: %w", err)
	}
	return nil
}

// CreateLocation inserts a new location row
func (s *pgStore) CreateLocation(ctx context.Context, loc *schema.Location) error {
	if err := s.db.WithContext(ctx).Create(loc).Error; err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

// GetLocationByID retrieves a location, nil if absent
func (s *pgStore) GetLocationByID(ctx context.Context, id int64) (*schema.Location, error) {
	var loc schema.Location
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&loc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return &loc, nil
}

// SaveLocation persists all fields of an existing location
func (s *pgStore) SaveLocation(ctx context.Context, loc *schema.Location) error {
	if err := s.db.WithContext(ctx).Save(loc).Error; err != nil {
		return fmt.Errorf("failed to save location: %w", err)
	}
	return nil
}

// UpdateLocationPath writes the derived path and level columns only
func (s *pgStore) UpdateLocationPath(ctx context.Context, id int64, path string, level int) error {
	err := s.db.WithContext(ctx).
		Model(&schema.Location{}).
		Where("id = ?", id).
		Updates(map[string]any{"path": path, "level": level}).Error
	if err != nil {
		return fmt.Errorf("failed to update location path: %w", err)
	}
	return nil
}

// ListLocations returns all locations ordered by materialized path
func (s *pgStore) ListLocations(ctx context.Context) ([]*schema.Location, error) {
	var locs []*schema.Location
	if err := s.db.WithContext(ctx).Order("path, name").Find(&locs).Error; err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locs, nil
}

// CountLocationChildren counts direct children of a location
func (s *pgStore) CountLocationChildren(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.Location{}).
		Where("parent_id = ?", id).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count location children: %w", err)
	}
	return count, nil
}

// DeleteLocation removes a location row. Integrity guards live in the
// registry, which checks children and referencing assets first.
func (s *pgStore) DeleteLocation(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&schema.Location{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	return nil
}

// CreateCategory inserts a new category row
func (s *pgStore) CreateCategory(ctx context.Context, cat *schema.Category) error {
	if err := s.db.WithContext(ctx).Create(cat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("category", fmt.Sprintf("code %q already exists", cat.Code))
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetCategoryByID retrieves a category, nil if absent
func (s *pgStore) GetCategoryByID(ctx context.Context, id int64) (*schema.Category, error) {
	var cat schema.Category
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &cat, nil
}

// ListCategories returns all categories ordered by name
func (s *pgStore) ListCategories(ctx context.Context) ([]*schema.Category, error) {
	var cats []*schema.Category
	if err := s.db.WithContext(ctx).Order("name").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return cats, nil
}

// DeleteCategory removes a category row
func (s *pgStore) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&schema.Category{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// CreateMeterReading appends a usage reading
func (s *pgStore) CreateMeterReading(ctx context.Context, r *schema.MeterReading) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to create meter reading: %w", err)
	}
	return nil
}

// ListMeterReadings returns an asset's readings, newest first
func (s *pgStore) ListMeterReadings(ctx context.Context, assetID int64) ([]*schema.MeterReading, error) {
	var readings []*schema.MeterReading
	err := s.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("reading_at DESC, id DESC").
		Find(&readings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list meter readings: %w", err)
	}
	return readings, nil
}

// LatestMeterReading returns the newest reading for (asset, type), nil if none
func (s *pgStore) LatestMeterReading(ctx context.Context, assetID int64, readingType domain.ReadingType) (*schema.MeterReading, error) {
	var reading schema.MeterReading
	err := s.db.WithContext(ctx).
		Where("asset_id = ? AND reading_type = ?", assetID, readingType).
		Order("reading_at DESC, id DESC").
		First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest meter reading: %w", err)
	}
	return &reading, nil
}

// LatestMeterReadings returns the newest reading per (asset, reading_type)
// pair across the given assets in a single query
func (s *pgStore) LatestMeterReadings(ctx context.Context, assetIDs []int64) ([]*schema.MeterReading, error) {
	if len(assetIDs) == 0 {
		return []*schema.MeterReading{}, nil
	}

	var readings []*schema.MeterReading
	err := s.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (asset_id, reading_type) *
		     FROM meter_readings
		     WHERE asset_id IN ?
		     ORDER BY asset_id, reading_type, reading_at DESC, id DESC`, assetIDs).
		Scan(&readings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get latest meter readings: %w", err)
	}
	return readings, nil
}

// CreateSchedule inserts a new maintenance schedule
func (s *pgStore) CreateSchedule(ctx context.Context, sched *schema.MaintenanceSchedule) error {
	if err := s.db.WithContext(ctx).Create(sched).Error; err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

// GetScheduleByID retrieves a schedule, nil if absent
func (s *pgStore) GetScheduleByID(ctx context.Context, id int64) (*schema.MaintenanceSchedule, error) {
	var sched schema.MaintenanceSchedule
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&sched).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &sched, nil
}

// GetScheduleForUpdate retrieves a schedule under a FOR UPDATE row lock
func (s *pgStore) GetScheduleForUpdate(ctx context.Context, id int64) (*schema.MaintenanceSchedule, error) {
	var sched schema.MaintenanceSchedule
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&sched).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock schedule: %w", err)
	}
	return &sched, nil
}

// SaveSchedule persists all fields of an existing schedule
func (s *pgStore) SaveSchedule(ctx context.Context, sched *schema.MaintenanceSchedule) error {
	if err := s.db.WithContext(ctx).Save(sched).Error; err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	return nil
}

// DeleteSchedule removes a schedule row; linked maintenance events keep a
// dangling-safe nullable reference
func (s *pgStore) DeleteSchedule(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&schema.Maintenance{}).
			Where("schedule_id = ?", id).
			Update("schedule_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&schema.MaintenanceSchedule{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	return nil
}

// ListSchedules returns schedules, optionally for one asset, in dashboard order
func (s *pgStore) ListSchedules(ctx context.Context, assetID *int64) ([]*schema.MaintenanceSchedule, error) {
	q := s.db.WithContext(ctx).Model(&schema.MaintenanceSchedule{})
	if assetID != nil {
		q = q.Where("asset_id = ?", *assetID)
	}

	var scheds []*schema.MaintenanceSchedule
	if err := q.Order("next_due_date NULLS LAST, id").Find(&scheds).Error; err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return scheds, nil
}

// ListSchedulesByTrigger returns all schedules of a trigger type, optionally
// scoped to one asset
func (s *pgStore) ListSchedulesByTrigger(ctx context.Context, trigger domain.TriggerType, assetID *int64) ([]*schema.MaintenanceSchedule, error) {
	q := s.db.WithContext(ctx).Where("trigger_type = ?", trigger)
	if assetID != nil {
		q = q.Where("asset_id = ?", *assetID)
	}

	var scheds []*schema.MaintenanceSchedule
	if err := q.Order("id").Find(&scheds).Error; err != nil {
		return nil, fmt.Errorf("failed to list schedules by trigger: %w", err)
	}
	return scheds, nil
}

// CreateMaintenance inserts a completed maintenance event
func (s *pgStore) CreateMaintenance(ctx context.Context, m *schema.Maintenance) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create maintenance: %w", err)
	}
	return nil
}

// ListMaintenances retrieves maintenance events matching the filter plus the
// unpaginated total, newest first
func (s *pgStore) ListMaintenances(ctx context.Context, filter MaintenanceFilter) ([]*schema.Maintenance, int64, error) {
	q := s.db.WithContext(ctx).Model(&schema.Maintenance{})
	if filter.AssetID != nil {
		q = q.Where("asset_id = ?", *filter.AssetID)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.From != nil {
		q = q.Where("performed_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("performed_at <= ?", *filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count maintenances: %w", err)
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var events []*schema.Maintenance
	if err := q.Order("performed_at DESC, id DESC").Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list maintenances: %w", err)
	}
	return events, total, nil
}

// CreateLoan inserts a loan row. The partial unique index turns a racing
// second active loan into a ConflictError.
func (s *pgStore) CreateLoan(ctx context.Context, l *schema.Loan) error {
	if err := s.db.WithContext(ctx).Create(l).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("loan", "asset already has an active loan")
		}
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

// GetLoanByID retrieves a loan, nil if absent
func (s *pgStore) GetLoanByID(ctx context.Context, id int64) (*schema.Loan, error) {
	var loan schema.Loan
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&loan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return &loan, nil
}

// GetActiveLoanForAsset returns the unreturned loan for an asset, nil if none
func (s *pgStore) GetActiveLoanForAsset(ctx context.Context, assetID int64) (*schema.Loan, error) {
	var loan schema.Loan
	err := s.db.WithContext(ctx).
		Where("asset_id = ? AND returned_at IS NULL", assetID).
		First(&loan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active loan: %w", err)
	}
	return &loan, nil
}

// SaveLoan persists all fields of an existing loan
func (s *pgStore) SaveLoan(ctx context.Context, l *schema.Loan) error {
	if err := s.db.WithContext(ctx).Save(l).Error; err != nil {
		return fmt.Errorf("failed to save loan: %w", err)
	}
	return nil
}

// ListLoans returns loans, optionally for one asset, newest first
func (s *pgStore) ListLoans(ctx context.Context, assetID *int64) ([]*schema.Loan, error) {
	q := s.db.WithContext(ctx).Model(&schema.Loan{})
	if assetID != nil {
		q = q.Where("asset_id = ?", *assetID)
	}

	var loans []*schema.Loan
	if err := q.Order("borrowed_at DESC, id DESC").Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return loans, nil
}

// CreateAuditLog appends an audit entry. Entries are never updated or deleted.
func (s *pgStore) CreateAuditLog(ctx context.Context, entry *schema.AuditLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// ListAuditLogs retrieves audit entries matching the filter plus the
// unpaginated total, newest first
func (s *pgStore) ListAuditLogs(ctx context.Context, filter AuditLogFilter) ([]*schema.AuditLog, int64, error) {
	q := s.db.WithContext(ctx).Model(&schema.AuditLog{})
	if filter.Entity != nil {
		q = q.Where("entity = ?", *filter.Entity)
	}
	if filter.Action != nil {
		q = q.Where("action = ?", *filter.Action)
	}
	if filter.PerformedBy != nil {
		q = q.Where("performed_by = ?", *filter.PerformedBy)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var entries []*schema.AuditLog
	if err := q.Order("performed_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return entries, total, nil
}
