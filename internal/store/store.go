package store

import (
	"context"
	"time"

	"github.com/sarpras/inventaris/internal/domain"
	"github.com/sarpras/inventaris/internal/store/schema"
)

// AssetFilter narrows asset listings. Retired (soft-deleted) assets are
// excluded unless IncludeRetired is set.
type AssetFilter struct {
	Status         *domain.AssetStatus
	CategoryID     *int64
	LocationID     *int64
	IncludeRetired bool
	Limit          int
	Offset         int
}

// MaintenanceFilter narrows maintenance listings by asset, type and the
// performed_at window.
type MaintenanceFilter struct {
	AssetID *int64
	Type    *domain.MaintenanceType
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// AuditLogFilter narrows audit-trail queries. Results are always ordered
// newest-first.
type AuditLogFilter struct {
	Entity      *schema.AuditEntity
	Action      *string
	PerformedBy *int64
	Limit       int
	Offset      int
}

// Store defines the interface for database operations
type Store interface {
	// Transaction runs fn inside a database transaction; fn receives a Store
	// bound to that transaction. Nesting is backed by savepoints.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	// NextAssetCode atomically allocates the next sequential asset code for
	// the (year, month) period of the given date. Concurrent calls for the
	// same period serialize on a row lock; distinct periods do not contend.
	NextAssetCode(ctx context.Context, acquired time.Time) (string, error)

	// Assets
	CreateAsset(ctx context.Context, asset *schema.Asset) error
	GetAssetByID(ctx context.Context, id int64) (*schema.Asset, error)
	// GetAssetForUpdate loads an asset under a FOR UPDATE row lock; callers
	// use it to capture the pre-image before an audited mutation.
	GetAssetForUpdate(ctx context.Context, id int64) (*schema.Asset, error)
	SaveAsset(ctx context.Context, asset *schema.Asset) error
	ListAssets(ctx context.Context, filter AssetFilter) ([]*schema.Asset, int64, error)
	CountAssetsAtLocation(ctx context.Context, locationID int64) (int64, error)
	CountAssetsInCategory(ctx context.Context, categoryID int64) (int64, error)

	// Responsibilities
	ListResponsibleUserIDs(ctx context.Context, assetID int64) ([]int64, error)
	AddResponsibility(ctx context.Context, rel *schema.AssetResponsibility) error
	RemoveResponsibility(ctx context.Context, assetID, userID int64) error

	// Location histories and deletion records
	CreateLocationHistory(ctx context.Context, h *schema.AssetLocationHistory) error
	ListLocationHistory(ctx context.Context, assetID int64) ([]*schema.AssetLocationHistory, error)
	CreateAssetDeletion(ctx context.Context, d *schema.AssetDeletion) error

	// Locations
	CreateLocation(ctx context.Context, loc *schema.Location) error
	GetLocationByID(ctx context.Context, id int64) (*schema.Location, error)
	SaveLocation(ctx context.Context, loc *schema.Location) error
	UpdateLocationPath(ctx context.Context, id int64, path string, level int) error
	ListLocations(ctx context.Context) ([]*schema.Location, error)
	CountLocationChildren(ctx context.Context, id int64) (int64, error)
	DeleteLocation(ctx context.Context, id int64) error

	// Categories
	CreateCategory(ctx context.Context, cat *schema.Category) error
	GetCategoryByID(ctx context.Context, id int64) (*schema.Category, error)
	ListCategories(ctx context.Context) ([]*schema.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	// Meter readings
	CreateMeterReading(ctx context.Context, r *schema.MeterReading) error
	ListMeterReadings(ctx context.Context, assetID int64) ([]*schema.MeterReading, error)
	// LatestMeterReading returns the newest reading for (asset, type), nil if none
	LatestMeterReading(ctx context.Context, assetID int64, readingType domain.ReadingType) (*schema.MeterReading, error)
	// LatestMeterReadings returns, in one query, the newest reading per
	// (asset, reading_type) pair across the given assets. Used by the
	// dashboard so bucketing stays O(schedules), not O(schedules x readings).
	LatestMeterReadings(ctx context.Context, assetIDs []int64) ([]*schema.MeterReading, error)

	// Maintenance schedules
	CreateSchedule(ctx context.Context, s *schema.MaintenanceSchedule) error
	GetScheduleByID(ctx context.Context, id int64) (*schema.MaintenanceSchedule, error)
	// GetScheduleForUpdate loads a schedule under a FOR UPDATE row lock for
	// advancement after a maintenance completion.
	GetScheduleForUpdate(ctx context.Context, id int64) (*schema.MaintenanceSchedule, error)
	SaveSchedule(ctx context.Context, s *schema.MaintenanceSchedule) error
	DeleteSchedule(ctx context.Context, id int64) error
	ListSchedules(ctx context.Context, assetID *int64) ([]*schema.MaintenanceSchedule, error)
	ListSchedulesByTrigger(ctx context.Context, trigger domain.TriggerType, assetID *int64) ([]*schema.MaintenanceSchedule, error)

	// Maintenance events
	CreateMaintenance(ctx context.Context, m *schema.Maintenance) error
	ListMaintenances(ctx context.Context, filter MaintenanceFilter) ([]*schema.Maintenance, int64, error)

	// Loans
	CreateLoan(ctx context.Context, l *schema.Loan) error
	GetLoanByID(ctx context.Context, id int64) (*schema.Loan, error)
	GetActiveLoanForAsset(ctx context.Context, assetID int64) (*schema.Loan, error)
	SaveLoan(ctx context.Context, l *schema.Loan) error
	ListLoans(ctx context.Context, assetID *int64) ([]*schema.Loan, error)

	// Audit trail
	CreateAuditLog(ctx context.Context, entry *schema.AuditLog) error
	ListAuditLogs(ctx context.Context, filter AuditLogFilter) ([]*schema.AuditLog, int64, error)
}
