package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/sarpras/inventaris/internal/domain"
	"github.com/sarpras/inventaris/internal/store"
	"github.com/sarpras/inventaris/internal/store/schema"
)

// Registry implements the asset lifecycle: registration with code
// allocation, custody moves, responsibility assignment, loans, meter
// readings, retirement and the audit trail. Every mutation runs in a single
// transaction and audits the tracked fields it touches.
type Registry struct {
	store store.Store
}

// NewRegistry creates a registry on top of a store
func NewRegistry(s store.Store) *Registry {
	return &Registry{store: s}
}

// CreateAssetParams holds the inputs for registering a new asset
type CreateAssetParams struct {
	Name               string
	CategoryID         int64
	AcquiredDate       time.Time
	Condition          domain.AssetCondition
	LocationID         int64
	ResponsibleUserIDs []int64
}

// CreateAsset registers a new asset: allocates its code from the acquisition
// period, places it at the given location with an initial history row, and
// assigns the responsible users. Creation is not audited; the audit trail
// starts with the first mutation.
func (r *Registry) CreateAsset(ctx context.Context, p CreateAssetParams, actorID int64) (*schema.Asset, error) {
	if p.Name == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}
	if p.AcquiredDate.IsZero() {
		return nil, domain.NewValidationError("acquired_date", "must be set")
	}
	if !p.Condition.Valid() {
		return nil, domain.NewValidationError("condition", fmt.Sprintf("unknown condition %q", p.Condition))
	}

	cat, err := r.store.GetCategoryByID(ctx, p.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, domain.ErrCategoryNotFound
	}
	if !cat.IsActive {
		return nil, domain.NewValidationError("category_id", "category is inactive")
	}

	loc, err := r.store.GetLocationByID(ctx, p.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrLocationNotFound
	}
	if !loc.IsActive {
		return nil, domain.NewValidationError("location_id", "location is inactive")
	}

	var asset *schema.Asset
	err = r.store.Transaction(ctx, func(tx store.Store) error {
		code, err := tx.NextAssetCode(ctx, p.AcquiredDate)
		if err != nil {
			return err
		}

		var createdBy *int64
		if actorID != 0 {
			createdBy = &actorID
		}

		asset = &schema.Asset{
			Code:              code,
			Name:              p.Name,
			CategoryID:        p.CategoryID,
			AcquiredDate:      p.AcquiredDate,
			Status:            domain.AssetStatusActive,
			Condition:         p.Condition,
			CurrentLocationID: p.LocationID,
			CreatedBy:         createdBy,
		}
		if err := tx.CreateAsset(ctx, asset); err != nil {
			return err
		}

		// Initial placement; from_location stays nil
		if err := tx.CreateLocationHistory(ctx, &schema.AssetLocationHistory{
			AssetID:      asset.ID,
			ToLocationID: p.LocationID,
			MovedAt:      time.Now(),
			MovedBy:      createdBy,
		}); err != nil {
			return err
		}

		for _, userID := range p.ResponsibleUserIDs {
			if err := tx.AddResponsibility(ctx, &schema.AssetResponsibility{
				AssetID:    asset.ID,
				UserID:     userID,
				AssignedAt: time.Now(),
			}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return asset, nil
}

// GetAsset retrieves an asset by ID
func (r *Registry) GetAsset(ctx context.Context, id int64) (*schema.Asset, error) {
	asset, err := r.store.GetAssetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, domain.ErrAssetNotFound
	}
	return asset, nil
}

// ListAssets retrieves assets matching the filter plus the unpaginated total
func (r *Registry) ListAssets(ctx context.Context, filter store.AssetFilter) ([]*schema.Asset, int64, error) {
	return r.store.ListAssets(ctx, filter)
}

// UpdateAssetParams holds the mutable asset fields; nil means unchanged
type UpdateAssetParams struct {
	Name      *string
	Status    *domain.AssetStatus
	Condition *domain.AssetCondition
}

// UpdateAsset mutates an asset's name, status or condition and audits
// whatever tracked fields changed. Retirement goes through RetireAsset, not
// a status write.
func (r *Registry) UpdateAsset(ctx context.Context, id int64, p UpdateAssetParams, actorID int64) (*schema.Asset, error) {
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", *p.Status))
		}
		if *p.Status == domain.AssetStatusRetired {
			return nil, domain.NewValidationError("status", "assets are retired via the retire operation")
		}
	}
	if p.Condition != nil && !p.Condition.Valid() {
		return nil, domain.NewValidationError("condition", fmt.Sprintf("unknown condition %q", *p.Condition))
	}
	if p.Name != nil && *p.Name == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}

	var asset *schema.Asset
	err := r.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		asset, err = tx.GetAssetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if asset == nil {
			return domain.ErrAssetNotFound
		}

		before, err := snapshotAsset(ctx, tx, asset)
		if err != nil {
			return err
		}

		if p.Name != nil {
			asset.Name = *p.Name
		}
		if p.Status != nil {
			asset.Status = *p.Status
		}
		if p.Condition != nil {
			asset.Condition = *p.Condition
		}
		if actorID != 0 {
			asset.UpdatedBy = &actorID
		}

		if err := tx.SaveAsset(ctx, asset); err != nil {
			return err
		}

		after, err := snapshotAsset(ctx, tx, asset)
		if err != nil {
			return err
		}

		return recordAssetAudit(ctx, tx, asset, "update", diffSnapshots(before, after), actorID, time.Now())
	})
	if err != nil {
		return nil, err
	}

	return asset, nil
}

// MoveAsset transfers custody of an asset to another location, appending a
// history row and an audit entry. Moving to the current location is a no-op:
// no history, no audit, no error.
func (r *Registry) MoveAsset(ctx context.Context, id int64, toLocationID int64, note string, actorID int64) (*schema.Asset, error) {
	target, err := r.store.GetLocationByID(ctx, toLocationID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrLocationNotFound
	}
	if !target.IsActive {
		return nil, domain.NewValidationError("to_location_id", "location is inactive")
	}

	var asset *schema.Asset
	err = r.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		asset, err = tx.GetAssetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if asset == nil {
			return domain.ErrAssetNotFound
		}
		if asset.DeletedAt != nil {
			return domain.NewValidationError("id", "asset is retired")
		}

		if asset.CurrentLocationID == toLocationID {
			return nil
		}

		before, err := snapshotAsset(ctx, tx, asset)
		if err != nil {
			return err
		}

		from := asset.CurrentLocationID
		asset.CurrentLocationID = toLocationID
		if actorID != 0 {
			asset.UpdatedBy = &actorID
		}
		if err := tx.SaveAsset(ctx, asset); err != nil {
			return err
		}

		now := time.Now()
		var movedBy *int64
		if actorID != 0 {
			movedBy = &actorID
		}
		if err := tx.CreateLocationHistory(ctx, &schema.AssetLocationHistory{
			AssetID:        asset.ID,
			FromLocationID: &from,
			ToLocationID:   toLocationID,
			MovedAt:        now,
			MovedBy:        movedBy,
			Note:           note,
		}); err != nil {
			return err
		}

		after, err := snapshotAsset(ctx, tx, asset)
		if err != nil {
			return err
		}

		return recordAssetAudit(ctx, tx, asset, "move", diffSnapshots(before, after), actorID, now)
	})
	if err != nil {
		return nil, err
	}

	return asset, nil
}

// RetireAsset soft-deletes an asset, recording the reason. Retiring an
// already-retired asset is a no-op.
func (r *Registry) RetireAsset(ctx context.Context, id int64, reason string, actorID int64) error {
	if reason == "" {
		return domain.NewValidationError("reason", "must not be empty")
	}

	return r.store.Transaction(ctx, func(tx store.Store) error {
		asset, err := tx.GetAssetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if asset == nil {
			return domain.ErrAssetNotFound
		}
		if asset.DeletedAt != nil {
			return nil
		}

		before, err := snapshotAsset(ctx, tx, asset)
		if err != nil {
			return err
		}

		now := time.Now()
		asset.Status = domain.AssetStatusRetired
		asset.DeletedAt = &now
		if actorID != 0 {
			asset.UpdatedBy = &actorID
		}
		if err := tx.SaveAsset(ctx, asset); err != nil {
			return err
		}

		var deletedBy *int64
		if actorID != 0 {
			deletedBy = &actorID
		}
		if err := tx.CreateAssetDeletion(ctx, &schema.AssetDeletion{
			AssetID:   asset.ID,
			Reason:    reason,
			DeletedBy: deletedBy,
			DeletedAt: now,
		}); err != nil {
			return err
		}

		after, err := snapshotAsset(ctx, tx, asset)
		if err != nil {
			return err
		}

		return recordAssetAudit(ctx, tx, asset, "retire", diffSnapshots(before, after), actorID, now)
	})
}

// AssignResponsible links a user as responsible for an asset and audits the
// membership change
func (r *Registry) AssignResponsible(ctx context.Context, assetID, userID int64, actorID int64) error {
	return r.store.Transaction(ctx, func(tx store.Store) error {
		asset, err := tx.GetAssetForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		if asset == nil {
			return domain.ErrAssetNotFound
		}

		before, err := snapshotAsset(ctx, tx, asset)
		if err != nil {
			return err
		}

		if err := tx.AddResponsibility(ctx, &schema.AssetResponsibility{
			AssetID:    assetID,
			UserID:     userID,
			AssignedAt: time.Now(),
		}); err != nil {
			return err
		}

		after, err := snapshotAsset(ctx, tx, asset)
		if err != nil {
			return err
		}

		return recordAssetAudit(ctx, tx, asset, "update", diffSnapshots(before, after), actorID, time.Now())
	})
}

// UnassignResponsible removes a user from an asset's responsibility set and
// audits the membership change
func (r *Registry) UnassignResponsible(ctx context.Context, assetID, userID int64, actorID int64) error {
	return r.store.Transaction(ctx, func(tx store.Store) error {
		asset, err := tx.GetAssetForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		if asset == nil {
			return domain.ErrAssetNotFound
		}

		before, err := snapshotAsset(ctx, tx, asset)
		if err != nil {
			return err
		}

		if err := tx.RemoveResponsibility(ctx, assetID, userID); err != nil {
			return err
		}

		after, err := snapshotAsset(ctx, tx, asset)
		if err != nil {
			return err
		}

		return recordAssetAudit(ctx, tx, asset, "update", diffSnapshots(before, after), actorID, time.Now())
	})
}

// RecordMeterReading appends a usage reading for an asset
func (r *Registry) RecordMeterReading(ctx context.Context, assetID int64, readingType domain.ReadingType, value uint, readingAt time.Time, note string, actorID int64) (*schema.MeterReading, error) {
	if !readingType.Valid() {
		return nil, domain.NewValidationError("reading_type", fmt.Sprintf("unknown reading type %q", readingType))
	}

	asset, err := r.store.GetAssetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, domain.ErrAssetNotFound
	}
	if asset.DeletedAt != nil {
		return nil, domain.NewValidationError("asset_id", "asset is retired")
	}

	if readingAt.IsZero() {
		readingAt = time.Now()
	}

	var recordedBy *int64
	if actorID != 0 {
		recordedBy = &actorID
	}

	reading := &schema.MeterReading{
		AssetID:      assetID,
		ReadingType:  readingType,
		ReadingValue: value,
		ReadingAt:    readingAt,
		Note:         note,
		RecordedBy:   recordedBy,
	}
	if err := r.store.CreateMeterReading(ctx, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

// ListMeterReadings returns an asset's readings, newest first
func (r *Registry) ListMeterReadings(ctx context.Context, assetID int64) ([]*schema.MeterReading, error) {
	asset, err := r.store.GetAssetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, domain.ErrAssetNotFound
	}
	return r.store.ListMeterReadings(ctx, assetID)
}

// ListLocationHistory returns an asset's custody moves, newest first
func (r *Registry) ListLocationHistory(ctx context.Context, assetID int64) ([]*schema.AssetLocationHistory, error) {
	asset, err := r.store.GetAssetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, domain.ErrAssetNotFound
	}
	return r.store.ListLocationHistory(ctx, assetID)
}

// AuditTrail retrieves audit entries matching the filter, newest first
func (r *Registry) AuditTrail(ctx context.Context, filter store.AuditLogFilter) ([]*schema.AuditLog, int64, error) {
	return r.store.ListAuditLogs(ctx, filter)
}
