package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/sarpras/inventaris/internal/domain"
	"github.com/sarpras/inventaris/internal/store"
	"github.com/sarpras/inventaris/internal/store/schema"
)

// ChangeAssetCondition applies a condition change inside the caller's
// transaction, auditing the delta. Maintenance completion uses this so the
// condition write and its audit entry share the event's transaction.
func ChangeAssetCondition(ctx context.Context, tx store.Store, assetID int64, condition domain.AssetCondition, actorID int64, at time.Time) (*schema.Asset, error) {
	if !condition.Valid() {
		return nil, domain.NewValidationError("condition", fmt.Sprintf("unknown condition %q", condition))
	}

	asset, err := tx.GetAssetForUpdate(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, domain.ErrAssetNotFound
	}

	before, err := snapshotAsset(ctx, tx, asset)
	if err != nil {
		return nil, err
	}

	asset.Condition = condition
	if actorID != 0 {
		asset.UpdatedBy = &actorID
	}
	if err := tx.SaveAsset(ctx, asset); err != nil {
		return nil, err
	}

	after, err := snapshotAsset(ctx, tx, asset)
	if err != nil {
		return nil, err
	}

	if err := recordAssetAudit(ctx, tx, asset, "update", diffSnapshots(before, after), actorID, at); err != nil {
		return nil, err
	}

	return asset, nil
}
