package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sarpras/inventaris/internal/logger"
	"github.com/sarpras/inventaris/internal/store"
	"github.com/sarpras/inventaris/internal/store/schema"
)

// FieldChange is one before/after pair inside an audit entry
type FieldChange struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

// assetSnapshot captures the audited fields of an asset. Snapshots are taken
// under the same row lock as the mutation so the pre-image cannot race with a
// concurrent writer.
type assetSnapshot struct {
	Status           string
	Condition        string
	LocationID       int64
	ResponsibleUsers []int64
}

// snapshotAsset captures the audited fields, including the responsibility set
func snapshotAsset(ctx context.Context, tx store.Store, asset *schema.Asset) (assetSnapshot, error) {
	users, err := tx.ListResponsibleUserIDs(ctx, asset.ID)
	if err != nil {
		return assetSnapshot{}, err
	}

	return assetSnapshot{
		Status:           string(asset.Status),
		Condition:        string(asset.Condition),
		LocationID:       asset.CurrentLocationID,
		ResponsibleUsers: users,
	}, nil
}

// diffSnapshots returns the field-level delta between two snapshots. Only
// fields that actually changed appear in the result; an empty map means the
// mutation touched nothing audit-worthy and no entry should be written.
func diffSnapshots(before, after assetSnapshot) map[string]FieldChange {
	changes := make(map[string]FieldChange)

	if before.Status != after.Status {
		changes["status"] = FieldChange{Before: before.Status, After: after.Status}
	}
	if before.Condition != after.Condition {
		changes["condition"] = FieldChange{Before: before.Condition, After: after.Condition}
	}
	if before.LocationID != after.LocationID {
		changes["current_location"] = FieldChange{Before: before.LocationID, After: after.LocationID}
	}
	if !equalIDs(before.ResponsibleUsers, after.ResponsibleUsers) {
		changes["responsible_users"] = FieldChange{Before: before.ResponsibleUsers, After: after.ResponsibleUsers}
	}

	return changes
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// resolveActor picks the attributed actor for an audit entry: the explicit
// actor when given, otherwise the asset's last updater, otherwise its
// creator. Returns 0 when no attribution is possible.
func resolveActor(actorID int64, asset *schema.Asset) int64 {
	if actorID != 0 {
		return actorID
	}
	if asset.UpdatedBy != nil {
		return *asset.UpdatedBy
	}
	if asset.CreatedBy != nil {
		return *asset.CreatedBy
	}
	return 0
}

// recordAssetAudit writes one audit entry for an asset mutation inside the
// caller's transaction. An empty changes map writes nothing. A mutation with
// no resolvable actor is allowed through without an entry, with a warning,
// so that system-driven changes do not fail outright.
func recordAssetAudit(ctx context.Context, tx store.Store, asset *schema.Asset, action string, changes map[string]FieldChange, actorID int64, at time.Time) error {
	if len(changes) == 0 {
		return nil
	}

	actor := resolveActor(actorID, asset)
	if actor == 0 {
		logger.WarnCtx(ctx, "skipping audit entry: no resolvable actor",
			zap.Int64("asset_id", asset.ID),
			zap.String("action", action))
		return nil
	}

	payload, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("failed to marshal audit changes: %w", err)
	}

	return tx.CreateAuditLog(ctx, &schema.AuditLog{
		Entity:      schema.AuditEntityAsset,
		EntityID:    asset.ID,
		Action:      action,
		Changes:     payload,
		PerformedBy: actor,
		PerformedAt: at,
	})
}
