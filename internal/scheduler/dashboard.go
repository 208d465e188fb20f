package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sarpras/inventaris/internal/domain"
	"github.com/sarpras/inventaris/internal/store"
	"github.com/sarpras/inventaris/internal/store/schema"
)

// DashboardStatus holds the fleet view: schedules bucketed by how close to
// servicing they are. Manual triggers and on-time schedules are not listed.
type DashboardStatus struct {
	Due     []*schema.MaintenanceSchedule
	Warning []*schema.MaintenanceSchedule
	Overdue []*schema.MaintenanceSchedule
}

// ScheduleStatus buckets schedules into due/warning/overdue sets, optionally
// scoped to one asset. Only the two automated trigger kinds are fetched;
// usage-based bucketing needs the latest reading per (asset, reading_type)
// pair, fetched in one batch and reused across all schedules sharing a key.
func (e *Engine) ScheduleStatus(ctx context.Context, assetID *int64) (*DashboardStatus, error) {
	timeSchedules, err := e.store.ListSchedulesByTrigger(ctx, domain.TriggerTime, assetID)
	if err != nil {
		return nil, err
	}
	usageSchedules, err := e.store.ListSchedulesByTrigger(ctx, domain.TriggerUsage, assetID)
	if err != nil {
		return nil, err
	}
	schedules := append(timeSchedules, usageSchedules...)

	// Collect the assets of usage schedules for the batched reading lookup
	assetSet := make(map[int64]struct{})
	for _, s := range usageSchedules {
		assetSet[s.AssetID] = struct{}{}
	}

	latestByKey := make(map[string]uint)
	if len(assetSet) > 0 {
		assetIDs := make([]int64, 0, len(assetSet))
		for id := range assetSet {
			assetIDs = append(assetIDs, id)
		}

		readings, err := e.store.LatestMeterReadings(ctx, assetIDs)
		if err != nil {
			return nil, err
		}
		for _, r := range readings {
			latestByKey[readingKey(r.AssetID, r.ReadingType)] = r.ReadingValue
		}
	}

	now := time.Now()
	status := &DashboardStatus{}
	for _, s := range schedules {
		trigger, err := TriggerFromSchedule(s)
		if err != nil {
			// Skip rows left inconsistent by manual edits rather than fail
			// the whole dashboard
			continue
		}

		var state domain.DueState
		switch t := trigger.(type) {
		case TimeTrigger:
			state = TimeDueState(now, t.NextDue)
		case UsageTrigger:
			latest, ok := latestByKey[readingKey(s.AssetID, t.ReadingType)]
			if !ok {
				if t.LastValue == nil {
					continue
				}
				latest = *t.LastValue
			}
			state = UsageDueState(latest, t.NextDue, t.Interval)
		default:
			continue
		}

		switch state {
		case domain.DueStateDue:
			status.Due = append(status.Due, s)
		case domain.DueStateWarning:
			status.Warning = append(status.Warning, s)
		case domain.DueStateOverdue:
			status.Overdue = append(status.Overdue, s)
		}
	}

	return status, nil
}

func readingKey(assetID int64, readingType domain.ReadingType) string {
	return fmt.Sprintf("%d/%s", assetID, readingType)
}

// ListMaintenances retrieves maintenance history matching the filter
func (e *Engine) ListMaintenances(ctx context.Context, filter store.MaintenanceFilter) ([]*schema.Maintenance, int64, error) {
	return e.store.ListMaintenances(ctx, filter)
}
