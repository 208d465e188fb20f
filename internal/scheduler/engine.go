package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sarpras/inventaris/internal/domain"
	"github.com/sarpras/inventaris/internal/registry"
	"github.com/sarpras/inventaris/internal/store"
	"github.com/sarpras/inventaris/internal/store/schema"
)

// Engine maintains maintenance schedules: creation, reconfiguration,
// advancement after a completed maintenance event, and the pull-based
// due/overdue projection. Nothing here runs on a timer; due-ness is
// recomputed on read.
type Engine struct {
	store store.Store
}

// NewEngine creates a schedule engine on top of a store
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// CreateSchedule attaches a maintenance plan to an asset. The trigger
// variant determines which columns are populated; the rest are cleared.
func (e *Engine) CreateSchedule(ctx context.Context, assetID int64, planName string, trigger Trigger, actorID int64) (*schema.MaintenanceSchedule, error) {
	if planName == "" {
		return nil, domain.NewValidationError("plan_name", "must not be empty")
	}
	if trigger == nil {
		return nil, domain.NewValidationError("trigger_type", "must be set")
	}
	if err := validateTrigger(trigger); err != nil {
		return nil, err
	}

	asset, err := e.store.GetAssetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, domain.ErrAssetNotFound
	}
	if asset.DeletedAt != nil {
		return nil, domain.NewValidationError("asset_id", "asset is retired")
	}

	var createdBy *int64
	if actorID != 0 {
		createdBy = &actorID
	}

	sched := &schema.MaintenanceSchedule{
		AssetID:   assetID,
		PlanName:  planName,
		CreatedBy: createdBy,
	}
	trigger.project(sched)
	sched.Status = scheduleState(trigger, time.Now())

	if err := e.store.CreateSchedule(ctx, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

// UpdateSchedule reconfigures a schedule's plan name and/or trigger. A new
// trigger replaces the old one wholesale and clears the columns of the
// previous variant; the cached status is recomputed.
func (e *Engine) UpdateSchedule(ctx context.Context, id int64, planName *string, trigger Trigger, actorID int64) (*schema.MaintenanceSchedule, error) {
	if planName != nil && *planName == "" {
		return nil, domain.NewValidationError("plan_name", "must not be empty")
	}
	if trigger != nil {
		if err := validateTrigger(trigger); err != nil {
			return nil, err
		}
	}

	var sched *schema.MaintenanceSchedule
	err := e.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		sched, err = tx.GetScheduleForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sched == nil {
			return domain.ErrScheduleNotFound
		}

		if planName != nil {
			sched.PlanName = *planName
		}
		if trigger != nil {
			trigger.project(sched)
			sched.Status = scheduleState(trigger, time.Now())
		} else {
			current, err := TriggerFromSchedule(sched)
			if err != nil {
				return err
			}
			sched.Status = scheduleState(current, time.Now())
		}

		return tx.SaveSchedule(ctx, sched)
	})
	if err != nil {
		return nil, err
	}

	return sched, nil
}

// GetSchedule retrieves a schedule by ID
func (e *Engine) GetSchedule(ctx context.Context, id int64) (*schema.MaintenanceSchedule, error) {
	sched, err := e.store.GetScheduleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, domain.ErrScheduleNotFound
	}
	return sched, nil
}

// ListSchedules returns schedules, optionally scoped to one asset
func (e *Engine) ListSchedules(ctx context.Context, assetID *int64) ([]*schema.MaintenanceSchedule, error) {
	return e.store.ListSchedules(ctx, assetID)
}

// DeleteSchedule removes a schedule; its maintenance history survives with
// the link cleared
func (e *Engine) DeleteSchedule(ctx context.Context, id int64) error {
	sched, err := e.store.GetScheduleByID(ctx, id)
	if err != nil {
		return err
	}
	if sched == nil {
		return domain.ErrScheduleNotFound
	}
	return e.store.DeleteSchedule(ctx, id)
}

// CompleteMaintenanceParams holds the inputs for recording a completed
// maintenance event
type CompleteMaintenanceParams struct {
	AssetID        int64
	Type           domain.MaintenanceType
	ScheduleID     *int64
	ConditionAfter domain.AssetCondition
	Cost           decimal.Decimal
	PerformedAt    time.Time
	Note           string
	// ReadingValue is the meter value observed during servicing; required
	// when the linked schedule is usage-triggered
	ReadingValue *uint
}

// CompleteMaintenance records a maintenance event in one transaction: the
// event row, the asset condition change (audited), the servicing meter
// reading for usage-linked schedules, and the schedule advancement. Events
// without a schedule link advance nothing.
func (e *Engine) CompleteMaintenance(ctx context.Context, p CompleteMaintenanceParams, actorID int64) (*schema.Maintenance, error) {
	if !p.Type.Valid() {
		return nil, domain.NewValidationError("type", fmt.Sprintf("unknown maintenance type %q", p.Type))
	}
	if !p.ConditionAfter.Valid() {
		return nil, domain.NewValidationError("condition_after", fmt.Sprintf("unknown condition %q", p.ConditionAfter))
	}
	if p.Cost.IsNegative() {
		return nil, domain.NewValidationError("cost", "must not be negative")
	}
	if p.PerformedAt.IsZero() {
		p.PerformedAt = time.Now()
	}

	var event *schema.Maintenance
	err := e.store.Transaction(ctx, func(tx store.Store) error {
		asset, err := tx.GetAssetForUpdate(ctx, p.AssetID)
		if err != nil {
			return err
		}
		if asset == nil {
			return domain.ErrAssetNotFound
		}
		if asset.DeletedAt != nil {
			return domain.NewValidationError("asset_id", "asset is retired")
		}

		// The schedule link is validated against the locked row, before any
		// write: a concurrent trigger reconfiguration cannot slip in between
		// validation and advancement
		var sched *schema.MaintenanceSchedule
		var trigger Trigger
		if p.ScheduleID != nil {
			sched, err = tx.GetScheduleForUpdate(ctx, *p.ScheduleID)
			if err != nil {
				return err
			}
			if sched == nil {
				return domain.ErrScheduleNotFound
			}
			if sched.AssetID != p.AssetID {
				return domain.NewValidationError("schedule_id", "schedule belongs to another asset")
			}
			trigger, err = TriggerFromSchedule(sched)
			if err != nil {
				return err
			}
			if _, isUsage := trigger.(UsageTrigger); isUsage && p.ReadingValue == nil {
				return domain.NewValidationError("reading_value", "usage-triggered schedules require a meter reading")
			}
		}

		var createdBy *int64
		if actorID != 0 {
			createdBy = &actorID
		}

		event = &schema.Maintenance{
			AssetID:         p.AssetID,
			Type:            p.Type,
			ScheduleID:      p.ScheduleID,
			ConditionBefore: asset.Condition,
			ConditionAfter:  p.ConditionAfter,
			Cost:            p.Cost,
			PerformedAt:     p.PerformedAt,
			Note:            p.Note,
			CreatedBy:       createdBy,
		}
		if err := tx.CreateMaintenance(ctx, event); err != nil {
			return err
		}

		if _, err := registry.ChangeAssetCondition(ctx, tx, p.AssetID, p.ConditionAfter, actorID, p.PerformedAt); err != nil {
			return err
		}

		if sched == nil {
			return nil
		}

		if usage, isUsage := trigger.(UsageTrigger); isUsage {
			if err := tx.CreateMeterReading(ctx, &schema.MeterReading{
				AssetID:      p.AssetID,
				ReadingType:  usage.ReadingType,
				ReadingValue: *p.ReadingValue,
				ReadingAt:    p.PerformedAt,
				Note:         "recorded at maintenance",
				RecordedBy:   createdBy,
			}); err != nil {
				return err
			}
		}

		return e.advance(ctx, tx, sched, p.PerformedAt)
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// Advance moves a schedule forward after a servicing performed at the given
// time, inside the caller's transaction. Manual (condition/event) triggers
// have no advancement and are left untouched.
func (e *Engine) advance(ctx context.Context, tx store.Store, sched *schema.MaintenanceSchedule, performedAt time.Time) error {
	trigger, err := TriggerFromSchedule(sched)
	if err != nil {
		return err
	}

	switch t := trigger.(type) {
	case TimeTrigger:
		advanced := advanceTime(t, performedAt)
		advanced.project(sched)
		sched.Status = scheduleState(advanced, time.Now())
	case UsageTrigger:
		current, err := currentUsageValue(ctx, tx, sched.AssetID, t)
		if err != nil {
			return err
		}
		advanceUsage(&t, current).project(sched)
		// Servicing resolves the overdue condition
		sched.Status = domain.ScheduleOnTime
	default:
		return nil
	}

	now := performedAt
	sched.LastDoneAt = &now
	return tx.SaveSchedule(ctx, sched)
}

// advanceTime computes the next due date: one period past the servicing
// date, falling back to the previous due date when the event carries none
func advanceTime(t TimeTrigger, performedAt time.Time) TimeTrigger {
	base := performedAt
	if base.IsZero() {
		base = t.NextDue
	}
	t.NextDue = AddPeriod(base, t.Period)
	return t
}

// advanceUsage rebases the trigger on the current meter value
func advanceUsage(t *UsageTrigger, current uint) UsageTrigger {
	value := current
	t.LastValue = &value
	t.NextDue = current + t.Interval
	return *t
}

// currentUsageValue reads the latest meter value for the schedule's reading
// type. Without any reading it falls back to the last serviced value, then
// to the due value itself.
func currentUsageValue(ctx context.Context, tx store.Store, assetID int64, t UsageTrigger) (uint, error) {
	latest, err := tx.LatestMeterReading(ctx, assetID, t.ReadingType)
	if err != nil {
		return 0, err
	}
	if latest != nil {
		return latest.ReadingValue, nil
	}
	if t.LastValue != nil {
		return *t.LastValue, nil
	}
	return t.NextDue, nil
}

// scheduleState computes the cached on_time/overdue projection for a trigger
func scheduleState(trigger Trigger, now time.Time) domain.ScheduleState {
	if t, ok := trigger.(TimeTrigger); ok {
		return TimeState(now, t.NextDue)
	}
	return domain.ScheduleOnTime
}

func validateTrigger(trigger Trigger) error {
	switch t := trigger.(type) {
	case TimeTrigger:
		if !t.Period.Valid() {
			return domain.NewValidationError("period", fmt.Sprintf("unknown period %q", t.Period))
		}
		if t.NextDue.IsZero() {
			return domain.NewValidationError("next_due_date", "must be set")
		}
	case UsageTrigger:
		if t.Interval == 0 {
			return domain.NewValidationError("usage_interval", "must be positive")
		}
		if !t.ReadingType.Valid() {
			return domain.NewValidationError("usage_reading_type", fmt.Sprintf("unknown reading type %q", t.ReadingType))
		}
	case ManualTrigger:
		if t.Kind != domain.TriggerCondition && t.Kind != domain.TriggerEvent {
			return domain.NewValidationError("trigger_type", fmt.Sprintf("unknown trigger type %q", t.Kind))
		}
	default:
		return domain.NewValidationError("trigger_type", "unknown trigger type")
	}
	return nil
}
