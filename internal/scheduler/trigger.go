package scheduler

import (
	"time"

	"github.com/sarpras/inventaris/internal/domain"
	"github.com/sarpras/inventaris/internal/store/schema"
)

// Trigger is the typed view of a schedule's firing condition. Each variant
// carries exactly the fields its advancement semantics need; projecting a
// trigger onto the flat schedule row clears every column belonging to the
// other variants.
type Trigger interface {
	Type() domain.TriggerType
	project(s *schema.MaintenanceSchedule)
}

// TimeTrigger fires by calendar date
type TimeTrigger struct {
	Period  domain.Period
	NextDue time.Time
}

func (t TimeTrigger) Type() domain.TriggerType { return domain.TriggerTime }

func (t TimeTrigger) project(s *schema.MaintenanceSchedule) {
	s.TriggerType = domain.TriggerTime
	period := t.Period
	due := t.NextDue
	s.Period = &period
	s.NextDueDate = &due
	s.UsageInterval = nil
	s.UsageReadingType = nil
	s.LastUsageValue = nil
	s.NextDueUsage = nil
}

// UsageTrigger fires by cumulative meter value
type UsageTrigger struct {
	Interval    uint
	ReadingType domain.ReadingType
	// LastValue is the meter value at the last servicing; nil before the first
	LastValue *uint
	NextDue   uint
}

func (t UsageTrigger) Type() domain.TriggerType { return domain.TriggerUsage }

func (t UsageTrigger) project(s *schema.MaintenanceSchedule) {
	s.TriggerType = domain.TriggerUsage
	interval := t.Interval
	readingType := t.ReadingType
	nextDue := t.NextDue
	s.UsageInterval = &interval
	s.UsageReadingType = &readingType
	s.LastUsageValue = t.LastValue
	s.NextDueUsage = &nextDue
	s.Period = nil
	s.NextDueDate = nil
}

// ManualTrigger covers condition and event triggers, which persist but have
// no automated advancement
type ManualTrigger struct {
	Kind domain.TriggerType
}

func (t ManualTrigger) Type() domain.TriggerType { return t.Kind }

func (t ManualTrigger) project(s *schema.MaintenanceSchedule) {
	s.TriggerType = t.Kind
	s.Period = nil
	s.NextDueDate = nil
	s.UsageInterval = nil
	s.UsageReadingType = nil
	s.LastUsageValue = nil
	s.NextDueUsage = nil
}

// TriggerFromSchedule reconstructs the typed trigger from a stored row
func TriggerFromSchedule(s *schema.MaintenanceSchedule) (Trigger, error) {
	switch s.TriggerType {
	case domain.TriggerTime:
		if s.Period == nil {
			return nil, domain.NewValidationError("period", "time trigger requires a period")
		}
		if s.NextDueDate == nil {
			return nil, domain.NewValidationError("next_due_date", "time trigger requires a due date")
		}
		return TimeTrigger{Period: *s.Period, NextDue: *s.NextDueDate}, nil
	case domain.TriggerUsage:
		if s.UsageInterval == nil || *s.UsageInterval == 0 {
			return nil, domain.NewValidationError("usage_interval", "usage trigger requires a positive interval")
		}
		if s.UsageReadingType == nil {
			return nil, domain.NewValidationError("usage_reading_type", "usage trigger requires a reading type")
		}
		if s.NextDueUsage == nil {
			return nil, domain.NewValidationError("next_due_usage", "usage trigger requires a due value")
		}
		return UsageTrigger{
			Interval:    *s.UsageInterval,
			ReadingType: *s.UsageReadingType,
			LastValue:   s.LastUsageValue,
			NextDue:     *s.NextDueUsage,
		}, nil
	case domain.TriggerCondition, domain.TriggerEvent:
		return ManualTrigger{Kind: s.TriggerType}, nil
	}
	return nil, domain.NewValidationError("trigger_type", "unknown trigger type")
}
