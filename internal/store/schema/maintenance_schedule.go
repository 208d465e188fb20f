package schema

import (
	"time"

	"github.com/sarpras/inventaris/internal/domain"
)

// MaintenanceSchedule represents the maintenance_schedules table. The row is
// a flat projection of the trigger variants: only the columns relevant to
// TriggerType are populated, the rest stay nil. The scheduler package maps
// rows to and from its typed trigger variants, which keeps the "clear the
// irrelevant fields" rule enforced in one place.
type MaintenanceSchedule struct {
	ID      int64 `gorm:"column:id;primaryKey;autoIncrement"`
	AssetID int64 `gorm:"column:asset_id;not null;index"`
	// PlanName is the operator-facing label for the plan
	PlanName string `gorm:"column:plan_name;not null;type:text"`
	// TriggerType selects the advancement semantics (time, usage, condition, event)
	TriggerType domain.TriggerType `gorm:"column:trigger_type;not null;type:text;index"`

	// Time trigger fields
	Period      *domain.Period `gorm:"column:period;type:text"`
	NextDueDate *time.Time     `gorm:"column:next_due_date;type:date"`

	// Usage trigger fields
	UsageInterval    *uint               `gorm:"column:usage_interval"`
	UsageReadingType *domain.ReadingType `gorm:"column:usage_reading_type;type:text"`
	LastUsageValue   *uint               `gorm:"column:last_usage_value"`
	NextDueUsage     *uint               `gorm:"column:next_due_usage"`

	// LastDoneAt is the completion time of the most recent linked maintenance
	LastDoneAt *time.Time `gorm:"column:last_done_at"`
	// Status is the cached on_time/overdue projection, recomputed on every
	// write and after each advancement
	Status    domain.ScheduleState `gorm:"column:status;not null;type:text"`
	CreatedBy *int64               `gorm:"column:created_by"`
	CreatedAt time.Time            `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt time.Time            `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the MaintenanceSchedule model
func (MaintenanceSchedule) TableName() string {
	return "maintenance_schedules"
}
