package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sarpras/inventaris/internal/domain"
)

// Maintenance represents the maintenances table - a completed maintenance
// event. Immutable history once created except administrative edits. An
// event optionally references the schedule it services; unlinked events do
// not advance anything.
type Maintenance struct {
	ID      int64 `gorm:"column:id;primaryKey;autoIncrement"`
	AssetID int64 `gorm:"column:asset_id;not null;index"`
	// Type distinguishes routine (planned) from incidental events
	Type domain.MaintenanceType `gorm:"column:type;not null;type:text"`
	// ScheduleID links the schedule this event services; nil for ad-hoc work.
	// The schedule may be deleted later, so the reference is nullable-on-delete.
	ScheduleID      *int64                `gorm:"column:schedule_id;index"`
	ConditionBefore domain.AssetCondition `gorm:"column:condition_before;not null;type:text"`
	ConditionAfter  domain.AssetCondition `gorm:"column:condition_after;not null;type:text"`
	// Cost is the total cost of the event
	Cost        decimal.Decimal `gorm:"column:cost;not null;default:0;type:numeric(14,2)"`
	PerformedAt time.Time       `gorm:"column:performed_at;not null;index"`
	Note        string          `gorm:"column:note;not null;default:'';type:text"`
	CreatedBy   *int64          `gorm:"column:created_by"`
	CreatedAt   time.Time       `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the Maintenance model
func (Maintenance) TableName() string {
	return "maintenances"
}
