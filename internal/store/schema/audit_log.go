package schema

import (
	"time"

	"gorm.io/datatypes"
)

// AuditEntity identifies the kind of entity an audit entry refers to
type AuditEntity string

const (
	// AuditEntityAsset marks entries recorded for asset mutations
	AuditEntityAsset AuditEntity = "asset"
	// AuditEntitySchedule marks entries recorded for schedule mutations
	AuditEntitySchedule AuditEntity = "schedule"
)

// AuditLog represents the audit_logs table - the append-only change trail.
// Changes holds a field -> {before, after} mapping covering only the tracked
// fields that actually changed; rows are never mutated or deleted.
type AuditLog struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Entity and EntityID identify the changed record
	Entity   AuditEntity `gorm:"column:entity;not null;type:text;index:idx_audit_logs_entity,priority:1"`
	EntityID int64       `gorm:"column:entity_id;not null;index:idx_audit_logs_entity,priority:2"`
	// Action is the logical operation (update, move, retire, loan, return)
	Action string `gorm:"column:action;not null;type:text;index"`
	// Changes is the field-level before/after delta as JSON
	Changes datatypes.JSON `gorm:"column:changes;not null;type:jsonb"`
	// PerformedBy is the attributed actor
	PerformedBy int64     `gorm:"column:performed_by;not null;index"`
	PerformedAt time.Time `gorm:"column:performed_at;not null;default:now();index"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
