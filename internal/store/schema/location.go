package schema

import "time"

// Location represents the locations table - a tree node with a materialized
// path. Path and level are derived from the parent chain: path is the
// slash-joined ancestor IDs including self, level is the distance from the
// root. Both are recomputed whenever the parent changes, in the same
// transaction as the edit.
type Location struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Name is the human-readable location name
	Name string `gorm:"column:name;not null;type:text"`
	// ParentID references the parent node; nil for roots. Cycles are rejected
	// at write time.
	ParentID *int64 `gorm:"column:parent_id;index"`
	// Path is the materialized ancestor chain, e.g. "1/4/9" (root: "1")
	Path string `gorm:"column:path;not null;default:'';type:text;index"`
	// Level is the distance from the root (root = 0)
	Level int `gorm:"column:level;not null;default:0"`
	// IsActive gates whether assets may be moved to this location
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the Location model
func (Location) TableName() string {
	return "locations"
}
