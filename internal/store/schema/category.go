package schema

import "time"

// Category represents the categories table
type Category struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Code is a short unique category code (e.g. "VHC", "ELX")
	Code string `gorm:"column:code;not null;uniqueIndex;type:text"`
	Name string `gorm:"column:name;not null;type:text"`
	// IsActive gates whether new assets may use this category
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
