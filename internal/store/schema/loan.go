package schema

import "time"

// Loan represents the loans table. A partial unique index on asset_id where
// returned_at is null enforces at most one active loan per asset; the index
// is created in Migrate since GORM tags cannot express partial indexes.
type Loan struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	AssetID    int64     `gorm:"column:asset_id;not null;index"`
	BorrowerID int64     `gorm:"column:borrower_id;not null;index"`
	BorrowedAt time.Time `gorm:"column:borrowed_at;not null;default:now()"`
	// PlannedReturnAt is the agreed return date
	PlannedReturnAt time.Time `gorm:"column:planned_return_at;not null;type:date"`
	// ReturnedAt is nil while the loan is active
	ReturnedAt *time.Time `gorm:"column:returned_at"`
	Note       string     `gorm:"column:note;not null;default:'';type:text"`
	CreatedBy  *int64     `gorm:"column:created_by"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the Loan model
func (Loan) TableName() string {
	return "loans"
}
