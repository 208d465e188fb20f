package schema

import "time"

// AssetDeletion represents the asset_deletions table - the reason record
// written once when an asset is retired. At most one row per asset.
type AssetDeletion struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	AssetID   int64     `gorm:"column:asset_id;not null;uniqueIndex"`
	Reason    string    `gorm:"column:reason;not null;type:text"`
	DeletedBy *int64    `gorm:"column:deleted_by"`
	DeletedAt time.Time `gorm:"column:deleted_at;not null;default:now()"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the AssetDeletion model
func (AssetDeletion) TableName() string {
	return "asset_deletions"
}
