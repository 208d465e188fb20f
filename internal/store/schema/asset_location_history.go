package schema

import "time"

// AssetLocationHistory represents the asset_location_histories table - one
// row per custody move. The first row of an asset has a nil FromLocationID.
type AssetLocationHistory struct {
	ID      int64 `gorm:"column:id;primaryKey;autoIncrement"`
	AssetID int64 `gorm:"column:asset_id;not null;index"`
	// FromLocationID is nil for the initial placement at creation
	FromLocationID *int64    `gorm:"column:from_location_id"`
	ToLocationID   int64     `gorm:"column:to_location_id;not null"`
	MovedAt        time.Time `gorm:"column:moved_at;not null;default:now()"`
	MovedBy        *int64    `gorm:"column:moved_by"`
	Note           string    `gorm:"column:note;not null;default:'';type:text"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the AssetLocationHistory model
func (AssetLocationHistory) TableName() string {
	return "asset_location_histories"
}
