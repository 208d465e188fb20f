package schema

import "time"

// AssetResponsibility represents the asset_responsibilities table - the
// many-to-many link between assets and the users answerable for them, with
// the assignment timestamp. One row per (asset, user).
type AssetResponsibility struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	AssetID    int64     `gorm:"column:asset_id;not null;uniqueIndex:uniq_asset_responsibilities_asset_user,priority:1"`
	UserID     int64     `gorm:"column:user_id;not null;uniqueIndex:uniq_asset_responsibilities_asset_user,priority:2"`
	AssignedAt time.Time `gorm:"column:assigned_at;not null;default:now()"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the AssetResponsibility model
func (AssetResponsibility) TableName() string {
	return "asset_responsibilities"
}
