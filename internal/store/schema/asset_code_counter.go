package schema

// AssetCodeCounter represents the asset_code_counters table - one
// monotonically increasing counter per (year, month) period. The counter is
// only ever read and bumped under a row lock so concurrent allocations for
// the same period serialize; distinct periods never contend.
type AssetCodeCounter struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Year and Month identify the allocation period derived from the asset's
	// acquisition date
	Year  int `gorm:"column:year;not null;uniqueIndex:uniq_asset_code_counters_period,priority:1"`
	Month int `gorm:"column:month;not null;uniqueIndex:uniq_asset_code_counters_period,priority:2"`
	// Counter is the last issued sequence number for the period; never decreases
	Counter uint `gorm:"column:counter;not null;default:0"`
}

// TableName specifies the table name for the AssetCodeCounter model
func (AssetCodeCounter) TableName() string {
	return "asset_code_counters"
}
