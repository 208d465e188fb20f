package schema

import (
	"time"

	"github.com/sarpras/inventaris/internal/domain"
)

// MeterReading represents the meter_readings table - an append-only usage
// measurement (odometer, operating hours, cycles) for an asset. Values are
// monotonic in practice but not enforced here.
type MeterReading struct {
	ID      int64 `gorm:"column:id;primaryKey;autoIncrement"`
	AssetID int64 `gorm:"column:asset_id;not null;index:idx_meter_readings_asset_type,priority:1"`
	// ReadingType is the meter unit (km, hour, cycle)
	ReadingType domain.ReadingType `gorm:"column:reading_type;not null;type:text;index:idx_meter_readings_asset_type,priority:2"`
	// ReadingValue is the cumulative meter value at ReadingAt
	ReadingValue uint      `gorm:"column:reading_value;not null"`
	ReadingAt    time.Time `gorm:"column:reading_at;not null;default:now()"`
	Note         string    `gorm:"column:note;not null;default:'';type:text"`
	RecordedBy   *int64    `gorm:"column:recorded_by"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the MeterReading model
func (MeterReading) TableName() string {
	return "meter_readings"
}
