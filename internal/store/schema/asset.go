package schema

import (
	"time"

	"github.com/sarpras/inventaris/internal/domain"
)

// Asset represents the assets table - the primary entity of the registry.
// An asset keeps its code for life; everything else about it (custody,
// condition, status) is mutable and audited.
type Asset struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Code is the externally visible identity in the fixed format YYYY-MM-NNNN,
	// assigned exactly once at first persist and never recomputed
	Code string `gorm:"column:code;not null;uniqueIndex;type:text"`
	// Name is the human-readable asset name
	Name string `gorm:"column:name;not null;type:text"`
	// CategoryID references the owning category (referenced, never cascaded)
	CategoryID int64 `gorm:"column:category_id;not null;index"`
	// AcquiredDate is the acquisition date the code period is derived from
	AcquiredDate time.Time `gorm:"column:acquired_date;not null;type:date"`
	// Status is the lifecycle status (active, on_loan, damaged, retired)
	Status domain.AssetStatus `gorm:"column:status;not null;type:text;index"`
	// Condition is the physical condition (good, light_damage, heavy_damage)
	Condition domain.AssetCondition `gorm:"column:condition;not null;type:text"`
	// CurrentLocationID references the location currently holding the asset
	CurrentLocationID int64 `gorm:"column:current_location_id;not null;index"`
	// CreatedBy is the user that registered the asset
	CreatedBy *int64 `gorm:"column:created_by"`
	// UpdatedBy is the user that last mutated the asset
	UpdatedBy *int64 `gorm:"column:updated_by"`
	// DeletedAt is the soft-delete marker set when the asset is retired
	DeletedAt *time.Time `gorm:"column:deleted_at"`
	CreatedAt time.Time  `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null;default:now()"`

	// Associations (owned, cascade lifetime)
	Responsibilities  []AssetResponsibility  `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
	LocationHistories []AssetLocationHistory `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
	MeterReadings     []MeterReading         `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
	Schedules         []MaintenanceSchedule  `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
	Maintenances      []Maintenance          `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
	Loans             []Loan                 `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Asset model
func (Asset) TableName() string {
	return "assets"
}
