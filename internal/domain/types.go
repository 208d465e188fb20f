package domain

import "fmt"

// AssetStatus represents the lifecycle status of an asset
type AssetStatus string

const (
	// AssetStatusActive indicates the asset is in normal service
	AssetStatusActive AssetStatus = "active"
	// AssetStatusOnLoan indicates the asset is currently lent out
	AssetStatusOnLoan AssetStatus = "on_loan"
	// AssetStatusDamaged indicates the asset is out of service due to damage
	AssetStatusDamaged AssetStatus = "damaged"
	// AssetStatusRetired indicates the asset has been soft-deleted from the registry
	AssetStatusRetired AssetStatus = "retired"
)

// Valid reports whether the status is one of the known values
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetStatusActive, AssetStatusOnLoan, AssetStatusDamaged, AssetStatusRetired:
		return true
	}
	return false
}

// AssetCondition represents the physical condition of an asset
type AssetCondition string

const (
	ConditionGood        AssetCondition = "good"
	ConditionLightDamage AssetCondition = "light_damage"
	ConditionHeavyDamage AssetCondition = "heavy_damage"
)

// Valid reports whether the condition is one of the known values
func (c AssetCondition) Valid() bool {
	switch c {
	case ConditionGood, ConditionLightDamage, ConditionHeavyDamage:
		return true
	}
	return false
}

// ReadingType identifies the meter unit of a usage reading
type ReadingType string

const (
	// ReadingTypeKM is a distance odometer in kilometers
	ReadingTypeKM ReadingType = "km"
	// ReadingTypeHour is cumulative operating hours
	ReadingTypeHour ReadingType = "hour"
	// ReadingTypeCycle is a cycle counter (e.g. print or wash cycles)
	ReadingTypeCycle ReadingType = "cycle"
)

// Valid reports whether the reading type is one of the known values
func (r ReadingType) Valid() bool {
	switch r {
	case ReadingTypeKM, ReadingTypeHour, ReadingTypeCycle:
		return true
	}
	return false
}

// TriggerType determines when a maintenance schedule becomes due.
// Only time and usage triggers carry automated advancement; condition and
// event triggers are managed manually.
type TriggerType string

const (
	TriggerTime      TriggerType = "time"
	TriggerUsage     TriggerType = "usage"
	TriggerCondition TriggerType = "condition"
	TriggerEvent     TriggerType = "event"
)

// Valid reports whether the trigger type is one of the known values
func (t TriggerType) Valid() bool {
	switch t {
	case TriggerTime, TriggerUsage, TriggerCondition, TriggerEvent:
		return true
	}
	return false
}

// Period is the calendar interval of a time-based schedule
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// Valid reports whether the period is one of the known values
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// ScheduleState is the persisted on-time/overdue projection of a schedule
type ScheduleState string

const (
	ScheduleOnTime  ScheduleState = "on_time"
	ScheduleOverdue ScheduleState = "overdue"
)

// DueState is the dashboard projection for a schedule. It refines
// ScheduleState with the due-now and warning buckets used by usage-based
// schedules.
type DueState string

const (
	DueStateOnTime  DueState = "on_time"
	DueStateWarning DueState = "warning"
	DueStateDue     DueState = "due"
	DueStateOverdue DueState = "overdue"
)

// MaintenanceType distinguishes planned from incidental maintenance events
type MaintenanceType string

const (
	MaintenanceRoutine    MaintenanceType = "routine"
	MaintenanceIncidental MaintenanceType = "incidental"
)

// Valid reports whether the maintenance type is one of the known values
func (m MaintenanceType) Valid() bool {
	switch m {
	case MaintenanceRoutine, MaintenanceIncidental:
		return true
	}
	return false
}

// FormatAssetCode renders the externally visible asset code. The format is
// fixed for wire compatibility: "YYYY-MM-NNNN".
func FormatAssetCode(year int, month int, counter uint) string {
	return fmt.Sprintf("%04d-%02d-%04d", year, month, counter)
}
