package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sarpras/inventaris/internal/store/schema"
)

// Asset is the wire representation of an asset
type Asset struct {
	ID                int64      `json:"id"`
	Code              string     `json:"code"`
	Name              string     `json:"name"`
	CategoryID        int64      `json:"category_id"`
	AcquiredDate      string     `json:"acquired_date"`
	Status            string     `json:"status"`
	Condition         string     `json:"condition"`
	CurrentLocationID int64      `json:"current_location_id"`
	RetiredAt         *time.Time `json:"retired_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// AssetList is a paginated asset listing
type AssetList struct {
	Assets []Asset `json:"assets"`
	Total  int64   `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// Location is the wire representation of a location node
type Location struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Path     string `json:"path"`
	Level    int    `json:"level"`
	IsActive bool   `json:"is_active"`
}

// Category is the wire representation of a category
type Category struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// MeterReading is the wire representation of a usage reading
type MeterReading struct {
	ID           int64     `json:"id"`
	AssetID      int64     `json:"asset_id"`
	ReadingType  string    `json:"reading_type"`
	ReadingValue uint      `json:"reading_value"`
	ReadingAt    time.Time `json:"reading_at"`
	Note         string    `json:"note,omitempty"`
}

// LocationHistory is the wire representation of one custody move
type LocationHistory struct {
	ID             int64     `json:"id"`
	AssetID        int64     `json:"asset_id"`
	FromLocationID *int64    `json:"from_location_id,omitempty"`
	ToLocationID   int64     `json:"to_location_id"`
	MovedAt        time.Time `json:"moved_at"`
	MovedBy        *int64    `json:"moved_by,omitempty"`
	Note           string    `json:"note,omitempty"`
}

// Schedule is the wire representation of a maintenance schedule
type Schedule struct {
	ID               int64      `json:"id"`
	AssetID          int64      `json:"asset_id"`
	PlanName         string     `json:"plan_name"`
	TriggerType      string     `json:"trigger_type"`
	Period           *string    `json:"period,omitempty"`
	NextDueDate      *string    `json:"next_due_date,omitempty"`
	UsageInterval    *uint      `json:"usage_interval,omitempty"`
	UsageReadingType *string    `json:"usage_reading_type,omitempty"`
	LastUsageValue   *uint      `json:"last_usage_value,omitempty"`
	NextDueUsage     *uint      `json:"next_due_usage,omitempty"`
	LastDoneAt       *time.Time `json:"last_done_at,omitempty"`
	Status           string     `json:"status"`
}

// Maintenance is the wire representation of a completed maintenance event
type Maintenance struct {
	ID              int64           `json:"id"`
	AssetID         int64           `json:"asset_id"`
	Type            string          `json:"type"`
	ScheduleID      *int64          `json:"schedule_id,omitempty"`
	ConditionBefore string          `json:"condition_before"`
	ConditionAfter  string          `json:"condition_after"`
	Cost            decimal.Decimal `json:"cost"`
	PerformedAt     time.Time       `json:"performed_at"`
	Note            string          `json:"note,omitempty"`
}

// MaintenanceList is a paginated maintenance listing
type MaintenanceList struct {
	Maintenances []Maintenance `json:"maintenances"`
	Total        int64         `json:"total"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
}

// Loan is the wire representation of a loan
type Loan struct {
	ID              int64      `json:"id"`
	AssetID         int64      `json:"asset_id"`
	BorrowerID      int64      `json:"borrower_id"`
	BorrowedAt      time.Time  `json:"borrowed_at"`
	PlannedReturnAt string     `json:"planned_return_at"`
	ReturnedAt      *time.Time `json:"returned_at,omitempty"`
	Note            string     `json:"note,omitempty"`
}

// AuditEntry is the wire representation of one audit trail entry
type AuditEntry struct {
	ID          int64          `json:"id"`
	Entity      string         `json:"entity"`
	EntityID    int64          `json:"entity_id"`
	Action      string         `json:"action"`
	Changes     map[string]any `json:"changes"`
	PerformedBy int64          `json:"performed_by"`
	PerformedAt time.Time      `json:"performed_at"`
}

// AuditTrail is a paginated audit listing
type AuditTrail struct {
	Entries []AuditEntry `json:"entries"`
	Total   int64        `json:"total"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
}

// DashboardStatus is the fleet maintenance view
type DashboardStatus struct {
	Due     []Schedule `json:"due"`
	Warning []Schedule `json:"warning"`
	Overdue []Schedule `json:"overdue"`
}

const dateLayout = "2006-01-02"

// FromAsset maps a stored asset to its wire form
func FromAsset(a *schema.Asset) Asset {
	return Asset{
		ID:                a.ID,
		Code:              a.Code,
		Name:              a.Name,
		CategoryID:        a.CategoryID,
		AcquiredDate:      a.AcquiredDate.Format(dateLayout),
		Status:            string(a.Status),
		Condition:         string(a.Condition),
		CurrentLocationID: a.CurrentLocationID,
		RetiredAt:         a.DeletedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// FromAssets maps a slice of stored assets
func FromAssets(assets []*schema.Asset) []Asset {
	out := make([]Asset, 0, len(assets))
	for _, a := range assets {
		out = append(out, FromAsset(a))
	}
	return out
}

// FromLocation maps a stored location to its wire form
func FromLocation(l *schema.Location) Location {
	return Location{
		ID:       l.ID,
		Name:     l.Name,
		ParentID: l.ParentID,
		Path:     l.Path,
		Level:    l.Level,
		IsActive: l.IsActive,
	}
}

// FromCategory maps a stored category to its wire form
func FromCategory(c *schema.Category) Category {
	return Category{
		ID:       c.ID,
		Code:     c.Code,
		Name:     c.Name,
		IsActive: c.IsActive,
	}
}

// FromMeterReading maps a stored reading to its wire form
func FromMeterReading(r *schema.MeterReading) MeterReading {
	return MeterReading{
		ID:           r.ID,
		AssetID:      r.AssetID,
		ReadingType:  string(r.ReadingType),
		ReadingValue: r.ReadingValue,
		ReadingAt:    r.ReadingAt,
		Note:         r.Note,
	}
}

// FromLocationHistory maps a stored custody move to its wire form
func FromLocationHistory(h *schema.AssetLocationHistory) LocationHistory {
	return LocationHistory{
		ID:             h.ID,
		AssetID:        h.AssetID,
		FromLocationID: h.FromLocationID,
		ToLocationID:   h.ToLocationID,
		MovedAt:        h.MovedAt,
		MovedBy:        h.MovedBy,
		Note:           h.Note,
	}
}

// FromSchedule maps a stored schedule to its wire form
func FromSchedule(s *schema.MaintenanceSchedule) Schedule {
	out := Schedule{
		ID:             s.ID,
		AssetID:        s.AssetID,
		PlanName:       s.PlanName,
		TriggerType:    string(s.TriggerType),
		UsageInterval:  s.UsageInterval,
		LastUsageValue: s.LastUsageValue,
		NextDueUsage:   s.NextDueUsage,
		LastDoneAt:     s.LastDoneAt,
		Status:         string(s.Status),
	}
	if s.Period != nil {
		period := string(*s.Period)
		out.Period = &period
	}
	if s.NextDueDate != nil {
		due := s.NextDueDate.Format(dateLayout)
		out.NextDueDate = &due
	}
	if s.UsageReadingType != nil {
		readingType := string(*s.UsageReadingType)
		out.UsageReadingType = &readingType
	}
	return out
}

// FromSchedules maps a slice of stored schedules
func FromSchedules(schedules []*schema.MaintenanceSchedule) []Schedule {
	out := make([]Schedule, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, FromSchedule(s))
	}
	return out
}

// FromMaintenance maps a stored maintenance event to its wire form
func FromMaintenance(m *schema.Maintenance) Maintenance {
	return Maintenance{
		ID:              m.ID,
		AssetID:         m.AssetID,
		Type:            string(m.Type),
		ScheduleID:      m.ScheduleID,
		ConditionBefore: string(m.ConditionBefore),
		ConditionAfter:  string(m.ConditionAfter),
		Cost:            m.Cost,
		PerformedAt:     m.PerformedAt,
		Note:            m.Note,
	}
}

// FromLoan maps a stored loan to its wire form
func FromLoan(l *schema.Loan) Loan {
	return Loan{
		ID:              l.ID,
		AssetID:         l.AssetID,
		BorrowerID:      l.BorrowerID,
		BorrowedAt:      l.BorrowedAt,
		PlannedReturnAt: l.PlannedReturnAt.Format(dateLayout),
		ReturnedAt:      l.ReturnedAt,
		Note:            l.Note,
	}
}
