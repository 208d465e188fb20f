package rest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sarpras/inventaris/internal/domain"
	"github.com/sarpras/inventaris/internal/scheduler"
)

// CreateAssetRequest is the body of POST /assets
type CreateAssetRequest struct {
	Name               string  `json:"name" binding:"required"`
	CategoryID         int64   `json:"category_id" binding:"required"`
	AcquiredDate       string  `json:"acquired_date" binding:"required"`
	Condition          string  `json:"condition" binding:"required"`
	LocationID         int64   `json:"location_id" binding:"required"`
	ResponsibleUserIDs []int64 `json:"responsible_user_ids"`
}

// UpdateAssetRequest is the body of PATCH /assets/:id
type UpdateAssetRequest struct {
	Name      *string `json:"name"`
	Status    *string `json:"status"`
	Condition *string `json:"condition"`
}

// MoveAssetRequest is the body of POST /assets/:id/move
type MoveAssetRequest struct {
	LocationID int64  `json:"location_id" binding:"required"`
	Note       string `json:"note"`
}

// RetireAssetRequest is the body of POST /assets/:id/retire
type RetireAssetRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// MeterReadingRequest is the body of POST /assets/:id/readings
type MeterReadingRequest struct {
	ReadingType  string     `json:"reading_type" binding:"required"`
	ReadingValue uint       `json:"reading_value"`
	ReadingAt    *time.Time `json:"reading_at"`
	Note         string     `json:"note"`
}

// ResponsibleRequest is the body of POST /assets/:id/responsibles
type ResponsibleRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// BorrowRequest is the body of POST /assets/:id/loans
type BorrowRequest struct {
	BorrowerID      int64  `json:"borrower_id" binding:"required"`
	PlannedReturnAt string `json:"planned_return_at" binding:"required"`
	Note            string `json:"note"`
}

// CreateLocationRequest is the body of POST /locations
type CreateLocationRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID *int64 `json:"parent_id"`
	IsActive *bool  `json:"is_active"`
}

// UpdateLocationRequest is the body of PATCH /locations/:id. SetParent
// distinguishes leaving the parent alone from re-parenting (including to a
// nil parent, which makes the node a root).
type UpdateLocationRequest struct {
	Name      *string `json:"name"`
	SetParent bool    `json:"set_parent"`
	ParentID  *int64  `json:"parent_id"`
	IsActive  *bool   `json:"is_active"`
}

// CreateCategoryRequest is the body of POST /categories
type CreateCategoryRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

// triggerFields is the shared trigger payload of schedule requests
type triggerFields struct {
	TriggerType      string  `json:"trigger_type"`
	Period           *string `json:"period"`
	NextDueDate      *string `json:"next_due_date"`
	UsageInterval    *uint   `json:"usage_interval"`
	UsageReadingType *string `json:"usage_reading_type"`
	NextDueUsage     *uint   `json:"next_due_usage"`
}

// CreateScheduleRequest is the body of POST /schedules
type CreateScheduleRequest struct {
	AssetID  int64  `json:"asset_id" binding:"required"`
	PlanName string `json:"plan_name" binding:"required"`
	triggerFields
}

// UpdateScheduleRequest is the body of PATCH /schedules/:id
type UpdateScheduleRequest struct {
	PlanName *string `json:"plan_name"`
	triggerFields
}

// CompleteMaintenanceRequest is the body of POST /maintenances
type CompleteMaintenanceRequest struct {
	AssetID        int64            `json:"asset_id" binding:"required"`
	Type           string           `json:"type" binding:"required"`
	ScheduleID     *int64           `json:"schedule_id"`
	ConditionAfter string           `json:"condition_after" binding:"required"`
	Cost           *decimal.Decimal `json:"cost"`
	PerformedAt    *time.Time       `json:"performed_at"`
	Note           string           `json:"note"`
	ReadingValue   *uint            `json:"reading_value"`
}

// buildTrigger assembles the typed trigger from a request's trigger fields
func buildTrigger(f triggerFields) (scheduler.Trigger, error) {
	switch domain.TriggerType(f.TriggerType) {
	case domain.TriggerTime:
		if f.Period == nil {
			return nil, domain.NewValidationError("period", "time trigger requires a period")
		}
		if f.NextDueDate == nil {
			return nil, domain.NewValidationError("next_due_date", "time trigger requires a due date")
		}
		due, err := time.Parse(dateLayout, *f.NextDueDate)
		if err != nil {
			return nil, domain.NewValidationError("next_due_date", "expected YYYY-MM-DD")
		}
		return scheduler.TimeTrigger{
			Period:  domain.Period(*f.Period),
			NextDue: due,
		}, nil
	case domain.TriggerUsage:
		if f.UsageInterval == nil {
			return nil, domain.NewValidationError("usage_interval", "usage trigger requires an interval")
		}
		if f.UsageReadingType == nil {
			return nil, domain.NewValidationError("usage_reading_type", "usage trigger requires a reading type")
		}
		if f.NextDueUsage == nil {
			return nil, domain.NewValidationError("next_due_usage", "usage trigger requires a due value")
		}
		return scheduler.UsageTrigger{
			Interval:    *f.UsageInterval,
			ReadingType: domain.ReadingType(*f.UsageReadingType),
			NextDue:     *f.NextDueUsage,
		}, nil
	case domain.TriggerCondition, domain.TriggerEvent:
		return scheduler.ManualTrigger{Kind: domain.TriggerType(f.TriggerType)}, nil
	}
	return nil, domain.NewValidationError("trigger_type", "unknown trigger type")
}
