package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sarpras/inventaris/internal/api/middleware"
	"github.com/sarpras/inventaris/internal/api/shared/dto"
	"github.com/sarpras/inventaris/internal/domain"
	"github.com/sarpras/inventaris/internal/registry"
	"github.com/sarpras/inventaris/internal/scheduler"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// Assets
	CreateAsset(c *gin.Context)
	GetAsset(c *gin.Context)
	ListAssets(c *gin.Context)
	UpdateAsset(c *gin.Context)
	MoveAsset(c *gin.Context)
	RetireAsset(c *gin.Context)
	GetAssetHistory(c *gin.Context)

	// Responsibilities
	AssignResponsible(c *gin.Context)
	UnassignResponsible(c *gin.Context)

	// Meter readings
	RecordMeterReading(c *gin.Context)
	ListMeterReadings(c *gin.Context)

	// Loans
	BorrowAsset(c *gin.Context)
	ReturnLoan(c *gin.Context)
	ListLoans(c *gin.Context)

	// Locations
	CreateLocation(c *gin.Context)
	GetLocation(c *gin.Context)
	ListLocations(c *gin.Context)
	UpdateLocation(c *gin.Context)
	DeleteLocation(c *gin.Context)

	// Categories
	CreateCategory(c *gin.Context)
	ListCategories(c *gin.Context)
	DeleteCategory(c *gin.Context)

	// Maintenance schedules
	CreateSchedule(c *gin.Context)
	GetSchedule(c *gin.Context)
	ListSchedules(c *gin.Context)
	UpdateSchedule(c *gin.Context)
	DeleteSchedule(c *gin.Context)

	// Maintenance events and dashboard
	CompleteMaintenance(c *gin.Context)
	ListMaintenances(c *gin.Context)
	MaintenanceStatus(c *gin.Context)

	// Audit trail
	GetAuditTrail(c *gin.Context)

	// HealthCheck returns the health status of the API
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	registry *registry.Registry
	engine   *scheduler.Engine
}

// NewHandler creates a new REST API handler
func NewHandler(reg *registry.Registry, eng *scheduler.Engine) Handler {
	return &handler{
		registry: reg,
		engine:   eng,
	}
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateAsset registers a new asset
func (h *handler) CreateAsset(c *gin.Context) {
	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	acquired, err := time.Parse(dateLayout, req.AcquiredDate)
	if err != nil {
		respondBadRequest(c, "Invalid acquired_date", "expected YYYY-MM-DD")
		return
	}

	asset, err := h.registry.CreateAsset(c.Request.Context(), registry.CreateAssetParams{
		Name:               req.Name,
		CategoryID:         req.CategoryID,
		AcquiredDate:       acquired,
		Condition:          domain.AssetCondition(req.Condition),
		LocationID:         req.LocationID,
		ResponsibleUserIDs: req.ResponsibleUserIDs,
	}, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromAsset(asset))
}

// GetAsset retrieves a single asset by ID
func (h *handler) GetAsset(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid asset ID")
		return
	}

	asset, err := h.registry.GetAsset(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAsset(asset))
}

// ListAssets retrieves assets with optional filters
func (h *handler) ListAssets(c *gin.Context) {
	params, filter, err := ParseListAssetsQuery(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	assets, total, err := h.registry.ListAssets(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AssetList{
		Assets: dto.FromAssets(assets),
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
}

// UpdateAsset mutates an asset's name, status or condition
func (h *handler) UpdateAsset(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid asset ID")
		return
	}

	var req UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	params := registry.UpdateAssetParams{Name: req.Name}
	if req.Status != nil {
		status := domain.AssetStatus(*req.Status)
		params.Status = &status
	}
	if req.Condition != nil {
		condition := domain.AssetCondition(*req.Condition)
		params.Condition = &condition
	}

	asset, err := h.registry.UpdateAsset(c.Request.Context(), id, params, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAsset(asset))
}

// MoveAsset transfers custody of an asset to another location
func (h *handler) MoveAsset(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid asset ID")
		return
	}

	var req MoveAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	asset, err := h.registry.MoveAsset(c.Request.Context(), id, req.LocationID, req.Note, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAsset(asset))
}

// RetireAsset soft-deletes an asset with a reason
func (h *handler) RetireAsset(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid asset ID")
		return
	}

	var req RetireAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := h.registry.RetireAsset(c.Request.Context(), id, req.Reason, middleware.ActorID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetAssetHistory retrieves an asset's custody moves
func (h *handler) GetAssetHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid asset ID")
		return
	}

	histories, err := h.registry.ListLocationHistory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.LocationHistory, 0, len(histories))
	for _, hist := range histories {
		out = append(out, dto.FromLocationHistory(hist))
	}
	c.JSON(http.StatusOK, gin.H{"history": out})
}

// AssignResponsible links a user as responsible for an asset
func (h *handler) AssignResponsible(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid asset ID")
		return
	}

	var req ResponsibleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := h.registry.AssignResponsible(c.Request.Context(), id, req.UserID, middleware.ActorID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UnassignResponsible removes a user from an asset's responsibility set
func (h *handler) UnassignResponsible(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid asset ID")
		return
	}
	userID, ok := paramID(c, "user_id")
	if !ok {
		respondBadRequest(c, "Invalid user ID")
		return
	}

	if err := h.registry.UnassignResponsible(c.Request.Context(), id, userID, middleware.ActorID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RecordMeterReading appends a usage reading for an asset
func (h *handler) RecordMeterReading(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid asset ID")
		return
	}

	var req MeterReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	readingAt := time.Time{}
	if req.ReadingAt != nil {
		readingAt = *req.ReadingAt
	}

	reading, err := h.registry.RecordMeterReading(
		c.Request.Context(),
		id,
		domain.ReadingType(req.ReadingType),
		req.ReadingValue,
		readingAt,
		req.Note,
		middleware.ActorID(c),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromMeterReading(reading))
}

// ListMeterReadings retrieves an asset's readings, newest first
func (h *handler) ListMeterReadings(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid asset ID")
		return
	}

	readings, err := h.registry.ListMeterReadings(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.MeterReading, 0, len(readings))
	for _, r := range readings {
		out = append(out, dto.FromMeterReading(r))
	}
	c.JSON(http.StatusOK, gin.H{"readings": out})
}

// BorrowAsset lends an asset out
func (h *handler) BorrowAsset(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid asset ID")
		return
	}

	var req BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	plannedReturn, err := time.Parse(dateLayout, req.PlannedReturnAt)
	if err != nil {
		respondBadRequest(c, "Invalid planned_return_at", "expected YYYY-MM-DD")
		return
	}

	loan, err := h.registry.BorrowAsset(c.Request.Context(), id, registry.BorrowParams{
		BorrowerID:      req.BorrowerID,
		PlannedReturnAt: plannedReturn,
		Note:            req.Note,
	}, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromLoan(loan))
}

// ReturnLoan closes an active loan
func (h *handler) ReturnLoan(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid loan ID")
		return
	}

	loan, err := h.registry.ReturnLoan(c.Request.Context(), id, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromLoan(loan))
}

// ListLoans retrieves loans, optionally scoped to one asset
func (h *handler) ListLoans(c *gin.Context) {
	assetID, ok := optionalAssetIDQuery(c)
	if !ok {
		respondBadRequest(c, "Invalid asset_id")
		return
	}

	loans, err := h.registry.ListLoans(c.Request.Context(), assetID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.Loan, 0, len(loans))
	for _, l := range loans {
		out = append(out, dto.FromLoan(l))
	}
	c.JSON(http.StatusOK, gin.H{"loans": out})
}

// CreateLocation inserts a location node
func (h *handler) CreateLocation(c *gin.Context) {
	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	loc, err := h.registry.CreateLocation(c.Request.Context(), registry.CreateLocationParams{
		Name:     req.Name,
		ParentID: req.ParentID,
		IsActive: isActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromLocation(loc))
}

// GetLocation retrieves a location by ID
func (h *handler) GetLocation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid location ID")
		return
	}

	loc, err := h.registry.GetLocation(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromLocation(loc))
}

// ListLocations retrieves all locations in tree order
func (h *handler) ListLocations(c *gin.Context) {
	locs, err := h.registry.ListLocations(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.Location, 0, len(locs))
	for _, l := range locs {
		out = append(out, dto.FromLocation(l))
	}
	c.JSON(http.StatusOK, gin.H{"locations": out})
}

// UpdateLocation edits a location node
func (h *handler) UpdateLocation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid location ID")
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	loc, err := h.registry.UpdateLocation(c.Request.Context(), id, registry.UpdateLocationParams{
		Name:      req.Name,
		SetParent: req.SetParent,
		ParentID:  req.ParentID,
		IsActive:  req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromLocation(loc))
}

// DeleteLocation removes an empty leaf location
func (h *handler) DeleteLocation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid location ID")
		return
	}

	if err := h.registry.DeleteLocation(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateCategory inserts a category
func (h *handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	cat, err := h.registry.CreateCategory(c.Request.Context(), registry.CreateCategoryParams{
		Code:     req.Code,
		Name:     req.Name,
		IsActive: isActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromCategory(cat))
}

// ListCategories retrieves all categories
func (h *handler) ListCategories(c *gin.Context) {
	cats, err := h.registry.ListCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.Category, 0, len(cats))
	for _, cat := range cats {
		out = append(out, dto.FromCategory(cat))
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// DeleteCategory removes an unreferenced category
func (h *handler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid category ID")
		return
	}

	if err := h.registry.DeleteCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateSchedule attaches a maintenance plan to an asset
func (h *handler) CreateSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	trigger, err := buildTrigger(req.triggerFields)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sched, err := h.engine.CreateSchedule(c.Request.Context(), req.AssetID, req.PlanName, trigger, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromSchedule(sched))
}

// GetSchedule retrieves a schedule by ID
func (h *handler) GetSchedule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid schedule ID")
		return
	}

	sched, err := h.engine.GetSchedule(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromSchedule(sched))
}

// ListSchedules retrieves schedules, optionally scoped to one asset
func (h *handler) ListSchedules(c *gin.Context) {
	assetID, ok := optionalAssetIDQuery(c)
	if !ok {
		respondBadRequest(c, "Invalid asset_id")
		return
	}

	scheds, err := h.engine.ListSchedules(c.Request.Context(), assetID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedules": dto.FromSchedules(scheds)})
}

// UpdateSchedule reconfigures a schedule
func (h *handler) UpdateSchedule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid schedule ID")
		return
	}

	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	var trigger scheduler.Trigger
	if req.TriggerType != "" {
		var err error
		trigger, err = buildTrigger(req.triggerFields)
		if err != nil {
			respondServiceError(c, err)
			return
		}
	}

	sched, err := h.engine.UpdateSchedule(c.Request.Context(), id, req.PlanName, trigger, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromSchedule(sched))
}

// DeleteSchedule removes a schedule
func (h *handler) DeleteSchedule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid schedule ID")
		return
	}

	if err := h.engine.DeleteSchedule(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CompleteMaintenance records a completed maintenance event
func (h *handler) CompleteMaintenance(c *gin.Context) {
	var req CompleteMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	params := scheduler.CompleteMaintenanceParams{
		AssetID:        req.AssetID,
		Type:           domain.MaintenanceType(req.Type),
		ScheduleID:     req.ScheduleID,
		ConditionAfter: domain.AssetCondition(req.ConditionAfter),
		Note:           req.Note,
		ReadingValue:   req.ReadingValue,
	}
	if req.Cost != nil {
		params.Cost = *req.Cost
	} else {
		params.Cost = decimal.Zero
	}
	if req.PerformedAt != nil {
		params.PerformedAt = *req.PerformedAt
	}

	event, err := h.engine.CompleteMaintenance(c.Request.Context(), params, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromMaintenance(event))
}

// ListMaintenances retrieves maintenance events with optional filters
func (h *handler) ListMaintenances(c *gin.Context) {
	params, filter, err := ParseListMaintenancesQuery(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events, total, err := h.engine.ListMaintenances(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.Maintenance, 0, len(events))
	for _, m := range events {
		out = append(out, dto.FromMaintenance(m))
	}
	c.JSON(http.StatusOK, dto.MaintenanceList{
		Maintenances: out,
		Total:        total,
		Limit:        params.Limit,
		Offset:       params.Offset,
	})
}

// MaintenanceStatus retrieves the due/warning/overdue dashboard buckets
func (h *handler) MaintenanceStatus(c *gin.Context) {
	assetID, ok := optionalAssetIDQuery(c)
	if !ok {
		respondBadRequest(c, "Invalid asset_id")
		return
	}

	status, err := h.engine.ScheduleStatus(c.Request.Context(), assetID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DashboardStatus{
		Due:     dto.FromSchedules(status.Due),
		Warning: dto.FromSchedules(status.Warning),
		Overdue: dto.FromSchedules(status.Overdue),
	})
}

// GetAuditTrail retrieves audit entries with optional filters
func (h *handler) GetAuditTrail(c *gin.Context) {
	params, filter, err := ParseListAuditQuery(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	entries, total, err := h.registry.AuditTrail(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.AuditEntry, 0, len(entries))
	for _, e := range entries {
		entry := dto.AuditEntry{
			ID:          e.ID,
			Entity:      string(e.Entity),
			EntityID:    e.EntityID,
			Action:      e.Action,
			PerformedBy: e.PerformedBy,
			PerformedAt: e.PerformedAt,
		}
		// Changes is stored as JSON; surface it structured
		_ = unmarshalChanges(e.Changes, &entry.Changes)
		out = append(out, entry)
	}

	c.JSON(http.StatusOK, dto.AuditTrail{
		Entries: out,
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
	})
}

func unmarshalChanges(raw []byte, out *map[string]any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
