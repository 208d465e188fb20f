package rest

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sarpras/inventaris/internal/domain"
	"github.com/sarpras/inventaris/internal/store"
	"github.com/sarpras/inventaris/internal/store/schema"
)

const MAX_PAGE_SIZE = 100

const dateLayout = "2006-01-02"

// ListAssetsQueryParams holds query parameters for GET /assets
type ListAssetsQueryParams struct {
	Status         string `form:"status"`
	CategoryID     int64  `form:"category_id"`
	LocationID     int64  `form:"location_id"`
	IncludeRetired bool   `form:"include_retired"`

	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ParseListAssetsQuery parses and caps the asset listing parameters
func ParseListAssetsQuery(c *gin.Context) (*ListAssetsQueryParams, store.AssetFilter, error) {
	var params ListAssetsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, store.AssetFilter{}, err
	}
	capPage(&params.Limit, &params.Offset)

	filter := store.AssetFilter{
		IncludeRetired: params.IncludeRetired,
		Limit:          params.Limit,
		Offset:         params.Offset,
	}
	if params.Status != "" {
		status := domain.AssetStatus(params.Status)
		if !status.Valid() {
			return nil, store.AssetFilter{}, domain.NewValidationError("status", "unknown status")
		}
		filter.Status = &status
	}
	if params.CategoryID != 0 {
		filter.CategoryID = &params.CategoryID
	}
	if params.LocationID != 0 {
		filter.LocationID = &params.LocationID
	}

	return &params, filter, nil
}

// ListMaintenancesQueryParams holds query parameters for GET /maintenances
type ListMaintenancesQueryParams struct {
	AssetID int64  `form:"asset_id"`
	Type    string `form:"type"`
	From    string `form:"from"`
	To      string `form:"to"`

	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ParseListMaintenancesQuery parses and caps the maintenance listing parameters
func ParseListMaintenancesQuery(c *gin.Context) (*ListMaintenancesQueryParams, store.MaintenanceFilter, error) {
	var params ListMaintenancesQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, store.MaintenanceFilter{}, err
	}
	capPage(&params.Limit, &params.Offset)

	filter := store.MaintenanceFilter{
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	if params.AssetID != 0 {
		filter.AssetID = &params.AssetID
	}
	if params.Type != "" {
		maintenanceType := domain.MaintenanceType(params.Type)
		if !maintenanceType.Valid() {
			return nil, store.MaintenanceFilter{}, domain.NewValidationError("type", "unknown maintenance type")
		}
		filter.Type = &maintenanceType
	}
	if params.From != "" {
		from, err := time.Parse(dateLayout, params.From)
		if err != nil {
			return nil, store.MaintenanceFilter{}, domain.NewValidationError("from", "expected YYYY-MM-DD")
		}
		filter.From = &from
	}
	if params.To != "" {
		to, err := time.Parse(dateLayout, params.To)
		if err != nil {
			return nil, store.MaintenanceFilter{}, domain.NewValidationError("to", "expected YYYY-MM-DD")
		}
		// Inclusive end of day
		end := to.AddDate(0, 0, 1).Add(-time.Second)
		filter.To = &end
	}

	return &params, filter, nil
}

// ListAuditQueryParams holds query parameters for GET /audit
type ListAuditQueryParams struct {
	Entity      string `form:"entity"`
	Action      string `form:"action"`
	PerformedBy int64  `form:"performed_by"`

	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ParseListAuditQuery parses and caps the audit trail parameters
func ParseListAuditQuery(c *gin.Context) (*ListAuditQueryParams, store.AuditLogFilter, error) {
	var params ListAuditQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, store.AuditLogFilter{}, err
	}
	capPage(&params.Limit, &params.Offset)

	filter := store.AuditLogFilter{
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	if params.Entity != "" {
		entity := schema.AuditEntity(params.Entity)
		filter.Entity = &entity
	}
	if params.Action != "" {
		filter.Action = &params.Action
	}
	if params.PerformedBy != 0 {
		filter.PerformedBy = &params.PerformedBy
	}

	return &params, filter, nil
}

// paramID parses a positive integer path parameter
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// optionalAssetIDQuery parses the asset_id query parameter when present
func optionalAssetIDQuery(c *gin.Context) (*int64, bool) {
	raw := c.Query("asset_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}

func capPage(limit, offset *int) {
	if *limit <= 0 {
		*limit = 20
	}
	if *limit > MAX_PAGE_SIZE {
		*limit = MAX_PAGE_SIZE
	}
	if *offset < 0 {
		*offset = 0
	}
}
