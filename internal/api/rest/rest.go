package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/sarpras/inventaris/internal/api/middleware"
)

// SetupRoutes configures the REST API routes. Reads are open; every mutating
// route requires a bearer token so the audit trail can attribute the actor.
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	auth := middleware.Auth(authCfg)

	// Assets
	v1.POST("/assets", auth, handler.CreateAsset)
	v1.GET("/assets", handler.ListAssets)
	v1.GET("/assets/:id", handler.GetAsset)
	v1.PATCH("/assets/:id", auth, handler.UpdateAsset)
	v1.POST("/assets/:id/move", auth, handler.MoveAsset)
	v1.POST("/assets/:id/retire", auth, handler.RetireAsset)
	v1.GET("/assets/:id/history", handler.GetAssetHistory)

	// Responsibilities
	v1.POST("/assets/:id/responsibles", auth, handler.AssignResponsible)
	v1.DELETE("/assets/:id/responsibles/:user_id", auth, handler.UnassignResponsible)

	// Meter readings
	v1.POST("/assets/:id/readings", auth, handler.RecordMeterReading)
	v1.GET("/assets/:id/readings", handler.ListMeterReadings)

	// Loans
	v1.POST("/assets/:id/loans", auth, handler.BorrowAsset)
	v1.POST("/loans/:id/return", auth, handler.ReturnLoan)
	v1.GET("/loans", handler.ListLoans)

	// Locations
	v1.POST("/locations", auth, handler.CreateLocation)
	v1.GET("/locations", handler.ListLocations)
	v1.GET("/locations/:id", handler.GetLocation)
	v1.PATCH("/locations/:id", auth, handler.UpdateLocation)
	v1.DELETE("/locations/:id", auth, handler.DeleteLocation)

	// Categories
	v1.POST("/categories", auth, handler.CreateCategory)
	v1.GET("/categories", handler.ListCategories)
	v1.DELETE("/categories/:id", auth, handler.DeleteCategory)

	// Maintenance schedules
	v1.POST("/schedules", auth, handler.CreateSchedule)
	v1.GET("/schedules", handler.ListSchedules)
	v1.GET("/schedules/:id", handler.GetSchedule)
	v1.PATCH("/schedules/:id", auth, handler.UpdateSchedule)
	v1.DELETE("/schedules/:id", auth, handler.DeleteSchedule)

	// Maintenance events and dashboard
	v1.POST("/maintenances", auth, handler.CompleteMaintenance)
	v1.GET("/maintenances", handler.ListMaintenances)
	v1.GET("/maintenance/status", handler.MaintenanceStatus)

	// Audit trail
	v1.GET("/audit", handler.GetAuditTrail)
}
