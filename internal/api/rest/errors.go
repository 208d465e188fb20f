package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/sarpras/inventaris/internal/api/shared/errors"
	"github.com/sarpras/inventaris/internal/domain"
	"github.com/sarpras/inventaris/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, apierrors.NewNotFoundError(message, details...))
}

// respondServiceError maps a service-layer error onto the wire: validation
// failures are unprocessable, conflicts and integrity violations carry
// distinct 409 codes, missing entities are 404, storage outages are 503,
// everything else is a 500.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, apierrors.NewValidationError(validationErr.Error()))
		return
	}

	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, apierrors.NewConflictError("Conflict", conflictErr.Error()))
		return
	}

	var integrityErr *domain.IntegrityError
	if errors.As(err, &integrityErr) {
		c.JSON(http.StatusConflict, apierrors.NewIntegrityError("Integrity violation", integrityErr.Error()))
		return
	}

	var storageErr *domain.StorageUnavailableError
	if errors.As(err, &storageErr) {
		logger.ErrorCtx(c.Request.Context(), err)
		c.JSON(http.StatusServiceUnavailable, apierrors.NewStorageUnavailableError("Storage unavailable"))
		return
	}

	switch {
	case errors.Is(err, domain.ErrAssetNotFound):
		respondNotFound(c, "Asset not found")
	case errors.Is(err, domain.ErrLocationNotFound):
		respondNotFound(c, "Location not found")
	case errors.Is(err, domain.ErrCategoryNotFound):
		respondNotFound(c, "Category not found")
	case errors.Is(err, domain.ErrScheduleNotFound):
		respondNotFound(c, "Schedule not found")
	case errors.Is(err, domain.ErrLoanNotFound):
		respondNotFound(c, "Loan not found")
	default:
		logger.ErrorCtx(c.Request.Context(), err)
		c.JSON(http.StatusInternalServerError, apierrors.NewInternalError("Internal server error"))
	}
}
