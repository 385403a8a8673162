package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuslib/library-service/internal/services"
	"github.com/campuslib/library-service/internal/utils"
	"github.com/campuslib/library-service/internal/validator"
)

// ErrorResponse is the error body every endpoint uses.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler carries the pieces every handler shares.
type BaseHandler struct {
	Logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{Logger: logger}
}

// LogRequest logs with the request-scoped logger when middleware attached
// one.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.LoggerFromContext(c, h.Logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, msg string, args ...any) {
	utils.LoggerFromContext(c, h.Logger).Error(msg, args...)
}

// parseIDParam parses a positive integer path parameter, responding 400 and
// returning 0 when it is malformed.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
		})
		return 0
	}
	return uint(id)
}

// handleServiceError maps service-layer errors onto HTTP statuses. Sentinel
// messages pass through verbatim; anything unrecognized is a 500.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: verrs,
		})
		return
	}

	var limitErr *services.LimitExceededError
	if errors.As(err, &limitErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: limitErr.Error()})
		return
	}

	switch {
	case errors.Is(err, services.ErrBookNotFound),
		errors.Is(err, services.ErrRecordNotFound),
		errors.Is(err, services.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrNoCopiesAvailable),
		errors.Is(err, services.ErrAlreadyBorrowed),
		errors.Is(err, services.ErrAlreadyActive),
		errors.Is(err, services.ErrNotReserved),
		errors.Is(err, services.ErrRecordNotActive),
		errors.Is(err, services.ErrBookHasActiveRecords),
		errors.Is(err, services.ErrReduceBelowBorrowed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrDuplicateISBN),
		errors.Is(err, services.ErrLibrarianExists):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrAssociatedBookMissing):
		h.LogError(c, "data inconsistency", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: err.Error()})

	default:
		h.LogError(c, "unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
