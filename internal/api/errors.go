package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"laptop-inventory-backend/internal/ledger"
)

var statusByKind = map[string]int{
	"InvalidInput":            http.StatusBadRequest,
	"EmployeeNotFound":        http.StatusNotFound,
	"LaptopNotFound":          http.StatusNotFound,
	"ReservationNotFound":     http.StatusNotFound,
	"AssignmentNotFound":      http.StatusNotFound,
	"NoAvailableLaptop":       http.StatusNotFound,
	"DuplicateEmployee":       http.StatusConflict,
	"DuplicateSerial":         http.StatusConflict,
	"LaptopNotAvailable":      http.StatusConflict,
	"LaptopNoLongerAvailable": http.StatusConflict,
	"ReservationNotOpen":      http.StatusConflict,
	"AssignmentNotActive":     http.StatusConflict,
	"ConcurrentModification":  http.StatusConflict,
	"InvalidRecommendation":   http.StatusBadGateway,
	"PredictorTimeout":        http.StatusGatewayTimeout,
}

// respondError aborts c with the status and JSON body for err.
func (h *Handler) respondError(c *gin.Context, err error) {
	kind := ledger.Kind(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("kind", kind),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "kind": kind})
}

// invalid reports a malformed request as InvalidInput.
func (h *Handler) invalid(c *gin.Context, err error) {
	if !errors.Is(err, ledger.ErrInvalidInput) {
		err = fmt.Errorf("%w: %v", ledger.ErrInvalidInput, err)
	}
	h.respondError(c, err)
}
