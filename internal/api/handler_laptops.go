package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"laptop-inventory-backend/internal/ledger"
	"laptop-inventory-backend/internal/model"
)

// ListLaptops handles GET /api/laptops. ?status= takes a comma-separated
// list of statuses.
func (h *Handler) ListLaptops(c *gin.Context) {
	var statuses []model.LaptopStatus
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			s, err := model.ParseLaptopStatus(strings.TrimSpace(part))
			if err != nil {
				h.invalid(c, err)
				return
			}
			statuses = append(statuses, s)
		}
	}
	laptops, err := h.ledger.ListLaptops(c.Request.Context(), statuses...)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, laptops)
}

// RegisterLaptop handles POST /api/laptops.
func (h *Handler) RegisterLaptop(c *gin.Context) {
	var req ledger.LaptopInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalid(c, err)
		return
	}
	l, err := h.ledger.RegisterLaptop(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// GetLaptop handles GET /api/laptops/:id.
func (h *Handler) GetLaptop(c *gin.Context) {
	id, ok := h.laptopID(c)
	if !ok {
		return
	}
	l, err := h.ledger.GetLaptop(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// RetireLaptop handles POST /api/laptops/:id/retire.
func (h *Handler) RetireLaptop(c *gin.Context) {
	id, ok := h.laptopID(c)
	if !ok {
		return
	}
	l, err := h.ledger.RetireLaptop(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// FindAvailableLaptop handles GET /api/laptops/available.
func (h *Handler) FindAvailableLaptop(c *gin.Context) {
	var criteria model.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		h.invalid(c, err)
		return
	}
	l, err := h.ledger.FindAvailableLaptop(c.Request.Context(), &criteria)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// MaintenanceDue handles GET /api/laptops/maintenance and its older names
// /api/predictMaintenance and /api/predict_maintenance. ?threshold_days=
// overrides the configured service interval.
func (h *Handler) MaintenanceDue(c *gin.Context) {
	threshold := h.maintenance
	if raw := c.Query("threshold_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			h.invalid(c, fmt.Errorf("threshold_days: %w", err))
			return
		}
		threshold = time.Duration(days) * 24 * time.Hour
	}
	laptops, err := h.ledger.MaintenanceDue(c.Request.Context(), h.now(), threshold)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, laptops)
}

func (h *Handler) laptopID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.invalid(c, fmt.Errorf("laptop id %q is not a number", c.Param("id")))
		return 0, false
	}
	return id, true
}
