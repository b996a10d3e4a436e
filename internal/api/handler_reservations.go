package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"laptop-inventory-backend/internal/ledger"
	"laptop-inventory-backend/internal/model"
)

type holdRequest struct {
	EmployeeName string `json:"employeeName"`
	LaptopID     int64  `json:"laptopId"`
}

// ListReservations handles GET /api/reservations.
func (h *Handler) ListReservations(c *gin.Context) {
	var filter ledger.ReservationFilter
	if raw := c.Query("status"); raw != "" {
		s, err := model.ParseReservationStatus(raw)
		if err != nil {
			h.invalid(c, err)
			return
		}
		filter.Status = s
	}
	reservations, err := h.ledger.ListReservations(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

// CreateReservation handles POST /api/reservations and POST /api/reserve.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req holdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalid(c, err)
		return
	}
	r, err := h.ledger.CreateReservation(c.Request.Context(), req.EmployeeName, req.LaptopID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// CompleteReservation handles POST /api/reservations/:id/complete.
func (h *Handler) CompleteReservation(c *gin.Context) {
	r, a, err := h.ledger.CompleteReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": r, "assignment": a})
}

// CancelReservation handles POST /api/reservations/:id/cancel.
func (h *Handler) CancelReservation(c *gin.Context) {
	r, err := h.ledger.CancelReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// legacyReservationRequest accepts both spellings the old front ends use:
// camelCase from the Node form and snake_case from the Flask one.
type legacyReservationRequest struct {
	ledger.LegacyReservation
	ManagerNameSnake  string `json:"manager_name"`
	EmployeeNameSnake string `json:"employee_name"`
	StartDateSnake    string `json:"start_date"`
	EndDateSnake      string `json:"end_date"`
}

func (r legacyReservationRequest) reservation() ledger.LegacyReservation {
	out := r.LegacyReservation
	out.ManagerName = firstNonEmpty(out.ManagerName, r.ManagerNameSnake)
	out.EmployeeName = firstNonEmpty(out.EmployeeName, r.EmployeeNameSnake)
	out.StartDate = firstNonEmpty(out.StartDate, r.StartDateSnake)
	out.EndDate = firstNonEmpty(out.EndDate, r.EndDateSnake)
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ReserveLegacy handles POST /api/reserve_laptop, the body the old
// reservation forms post.
func (h *Handler) ReserveLegacy(c *gin.Context) {
	var body legacyReservationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.invalid(c, err)
		return
	}
	req := body.reservation()
	r, err := h.ledger.ReserveLegacy(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     fmt.Sprintf("Laptop %d reserved for %s by %s", r.LaptopID, req.EmployeeName, req.ManagerName),
		"reservation": r,
	})
}
