package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"laptop-inventory-backend/internal/ledger"
	"laptop-inventory-backend/internal/model"
	"laptop-inventory-backend/internal/parse"
)

// ListAssignments handles GET /api/assignments.
func (h *Handler) ListAssignments(c *gin.Context) {
	var filter ledger.AssignmentFilter
	if raw := c.Query("status"); raw != "" {
		s, err := model.ParseAssignmentStatus(raw)
		if err != nil {
			h.invalid(c, err)
			return
		}
		filter.Status = s
	}
	assignments, err := h.ledger.ListAssignments(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// CreateAssignment handles POST /api/assignments.
func (h *Handler) CreateAssignment(c *gin.Context) {
	var req holdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalid(c, err)
		return
	}
	a, err := h.ledger.CreateAssignment(c.Request.Context(), req.EmployeeName, req.LaptopID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

type returnRequest struct {
	ReturnedDate string `json:"returnedDate"`
}

// ReturnAssignment handles POST /api/assignments/:id/return. An empty body
// returns the laptop as of now.
func (h *Handler) ReturnAssignment(c *gin.Context) {
	var req returnRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.invalid(c, err)
			return
		}
	}
	returned := h.now()
	if req.ReturnedDate != "" {
		t, err := parse.Date(req.ReturnedDate)
		if err != nil {
			h.invalid(c, err)
			return
		}
		returned = t
	}
	a, err := h.ledger.ReturnAssignment(c.Request.Context(), c.Param("id"), returned)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
