package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"laptop-inventory-backend/internal/ledger"
)

// ListEmployees handles GET /api/employees.
func (h *Handler) ListEmployees(c *gin.Context) {
	employees, err := h.ledger.ListEmployees(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

// RegisterEmployee handles POST /api/employees.
func (h *Handler) RegisterEmployee(c *gin.Context) {
	var req ledger.EmployeeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalid(c, err)
		return
	}
	e, err := h.ledger.RegisterEmployee(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// GetEmployee handles GET /api/employees/:name.
func (h *Handler) GetEmployee(c *gin.Context) {
	detail, err := h.ledger.GetEmployee(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetCandidateFeatures handles GET /api/employees/:name/features.
func (h *Handler) GetCandidateFeatures(c *gin.Context) {
	features, err := h.ledger.GetCandidateFeatures(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, features)
}
