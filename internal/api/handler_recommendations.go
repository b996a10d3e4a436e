package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"laptop-inventory-backend/internal/ledger"
	"laptop-inventory-backend/internal/model"
)

type recommendRequest struct {
	EmployeeName string          `json:"employeeName"`
	Name         string          `json:"name"`
	Criteria     *model.Criteria `json:"criteria"`
}

func (r recommendRequest) employee() string {
	if r.EmployeeName != "" {
		return r.EmployeeName
	}
	return r.Name
}

// Recommend handles POST /api/recommendations and the older
// POST /api/recommend_laptop ({"name": ...}) and POST /api/assignLaptop.
func (h *Handler) Recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalid(c, err)
		return
	}
	if req.employee() == "" {
		h.invalid(c, errors.New("employeeName is required"))
		return
	}
	a, err := h.ledger.Recommend(c.Request.Context(), req.employee(), req.Criteria)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    fmt.Sprintf("Laptop %d assigned to %s", a.LaptopID, req.employee()),
		"assignment": a,
	})
}

type onboardRequest struct {
	ledger.EmployeeInput
	Criteria *model.Criteria `json:"criteria"`
}

// OnboardEmployee handles POST /api/onboard_employee: register the employee,
// then try to assign them a laptop. Once the employee exists the request
// succeeds; a failed assignment is reported in the body.
func (h *Handler) OnboardEmployee(c *gin.Context) {
	var req onboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalid(c, err)
		return
	}
	ctx := c.Request.Context()
	e, err := h.ledger.RegisterEmployee(ctx, req.EmployeeInput)
	if err != nil {
		h.respondError(c, err)
		return
	}

	a, err := h.ledger.Recommend(ctx, e.Name, req.Criteria)
	if err != nil {
		h.logger.Warn("onboarding left employee without a laptop", zap.String("employee", e.Name), zap.Error(err))
		c.JSON(http.StatusCreated, gin.H{
			"message":    fmt.Sprintf("Employee %s registered; no laptop assigned", e.Name),
			"employee":   e,
			"assignment": nil,
			"error":      err.Error(),
			"kind":       ledger.Kind(err),
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    fmt.Sprintf("Laptop %d assigned to %s", a.LaptopID, e.Name),
		"employee":   e,
		"assignment": a,
	})
}
