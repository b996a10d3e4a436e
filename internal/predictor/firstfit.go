package predictor

import (
	"context"
	"errors"
	"strings"

	"laptop-inventory-backend/internal/model"
	"laptop-inventory-backend/internal/parse"
)

// DefaultMinRAMGB is the RAM each role would like to get.
var DefaultMinRAMGB = map[string]int{
	"engineer":          16,
	"software engineer": 16,
	"data scientist":    32,
	"designer":          16,
}

// FirstFit picks the first option with enough RAM for the employee's role,
// falling back to the first option. It never blocks.
type FirstFit struct {
	minRAMGB map[string]int
}

// NewFirstFit creates a FirstFit predictor. Role names in minRAMGB are
// matched case-insensitively; nil means DefaultMinRAMGB.
func NewFirstFit(minRAMGB map[string]int) *FirstFit {
	if minRAMGB == nil {
		minRAMGB = DefaultMinRAMGB
	}
	normalized := make(map[string]int, len(minRAMGB))
	for role, gb := range minRAMGB {
		normalized[strings.ToLower(strings.TrimSpace(role))] = gb
	}
	return &FirstFit{minRAMGB: normalized}
}

// Recommend implements ledger.Predictor.
func (p *FirstFit) Recommend(_ context.Context, employee model.CandidateFeatures, options []model.LaptopOption) (int64, error) {
	if len(options) == 0 {
		return 0, errors.New("no options to choose from")
	}
	want := p.minRAMGB[strings.ToLower(strings.TrimSpace(employee.Role))]
	if want > 0 {
		for _, o := range options {
			if gb, err := parse.CapacityGB(o.Specs.RAM); err == nil && gb >= want {
				return o.ID, nil
			}
		}
	}
	return options[0].ID, nil
}
