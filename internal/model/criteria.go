package model

import (
	"strings"

	"laptop-inventory-backend/internal/parse"
)

// Criteria narrows which laptops are eligible. Zero fields match anything.
// Text fields are case-insensitive substring matches; capacity minimums are
// compared against the parsed RAM and storage strings.
type Criteria struct {
	Model        string `form:"model" json:"model,omitempty"`
	Brand        string `form:"brand" json:"brand,omitempty"`
	CPU          string `form:"cpu" json:"cpu,omitempty"`
	Graphics     string `form:"graphics" json:"graphics,omitempty"`
	Location     string `form:"location" json:"location,omitempty"`
	MinRAMGB     int    `form:"min_ram_gb" json:"minRamGb,omitempty"`
	MinStorageGB int    `form:"min_storage_gb" json:"minStorageGb,omitempty"`
}

// Empty reports whether c places no restriction at all.
func (c *Criteria) Empty() bool {
	return c == nil || *c == Criteria{}
}

// Matches reports whether l satisfies every set field of c. A nil Criteria
// matches every laptop.
func (c *Criteria) Matches(l Laptop) bool {
	if c.Empty() {
		return true
	}
	if !containsFold(l.Model, c.Model) ||
		!containsFold(l.Brand, c.Brand) ||
		!containsFold(l.Specs.CPU, c.CPU) ||
		!containsFold(l.Specs.Graphics, c.Graphics) ||
		!containsFold(l.Location, c.Location) {
		return false
	}
	if c.MinRAMGB > 0 {
		gb, err := parse.CapacityGB(l.Specs.RAM)
		if err != nil || gb < c.MinRAMGB {
			return false
		}
	}
	if c.MinStorageGB > 0 {
		gb, err := parse.CapacityGB(l.Specs.Storage)
		if err != nil || gb < c.MinStorageGB {
			return false
		}
	}
	return true
}

func containsFold(have, want string) bool {
	if want == "" {
		return true
	}
	return strings.Contains(strings.ToLower(have), strings.ToLower(strings.TrimSpace(want)))
}
