package model

import "time"

// Specs is the hardware bundle of a laptop, kept as entered ("16GB", "512GB SSD").
type Specs struct {
	CPU      string `gorm:"size:128" json:"cpu"`
	RAM      string `gorm:"size:64" json:"ram"`
	Storage  string `gorm:"size:64" json:"storage"`
	Graphics string `gorm:"size:128" json:"graphics"`
}

// Laptop is a single inventory unit. ID order is registration order.
type Laptop struct {
	ID           int64        `gorm:"primaryKey" json:"id"`
	SerialNumber string       `gorm:"uniqueIndex;size:128;not null" json:"serialNumber"`
	Model        string       `gorm:"size:128;not null;index" json:"model"`
	Brand        string       `gorm:"size:128;not null" json:"brand"`
	Specs        Specs        `gorm:"embedded;embeddedPrefix:spec_" json:"specifications"`
	Status       LaptopStatus `gorm:"size:16;not null;index;check:status IN ('Available','Reserved','Assigned','Retired')" json:"status"`
	Location     string       `gorm:"size:128;not null" json:"location"`
	LastServiced *time.Time   `json:"lastServiced,omitempty"`
	Version      int64        `gorm:"not null;default:0" json:"version"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// LaptopOption is one candidate offered to the predictor.
type LaptopOption struct {
	ID    int64  `json:"id"`
	Model string `json:"model"`
	Brand string `json:"brand"`
	Specs Specs  `json:"specifications"`
}

// Option converts l into its predictor representation.
func (l Laptop) Option() LaptopOption {
	return LaptopOption{ID: l.ID, Model: l.Model, Brand: l.Brand, Specs: l.Specs}
}
