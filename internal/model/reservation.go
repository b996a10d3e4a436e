package model

import "time"

// Reservation is a hold on a laptop for an employee, not yet handed over.
type Reservation struct {
	ID           string            `gorm:"size:36;primaryKey" json:"id"`
	EmployeeID   int64             `gorm:"index;not null" json:"employeeId"`
	LaptopID     int64             `gorm:"index;not null" json:"laptopId"`
	ReservedDate time.Time         `gorm:"not null" json:"reservedDate"`
	Status       ReservationStatus `gorm:"size:16;not null;check:status IN ('Reserved','Fulfilled','Cancelled')" json:"status"`
	AssignmentID *string           `gorm:"size:36" json:"assignmentId,omitempty"`
	ClosedAt     *time.Time        `json:"closedAt,omitempty"`
	Note         string            `gorm:"size:512" json:"note,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`

	// Associations
	Employee Employee `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Laptop   Laptop   `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}
