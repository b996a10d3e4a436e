package model

import "time"

// Assignment is a laptop handed over to an employee.
// ReturnedDate is nil exactly while Status is Active.
type Assignment struct {
	ID            string           `gorm:"size:36;primaryKey" json:"id"`
	EmployeeID    int64            `gorm:"index;not null" json:"employeeId"`
	LaptopID      int64            `gorm:"index;not null" json:"laptopId"`
	ReservationID *string          `gorm:"size:36" json:"reservationId,omitempty"`
	AssignedDate  time.Time        `gorm:"not null" json:"assignedDate"`
	ReturnedDate  *time.Time       `json:"returnedDate"`
	Status        AssignmentStatus `gorm:"size:16;not null;check:status IN ('Active','Completed')" json:"status"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`

	// Associations
	Employee Employee `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Laptop   Laptop   `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}
