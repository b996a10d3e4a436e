package ledger

import (
	"context"
	"time"

	"laptop-inventory-backend/internal/model"
)

// ReservationFilter narrows ListReservations. Zero fields are ignored.
type ReservationFilter struct {
	EmployeeID int64
	LaptopID   int64
	Status     model.ReservationStatus
}

// AssignmentFilter narrows ListAssignments. Zero fields are ignored.
type AssignmentFilter struct {
	EmployeeID int64
	LaptopID   int64
	Status     model.AssignmentStatus
}

// Store is the persistence the ledger needs. Every mutating method must run
// as one transaction and change laptop status only by compare-and-set,
// returning ErrConcurrentModification when the expected status is gone.
type Store interface {
	CreateEmployee(ctx context.Context, e *model.Employee) error
	FindEmployeeByName(ctx context.Context, name string) (*model.Employee, error)
	ListEmployees(ctx context.Context) ([]model.Employee, error)

	CreateLaptop(ctx context.Context, l *model.Laptop) error
	FindLaptop(ctx context.Context, id int64) (*model.Laptop, error)
	// ListLaptops returns laptops in registration order, optionally limited
	// to the given statuses.
	ListLaptops(ctx context.Context, statuses ...model.LaptopStatus) ([]model.Laptop, error)
	LaptopsDueForMaintenance(ctx context.Context, cutoff time.Time) ([]model.Laptop, error)
	RetireLaptop(ctx context.Context, id int64, now time.Time) (*model.Laptop, error)

	Reserve(ctx context.Context, employeeName string, laptopID int64, note string, now time.Time) (*model.Reservation, error)
	Assign(ctx context.Context, employeeName string, laptopID int64, now time.Time) (*model.Assignment, error)
	CompleteReservation(ctx context.Context, reservationID string, now time.Time) (*model.Reservation, *model.Assignment, error)
	CancelReservation(ctx context.Context, reservationID string, now time.Time) (*model.Reservation, error)
	ReturnAssignment(ctx context.Context, assignmentID string, returnedDate, now time.Time) (*model.Assignment, error)

	ListReservations(ctx context.Context, filter ReservationFilter) ([]model.Reservation, error)
	ListAssignments(ctx context.Context, filter AssignmentFilter) ([]model.Assignment, error)
}

// Predictor picks one laptop out of options for an employee. It must have
// no side effects; the ledger validates whatever it returns.
type Predictor interface {
	Recommend(ctx context.Context, employee model.CandidateFeatures, options []model.LaptopOption) (int64, error)
}

// Notifier is told when a laptop returns to Available.
type Notifier interface {
	LaptopAvailable(laptopID int64)
}
