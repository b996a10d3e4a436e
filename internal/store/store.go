package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"laptop-inventory-backend/internal/ledger"
	"laptop-inventory-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	ledger.Store
	SubscriptionStore
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// --- Employees ---

func (s *gormStore) CreateEmployee(ctx context.Context, e *model.Employee) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", ledger.ErrDuplicateEmployee, e.Name)
		}
		return fmt.Errorf("failed to create employee %q: %w", e.Name, err)
	}
	return nil
}

func (s *gormStore) FindEmployeeByName(ctx context.Context, name string) (*model.Employee, error) {
	return findEmployee(s.db.WithContext(ctx), name)
}

func (s *gormStore) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

func findEmployee(tx *gorm.DB, name string) (*model.Employee, error) {
	var e model.Employee
	if err := tx.Where("name = ?", name).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %q", ledger.ErrEmployeeNotFound, name)
		}
		return nil, fmt.Errorf("failed to fetch employee %q: %w", name, err)
	}
	return &e, nil
}

// --- Laptops ---

func (s *gormStore) CreateLaptop(ctx context.Context, l *model.Laptop) error {
	if err := s.db.WithContext(ctx).Create(l).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", ledger.ErrDuplicateSerial, l.SerialNumber)
		}
		return fmt.Errorf("failed to create laptop %q: %w", l.SerialNumber, err)
	}
	return nil
}

func (s *gormStore) FindLaptop(ctx context.Context, id int64) (*model.Laptop, error) {
	var l model.Laptop
	if err := s.db.WithContext(ctx).First(&l, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ledger.ErrLaptopNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch laptop %d: %w", id, err)
	}
	return &l, nil
}

func (s *gormStore) ListLaptops(ctx context.Context, statuses ...model.LaptopStatus) ([]model.Laptop, error) {
	q := s.db.WithContext(ctx).Order("id ASC")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var laptops []model.Laptop
	if err := q.Find(&laptops).Error; err != nil {
		return nil, fmt.Errorf("failed to list laptops: %w", err)
	}
	return laptops, nil
}

func (s *gormStore) LaptopsDueForMaintenance(ctx context.Context, cutoff time.Time) ([]model.Laptop, error) {
	var laptops []model.Laptop
	err := s.db.WithContext(ctx).
		Where("status <> ?", model.LaptopRetired).
		Where("last_serviced IS NULL OR last_serviced < ?", cutoff).
		Order("id ASC").
		Find(&laptops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list laptops due for maintenance: %w", err)
	}
	return laptops, nil
}

func (s *gormStore) RetireLaptop(ctx context.Context, id int64, now time.Time) (*model.Laptop, error) {
	var laptop *model.Laptop
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		l, err := lockLaptop(tx, id)
		if err != nil {
			return err
		}
		if l.Status != model.LaptopAvailable {
			return fmt.Errorf("%w: laptop %d is %s", ledger.ErrLaptopNotAvailable, l.ID, l.Status)
		}
		if err := transition(tx, l, model.LaptopRetired, now); err != nil {
			return err
		}
		laptop = l
		return nil
	})
	return laptop, err
}

// transaction runs fn in one database transaction. A writer that loses a
// SQLite lock race reports ErrConcurrentModification so callers may retry.
func (s *gormStore) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err != nil && ledger.Kind(err) == "Internal" && isLockContention(err) {
		return fmt.Errorf("%w: %v", ledger.ErrConcurrentModification, err)
	}
	return err
}

// lockLaptop reads a laptop inside tx. On PostgreSQL the row is locked until
// the transaction ends; elsewhere transition's compare-and-set is the guard.
func lockLaptop(tx *gorm.DB, id int64) (*model.Laptop, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var l model.Laptop
	if err := q.First(&l, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ledger.ErrLaptopNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch laptop %d: %w", id, err)
	}
	return &l, nil
}

// transition moves l to status `to`, conditioned on the status and version
// read earlier in the same transaction.
func transition(tx *gorm.DB, l *model.Laptop, to model.LaptopStatus, now time.Time) error {
	res := tx.Model(&model.Laptop{}).
		Where("id = ? AND status = ? AND version = ?", l.ID, l.Status, l.Version).
		Updates(map[string]any{
			"status":     to,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update laptop %d status: %w", l.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: laptop %d left %s", ledger.ErrConcurrentModification, l.ID, l.Status)
	}
	l.Status = to
	l.Version++
	l.UpdatedAt = now
	return nil
}

// --- Reservations and assignments ---

func (s *gormStore) Reserve(ctx context.Context, employeeName string, laptopID int64, note string, now time.Time) (*model.Reservation, error) {
	var reservation *model.Reservation
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		employee, err := findEmployee(tx, employeeName)
		if err != nil {
			return err
		}
		laptop, err := lockLaptop(tx, laptopID)
		if err != nil {
			return err
		}
		if laptop.Status != model.LaptopAvailable {
			return fmt.Errorf("%w: laptop %d is %s", ledger.ErrLaptopNotAvailable, laptop.ID, laptop.Status)
		}
		if err := transition(tx, laptop, model.LaptopReserved, now); err != nil {
			return err
		}

		r := &model.Reservation{
			ID:           uuid.NewString(),
			EmployeeID:   employee.ID,
			LaptopID:     laptop.ID,
			ReservedDate: now,
			Status:       model.ReservationReserved,
			Note:         note,
		}
		if err := tx.Omit(clause.Associations).Create(r).Error; err != nil {
			return insertErr(err, "reservation", laptop.ID)
		}
		reservation = r
		return nil
	})
	return reservation, err
}

func (s *gormStore) Assign(ctx context.Context, employeeName string, laptopID int64, now time.Time) (*model.Assignment, error) {
	var assignment *model.Assignment
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		employee, err := findEmployee(tx, employeeName)
		if err != nil {
			return err
		}
		laptop, err := lockLaptop(tx, laptopID)
		if err != nil {
			return err
		}
		if laptop.Status != model.LaptopAvailable {
			return fmt.Errorf("%w: laptop %d is %s", ledger.ErrLaptopNotAvailable, laptop.ID, laptop.Status)
		}
		if err := transition(tx, laptop, model.LaptopAssigned, now); err != nil {
			return err
		}

		a, err := createAssignment(tx, employee.ID, laptop.ID, nil, now)
		if err != nil {
			return err
		}
		assignment = a
		return nil
	})
	return assignment, err
}

func createAssignment(tx *gorm.DB, employeeID, laptopID int64, reservationID *string, now time.Time) (*model.Assignment, error) {
	a := &model.Assignment{
		ID:            uuid.NewString(),
		EmployeeID:    employeeID,
		LaptopID:      laptopID,
		ReservationID: reservationID,
		AssignedDate:  now,
		Status:        model.AssignmentActive,
	}
	if err := tx.Omit(clause.Associations).Create(a).Error; err != nil {
		return nil, insertErr(err, "assignment", laptopID)
	}
	return a, nil
}

func (s *gormStore) CompleteReservation(ctx context.Context, reservationID string, now time.Time) (*model.Reservation, *model.Assignment, error) {
	var (
		reservation *model.Reservation
		assignment  *model.Assignment
	)
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		r, err := openReservation(tx, reservationID)
		if err != nil {
			return err
		}
		laptop, err := lockLaptop(tx, r.LaptopID)
		if err != nil {
			return err
		}
		if laptop.Status != model.LaptopReserved {
			return fmt.Errorf("%w: laptop %d is %s under reservation %s",
				ledger.ErrConcurrentModification, laptop.ID, laptop.Status, r.ID)
		}
		if err := transition(tx, laptop, model.LaptopAssigned, now); err != nil {
			return err
		}

		a, err := createAssignment(tx, r.EmployeeID, r.LaptopID, &r.ID, now)
		if err != nil {
			return err
		}
		if err := closeReservation(tx, r, model.ReservationFulfilled, &a.ID, now); err != nil {
			return err
		}
		reservation, assignment = r, a
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return reservation, assignment, nil
}

func (s *gormStore) CancelReservation(ctx context.Context, reservationID string, now time.Time) (*model.Reservation, error) {
	var reservation *model.Reservation
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		r, err := openReservation(tx, reservationID)
		if err != nil {
			return err
		}
		laptop, err := lockLaptop(tx, r.LaptopID)
		if err != nil {
			return err
		}
		if laptop.Status != model.LaptopReserved {
			return fmt.Errorf("%w: laptop %d is %s under reservation %s",
				ledger.ErrConcurrentModification, laptop.ID, laptop.Status, r.ID)
		}
		if err := transition(tx, laptop, model.LaptopAvailable, now); err != nil {
			return err
		}
		if err := closeReservation(tx, r, model.ReservationCancelled, nil, now); err != nil {
			return err
		}
		reservation = r
		return nil
	})
	return reservation, err
}

func openReservation(tx *gorm.DB, id string) (*model.Reservation, error) {
	var r model.Reservation
	if err := tx.Where("id = ?", id).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ledger.ErrReservationNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch reservation %s: %w", id, err)
	}
	if !r.Status.Open() {
		return nil, fmt.Errorf("%w: reservation %s is %s", ledger.ErrReservationNotOpen, r.ID, r.Status)
	}
	return &r, nil
}

func closeReservation(tx *gorm.DB, r *model.Reservation, to model.ReservationStatus, assignmentID *string, now time.Time) error {
	res := tx.Model(&model.Reservation{}).
		Where("id = ? AND status = ?", r.ID, model.ReservationReserved).
		Updates(map[string]any{
			"status":        to,
			"assignment_id": assignmentID,
			"closed_at":     now,
			"updated_at":    now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to close reservation %s: %w", r.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: reservation %s", ledger.ErrConcurrentModification, r.ID)
	}
	r.Status = to
	r.AssignmentID = assignmentID
	r.ClosedAt = &now
	r.UpdatedAt = now
	return nil
}

func (s *gormStore) ReturnAssignment(ctx context.Context, assignmentID string, returnedDate, now time.Time) (*model.Assignment, error) {
	var assignment *model.Assignment
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var a model.Assignment
		if err := tx.Where("id = ?", assignmentID).First(&a).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ledger.ErrAssignmentNotFound, assignmentID)
			}
			return fmt.Errorf("failed to fetch assignment %s: %w", assignmentID, err)
		}
		if !a.Status.Open() {
			return fmt.Errorf("%w: assignment %s is %s", ledger.ErrAssignmentNotActive, a.ID, a.Status)
		}
		if day(returnedDate).Before(day(a.AssignedDate)) {
			return fmt.Errorf("%w: returnedDate %s is before assignedDate %s",
				ledger.ErrInvalidInput, returnedDate.Format(time.RFC3339), a.AssignedDate.Format(time.RFC3339))
		}
		// Dates are compared by calendar day; a same-day return is recorded
		// no earlier than the assignment.
		if returnedDate.Before(a.AssignedDate) {
			returnedDate = a.AssignedDate
		}

		laptop, err := lockLaptop(tx, a.LaptopID)
		if err != nil {
			return err
		}
		if laptop.Status != model.LaptopAssigned {
			return fmt.Errorf("%w: laptop %d is %s under assignment %s",
				ledger.ErrConcurrentModification, laptop.ID, laptop.Status, a.ID)
		}
		if err := transition(tx, laptop, model.LaptopAvailable, now); err != nil {
			return err
		}

		res := tx.Model(&model.Assignment{}).
			Where("id = ? AND status = ?", a.ID, model.AssignmentActive).
			Updates(map[string]any{
				"status":        model.AssignmentCompleted,
				"returned_date": returnedDate,
				"updated_at":    now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to close assignment %s: %w", a.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: assignment %s", ledger.ErrConcurrentModification, a.ID)
		}
		a.Status = model.AssignmentCompleted
		a.ReturnedDate = &returnedDate
		a.UpdatedAt = now
		assignment = &a
		return nil
	})
	return assignment, err
}

func (s *gormStore) ListReservations(ctx context.Context, filter ledger.ReservationFilter) ([]model.Reservation, error) {
	q := s.db.WithContext(ctx).Model(&model.Reservation{}).Order("reserved_date ASC, id ASC")
	if filter.EmployeeID != 0 {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.LaptopID != 0 {
		q = q.Where("laptop_id = ?", filter.LaptopID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var rs []model.Reservation
	if err := q.Find(&rs).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return rs, nil
}

func (s *gormStore) ListAssignments(ctx context.Context, filter ledger.AssignmentFilter) ([]model.Assignment, error) {
	q := s.db.WithContext(ctx).Model(&model.Assignment{}).Order("assigned_date ASC, id ASC")
	if filter.EmployeeID != 0 {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.LaptopID != 0 {
		q = q.Where("laptop_id = ?", filter.LaptopID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var as []model.Assignment
	if err := q.Find(&as).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return as, nil
}

// insertErr maps a failed reservation/assignment insert. A unique violation
// here means another transaction opened a hold on the same laptop first.
func insertErr(err error, what string, laptopID int64) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: laptop %d already has an open %s", ledger.ErrConcurrentModification, laptopID, what)
	}
	return fmt.Errorf("failed to create %s for laptop %d: %w", what, laptopID, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// isLockContention reports SQLite's SQLITE_BUSY and SQLITE_LOCKED results.
func isLockContention(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy")
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
