// Package ledger owns the lifecycle of employees, laptops, reservations and
// assignments. It validates input, enforces the laptop state machine through
// its Store, and runs the recommendation flow against a Predictor.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"laptop-inventory-backend/internal/model"
	"laptop-inventory-backend/internal/parse"
)

// DefaultLocation is where newly registered laptops are assumed to be.
const DefaultLocation = "Office"

// DefaultPredictorTimeout bounds a single predictor call when Options leaves
// it unset.
const DefaultPredictorTimeout = 10 * time.Second

// Options carries the optional collaborators of a Ledger.
type Options struct {
	Notifier         Notifier
	PredictorTimeout time.Duration
	Logger           *zap.Logger
	Now              func() time.Time
}

// Ledger is the inventory state machine.
type Ledger struct {
	store            Store
	predictor        Predictor
	notifier         Notifier
	predictorTimeout time.Duration
	logger           *zap.Logger
	now              func() time.Time
	validate         *validator.Validate
}

// New creates a Ledger over the given store and predictor.
func New(s Store, p Predictor, opts Options) *Ledger {
	l := &Ledger{
		store:            s,
		predictor:        p,
		notifier:         opts.Notifier,
		predictorTimeout: opts.PredictorTimeout,
		logger:           opts.Logger,
		now:              opts.Now,
		validate:         validator.New(),
	}
	if l.predictorTimeout <= 0 {
		l.predictorTimeout = DefaultPredictorTimeout
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	if l.now == nil {
		l.now = func() time.Time { return time.Now().UTC() }
	}
	return l
}

// EmployeeInput is the onboarding form for RegisterEmployee.
type EmployeeInput struct {
	Name            string `json:"name"`
	Role            string `json:"role"`
	Email           string `json:"email"`
	DateJoined      string `json:"dateJoined"`
	ExperienceLevel string `json:"experienceLevel"`
	Age             int    `json:"age"`
}

// RegisterEmployee validates in and stores a new employee.
func (l *Ledger) RegisterEmployee(ctx context.Context, in EmployeeInput) (*model.Employee, error) {
	name := strings.TrimSpace(in.Name)
	role := strings.TrimSpace(in.Role)
	email := strings.TrimSpace(in.Email)
	if name == "" || role == "" || email == "" || strings.TrimSpace(in.DateJoined) == "" {
		return nil, fmt.Errorf("%w: name, role, email and dateJoined are required", ErrInvalidInput)
	}
	if err := l.validate.Var(email, "email"); err != nil {
		return nil, fmt.Errorf("%w: email %q is not valid", ErrInvalidInput, email)
	}
	joined, err := parse.Date(in.DateJoined)
	if err != nil {
		return nil, fmt.Errorf("%w: dateJoined: %v", ErrInvalidInput, err)
	}
	if in.Age < 0 {
		return nil, fmt.Errorf("%w: age must not be negative", ErrInvalidInput)
	}

	e := &model.Employee{
		Name:            name,
		Role:            role,
		Email:           email,
		DateJoined:      joined,
		ExperienceLevel: strings.TrimSpace(in.ExperienceLevel),
		Age:             in.Age,
	}
	if err := l.store.CreateEmployee(ctx, e); err != nil {
		return nil, err
	}
	l.logger.Info("employee registered", zap.Int64("employee_id", e.ID), zap.String("name", e.Name))
	return e, nil
}

// LaptopInput is the intake form for RegisterLaptop.
type LaptopInput struct {
	SerialNumber string      `json:"serialNumber"`
	Model        string      `json:"model"`
	Brand        string      `json:"brand"`
	Specs        model.Specs `json:"specifications"`
	Location     string      `json:"location"`
	LastServiced string      `json:"lastServiced"`
}

// RegisterLaptop validates in and stores a new laptop as Available.
func (l *Ledger) RegisterLaptop(ctx context.Context, in LaptopInput) (*model.Laptop, error) {
	serial := strings.TrimSpace(in.SerialNumber)
	modelName := strings.TrimSpace(in.Model)
	brand := strings.TrimSpace(in.Brand)
	if serial == "" || modelName == "" || brand == "" {
		return nil, fmt.Errorf("%w: serialNumber, model and brand are required", ErrInvalidInput)
	}
	lastServiced, err := parse.OptionalDate(in.LastServiced)
	if err != nil {
		return nil, fmt.Errorf("%w: lastServiced: %v", ErrInvalidInput, err)
	}
	location := strings.TrimSpace(in.Location)
	if location == "" {
		location = DefaultLocation
	}

	laptop := &model.Laptop{
		SerialNumber: serial,
		Model:        modelName,
		Brand:        brand,
		Specs:        in.Specs,
		Status:       model.LaptopAvailable,
		Location:     location,
		LastServiced: lastServiced,
	}
	if err := l.store.CreateLaptop(ctx, laptop); err != nil {
		return nil, err
	}
	l.logger.Info("laptop registered", zap.Int64("laptop_id", laptop.ID), zap.String("serial", laptop.SerialNumber))
	return laptop, nil
}

// FindAvailableLaptop returns the earliest-registered Available laptop that
// satisfies criteria. A nil criteria accepts any laptop.
func (l *Ledger) FindAvailableLaptop(ctx context.Context, criteria *model.Criteria) (*model.Laptop, error) {
	candidates, err := l.availableLaptops(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoAvailableLaptop
	}
	return &candidates[0], nil
}

func (l *Ledger) availableLaptops(ctx context.Context, criteria *model.Criteria) ([]model.Laptop, error) {
	laptops, err := l.store.ListLaptops(ctx, model.LaptopAvailable)
	if err != nil {
		return nil, err
	}
	matched := laptops[:0]
	for _, laptop := range laptops {
		if criteria.Matches(laptop) {
			matched = append(matched, laptop)
		}
	}
	return matched, nil
}

// CreateReservation holds an Available laptop for an employee.
func (l *Ledger) CreateReservation(ctx context.Context, employeeName string, laptopID int64) (*model.Reservation, error) {
	return l.reserve(ctx, employeeName, laptopID, "")
}

func (l *Ledger) reserve(ctx context.Context, employeeName string, laptopID int64, note string) (*model.Reservation, error) {
	name := strings.TrimSpace(employeeName)
	if name == "" {
		return nil, fmt.Errorf("%w: employeeName is required", ErrInvalidInput)
	}
	r, err := l.store.Reserve(ctx, name, laptopID, note, l.now())
	if err != nil {
		return nil, err
	}
	l.logger.Info("laptop reserved",
		zap.String("reservation_id", r.ID),
		zap.Int64("laptop_id", r.LaptopID),
		zap.Int64("employee_id", r.EmployeeID))
	return r, nil
}

// CreateAssignment hands an Available laptop straight to an employee.
func (l *Ledger) CreateAssignment(ctx context.Context, employeeName string, laptopID int64) (*model.Assignment, error) {
	name := strings.TrimSpace(employeeName)
	if name == "" {
		return nil, fmt.Errorf("%w: employeeName is required", ErrInvalidInput)
	}
	a, err := l.store.Assign(ctx, name, laptopID, l.now())
	if err != nil {
		return nil, err
	}
	l.logger.Info("laptop assigned",
		zap.String("assignment_id", a.ID),
		zap.Int64("laptop_id", a.LaptopID),
		zap.Int64("employee_id", a.EmployeeID))
	return a, nil
}

// CompleteReservation turns an open reservation into an active assignment.
func (l *Ledger) CompleteReservation(ctx context.Context, reservationID string) (*model.Reservation, *model.Assignment, error) {
	r, a, err := l.store.CompleteReservation(ctx, reservationID, l.now())
	if err != nil {
		return nil, nil, err
	}
	l.logger.Info("reservation fulfilled",
		zap.String("reservation_id", r.ID),
		zap.String("assignment_id", a.ID),
		zap.Int64("laptop_id", a.LaptopID))
	return r, a, nil
}

// CancelReservation releases an open reservation's laptop.
func (l *Ledger) CancelReservation(ctx context.Context, reservationID string) (*model.Reservation, error) {
	r, err := l.store.CancelReservation(ctx, reservationID, l.now())
	if err != nil {
		return nil, err
	}
	l.logger.Info("reservation cancelled", zap.String("reservation_id", r.ID), zap.Int64("laptop_id", r.LaptopID))
	l.notifyAvailable(r.LaptopID)
	return r, nil
}

// ReturnAssignment closes an active assignment as of returnedDate.
func (l *Ledger) ReturnAssignment(ctx context.Context, assignmentID string, returnedDate time.Time) (*model.Assignment, error) {
	if returnedDate.IsZero() {
		return nil, fmt.Errorf("%w: returnedDate is required", ErrInvalidInput)
	}
	a, err := l.store.ReturnAssignment(ctx, assignmentID, returnedDate.UTC(), l.now())
	if err != nil {
		return nil, err
	}
	l.logger.Info("laptop returned", zap.String("assignment_id", a.ID), zap.Int64("laptop_id", a.LaptopID))
	l.notifyAvailable(a.LaptopID)
	return a, nil
}

// RetireLaptop takes an Available laptop out of circulation.
func (l *Ledger) RetireLaptop(ctx context.Context, laptopID int64) (*model.Laptop, error) {
	laptop, err := l.store.RetireLaptop(ctx, laptopID, l.now())
	if err != nil {
		return nil, err
	}
	l.logger.Info("laptop retired", zap.Int64("laptop_id", laptop.ID))
	return laptop, nil
}

func (l *Ledger) notifyAvailable(laptopID int64) {
	if l.notifier == nil {
		return
	}
	l.notifier.LaptopAvailable(laptopID)
}

// LegacyReservation is the string-keyed reservation body the old front end
// posts: a model name instead of a laptop, plus the requesting manager and a
// date range.
type LegacyReservation struct {
	ManagerName  string `json:"managerName"`
	EmployeeName string `json:"employeeName"`
	Model        string `json:"model"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
}

// ReserveLegacy translates a LegacyReservation into CreateReservation on the
// first Available laptop of the requested model.
func (l *Ledger) ReserveLegacy(ctx context.Context, in LegacyReservation) (*model.Reservation, error) {
	if strings.TrimSpace(in.ManagerName) == "" || strings.TrimSpace(in.EmployeeName) == "" ||
		strings.TrimSpace(in.Model) == "" {
		return nil, fmt.Errorf("%w: managerName, employeeName and model are required", ErrInvalidInput)
	}
	start, err := parse.Date(in.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: startDate: %v", ErrInvalidInput, err)
	}
	end, err := parse.Date(in.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: endDate: %v", ErrInvalidInput, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}

	laptop, err := l.FindAvailableLaptop(ctx, &model.Criteria{Model: in.Model})
	if err != nil {
		return nil, err
	}
	note := fmt.Sprintf("reserved by %s from %s to %s",
		strings.TrimSpace(in.ManagerName), start.Format(parse.DateLayout), end.Format(parse.DateLayout))
	return l.reserve(ctx, in.EmployeeName, laptop.ID, note)
}

// EmployeeDetail is an employee with their reservation and assignment history.
type EmployeeDetail struct {
	model.Employee
	Reservations []model.Reservation `json:"reservations"`
	Assignments  []model.Assignment  `json:"assignments"`
}

// ListEmployees returns all employees in registration order.
func (l *Ledger) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	return l.store.ListEmployees(ctx)
}

// GetEmployee returns one employee with their history.
func (l *Ledger) GetEmployee(ctx context.Context, name string) (*EmployeeDetail, error) {
	e, err := l.store.FindEmployeeByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	reservations, err := l.store.ListReservations(ctx, ReservationFilter{EmployeeID: e.ID})
	if err != nil {
		return nil, err
	}
	assignments, err := l.store.ListAssignments(ctx, AssignmentFilter{EmployeeID: e.ID})
	if err != nil {
		return nil, err
	}
	return &EmployeeDetail{Employee: *e, Reservations: reservations, Assignments: assignments}, nil
}

// ListLaptops returns laptops in registration order, optionally by status.
func (l *Ledger) ListLaptops(ctx context.Context, statuses ...model.LaptopStatus) ([]model.Laptop, error) {
	return l.store.ListLaptops(ctx, statuses...)
}

// GetLaptop returns one laptop.
func (l *Ledger) GetLaptop(ctx context.Context, id int64) (*model.Laptop, error) {
	return l.store.FindLaptop(ctx, id)
}

// ListReservations returns reservations matching filter.
func (l *Ledger) ListReservations(ctx context.Context, filter ReservationFilter) ([]model.Reservation, error) {
	return l.store.ListReservations(ctx, filter)
}

// ListAssignments returns assignments matching filter.
func (l *Ledger) ListAssignments(ctx context.Context, filter AssignmentFilter) ([]model.Assignment, error) {
	return l.store.ListAssignments(ctx, filter)
}

// MaintenanceDue lists in-service laptops not serviced within threshold of
// now, including ones with no service record.
func (l *Ledger) MaintenanceDue(ctx context.Context, now time.Time, threshold time.Duration) ([]model.Laptop, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: threshold must be positive", ErrInvalidInput)
	}
	return l.store.LaptopsDueForMaintenance(ctx, now.Add(-threshold))
}
