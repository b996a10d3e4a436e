package ledger

import "errors"

// Error taxonomy. Every failure returned by the ledger wraps exactly one of
// these; use errors.Is to test for a kind.
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrDuplicateEmployee       = errors.New("employee already exists")
	ErrDuplicateSerial         = errors.New("serial number already registered")
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrLaptopNotFound          = errors.New("laptop not found")
	ErrLaptopNotAvailable      = errors.New("laptop is not available")
	ErrLaptopNoLongerAvailable = errors.New("laptop is no longer available")
	ErrReservationNotFound     = errors.New("reservation not found")
	ErrReservationNotOpen      = errors.New("reservation is not open")
	ErrAssignmentNotFound      = errors.New("assignment not found")
	ErrAssignmentNotActive     = errors.New("assignment is not active")
	ErrConcurrentModification  = errors.New("concurrent modification")
	ErrPredictorTimeout        = errors.New("predictor timed out")
	ErrNoAvailableLaptop       = errors.New("no available laptop")
	ErrInvalidRecommendation   = errors.New("predictor returned a laptop outside the offered options")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidInput, "InvalidInput"},
	{ErrDuplicateEmployee, "DuplicateEmployee"},
	{ErrDuplicateSerial, "DuplicateSerial"},
	{ErrEmployeeNotFound, "EmployeeNotFound"},
	{ErrLaptopNotFound, "LaptopNotFound"},
	{ErrLaptopNotAvailable, "LaptopNotAvailable"},
	{ErrLaptopNoLongerAvailable, "LaptopNoLongerAvailable"},
	{ErrReservationNotFound, "ReservationNotFound"},
	{ErrReservationNotOpen, "ReservationNotOpen"},
	{ErrAssignmentNotFound, "AssignmentNotFound"},
	{ErrAssignmentNotActive, "AssignmentNotActive"},
	{ErrConcurrentModification, "ConcurrentModification"},
	{ErrPredictorTimeout, "PredictorTimeout"},
	{ErrNoAvailableLaptop, "NoAvailableLaptop"},
	{ErrInvalidRecommendation, "InvalidRecommendation"},
}

// Kind returns the taxonomy name of err, or "Internal" for errors outside it
// (storage failures and the like).
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}
