package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"laptop-inventory-backend/config"
	"laptop-inventory-backend/internal/db"
	"laptop-inventory-backend/internal/db/dbtest"
	"laptop-inventory-backend/internal/ledger"
	"laptop-inventory-backend/internal/model"
	"laptop-inventory-backend/internal/store"
)

// stubPredictor answers with a fixed function and records what it was shown.
type stubPredictor struct {
	mu       sync.Mutex
	fn       func(ctx context.Context, options []model.LaptopOption) (int64, error)
	calls    int
	features model.CandidateFeatures
	options  []model.LaptopOption
}

func (p *stubPredictor) Recommend(ctx context.Context, e model.CandidateFeatures, options []model.LaptopOption) (int64, error) {
	p.mu.Lock()
	p.calls++
	p.features = e
	p.options = options
	p.mu.Unlock()
	return p.fn(ctx, options)
}

type recordingNotifier struct {
	mu  sync.Mutex
	ids []int64
}

func (n *recordingNotifier) LaptopAvailable(id int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, id)
}

type harness struct {
	ledger    *ledger.Ledger
	store     store.Store
	predictor *stubPredictor
	notifier  *recordingNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessOn(t, dbtest.NewSQLite(t))
}

// newFileHarness opens a SQLite file through db.Init with its default
// connection pool, so writers really contend for the database lock.
func newFileHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "ledger.db"),
		LogLevel: "silent",
	}
	gormDB, err := db.Init(cfg, zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return newHarnessOn(t, gormDB)
}

func newHarnessOn(t *testing.T, gormDB *gorm.DB) *harness {
	t.Helper()
	s := store.NewGormStore(gormDB)
	h := &harness{
		store: s,
		predictor: &stubPredictor{fn: func(_ context.Context, options []model.LaptopOption) (int64, error) {
			return options[0].ID, nil
		}},
		notifier: &recordingNotifier{},
	}
	h.ledger = ledger.New(s, h.predictor, ledger.Options{
		Notifier:         h.notifier,
		PredictorTimeout: 50 * time.Millisecond,
	})
	return h
}

func (h *harness) employee(t *testing.T, name, role string) *model.Employee {
	t.Helper()
	e, err := h.ledger.RegisterEmployee(context.Background(), ledger.EmployeeInput{
		Name:            name,
		Role:            role,
		Email:           name + "@example.com",
		DateJoined:      "2023-01-15",
		ExperienceLevel: "Senior",
		Age:             30,
	})
	require.NoError(t, err)
	return e
}

func (h *harness) laptop(t *testing.T, serial, modelName, ram string) *model.Laptop {
	t.Helper()
	l, err := h.ledger.RegisterLaptop(context.Background(), ledger.LaptopInput{
		SerialNumber: serial,
		Model:        modelName,
		Brand:        "Dell",
		Specs:        model.Specs{CPU: "i7", RAM: ram, Storage: "512GB", Graphics: "Iris"},
	})
	require.NoError(t, err)
	return l
}

func (h *harness) status(t *testing.T, id int64) model.LaptopStatus {
	t.Helper()
	l, err := h.ledger.GetLaptop(context.Background(), id)
	require.NoError(t, err)
	return l.Status
}

func TestRegisterEmployee_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   ledger.EmployeeInput
	}{
		{"missing name", ledger.EmployeeInput{Role: "Engineer", Email: "a@example.com", DateJoined: "2023-01-01"}},
		{"bad email", ledger.EmployeeInput{Name: "A", Role: "Engineer", Email: "not-an-email", DateJoined: "2023-01-01"}},
		{"display name email", ledger.EmployeeInput{Name: "A", Role: "Engineer", Email: "A <a@example.com>", DateJoined: "2023-01-01"}},
		{"bad date", ledger.EmployeeInput{Name: "A", Role: "Engineer", Email: "a@example.com", DateJoined: "15/01/2023"}},
		{"negative age", ledger.EmployeeInput{Name: "A", Role: "Engineer", Email: "a@example.com", DateJoined: "2023-01-01", Age: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.ledger.RegisterEmployee(ctx, tt.in)
			assert.ErrorIs(t, err, ledger.ErrInvalidInput)
		})
	}
}

func TestRegisterEmployee_Duplicate(t *testing.T) {
	h := newHarness(t)
	h.employee(t, "Alice", "Engineer")

	_, err := h.ledger.RegisterEmployee(context.Background(), ledger.EmployeeInput{
		Name: "Alice", Role: "Designer", Email: "other@example.com", DateJoined: "2024-02-01",
	})
	assert.ErrorIs(t, err, ledger.ErrDuplicateEmployee)
}

func TestRegisterLaptop_DefaultsAndDuplicate(t *testing.T) {
	h := newHarness(t)
	l := h.laptop(t, "SN-1", "XPS 13", "16GB")
	assert.Equal(t, model.LaptopAvailable, l.Status)
	assert.Equal(t, ledger.DefaultLocation, l.Location)
	assert.Nil(t, l.LastServiced)

	_, err := h.ledger.RegisterLaptop(context.Background(), ledger.LaptopInput{SerialNumber: "SN-1", Model: "X", Brand: "Y"})
	assert.ErrorIs(t, err, ledger.ErrDuplicateSerial)

	_, err = h.ledger.RegisterLaptop(context.Background(), ledger.LaptopInput{SerialNumber: "SN-2", Model: "X"})
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestReservationLifecycle_Fulfilled(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.employee(t, "Alice", "Engineer")
	l := h.laptop(t, "SN-1", "XPS 13", "16GB")

	r, err := h.ledger.CreateReservation(ctx, "Alice", l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationReserved, r.Status)
	assert.Equal(t, model.LaptopReserved, h.status(t, l.ID))

	// A reserved laptop can't be handed to anybody else.
	h.employee(t, "Bob", "Designer")
	_, err = h.ledger.CreateAssignment(ctx, "Bob", l.ID)
	assert.ErrorIs(t, err, ledger.ErrLaptopNotAvailable)
	assert.Equal(t, model.LaptopReserved, h.status(t, l.ID))

	r, a, err := h.ledger.CompleteReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationFulfilled, r.Status)
	require.NotNil(t, r.AssignmentID)
	assert.Equal(t, a.ID, *r.AssignmentID)
	require.NotNil(t, a.ReservationID)
	assert.Equal(t, r.ID, *a.ReservationID)
	assert.Equal(t, alice.ID, a.EmployeeID)
	assert.Equal(t, model.AssignmentActive, a.Status)
	assert.Equal(t, model.LaptopAssigned, h.status(t, l.ID))

	_, _, err = h.ledger.CompleteReservation(ctx, r.ID)
	assert.ErrorIs(t, err, ledger.ErrReservationNotOpen)
	_, err = h.ledger.CancelReservation(ctx, r.ID)
	assert.ErrorIs(t, err, ledger.ErrReservationNotOpen)

	returned, err := h.ledger.ReturnAssignment(ctx, a.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentCompleted, returned.Status)
	require.NotNil(t, returned.ReturnedDate)
	assert.Equal(t, model.LaptopAvailable, h.status(t, l.ID))
	assert.Equal(t, []int64{l.ID}, h.notifier.ids)

	_, err = h.ledger.ReturnAssignment(ctx, a.ID, time.Now().Add(2*time.Hour))
	assert.ErrorIs(t, err, ledger.ErrAssignmentNotActive)

	detail, err := h.ledger.GetEmployee(ctx, "Alice")
	require.NoError(t, err)
	assert.Len(t, detail.Reservations, 1)
	assert.Len(t, detail.Assignments, 1)
}

func TestCancelReservation_ReleasesLaptop(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.employee(t, "Alice", "Engineer")
	l := h.laptop(t, "SN-1", "XPS 13", "16GB")

	r, err := h.ledger.CreateReservation(ctx, "Alice", l.ID)
	require.NoError(t, err)

	r, err = h.ledger.CancelReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, r.Status)
	assert.Nil(t, r.AssignmentID)
	assert.NotNil(t, r.ClosedAt)
	assert.Equal(t, model.LaptopAvailable, h.status(t, l.ID))
	assert.Equal(t, []int64{l.ID}, h.notifier.ids)

	// The laptop can be reserved again.
	_, err = h.ledger.CreateReservation(ctx, "Alice", l.ID)
	assert.NoError(t, err)
}

func TestNotFoundErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.employee(t, "Alice", "Engineer")
	l := h.laptop(t, "SN-1", "XPS 13", "16GB")

	_, err := h.ledger.CreateReservation(ctx, "Nobody", l.ID)
	assert.ErrorIs(t, err, ledger.ErrEmployeeNotFound)
	assert.Equal(t, model.LaptopAvailable, h.status(t, l.ID))

	_, err = h.ledger.CreateAssignment(ctx, "Alice", 9999)
	assert.ErrorIs(t, err, ledger.ErrLaptopNotFound)

	_, _, err = h.ledger.CompleteReservation(ctx, "missing")
	assert.ErrorIs(t, err, ledger.ErrReservationNotFound)

	_, err = h.ledger.CancelReservation(ctx, "missing")
	assert.ErrorIs(t, err, ledger.ErrReservationNotFound)

	_, err = h.ledger.ReturnAssignment(ctx, "missing", time.Now())
	assert.ErrorIs(t, err, ledger.ErrAssignmentNotFound)

	_, err = h.ledger.ReturnAssignment(ctx, "missing", time.Time{})
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	_, err = h.ledger.CreateReservation(ctx, "  ", l.ID)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestCreateAssignment_ConcurrentCallersOneWins(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	l := h.laptop(t, "SN-1", "XPS 13", "16GB")

	const callers = 8
	for i := 0; i < callers; i++ {
		h.employee(t, fmt.Sprintf("emp%d", i), "Engineer")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.ledger.CreateAssignment(ctx, fmt.Sprintf("emp%d", i), l.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures = append(failures, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	for _, err := range failures {
		assert.True(t,
			errors.Is(err, ledger.ErrLaptopNotAvailable) || errors.Is(err, ledger.ErrConcurrentModification),
			"unexpected error: %v", err)
	}

	active, err := h.ledger.ListAssignments(ctx, ledger.AssignmentFilter{LaptopID: l.ID, Status: model.AssignmentActive})
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, model.LaptopAssigned, h.status(t, l.ID))
}

func TestCreateAssignment_RacingWritersOnSQLiteFile(t *testing.T) {
	h := newFileHarness(t)
	ctx := context.Background()

	const (
		rounds  = 10
		callers = 4
	)
	for i := 0; i < callers; i++ {
		h.employee(t, fmt.Sprintf("emp%d", i), "Engineer")
	}

	kinds := map[string]int{}
	var mu sync.Mutex
	for round := 0; round < rounds; round++ {
		l := h.laptop(t, fmt.Sprintf("SN-%d", round), "XPS 13", "16GB")

		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := h.ledger.CreateAssignment(ctx, fmt.Sprintf("emp%d", i), l.ID)
				kind := "ok"
				if err != nil {
					kind = ledger.Kind(err)
				}
				mu.Lock()
				kinds[kind]++
				mu.Unlock()
			}(i)
		}
		wg.Wait()
		assert.Equal(t, model.LaptopAssigned, h.status(t, l.ID))
	}

	assert.Equal(t, rounds, kinds["ok"], "kinds: %v", kinds)
	assert.Zero(t, kinds["Internal"], "kinds: %v", kinds)
	assert.Equal(t, rounds*(callers-1), kinds["LaptopNotAvailable"]+kinds["ConcurrentModification"], "kinds: %v", kinds)
}

func TestRetireLaptop(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.employee(t, "Alice", "Engineer")
	l := h.laptop(t, "SN-1", "XPS 13", "16GB")

	retired, err := h.ledger.RetireLaptop(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LaptopRetired, retired.Status)

	_, err = h.ledger.CreateReservation(ctx, "Alice", l.ID)
	assert.ErrorIs(t, err, ledger.ErrLaptopNotAvailable)

	_, err = h.ledger.FindAvailableLaptop(ctx, nil)
	assert.ErrorIs(t, err, ledger.ErrNoAvailableLaptop)
}

func TestFindAvailableLaptop_Criteria(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.laptop(t, "SN-1", "XPS 13", "8GB")
	big := h.laptop(t, "SN-2", "XPS 15", "32 GB")

	got, err := h.ledger.FindAvailableLaptop(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "SN-1", got.SerialNumber)

	got, err = h.ledger.FindAvailableLaptop(ctx, &model.Criteria{MinRAMGB: 16})
	require.NoError(t, err)
	assert.Equal(t, big.ID, got.ID)

	_, err = h.ledger.FindAvailableLaptop(ctx, &model.Criteria{Brand: "Lenovo"})
	assert.ErrorIs(t, err, ledger.ErrNoAvailableLaptop)
}

func TestReserveLegacy(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.employee(t, "Alice", "Engineer")
	h.laptop(t, "SN-1", "XPS 13", "16GB")
	want := h.laptop(t, "SN-2", "MacBook Pro", "16GB")

	r, err := h.ledger.ReserveLegacy(ctx, ledger.LegacyReservation{
		ManagerName:  "Carol",
		EmployeeName: "Alice",
		Model:        "macbook",
		StartDate:    "2024-03-01",
		EndDate:      "2024-03-31",
	})
	require.NoError(t, err)
	assert.Equal(t, want.ID, r.LaptopID)
	assert.Equal(t, "reserved by Carol from 2024-03-01 to 2024-03-31", r.Note)

	_, err = h.ledger.ReserveLegacy(ctx, ledger.LegacyReservation{
		ManagerName: "Carol", EmployeeName: "Alice", Model: "XPS",
		StartDate: "2024-03-31", EndDate: "2024-03-01",
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestMaintenanceDue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for serial, serviced := range map[string]string{"SN-OLD": "2023-01-01", "SN-NEW": "2024-05-01"} {
		_, err := h.ledger.RegisterLaptop(ctx, ledger.LaptopInput{SerialNumber: serial, Model: "M", Brand: "B", LastServiced: serviced})
		require.NoError(t, err)
	}

	due, err := h.ledger.MaintenanceDue(ctx, now, 180*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "SN-OLD", due[0].SerialNumber)

	_, err = h.ledger.MaintenanceDue(ctx, now, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestRecommend_AssignsPredictorChoice(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.employee(t, "Alice", "Engineer")
	h.laptop(t, "SN-1", "XPS 13", "8GB")
	second := h.laptop(t, "SN-2", "XPS 15", "32GB")
	h.predictor.fn = func(_ context.Context, options []model.LaptopOption) (int64, error) {
		return options[len(options)-1].ID, nil
	}

	a, err := h.ledger.Recommend(ctx, "Alice", nil)
	require.NoError(t, err)
	assert.Equal(t, second.ID, a.LaptopID)
	assert.Equal(t, model.LaptopAssigned, h.status(t, second.ID))

	assert.Equal(t, "Engineer", h.predictor.features.Role)
	assert.Len(t, h.predictor.options, 2)
}

func TestRecommend_FulfilsOpenReservationWithoutPredictor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.employee(t, "Alice", "Engineer")
	l := h.laptop(t, "SN-1", "XPS 13", "16GB")
	h.laptop(t, "SN-2", "XPS 15", "16GB")

	r, err := h.ledger.CreateReservation(ctx, "Alice", l.ID)
	require.NoError(t, err)

	a, err := h.ledger.Recommend(ctx, "Alice", nil)
	require.NoError(t, err)
	assert.Equal(t, l.ID, a.LaptopID)
	require.NotNil(t, a.ReservationID)
	assert.Equal(t, r.ID, *a.ReservationID)
	assert.Zero(t, h.predictor.calls)
}

func TestRecommend_Failures(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		h := newHarness(t)
		h.employee(t, "Alice", "Engineer")
		l := h.laptop(t, "SN-1", "XPS 13", "16GB")
		h.predictor.fn = func(ctx context.Context, _ []model.LaptopOption) (int64, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		}

		_, err := h.ledger.Recommend(context.Background(), "Alice", nil)
		assert.ErrorIs(t, err, ledger.ErrPredictorTimeout)
		assert.Equal(t, model.LaptopAvailable, h.status(t, l.ID))
	})

	t.Run("choice outside options", func(t *testing.T) {
		h := newHarness(t)
		h.employee(t, "Alice", "Engineer")
		l := h.laptop(t, "SN-1", "XPS 13", "16GB")
		h.predictor.fn = func(context.Context, []model.LaptopOption) (int64, error) { return 4242, nil }

		_, err := h.ledger.Recommend(context.Background(), "Alice", nil)
		assert.ErrorIs(t, err, ledger.ErrInvalidRecommendation)
		assert.Equal(t, model.LaptopAvailable, h.status(t, l.ID))
	})

	t.Run("no candidates", func(t *testing.T) {
		h := newHarness(t)
		h.employee(t, "Alice", "Engineer")
		h.laptop(t, "SN-1", "XPS 13", "8GB")

		_, err := h.ledger.Recommend(context.Background(), "Alice", &model.Criteria{MinRAMGB: 64})
		assert.ErrorIs(t, err, ledger.ErrNoAvailableLaptop)
		assert.Zero(t, h.predictor.calls)
	})

	t.Run("choice taken before commit", func(t *testing.T) {
		h := newHarness(t)
		h.employee(t, "Alice", "Engineer")
		h.employee(t, "Bob", "Engineer")
		l := h.laptop(t, "SN-1", "XPS 13", "16GB")
		h.predictor.fn = func(_ context.Context, options []model.LaptopOption) (int64, error) {
			// Bob grabs the laptop while the predictor is thinking.
			_, err := h.ledger.CreateAssignment(context.Background(), "Bob", options[0].ID)
			require.NoError(t, err)
			return options[0].ID, nil
		}

		_, err := h.ledger.Recommend(context.Background(), "Alice", nil)
		assert.ErrorIs(t, err, ledger.ErrLaptopNoLongerAvailable)
		assert.Equal(t, "LaptopNoLongerAvailable", ledger.Kind(err))

		active, err := h.ledger.ListAssignments(context.Background(), ledger.AssignmentFilter{LaptopID: l.ID})
		require.NoError(t, err)
		assert.Len(t, active, 1)
	})

	t.Run("predictor error", func(t *testing.T) {
		h := newHarness(t)
		h.employee(t, "Alice", "Engineer")
		h.laptop(t, "SN-1", "XPS 13", "16GB")
		h.predictor.fn = func(context.Context, []model.LaptopOption) (int64, error) {
			return 0, errors.New("model unavailable")
		}

		_, err := h.ledger.Recommend(context.Background(), "Alice", nil)
		assert.Error(t, err)
		assert.Equal(t, "Internal", ledger.Kind(err))
	})

	t.Run("unknown employee", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.ledger.Recommend(context.Background(), "Nobody", nil)
		assert.ErrorIs(t, err, ledger.ErrEmployeeNotFound)
	})
}

func TestGetCandidateFeatures(t *testing.T) {
	h := newHarness(t)
	h.employee(t, "Alice", "Engineer")

	f, err := h.ledger.GetCandidateFeatures(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, model.CandidateFeatures{Role: "Engineer", ExperienceLevel: "Senior", Age: 30}, f)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "", ledger.Kind(nil))
	assert.Equal(t, "ReservationNotOpen", ledger.Kind(fmt.Errorf("wrap: %w", ledger.ErrReservationNotOpen)))
	assert.Equal(t, "Internal", ledger.Kind(errors.New("disk full")))
}
