package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"laptop-inventory-backend/internal/model"
)

// GetCandidateFeatures returns the predictor input for an employee.
func (l *Ledger) GetCandidateFeatures(ctx context.Context, employeeName string) (model.CandidateFeatures, error) {
	e, err := l.store.FindEmployeeByName(ctx, employeeName)
	if err != nil {
		return model.CandidateFeatures{}, err
	}
	return e.Features(), nil
}

// Recommend assigns a laptop to an employee. An open reservation is
// fulfilled directly. Otherwise the predictor chooses among the Available
// laptops matching criteria, and its choice is committed with CreateAssignment.
//
// The predictor runs outside any transaction. If its pick is taken by the time
// of commit the call fails with ErrLaptopNoLongerAvailable and nothing is
// written; the caller may retry.
func (l *Ledger) Recommend(ctx context.Context, employeeName string, criteria *model.Criteria) (*model.Assignment, error) {
	e, err := l.store.FindEmployeeByName(ctx, employeeName)
	if err != nil {
		return nil, err
	}

	open, err := l.store.ListReservations(ctx, ReservationFilter{EmployeeID: e.ID, Status: model.ReservationReserved})
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		_, a, err := l.CompleteReservation(ctx, open[0].ID)
		if err != nil {
			return nil, err
		}
		return a, nil
	}

	candidates, err := l.availableLaptops(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoAvailableLaptop
	}
	options := make([]model.LaptopOption, len(candidates))
	for i, c := range candidates {
		options[i] = c.Option()
	}

	chosen, err := l.predict(ctx, e.Features(), options)
	if err != nil {
		return nil, err
	}

	a, err := l.CreateAssignment(ctx, e.Name, chosen)
	switch {
	case errors.Is(err, ErrLaptopNotAvailable), errors.Is(err, ErrConcurrentModification):
		l.logger.Warn("recommended laptop was taken before commit",
			zap.Int64("laptop_id", chosen), zap.String("employee", e.Name))
		return nil, fmt.Errorf("%w: laptop %d", ErrLaptopNoLongerAvailable, chosen)
	case err != nil:
		return nil, err
	}
	return a, nil
}

func (l *Ledger) predict(ctx context.Context, features model.CandidateFeatures, options []model.LaptopOption) (int64, error) {
	if l.predictor == nil {
		return 0, errors.New("no predictor configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, l.predictorTimeout)
	defer cancel()

	chosen, err := l.predictor.Recommend(callCtx, features, options)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w after %s", ErrPredictorTimeout, l.predictorTimeout)
		}
		return 0, fmt.Errorf("predictor: %w", err)
	}

	for _, o := range options {
		if o.ID == chosen {
			l.logger.Debug("predictor chose laptop", zap.Int64("laptop_id", chosen), zap.Int("options", len(options)))
			return chosen, nil
		}
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidRecommendation, chosen)
}
