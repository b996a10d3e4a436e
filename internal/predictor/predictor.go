// Package predictor holds the ledger.Predictor backends: an external
// command, an HTTP endpoint, and an in-process first-fit fallback.
package predictor

import (
	"fmt"

	"go.uber.org/zap"

	"laptop-inventory-backend/config"
	"laptop-inventory-backend/internal/ledger"
	"laptop-inventory-backend/internal/model"
)

// Request is the JSON document sent to external predictors.
type Request struct {
	Employee model.CandidateFeatures `json:"employee"`
	Options  []model.LaptopOption    `json:"options"`
}

// Response is the JSON document external predictors answer with.
type Response struct {
	LaptopID int64 `json:"laptopId"`
}

// New builds the predictor selected by cfg.Kind.
func New(cfg *config.PredictorConfig, logger *zap.Logger) (ledger.Predictor, error) {
	switch cfg.Kind {
	case "exec":
		if cfg.Command == "" {
			return nil, fmt.Errorf("predictor kind %q needs a command", cfg.Kind)
		}
		return NewExec(cfg.Command, cfg.Args...), nil
	case "http":
		if cfg.URL == "" {
			return nil, fmt.Errorf("predictor kind %q needs a url", cfg.Kind)
		}
		return NewHTTP(cfg.URL, cfg.HTTPProxy, cfg.Timeout, logger), nil
	case "first_fit", "":
		return NewFirstFit(nil), nil
	default:
		return nil, fmt.Errorf("unknown predictor kind %q", cfg.Kind)
	}
}
