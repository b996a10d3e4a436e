package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"laptop-inventory-backend/internal/ledger"
	"laptop-inventory-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	ledger      *ledger.Ledger
	subs        store.SubscriptionStore
	webpush     *webpush.Options
	maintenance time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewHandler creates a new API handler. maintenance is the default
// service interval for GET /api/laptops/maintenance.
func NewHandler(l *ledger.Ledger, subs store.SubscriptionStore, webpushOptions *webpush.Options, maintenance time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		ledger:      l,
		subs:        subs,
		webpush:     webpushOptions,
		maintenance: maintenance,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}
