package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"laptop-inventory-backend/internal/model"
	"laptop-inventory-backend/internal/store"
)

// queueDepth is how many laptops may wait for a worker before Dispatch
// starts dropping them.
const queueDepth = 64

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool tells subscribers when a laptop they watch becomes Available.
// It implements ledger.Notifier.
type WorkerPool struct {
	size    int
	jobs    chan int64
	subs    store.SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
	logger  *zap.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, subs store.SubscriptionStore, webpushOptions *webpush.Options, logger *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, queueDepth),
		subs:    subs,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
		logger:  logger,
	}
}

// SetSender replaces the push transport.
func (wp *WorkerPool) SetSender(sender NotificationSender) {
	wp.sender = sender
}

// Start launches the worker goroutines. They stop when ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debug("notification worker started", zap.Int("worker", id))
	for {
		select {
		case laptopID := <-wp.jobs:
			wp.sendNotificationsForLaptop(ctx, laptopID)
		case <-ctx.Done():
			wp.logger.Debug("notification worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a laptop for notification. It never blocks; when the queue
// is full the job is dropped and false is returned.
func (wp *WorkerPool) Dispatch(laptopID int64) bool {
	select {
	case wp.jobs <- laptopID:
		return true
	default:
		wp.logger.Warn("notification queue full, dropping job", zap.Int64("laptop_id", laptopID))
		return false
	}
}

// LaptopAvailable implements ledger.Notifier.
func (wp *WorkerPool) LaptopAvailable(laptopID int64) {
	wp.Dispatch(laptopID)
}

func (wp *WorkerPool) sendNotificationsForLaptop(ctx context.Context, laptopID int64) {
	subscriptions, err := wp.subs.SubscriptionsForLaptop(ctx, laptopID)
	if err != nil {
		wp.logger.Error("failed to fetch subscriptions", zap.Int64("laptop_id", laptopID), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	label, err := wp.subs.LaptopLabel(ctx, laptopID)
	if err != nil {
		wp.logger.Warn("failed to label laptop, using its id", zap.Int64("laptop_id", laptopID), zap.Error(err))
		label = fmt.Sprintf("#%d", laptopID)
	}

	wp.logger.Info("sending availability notifications",
		zap.Int64("laptop_id", laptopID), zap.Int("subscriptions", len(subscriptions)))
	message := fmt.Sprintf("Laptop %s is available again", label)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.logger.Warn("failed to send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// The push service forgot this subscription.
	if resp.StatusCode == http.StatusGone {
		wp.logger.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.subs.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.logger.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
