package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"laptop-inventory-backend/internal/model"
)

// ErrSubscriptionNotFound is returned when no subscription has the endpoint.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// SubscriptionStore persists browser push subscriptions.
type SubscriptionStore interface {
	PutSubscription(ctx context.Context, sub model.PushSubscription, laptopIDs []int64) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	SubscriptionsForLaptop(ctx context.Context, laptopID int64) ([]model.PushSubscription, error)
	LaptopLabel(ctx context.Context, laptopID int64) (string, error)
}

// PutSubscription creates or replaces a subscription and its laptop set.
func (s *gormStore) PutSubscription(ctx context.Context, sub model.PushSubscription, laptopIDs []int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		laptops := []*model.Laptop{}
		if len(laptopIDs) > 0 {
			if err := tx.Find(&laptops, laptopIDs).Error; err != nil {
				return fmt.Errorf("failed to load subscribed laptops: %w", err)
			}
		}

		if err := tx.Model(&sub).Association("Laptops").Replace(&laptops); err != nil {
			return fmt.Errorf("failed to replace subscribed laptops: %w", err)
		}
		return nil
	})
}

// DeleteSubscription removes a subscription and its laptop links.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM subscription_laptop_mapping WHERE push_subscription_endpoint = ?", endpoint).Error; err != nil {
			return fmt.Errorf("failed to clear subscribed laptops: %w", err)
		}
		if err := tx.Delete(&model.PushSubscription{}, "endpoint = ?", endpoint).Error; err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		return nil
	})
}

// GetSubscription returns a subscription with its laptops loaded.
func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).Preload("Laptops").First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}
	return &sub, nil
}

// SubscriptionsForLaptop returns every subscription watching laptopID.
func (s *gormStore) SubscriptionsForLaptop(ctx context.Context, laptopID int64) ([]model.PushSubscription, error) {
	var subscriptions []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_laptop_mapping slm ON slm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("slm.laptop_id = ?", laptopID).
		Find(&subscriptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for laptop %d: %w", laptopID, err)
	}
	return subscriptions, nil
}

// LaptopLabel returns a human-readable name for a laptop, "<brand> <model> (<serial>)".
func (s *gormStore) LaptopLabel(ctx context.Context, laptopID int64) (string, error) {
	var laptop model.Laptop
	if err := s.db.WithContext(ctx).
		Select("brand", "model", "serial_number").
		First(&laptop, laptopID).Error; err != nil {
		return "", fmt.Errorf("failed to fetch laptop %d: %w", laptopID, err)
	}
	return fmt.Sprintf("%s %s (%s)", laptop.Brand, laptop.Model, laptop.SerialNumber), nil
}
