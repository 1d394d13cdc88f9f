package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bitefeed-notify/internal/model"
)

// ErrStorageUnavailable marks a fault in the underlying database, as opposed
// to a domain condition like "no tokens registered". Callers decide whether
// a storage fault is fatal; this layer never retries.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Device token registry.
	RegisterToken(ctx context.Context, userID, token, platform string) error
	RemoveToken(ctx context.Context, token string) error
	TokensForUser(ctx context.Context, userID string) ([]model.DeviceToken, error)

	// Notification records.
	InsertNotification(ctx context.Context, n *model.Notification) (string, error)
	NotificationsForUser(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error

	// Browser push subscriptions.
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	RemoveSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForUser(ctx context.Context, userID string) ([]model.PushSubscription, error)

	// User lookup for message composition.
	DisplayName(ctx context.Context, userID string) (string, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for router-level read endpoints.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// storageFault tags a database error with ErrStorageUnavailable so callers
// can distinguish infrastructure faults from domain conditions.
func storageFault(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

// DisplayName returns the display name for a user id.
func (s *gormStore) DisplayName(ctx context.Context, userID string) (string, error) {
	var user model.User
	err := s.db.WithContext(ctx).Select("display_name").First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return "", storageFault("fetch display name", err)
	}
	return user.DisplayName, nil
}
