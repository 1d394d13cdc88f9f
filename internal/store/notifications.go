package store

import (
	"context"
	"fmt"

	"bitefeed-notify/internal/model"
)

// historyLimit bounds the "list my notifications" read. Older records stay
// in the table for administrative tooling but are never replayed.
const historyLimit = 50

// InsertNotification persists a record and returns its generated id.
func (s *gormStore) InsertNotification(ctx context.Context, n *model.Notification) (string, error) {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return "", storageFault("insert notification", err)
	}
	return n.ID, nil
}

// NotificationsForUser returns the recipient's most recent notifications,
// newest first. limit is clamped to historyLimit; zero means the default.
func (s *gormStore) NotificationsForUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > historyLimit {
		limit = historyLimit
	}

	var records []model.Notification
	err := s.db.WithContext(ctx).
		Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, storageFault("fetch notifications", err)
	}
	return records, nil
}

// UnreadCount returns the recipient's unread badge count. Types that render
// in their own surfaces (chat, order tracking) are excluded here so every
// caller gets the same badge rule.
func (s *gormStore) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Where("type NOT IN ?", badgeExcludedTypes()).
		Count(&count).Error
	if err != nil {
		return 0, storageFault("count unread", err)
	}
	return count, nil
}

func badgeExcludedTypes() []model.EventType {
	return []model.EventType{
		model.EventMessage,
		model.EventOrderPreparing,
		model.EventOrderInProgress,
		model.EventOrderCompleted,
	}
}

// MarkRead flips one record's read flag. The recipient filter keeps a user
// from acknowledging someone else's notification.
func (s *gormStore) MarkRead(ctx context.Context, userID, notificationID string) error {
	res := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return storageFault("mark read", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %s: %w", notificationID, ErrNotFound)
	}
	return nil
}

// MarkAllRead flips every unread record for the recipient.
func (s *gormStore) MarkAllRead(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return storageFault("mark all read", err)
	}
	return nil
}
