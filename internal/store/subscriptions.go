package store

import (
	"context"

	"gorm.io/gorm/clause"

	"bitefeed-notify/internal/model"
)

// UpsertSubscription creates or replaces a browser push subscription. The
// endpoint is the primary key; a browser that re-subscribes under a new
// account takes the endpoint with it, mirroring the device-token rule.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(sub).Error
	if err != nil {
		return storageFault("upsert subscription", err)
	}
	return nil
}

// RemoveSubscription deletes a subscription by endpoint. Used both by the
// client unsubscribe call and by the dispatcher when the push service
// reports the endpoint gone.
func (s *gormStore) RemoveSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return storageFault("remove subscription", err)
	}
	return nil
}

// SubscriptionsForUser returns the user's browser subscriptions.
func (s *gormStore) SubscriptionsForUser(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&subs).Error
	if err != nil {
		return nil, storageFault("fetch subscriptions", err)
	}
	return subs, nil
}
