package store

import (
	"context"

	"gorm.io/gorm/clause"

	"bitefeed-notify/internal/model"
)

// RegisterToken associates a device token with a user. The token value is
// the primary key, so the upsert reassigns ownership in one statement: a
// device that moves to a new account stops receiving the old account's
// notifications the moment the new owner registers. Re-registering the same
// token for the same user only touches metadata.
func (s *gormStore) RegisterToken(ctx context.Context, userID, token, platform string) error {
	row := model.DeviceToken{
		Token:    token,
		UserID:   userID,
		Platform: platform,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return storageFault("register token", err)
	}
	return nil
}

// RemoveToken deletes a token regardless of owner. Called when a provider
// reports the device unregistered. Deleting an absent token is a no-op.
func (s *gormStore) RemoveToken(ctx context.Context, token string) error {
	if err := s.db.WithContext(ctx).Delete(&model.DeviceToken{Token: token}).Error; err != nil {
		return storageFault("remove token", err)
	}
	return nil
}

// TokensForUser returns the user's registered tokens, oldest first. A user
// with no tokens gets an empty slice, not an error.
func (s *gormStore) TokensForUser(ctx context.Context, userID string) ([]model.DeviceToken, error) {
	var tokens []model.DeviceToken
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&tokens).Error
	if err != nil {
		return nil, storageFault("fetch tokens", err)
	}
	return tokens, nil
}
