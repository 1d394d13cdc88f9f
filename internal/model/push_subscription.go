package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// Browser subscriptions are a delivery channel of their own; they do not
// participate in the mobile provider split.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey" json:"endpoint"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	P256DH    string    `gorm:"column:p256dh;not null" json:"p256dh"`
	Auth      string    `gorm:"not null" json:"auth"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
