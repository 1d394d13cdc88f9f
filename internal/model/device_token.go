package model

import "time"

// DeviceToken maps one physical device's push inbox to its current owner.
// The token value is the primary key: a token belongs to at most one user
// at any time, so re-registering it under a new account replaces the row.
type DeviceToken struct {
	Token     string    `gorm:"primaryKey;size:512" json:"token"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	Platform  string    `gorm:"size:16" json:"platform"` // client-supplied hint: ios, android, or empty
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
