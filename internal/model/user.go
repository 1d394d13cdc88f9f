package model

import "time"

// User is the slice of the platform's user record this service reads.
// The full profile (bio, avatar, preferences) belongs to the account
// service; default message composition only needs the display name.
type User struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	DisplayName string    `gorm:"size:128;not null" json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
