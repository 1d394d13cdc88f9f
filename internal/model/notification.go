package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventType enumerates the domain events that produce a notification.
type EventType string

const (
	EventLike            EventType = "like"
	EventComment         EventType = "comment"
	EventFollow          EventType = "follow"
	EventNewPost         EventType = "new_post"
	EventMessage         EventType = "message"
	EventCompliment      EventType = "compliment"
	EventStoryLike       EventType = "story_like"
	EventWalletReward    EventType = "wallet_reward"
	EventNewOrder        EventType = "new_order"
	EventOrderPreparing  EventType = "order_preparing"
	EventOrderInProgress EventType = "order_in_progress"
	EventOrderCompleted  EventType = "order_completed"
)

// Known reports whether t is one of the enumerated event types.
func (t EventType) Known() bool {
	switch t {
	case EventLike, EventComment, EventFollow, EventNewPost, EventMessage,
		EventCompliment, EventStoryLike, EventWalletReward, EventNewOrder,
		EventOrderPreparing, EventOrderInProgress, EventOrderCompleted:
		return true
	}
	return false
}

// SystemOriginated reports whether t represents the system notifying the
// acting party itself, e.g. a restaurant confirming its own status change.
// Self-notification is allowed for these types only.
func (t EventType) SystemOriginated() bool {
	switch t {
	case EventWalletReward, EventOrderPreparing, EventOrderInProgress:
		return true
	}
	return false
}

// CountsTowardBadge reports whether the type contributes to the unread
// badge. Chat messages and order progress render in their own surfaces.
func (t EventType) CountsTowardBadge() bool {
	switch t {
	case EventMessage, EventOrderPreparing, EventOrderInProgress, EventOrderCompleted:
		return false
	}
	return true
}

// Notification is the persisted record of one event relevant to a recipient.
type Notification struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Type        EventType `gorm:"size:32;not null;index" json:"type"`
	ActorID     string    `gorm:"size:36;not null;index" json:"actor_id"`
	RecipientID string    `gorm:"size:36;not null;index" json:"recipient_id"`
	ObjectID    *string   `gorm:"size:36" json:"object_id,omitempty"` // post or order id
	Message     string    `gorm:"size:512;not null" json:"message"`
	IsRead      bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt   time.Time `gorm:"not null;index" json:"created_at"`
}

// BeforeCreate assigns a generated id, keeping insert-returns-id semantics.
func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
