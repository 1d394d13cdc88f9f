// Package notification is the fan-out core: it turns a domain event into a
// persisted record, live WebSocket delivery, and best-effort mobile and
// browser push.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"bitefeed-notify/internal/model"
	"bitefeed-notify/internal/push"
	"bitefeed-notify/internal/store"
)

// ErrValidation marks a rejected event; nothing was persisted or sent.
var ErrValidation = errors.New("invalid notification event")

// Event is one domain occurrence handed to Notify by a collaborator
// (order handler, chat handler, like handler, ...).
type Event struct {
	Type        model.EventType
	ActorID     string
	RecipientID string
	ObjectID    string // optional related post/order id
	Message     string // optional; empty means use the type's template
	SendPush    bool   // callers suppress push for silent event types
}

// LiveSender fans a message out to a user's open sessions.
type LiveSender interface {
	Send(userID string, message any) int
}

// SubscriptionDispatcher delivers to browser push subscriptions.
type SubscriptionDispatcher interface {
	Dispatch(ctx context.Context, subs []model.PushSubscription, payload push.Payload) push.BatchResult
}

// liveEvent is the JSON wire format delivered to live sessions. Clients
// treat each frame as a self-contained event keyed by the type field.
type liveEvent struct {
	Type           string    `json:"type"`
	NotificationID string    `json:"notification_id"`
	ActorID        string    `json:"actor_id"`
	ObjectID       string    `json:"object_id,omitempty"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// Notifier is the single entry point for notification fan-out.
type Notifier struct {
	store    store.Store
	live     LiveSender
	classify push.Classifier
	expo     push.Dispatcher
	fcm      push.Dispatcher
	webpush  SubscriptionDispatcher

	// Display names are read on every templated compose; cache them so a
	// burst of likes does not become a burst of user-table reads.
	names *gocache.Cache

	pushTimeout time.Duration
	inflight    sync.WaitGroup
}

// New wires a Notifier. Any dispatcher may be nil to disable that channel.
func New(
	st store.Store,
	live LiveSender,
	classify push.Classifier,
	expo push.Dispatcher,
	fcm push.Dispatcher,
	webpush SubscriptionDispatcher,
	pushTimeout time.Duration,
) *Notifier {
	if classify == nil {
		classify = push.DefaultClassifier
	}
	return &Notifier{
		store:       st,
		live:        live,
		classify:    classify,
		expo:        expo,
		fcm:         fcm,
		webpush:     webpush,
		names:       gocache.New(5*time.Minute, 10*time.Minute),
		pushTimeout: pushTimeout,
	}
}

// Notify validates, composes, persists, and fans out one event. Persisting
// the record is the only step that can fail the call; live and push
// delivery are best-effort. Returns the new notification id.
func (n *Notifier) Notify(ctx context.Context, ev Event) (string, error) {
	if ev.ActorID == "" || ev.RecipientID == "" {
		return "", fmt.Errorf("%w: actor and recipient are required", ErrValidation)
	}
	// A user is never notified of their own action, except for
	// system-originated types where the actor is the intended audience.
	if ev.ActorID == ev.RecipientID && !ev.Type.SystemOriginated() {
		return "", fmt.Errorf("%w: self-notification for type %q", ErrValidation, ev.Type)
	}

	message := ev.Message
	if message == "" {
		if !ev.Type.Known() {
			return "", fmt.Errorf("%w: type %q has no default message", ErrValidation, ev.Type)
		}
		templated, ok := defaultMessage(ev.Type, n.displayName(ctx, ev.ActorID))
		if !ok {
			return "", fmt.Errorf("%w: type %q has no default message", ErrValidation, ev.Type)
		}
		message = templated
	}

	record := &model.Notification{
		Type:        ev.Type,
		ActorID:     ev.ActorID,
		RecipientID: ev.RecipientID,
		Message:     message,
	}
	if ev.ObjectID != "" {
		record.ObjectID = &ev.ObjectID
	}

	// The record is the event's durable trace; without it the recipient
	// can never see the notification, so a persistence fault is fatal.
	id, err := n.store.InsertNotification(ctx, record)
	if err != nil {
		return "", fmt.Errorf("persist notification: %w", err)
	}

	// Live fan-out cannot fail the call: send failures inside the
	// registry only prune the dead session.
	if n.live != nil {
		n.live.Send(ev.RecipientID, liveEvent{
			Type:           string(ev.Type),
			NotificationID: id,
			ActorID:        ev.ActorID,
			ObjectID:       ev.ObjectID,
			Message:        message,
			CreatedAt:      record.CreatedAt,
		})
	}

	if ev.SendPush {
		n.spawnPush(ev, id, message)
	}

	return id, nil
}

// spawnPush runs push delivery in its own goroutine with its own deadline
// and error boundary. The triggering domain action has already succeeded;
// nothing that happens here may un-succeed it.
func (n *Notifier) spawnPush(ev Event, notificationID, message string) {
	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		// Detached from the request context: the caller returning must
		// not cancel a delivery already in flight.
		ctx, cancel := context.WithTimeout(context.Background(), n.pushTimeout)
		defer cancel()

		payload := push.Payload{
			Title: pushTitle(ev.Type),
			Body:  message,
			Data: map[string]string{
				"type":            string(ev.Type),
				"notification_id": notificationID,
			},
		}
		if ev.ObjectID != "" {
			payload.Data["object_id"] = ev.ObjectID
		}

		n.dispatchTokens(ctx, ev.RecipientID, payload)
		n.dispatchSubscriptions(ctx, ev.RecipientID, payload)
	}()
}

func (n *Notifier) dispatchTokens(ctx context.Context, userID string, payload push.Payload) {
	if n.expo == nil && n.fcm == nil {
		return
	}

	rows, err := n.store.TokensForUser(ctx, userID)
	if err != nil {
		log.Printf("push skipped for user %s: token lookup failed: %v", userID, err)
		return
	}
	if len(rows) == 0 {
		// No push channel registered; normal, not an error.
		return
	}

	tokens := make([]string, len(rows))
	for i, row := range rows {
		tokens[i] = row.Token
	}
	ios, android := push.Split(n.classify, tokens)

	if n.expo != nil && len(ios) > 0 {
		n.cleanupDead(ctx, n.expo.Dispatch(ctx, ios, payload))
	}
	if n.fcm != nil && len(android) > 0 {
		n.cleanupDead(ctx, n.fcm.Dispatch(ctx, android, payload))
	}
}

func (n *Notifier) dispatchSubscriptions(ctx context.Context, userID string, payload push.Payload) {
	if n.webpush == nil {
		return
	}

	subs, err := n.store.SubscriptionsForUser(ctx, userID)
	if err != nil {
		log.Printf("webpush skipped for user %s: subscription lookup failed: %v", userID, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	result := n.webpush.Dispatch(ctx, subs, payload)
	for _, endpoint := range result.Unregistered() {
		log.Printf("subscription %s is gone, deleting", endpoint)
		if err := n.store.RemoveSubscription(ctx, endpoint); err != nil {
			log.Printf("failed to delete gone subscription %s: %v", endpoint, err)
		}
	}
}

// cleanupDead prunes tokens the provider reported unregistered. The token
// row lives in this service's registry, so the cleanup happens here rather
// than a separate job.
func (n *Notifier) cleanupDead(ctx context.Context, result push.BatchResult) {
	for _, token := range result.Unregistered() {
		log.Printf("device token reported unregistered, deleting")
		if err := n.store.RemoveToken(ctx, token); err != nil {
			log.Printf("failed to delete unregistered token: %v", err)
		}
	}
}

// displayName resolves the actor's display name through the cache,
// falling back to a neutral subject when the lookup fails. A missing name
// only degrades the message text; it never blocks the notification.
func (n *Notifier) displayName(ctx context.Context, userID string) string {
	if cached, found := n.names.Get(userID); found {
		return cached.(string)
	}
	name, err := n.store.DisplayName(ctx, userID)
	if err != nil {
		log.Printf("display name lookup for %s failed: %v", userID, err)
		return "Someone"
	}
	n.names.Set(userID, name, gocache.DefaultExpiration)
	return name
}

// Drain blocks until all spawned push deliveries finish, for graceful
// shutdown.
func (n *Notifier) Drain() {
	n.inflight.Wait()
}
