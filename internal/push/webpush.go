package push

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"bitefeed-notify/internal/model"
)

// WebPushSender defines the interface for sending one web push message.
type WebPushSender interface {
	Send(ctx context.Context, payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// vapidSender is the real implementation using the webpush library.
type vapidSender struct{}

func (vapidSender) Send(ctx context.Context, payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotificationWithContext(ctx, payload, sub, options)
}

// WebPushDispatcher delivers payloads to browser push subscriptions. It is
// the third delivery channel, independent of the mobile token split: a
// subscription is addressed by endpoint, not by device token.
type WebPushDispatcher struct {
	options *webpush.Options
	sender  WebPushSender
}

// NewWebPushDispatcher creates a dispatcher with the given VAPID options.
func NewWebPushDispatcher(options *webpush.Options) *WebPushDispatcher {
	return &WebPushDispatcher{options: options, sender: vapidSender{}}
}

// Dispatch sends one payload to every subscription, reporting per-endpoint
// outcomes. Endpoints the push service reports gone (404/410) come back as
// OutcomeUnregistered so the caller can delete the subscription row.
func (d *WebPushDispatcher) Dispatch(ctx context.Context, subs []model.PushSubscription, payload Payload) BatchResult {
	var result BatchResult
	if len(subs) == 0 {
		return result
	}

	body, err := json.Marshal(payload)
	if err != nil {
		result.addAll(endpoints(subs), OutcomeTransient, err.Error())
		return result
	}

	for _, sub := range subs {
		resp, err := d.sender.Send(ctx, body, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256DH,
				Auth:   sub.Auth,
			},
		}, d.options)
		if err != nil {
			log.Printf("webpush send to %s failed: %v", sub.Endpoint, err)
			result.add(sub.Endpoint, OutcomeTransient, err.Error())
			continue
		}
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusNotFound, http.StatusGone:
			result.add(sub.Endpoint, OutcomeUnregistered, resp.Status)
		default:
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				result.add(sub.Endpoint, OutcomeOK, "")
			} else {
				result.add(sub.Endpoint, OutcomeTransient, resp.Status)
			}
		}
	}
	return result
}

func endpoints(subs []model.PushSubscription) []string {
	out := make([]string, len(subs))
	for i, s := range subs {
		out[i] = s.Endpoint
	}
	return out
}
