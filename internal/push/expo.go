package push

import (
	"context"
	"log"
	"sync"
	"time"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
)

// expoPublisher is the subset of the Expo client the dispatcher uses.
type expoPublisher interface {
	PublishMultiple(messages []expo.PushMessage) ([]expo.PushResponse, error)
}

// ExpoDispatcher delivers payloads to Expo-issued (iOS-oriented) tokens.
// The client is created lazily on first dispatch and reused for the
// process lifetime.
type ExpoDispatcher struct {
	accessToken string
	timeout     time.Duration

	once   sync.Once
	client expoPublisher
}

// NewExpoDispatcher creates a dispatcher for the Expo push service.
func NewExpoDispatcher(accessToken string, timeout time.Duration) *ExpoDispatcher {
	return &ExpoDispatcher{accessToken: accessToken, timeout: timeout}
}

func (d *ExpoDispatcher) publisher() expoPublisher {
	d.once.Do(func() {
		if d.client == nil {
			d.client = expo.NewPushClient(&expo.ClientConfig{
				AccessToken: d.accessToken,
			})
		}
	})
	return d.client
}

// Dispatch sends one payload to every token in the batch. One message is
// built per token so responses map back to tokens unambiguously even when
// the provider reorders or partially fails the batch.
func (d *ExpoDispatcher) Dispatch(ctx context.Context, tokens []string, payload Payload) BatchResult {
	var result BatchResult
	if len(tokens) == 0 {
		return result
	}

	messages := make([]expo.PushMessage, 0, len(tokens))
	valid := make([]string, 0, len(tokens))
	for _, t := range tokens {
		pushToken, err := expo.NewExponentPushToken(t)
		if err != nil {
			// Malformed for this provider; the shape check upstream
			// should have caught it, so treat the token as dead.
			result.add(t, OutcomeUnregistered, "not an Expo token")
			continue
		}
		messages = append(messages, expo.PushMessage{
			To:       []expo.ExponentPushToken{pushToken},
			Title:    payload.Title,
			Body:     payload.Body,
			Data:     payload.Data,
			Sound:    "default",
			Priority: expo.DefaultPriority,
		})
		valid = append(valid, t)
	}
	if len(valid) == 0 {
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	// The Expo client has no context plumbing, so the call runs in its
	// own goroutine and the deadline is enforced here.
	type published struct {
		responses []expo.PushResponse
		err       error
	}
	done := make(chan published, 1)
	go func() {
		responses, err := d.publisher().PublishMultiple(messages)
		done <- published{responses, err}
	}()

	select {
	case <-ctx.Done():
		result.addAll(valid, OutcomeTransient, "expo call timed out")
		return result
	case p := <-done:
		if p.err != nil {
			log.Printf("expo dispatch failed for %d tokens: %v", len(valid), p.err)
			result.addAll(valid, OutcomeTransient, p.err.Error())
			return result
		}
		for i, resp := range p.responses {
			token := valid[i]
			if resp.Status == expo.SuccessStatus {
				result.add(token, OutcomeOK, "")
				continue
			}
			if detail, ok := resp.Details["error"]; ok && detail == expo.ErrorDeviceNotRegistered {
				result.add(token, OutcomeUnregistered, resp.Message)
				continue
			}
			result.add(token, OutcomeTransient, resp.Message)
		}
		return result
	}
}
