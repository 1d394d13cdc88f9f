package push

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// fcmMulticastLimit is FCM's documented cap on tokens per multicast call.
const fcmMulticastLimit = 500

// fcmSender is the subset of the FCM messaging client the dispatcher uses.
type fcmSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMDispatcher delivers payloads to FCM (Android-oriented) tokens. The
// Firebase app and messaging client initialize lazily on first dispatch;
// a failed initialization is remembered and reported per-batch rather
// than panicking the caller.
type FCMDispatcher struct {
	credentialsFile string
	timeout         time.Duration

	once    sync.Once
	client  fcmSender
	initErr error
}

// NewFCMDispatcher creates a dispatcher for Firebase Cloud Messaging.
func NewFCMDispatcher(credentialsFile string, timeout time.Duration) *FCMDispatcher {
	return &FCMDispatcher{credentialsFile: credentialsFile, timeout: timeout}
}

func (d *FCMDispatcher) sender(ctx context.Context) (fcmSender, error) {
	d.once.Do(func() {
		if d.client != nil {
			return
		}
		app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(d.credentialsFile))
		if err != nil {
			d.initErr = fmt.Errorf("firebase app init: %w", err)
			return
		}
		client, err := app.Messaging(ctx)
		if err != nil {
			d.initErr = fmt.Errorf("firebase messaging init: %w", err)
			return
		}
		d.client = client
	})
	return d.client, d.initErr
}

// Dispatch sends one payload to every token in the batch, chunked to the
// provider's multicast limit, reporting per-token outcomes.
func (d *FCMDispatcher) Dispatch(ctx context.Context, tokens []string, payload Payload) BatchResult {
	var result BatchResult
	if len(tokens) == 0 {
		return result
	}

	client, err := d.sender(ctx)
	if err != nil {
		log.Printf("fcm dispatch unavailable: %v", err)
		result.addAll(tokens, OutcomeTransient, err.Error())
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	for start := 0; start < len(tokens); start += fcmMulticastLimit {
		end := start + fcmMulticastLimit
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := tokens[start:end]

		batch, err := client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: chunk,
			Notification: &messaging.Notification{
				Title: payload.Title,
				Body:  payload.Body,
			},
			Data: payload.Data,
		})
		if err != nil {
			log.Printf("fcm dispatch failed for %d tokens: %v", len(chunk), err)
			result.addAll(chunk, OutcomeTransient, err.Error())
			continue
		}

		for i, resp := range batch.Responses {
			token := chunk[i]
			switch {
			case resp.Success:
				result.add(token, OutcomeOK, "")
			case messaging.IsUnregistered(resp.Error):
				result.add(token, OutcomeUnregistered, resp.Error.Error())
			default:
				result.add(token, OutcomeTransient, resp.Error.Error())
			}
		}
	}
	return result
}
