package push

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFCMSender struct {
	sendFunc func(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

func (f *fakeFCMSender) SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	return f.sendFunc(ctx, message)
}

func newTestFCMDispatcher(sender fcmSender) *FCMDispatcher {
	d := NewFCMDispatcher("", 2*time.Second)
	d.client = sender
	return d
}

func TestFCMDispatchEmptyBatch(t *testing.T) {
	called := false
	d := newTestFCMDispatcher(&fakeFCMSender{
		sendFunc: func(_ context.Context, _ *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
			called = true
			return &messaging.BatchResponse{}, nil
		},
	})

	result := d.Dispatch(context.Background(), nil, Payload{})

	assert.False(t, called, "empty batch must not reach the provider")
	assert.Empty(t, result.PerToken)
}

func TestFCMDispatchPerTokenOutcomes(t *testing.T) {
	d := newTestFCMDispatcher(&fakeFCMSender{
		sendFunc: func(_ context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
			require.Equal(t, []string{"token-a", "token-b"}, message.Tokens)
			require.NotNil(t, message.Notification)
			assert.Equal(t, "Order update", message.Notification.Title)
			return &messaging.BatchResponse{
				SuccessCount: 1,
				FailureCount: 1,
				Responses: []*messaging.SendResponse{
					{Success: true, MessageID: "m1"},
					{Success: false, Error: errors.New("internal error")},
				},
			}, nil
		},
	})

	result := d.Dispatch(context.Background(), []string{"token-a", "token-b"}, Payload{Title: "Order update"})

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	require.Len(t, result.PerToken, 2)
	assert.Equal(t, OutcomeOK, result.PerToken[0].Kind)
	assert.Equal(t, OutcomeTransient, result.PerToken[1].Kind)
	assert.Empty(t, result.Unregistered())
}

func TestFCMDispatchWholeCallFailure(t *testing.T) {
	d := newTestFCMDispatcher(&fakeFCMSender{
		sendFunc: func(_ context.Context, _ *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
			return nil, errors.New("deadline exceeded")
		},
	})

	result := d.Dispatch(context.Background(), []string{"token-a", "token-b"}, Payload{})

	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 2, result.FailureCount)
	for _, outcome := range result.PerToken {
		assert.Equal(t, OutcomeTransient, outcome.Kind)
	}
}

func TestFCMDispatchChunksLargeBatches(t *testing.T) {
	var chunkSizes []int
	d := newTestFCMDispatcher(&fakeFCMSender{
		sendFunc: func(_ context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
			chunkSizes = append(chunkSizes, len(message.Tokens))
			responses := make([]*messaging.SendResponse, len(message.Tokens))
			for i := range responses {
				responses[i] = &messaging.SendResponse{Success: true}
			}
			return &messaging.BatchResponse{
				SuccessCount: len(responses),
				Responses:    responses,
			}, nil
		},
	})

	tokens := make([]string, 1201)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("token-%04d", i)
	}

	result := d.Dispatch(context.Background(), tokens, Payload{})

	assert.Equal(t, []int{500, 500, 201}, chunkSizes)
	assert.Equal(t, 1201, result.SuccessCount)
	assert.Equal(t, 0, result.FailureCount)
}
