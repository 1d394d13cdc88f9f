package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bitefeed-notify/config"
	"bitefeed-notify/internal/api"
	"bitefeed-notify/internal/db"
	"bitefeed-notify/internal/model"
	"bitefeed-notify/internal/notification"
	"bitefeed-notify/internal/push"
	"bitefeed-notify/internal/realtime"
	"bitefeed-notify/internal/store"
)

type recordingDispatcher struct {
	mu      sync.Mutex
	batches [][]string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, tokens []string, _ push.Payload) push.BatchResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = append(d.batches, append([]string{}, tokens...))

	var r push.BatchResult
	for _, token := range tokens {
		r.PerToken = append(r.PerToken, push.TokenOutcome{Token: token, Kind: push.OutcomeOK})
		r.SuccessCount++
	}
	return r
}

func (d *recordingDispatcher) calls() [][]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.batches
}

type testEnv struct {
	server   *httptest.Server
	store    store.Store
	notifier *notification.Notifier
	registry *realtime.Registry
	expo     *recordingDispatcher
	fcm      *recordingDispatcher
}

func setupEnv(t *testing.T, dsn string) *testEnv {
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(testDB))
	t.Cleanup(func() {
		sqlDB, _ := testDB.DB()
		sqlDB.Close()
	})

	st := store.NewGormStore(testDB)
	registry := realtime.NewRegistry(2 * time.Second)
	expo := &recordingDispatcher{}
	fcm := &recordingDispatcher{}
	notifier := notification.New(st, registry, nil, expo, fcm, nil, 2*time.Second)
	handler := api.NewHandler(st, notifier, registry, 4096)

	cfg := &config.ServerConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTLSeconds: 1,
	}
	server := httptest.NewServer(api.NewRouter(cfg, handler))
	t.Cleanup(server.Close)
	t.Cleanup(registry.Close)

	return &testEnv{
		server:   server,
		store:    st,
		notifier: notifier,
		registry: registry,
		expo:     expo,
		fcm:      fcm,
	}
}

func (e *testEnv) postJSON(t *testing.T, path, body string) *http.Response {
	resp, err := http.Post(e.server.URL+path, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) dialWS(t *testing.T, userID string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/api/ws?user_id=" + userID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type wsFrame struct {
	Type           string `json:"type"`
	NotificationID string `json:"notification_id"`
	ActorID        string `json:"actor_id"`
	ObjectID       string `json:"object_id"`
	Message        string `json:"message"`
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame wsFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

// waitForSessions blocks until the user's registered session count reaches
// want, since the ws handshake completing does not mean the server has
// registered the session yet.
func waitForSessions(t *testing.T, registry *realtime.Registry, userID string, want int) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if registry.SessionCount(userID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("user %s never reached %d sessions", userID, want)
}

// TestFanOutToOnlineRecipient drives one event through the whole stack: a
// recipient with two open sockets and two registered devices gets the
// record persisted, a frame on every socket, and one push per provider.
func TestFanOutToOnlineRecipient(t *testing.T) {
	env := setupEnv(t, "file:integration_online?mode=memory&cache=shared")
	ctx := context.Background()

	require.NoError(t, env.store.DB().Create(&model.User{ID: "alice", DisplayName: "Alice"}).Error)

	phone := env.dialWS(t, "bob")
	laptop := env.dialWS(t, "bob")
	waitForSessions(t, env.registry, "bob", 2)

	resp := env.postJSON(t, "/api/devices/tokens",
		`{"user_id":"bob","token":"ExponentPushToken[bob-iphone]","platform":"ios"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = env.postJSON(t, "/api/devices/tokens",
		`{"user_id":"bob","token":"bob-android-token","platform":"android"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.postJSON(t, "/api/notify",
		`{"type":"like","actor_id":"alice","recipient_id":"bob","object_id":"post-7"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		NotificationID string `json:"notification_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	// Both open sessions get the frame.
	for _, conn := range []*websocket.Conn{phone, laptop} {
		frame := readFrame(t, conn)
		assert.Equal(t, "like", frame.Type)
		assert.Equal(t, created.NotificationID, frame.NotificationID)
		assert.Equal(t, "alice", frame.ActorID)
		assert.Equal(t, "post-7", frame.ObjectID)
		assert.Equal(t, "Alice liked your post", frame.Message)
	}

	// The record is durable and unread.
	records, err := env.store.NotificationsForUser(ctx, "bob", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	count, err := env.store.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Each provider saw exactly its own half of the token split.
	env.notifier.Drain()
	assert.Equal(t, [][]string{{"ExponentPushToken[bob-iphone]"}}, env.expo.calls())
	assert.Equal(t, [][]string{{"bob-android-token"}}, env.fcm.calls())
}

// TestFanOutToOfflineRecipient verifies an event for a user with no open
// sessions and no devices still persists, and no provider is called.
func TestFanOutToOfflineRecipient(t *testing.T) {
	env := setupEnv(t, "file:integration_offline?mode=memory&cache=shared")

	resp := env.postJSON(t, "/api/notify",
		`{"type":"follow","actor_id":"alice","recipient_id":"ghost","message":"Alice started following you"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	env.notifier.Drain()
	assert.Empty(t, env.expo.calls())
	assert.Empty(t, env.fcm.calls())

	records, err := env.store.NotificationsForUser(context.Background(), "ghost", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].IsRead)
}

// TestTokenHandoffBetweenAccounts verifies a device token re-registered
// under a new account stops receiving the old account's pushes.
func TestTokenHandoffBetweenAccounts(t *testing.T) {
	env := setupEnv(t, "file:integration_handoff?mode=memory&cache=shared")

	resp := env.postJSON(t, "/api/devices/tokens",
		`{"user_id":"alice","token":"shared-device","platform":"android"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The device logs out of alice's account and into bob's.
	resp = env.postJSON(t, "/api/devices/tokens",
		`{"user_id":"bob","token":"shared-device","platform":"android"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.postJSON(t, "/api/notify",
		`{"type":"comment","actor_id":"carol","recipient_id":"alice","message":"Nice shot"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	env.notifier.Drain()
	assert.Empty(t, env.fcm.calls(), "alice no longer owns the device")

	resp = env.postJSON(t, "/api/notify",
		`{"type":"comment","actor_id":"carol","recipient_id":"bob","message":"Nice shot"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	env.notifier.Drain()
	assert.Equal(t, [][]string{{"shared-device"}}, env.fcm.calls())
}

// TestSocketDisconnectPrunesSession verifies a closed client eventually
// leaves the registry, so presence reflects reality.
func TestSocketDisconnectPrunesSession(t *testing.T) {
	env := setupEnv(t, "file:integration_disconnect?mode=memory&cache=shared")

	conn := env.dialWS(t, "dana")
	waitForSessions(t, env.registry, "dana", 1)

	conn.Close()
	waitForSessions(t, env.registry, "dana", 0)
}
