// Package realtime tracks which users currently hold open WebSocket
// sessions and fans messages out to them.
package realtime

import (
	"log"
	"sync"
	"time"
)

// Conn is the subset of *websocket.Conn the registry uses. Abstracting it
// keeps the registry testable without a network.
type Conn interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v any) error
	Close() error
}

// Session is one live connection owned by the registry from Connect until
// Disconnect. A user may hold any number of concurrent sessions (multiple
// devices, multiple tabs).
type Session struct {
	userID    string
	conn      Conn
	createdAt time.Time

	// Serializes writes to the underlying connection; gorilla/websocket
	// does not allow concurrent writers.
	writeMu sync.Mutex
}

// UserID returns the owning user's id.
func (s *Session) UserID() string { return s.userID }

// CreatedAt returns when the session was registered.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Registry is the in-process map from user id to live sessions. It is
// shared mutable state touched by every request handler and every fan-out,
// so all map access happens under the lock. The lock is never held across
// a network write.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]map[*Session]struct{}

	writeTimeout time.Duration
}

// NewRegistry creates an empty registry. writeTimeout bounds each send so
// a slow or dead peer cannot stall fan-out; a write missing the deadline
// counts as a delivery failure and disconnects that session.
func NewRegistry(writeTimeout time.Duration) *Registry {
	return &Registry{
		sessions:     make(map[string]map[*Session]struct{}),
		writeTimeout: writeTimeout,
	}
}

// Connect registers a connection under the user's session set and returns
// the handle the caller must pass to Disconnect.
func (r *Registry) Connect(userID string, conn Conn) *Session {
	s := &Session{userID: userID, conn: conn, createdAt: time.Now()}

	r.mu.Lock()
	bucket, ok := r.sessions[userID]
	if !ok {
		bucket = make(map[*Session]struct{})
		r.sessions[userID] = bucket
	}
	bucket[s] = struct{}{}
	total := len(bucket)
	r.mu.Unlock()

	log.Printf("user %s connected (%d live sessions)", userID, total)
	return s
}

// Disconnect removes the session from its user's set and drops the user
// entry entirely once the set is empty. Disconnecting an absent session is
// a no-op, not an error, so self-healing callers can race client closes
// without coordination.
func (r *Registry) Disconnect(s *Session) {
	if s == nil {
		return
	}

	r.mu.Lock()
	bucket, ok := r.sessions[s.userID]
	if ok {
		if _, present := bucket[s]; present {
			delete(bucket, s)
			if len(bucket) == 0 {
				delete(r.sessions, s.userID)
			}
		} else {
			ok = false
		}
	}
	r.mu.Unlock()

	if ok {
		log.Printf("user %s disconnected", s.userID)
	}
}

// Send delivers message to every currently-open session for the user,
// best-effort and at-most-once per session. The session set is snapshotted
// under the read lock, then writes happen lock-free; a session that fails
// its write is treated as disconnected and pruned. Returns the number of
// sessions that accepted the message.
func (r *Registry) Send(userID string, message any) int {
	r.mu.RLock()
	bucket := r.sessions[userID]
	targets := make([]*Session, 0, len(bucket))
	for s := range bucket {
		targets = append(targets, s)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, s := range targets {
		if err := r.write(s, message); err != nil {
			log.Printf("write to user %s session failed, pruning: %v", userID, err)
			r.Disconnect(s)
			s.conn.Close()
			continue
		}
		delivered++
	}
	return delivered
}

func (r *Registry) write(s *Session, message any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(r.writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(message)
}

// SessionCount returns how many live sessions the user currently holds.
func (r *Registry) SessionCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[userID])
}

// Close tears down every session, used on server shutdown. Connections are
// closed outside the lock.
func (r *Registry) Close() {
	r.mu.Lock()
	var all []*Session
	for _, bucket := range r.sessions {
		for s := range bucket {
			all = append(all, s)
		}
	}
	r.sessions = make(map[string]map[*Session]struct{})
	r.mu.Unlock()

	for _, s := range all {
		s.conn.Close()
	}
}
