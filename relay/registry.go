package relay

import "sync"

// Registry maps online user ids to their live connection. It holds at most
// one connection per user: a reconnect overwrites the previous entry
// (last writer wins), matching the single-device product behaviour.
//
// The registry is process-local and never persisted. After a restart every
// user is offline until they reconnect.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

// Register binds userID to conn, unconditionally replacing any existing
// entry. Collisions are not an error.
func (r *Registry) Register(userID string, conn Conn) {
	r.mu.Lock()
	r.conns[userID] = conn
	r.mu.Unlock()
}

// Unregister removes the entry holding exactly this handle. If the user
// already reconnected under a new handle, the stale disconnect is a no-op,
// so the newer registration survives out-of-order disconnect events.
func (r *Registry) Unregister(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, c := range r.conns {
		if c == conn {
			delete(r.conns, userID)
			return
		}
	}
}

// Lookup returns the live connection for userID. A miss means the user is
// offline; callers deliver later through other channels, it is not an error.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[userID]
	return conn, ok
}

// Online reports the number of currently registered users.
func (r *Registry) Online() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
