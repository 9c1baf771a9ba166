package relay

import "go.uber.org/zap"

// Lifecycle binds and unbinds connections as they come and go. The user id
// is whatever the client announced at connect time; this layer does not
// authenticate it.
type Lifecycle struct {
	registry *Registry
	log      *zap.Logger
}

func NewLifecycle(registry *Registry, log *zap.Logger) *Lifecycle {
	return &Lifecycle{registry: registry, log: log}
}

// Connect registers the connection for userID.
func (l *Lifecycle) Connect(userID string, conn Conn) {
	if userID == "" {
		l.log.Warn("connect event without user id, ignoring")
		return
	}
	l.registry.Register(userID, conn)
	l.log.Info("user connected", zap.String("user_id", userID))
}

// Disconnect removes the connection from the registry if it is still the
// one registered.
func (l *Lifecycle) Disconnect(conn Conn) {
	l.registry.Unregister(conn)
	l.log.Debug("connection closed")
}
