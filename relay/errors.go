package relay

import "errors"

var (
	// ErrInvalidRequest is returned when sender, recipient or body is
	// missing. Nothing is persisted or forwarded in that case.
	ErrInvalidRequest = errors.New("relay: missing sender, recipient or message body")

	// ErrStoreUnavailable wraps a failed persistence write. The dispatch is
	// aborted and no delivery is attempted.
	ErrStoreUnavailable = errors.New("relay: message store unavailable")

	// ErrPersistenceTimeout is returned when the store write outlives the
	// configured dispatch timeout.
	ErrPersistenceTimeout = errors.New("relay: message store write timed out")
)
