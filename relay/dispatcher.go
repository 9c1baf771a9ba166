package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultDispatchTimeout bounds the persistence write of a single dispatch.
const DefaultDispatchTimeout = 5 * time.Second

// Receipt reports what a successful dispatch did. Delivered is false when
// the recipient had no live connection or the push failed; the message is
// durably stored either way.
type Receipt struct {
	MessageID string
	Delivered bool
}

// Dispatcher persists a message and then forwards it to the recipient if
// they are online. Persistence always happens before any forward attempt.
type Dispatcher struct {
	store    MessageStore
	registry *Registry
	timeout  time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewDispatcher(store MessageStore, registry *Registry, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &Dispatcher{
		store:    store,
		registry: registry,
		timeout:  timeout,
		log:      log,
		now:      time.Now,
	}
}

// Dispatch validates, persists, then best-effort forwards one message.
//
// A persistence failure aborts the dispatch: the error is returned and no
// forward happens. A forward failure is logged and swallowed because the
// store remains the system of record for later retrieval.
func (d *Dispatcher) Dispatch(ctx context.Context, senderID, recipientID, body string) (Receipt, error) {
	if senderID == "" || recipientID == "" || body == "" {
		return Receipt{}, ErrInvalidRequest
	}

	wctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	messageID, err := d.store.AppendMessage(wctx, senderID, recipientID, body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Receipt{}, ErrPersistenceTimeout
		}
		return Receipt{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	receipt := Receipt{MessageID: messageID}

	conn, ok := d.registry.Lookup(recipientID)
	if !ok {
		// Offline recipient is not an error; the caller may hand the
		// message to the push-notification collaborator.
		return receipt, nil
	}

	event := Event{
		Event:     EventReceiveMessage,
		SenderID:  senderID,
		Message:   body,
		Timestamp: d.now(),
	}
	if err := conn.Send(event); err != nil {
		d.log.Warn("live delivery failed",
			zap.String("recipient_id", recipientID),
			zap.Error(err))
		return receipt, nil
	}

	receipt.Delivered = true
	return receipt, nil
}
