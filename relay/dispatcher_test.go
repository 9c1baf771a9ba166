package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type storedMessage struct {
	senderID    string
	recipientID string
	content     string
}

type fakeStore struct {
	messages []storedMessage
	err      error
	delay    time.Duration
}

func (s *fakeStore) AppendMessage(ctx context.Context, senderID, recipientID, content string) (string, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return "", s.err
	}
	s.messages = append(s.messages, storedMessage{senderID, recipientID, content})
	return "msg-1", nil
}

type recordingConn struct {
	events []Event
	err    error
}

func (c *recordingConn) Send(e Event) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, e)
	return nil
}

func newTestDispatcher(store *fakeStore, registry *Registry) *Dispatcher {
	return NewDispatcher(store, registry, time.Second, zap.NewNop())
}

func TestDispatchRejectsMissingFields(t *testing.T) {
	store := &fakeStore{}
	d := newTestDispatcher(store, NewRegistry())

	for _, tc := range []struct{ sender, recipient, body string }{
		{"", "b", "hi"},
		{"a", "", "hi"},
		{"a", "b", ""},
	} {
		_, err := d.Dispatch(context.Background(), tc.sender, tc.recipient, tc.body)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
	// Rejected before any I/O.
	assert.Empty(t, store.messages)
}

func TestDispatchPersistsBeforeForward(t *testing.T) {
	store := &fakeStore{}
	registry := NewRegistry()
	conn := &recordingConn{}
	registry.Register("bob", conn)

	d := newTestDispatcher(store, registry)
	receipt, err := d.Dispatch(context.Background(), "alice", "bob", "hello")

	require.NoError(t, err)
	assert.Equal(t, "msg-1", receipt.MessageID)
	assert.True(t, receipt.Delivered)

	require.Len(t, store.messages, 1)
	assert.Equal(t, storedMessage{"alice", "bob", "hello"}, store.messages[0])

	require.Len(t, conn.events, 1)
	assert.Equal(t, EventReceiveMessage, conn.events[0].Event)
	assert.Equal(t, "alice", conn.events[0].SenderID)
	assert.Equal(t, "hello", conn.events[0].Message)
	assert.False(t, conn.events[0].Timestamp.IsZero())
}

func TestDispatchOfflineRecipientStillPersists(t *testing.T) {
	store := &fakeStore{}
	d := newTestDispatcher(store, NewRegistry())

	receipt, err := d.Dispatch(context.Background(), "alice", "bob", "hello")

	require.NoError(t, err)
	assert.False(t, receipt.Delivered)
	require.Len(t, store.messages, 1)
	assert.Equal(t, "hello", store.messages[0].content)
}

func TestDispatchStoreFailureAbortsDelivery(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	registry := NewRegistry()
	conn := &recordingConn{}
	registry.Register("bob", conn)

	d := newTestDispatcher(store, registry)
	_, err := d.Dispatch(context.Background(), "alice", "bob", "hello")

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	// No forward on persistence failure, even though bob is online.
	assert.Empty(t, conn.events)
}

func TestDispatchStoreTimeout(t *testing.T) {
	store := &fakeStore{delay: time.Second}
	d := NewDispatcher(store, NewRegistry(), 20*time.Millisecond, zap.NewNop())

	_, err := d.Dispatch(context.Background(), "alice", "bob", "hello")

	assert.ErrorIs(t, err, ErrPersistenceTimeout)
}

func TestDispatchForwardFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{}
	registry := NewRegistry()
	registry.Register("bob", &recordingConn{err: errors.New("broken pipe")})

	d := newTestDispatcher(store, registry)
	receipt, err := d.Dispatch(context.Background(), "alice", "bob", "hello")

	// Delivery failure does not affect the committed persistence.
	require.NoError(t, err)
	assert.False(t, receipt.Delivered)
	require.Len(t, store.messages, 1)
}

// Two quick sends to an online recipient arrive in send order: each
// dispatch awaits persistence before forwarding, and forwards run inline.
func TestDispatchPreservesSenderOrder(t *testing.T) {
	store := &fakeStore{}
	registry := NewRegistry()
	conn := &recordingConn{}
	registry.Register("bob", conn)

	d := newTestDispatcher(store, registry)
	_, err := d.Dispatch(context.Background(), "alice", "bob", "first")
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), "alice", "bob", "second")
	require.NoError(t, err)

	require.Len(t, conn.events, 2)
	assert.Equal(t, "first", conn.events[0].Message)
	assert.Equal(t, "second", conn.events[1].Message)

	require.Len(t, store.messages, 2)
	assert.Equal(t, "first", store.messages[0].content)
	assert.Equal(t, "second", store.messages[1].content)
}

// Connecting after a message was stored does not replay it; the persisted
// record is the only trace.
func TestNoOfflineReplayOnReconnect(t *testing.T) {
	store := &fakeStore{}
	registry := NewRegistry()
	d := newTestDispatcher(store, registry)

	_, err := d.Dispatch(context.Background(), "alice", "bob", "hello")
	require.NoError(t, err)

	conn := &recordingConn{}
	registry.Register("bob", conn)

	assert.Empty(t, conn.events)
	require.Len(t, store.messages, 1)
}
