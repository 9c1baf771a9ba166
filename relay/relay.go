// Package relay implements the presence-tracked direct-messaging core:
// an in-memory registry of connected users, a dispatcher that persists a
// message and then best-effort forwards it to the recipient's live
// connection, and the connect/disconnect lifecycle glue between them.
//
// Persistence is the hard requirement here; live delivery is advisory. A
// message is never pushed to a connection before its store write has
// completed, and a failed push never rolls the write back.
package relay

import (
	"context"
	"time"
)

// Conn is an opaque handle to a live client connection. Implementations must
// be safe for concurrent use; Send must not block the caller indefinitely.
type Conn interface {
	Send(event Event) error
}

// Event is the payload forwarded to a recipient's connection.
type Event struct {
	Event     string    `json:"event"`
	SenderID  string    `json:"sender_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// EventReceiveMessage tags outbound message events on the wire.
const EventReceiveMessage = "receiveMessage"

// MessageStore is the durable system of record for conversations. The
// dispatcher never reads it back; append is the only operation it needs.
type MessageStore interface {
	AppendMessage(ctx context.Context, senderID, recipientID, content string) (messageID string, err error)
}
