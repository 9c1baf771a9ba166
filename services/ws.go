package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"medical-app/logger"
	"medical-app/relay"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const sendBufferSize = 64

// OfflineNotifier hands a message that could not be delivered live to the
// push-notification collaborator. The relay core never calls this itself.
type OfflineNotifier interface {
	NotifyOffline(ctx context.Context, senderID, recipientID, message string)
}

// Inbound socket events, tagged JSON.
const (
	eventUserConnected = "userConnected"
	eventSendMessage   = "sendMessage"
)

type inboundEvent struct {
	Event       string `json:"event"`
	UserID      string `json:"user_id"`
	RecipientID string `json:"recipient_id"`
	Message     string `json:"message"`
}

// Client is one websocket connection. It satisfies relay.Conn: Send queues
// the event on a buffered channel drained by the write pump, so a slow
// client never blocks the dispatcher.
type Client struct {
	ConnectionID string

	conn   *websocket.Conn
	send   chan []byte
	closed chan struct{}
	once   sync.Once

	mu       sync.Mutex
	userID   string
	lastPong time.Time
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		ConnectionID: uuid.NewString(),
		conn:         conn,
		send:         make(chan []byte, sendBufferSize),
		closed:       make(chan struct{}),
		lastPong:     time.Now(),
	}
}

// Send implements relay.Conn. It is fire and forget: a full buffer or a
// closed connection surfaces as an error the dispatcher logs and swallows.
func (c *Client) Send(event relay.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	select {
	case <-c.closed:
		return errors.New("connection closed")
	case c.send <- payload:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

func (c *Client) boundUserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Client) bind(userID string) {
	c.mu.Lock()
	c.userID = userID
	c.mu.Unlock()
}

// WSService wires websocket connections to the relay core.
type WSService struct {
	lifecycle  *relay.Lifecycle
	dispatcher *relay.Dispatcher
	notifier   OfflineNotifier
	tokens     *TokenService

	pingInterval time.Duration
	pongTimeout  time.Duration
}

func NewWSService(lifecycle *relay.Lifecycle, dispatcher *relay.Dispatcher, notifier OfflineNotifier,
	tokens *TokenService, pingInterval, pongTimeout time.Duration) *WSService {
	return &WSService{
		lifecycle:    lifecycle,
		dispatcher:   dispatcher,
		notifier:     notifier,
		tokens:       tokens,
		pingInterval: pingInterval,
		pongTimeout:  pongTimeout,
	}
}

// HandleWebSocket upgrades the request and runs the connection until it
// drops. A valid ?token= binds the identity immediately; otherwise the
// client must announce itself with a userConnected event.
func (s *WSService) HandleWebSocket(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := newClient(conn)

	if token := ctx.Query("token"); token != "" {
		if claims, err := s.tokens.ValidateAccessToken(token); err == nil {
			client.bind(claims.UserID)
			s.lifecycle.Connect(claims.UserID, client)
		} else {
			logger.Log.Warn("websocket token rejected", zap.Error(err))
		}
	}

	go s.writePump(client)
	go s.readPump(client)
}

func (s *WSService) readPump(c *Client) {
	defer func() {
		s.lifecycle.Disconnect(c)
		c.close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if string(raw) == "pong" {
			c.mu.Lock()
			c.lastPong = time.Now()
			c.mu.Unlock()
			continue
		}

		var evt inboundEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			logger.Log.Debug("invalid socket payload", zap.ByteString("raw", raw))
			continue
		}

		switch evt.Event {
		case eventUserConnected:
			if evt.UserID == "" {
				logger.Log.Warn("userConnected without user_id")
				continue
			}
			c.bind(evt.UserID)
			s.lifecycle.Connect(evt.UserID, c)

		case eventSendMessage:
			s.handleSend(c, evt)

		default:
			logger.Log.Debug("unknown socket event", zap.String("event", evt.Event))
		}
	}
}

func (s *WSService) handleSend(c *Client, evt inboundEvent) {
	senderID := c.boundUserID()
	if senderID == "" {
		logger.Log.Warn("sendMessage from unbound connection",
			zap.String("connection_id", c.ConnectionID))
		return
	}

	receipt, err := s.dispatcher.Dispatch(context.Background(), senderID, evt.RecipientID, evt.Message)
	if err != nil {
		// The transport has no response leg; server-side logging is the
		// only error channel here.
		logger.Log.Error("dispatch failed",
			zap.String("sender_id", senderID),
			zap.String("recipient_id", evt.RecipientID),
			zap.Error(err))
		return
	}

	if !receipt.Delivered && s.notifier != nil {
		s.notifier.NotifyOffline(context.Background(), senderID, evt.RecipientID, evt.Message)
	}
}

func (s *WSService) writePump(c *Client) {
	ticker := time.NewTicker(s.pingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
				return
			}
			c.mu.Lock()
			timedOut := time.Since(c.lastPong) > s.pongTimeout
			c.mu.Unlock()
			if timedOut {
				logger.Log.Info("client heartbeat timeout",
					zap.String("connection_id", c.ConnectionID))
				return
			}
		}
	}
}
