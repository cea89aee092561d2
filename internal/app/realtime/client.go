package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"noticehub/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// clients only ever send small commands.
	maxMessageSize = 512

	sendQueueSize = 256

	// CloseCodeTokenExpired is the close code sent when the token used to connect lapses.
	CloseCodeTokenExpired = 4001
)

var (
	ErrClientClosed  = errors.New("client closed")
	ErrSendQueueFull = errors.New("client send queue full")
)

const (
	commandSubscribe   = "subscribe"
	commandUnsubscribe = "unsubscribe"
)

// Client is a WebSocket subscription to one user's notice channel.
type Client struct {
	id     string
	userID int64

	registry *Registry
	conn     *websocket.Conn

	// tokenExpiry is when the credential used to connect stops being valid.
	tokenExpiry time.Time

	// send queues encoded messages for WritePump. It is closed exactly once, under mu.
	send   chan []byte
	mu     sync.Mutex
	closed bool

	logger zerolog.Logger
}

// NewClient wraps an upgraded connection for userID. The client is not subscribed until Serve runs.
func NewClient(registry *Registry, wsConn *websocket.Conn, userID int64, tokenExpiry time.Time) *Client {
	id := uuid.NewString()

	return &Client{
		id:          id,
		userID:      userID,
		registry:    registry,
		conn:        wsConn,
		tokenExpiry: tokenExpiry,
		send:        make(chan []byte, sendQueueSize),
		logger: logx.Logger().With().
			Str("conn_id", id).
			Int64("user_id", userID).
			Logger(),
	}
}

// ID implements Conn.
func (c *Client) ID() string { return c.id }

// Send queues msg for delivery without blocking.
func (c *Client) Send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- msg:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close stops the write pump, which then closes the socket. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

// Serve subscribes the client, starts its write pump and blocks in the read pump
// until the connection ends.
func (c *Client) Serve() {
	c.registry.Register(c.userID, c)
	c.logger.Info().Time("token_expiry", c.tokenExpiry).Msg("Client subscribed")

	go c.WritePump()
	c.ReadPump()
}

// ReadPump reads client commands and keeps the pong deadline fresh.
// It unsubscribes the client when the connection ends.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.processCommand(messageBytes)
	}
}

func (c *Client) cleanupOnDisconnect() {
	c.registry.Unregister(c.userID, c)
	_ = c.Close()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}

	c.logger.Info().Msg("Client disconnected")
}

func (c *Client) processCommand(messageBytes []byte) {
	var inbound struct {
		Command string `json:"command"`
	}

	if err := json.Unmarshal(messageBytes, &inbound); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Command {
	case commandUnsubscribe:
		c.registry.Unregister(c.userID, c)
		c.logger.Info().Msg("Client unsubscribed")

	case commandSubscribe:
		c.registry.Register(c.userID, c)

	default:
		c.logger.Warn().Str("command", inbound.Command).Msg("Client sent unsupported command")
	}
}

// WritePump drains the send queue to the socket, pings on a timer and closes the
// socket with CloseCodeTokenExpired once the token lapses.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	expiry := time.NewTimer(time.Until(c.tokenExpiry))

	defer func() {
		ticker.Stop()
		expiry.Stop()
		_ = c.Close()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}

		case <-expiry.C:
			c.closeExpired()
			return
		}
	}
}

// writeQueuedMessage returns false once the pump should stop.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

func (c *Client) closeExpired() {
	c.logger.Info().
		Int("close_code", CloseCodeTokenExpired).
		Time("token_expiry", c.tokenExpiry).
		Msg("Token expired, closing connection.")

	c.registry.Unregister(c.userID, c)

	closeMessage := websocket.FormatCloseMessage(CloseCodeTokenExpired, "token expired")
	if err := c.conn.WriteControl(websocket.CloseMessage, closeMessage, time.Now().Add(writeWait)); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to send token expiry close message.")
	}
}
