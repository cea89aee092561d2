/*
Package realtime keeps track of who is listening for notices and pushes messages to them.

Registry maps each user id to that user's live connections. Client is the WebSocket
implementation of a connection, and RedisBus carries broadcasts between server nodes.
*/
package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"noticehub/internal/pkg/logx"
)

// ErrNoSubscribers reports a broadcast that reached no connection.
var ErrNoSubscribers = errors.New("no subscribers")

// Conn is one live subscription. Send must not block.
type Conn interface {
	ID() string
	Send(msg []byte) error
	Close() error
}

// Registry is the per-user channel table. It is safe for concurrent use.
type Registry struct {
	// channels maps a user id to that user's connections, keyed by connection id.
	channels map[int64]map[string]Conn

	mu sync.RWMutex

	logger zerolog.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[int64]map[string]Conn),
		logger:   logx.Component("registry"),
	}
}

// Register subscribes conn to userID's channel. Registering the same conn twice is a no-op.
func (r *Registry) Register(userID int64, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.channels[userID]
	if !ok {
		conns = make(map[string]Conn)
		r.channels[userID] = conns
	}
	conns[conn.ID()] = conn

	r.logger.Debug().Int64("user_id", userID).Str("conn_id", conn.ID()).Int("subscribers", len(conns)).Msg("Connection registered")
}

// Unregister removes conn from userID's channel and reports whether it was there.
// The user's entry stays behind even when it becomes empty.
func (r *Registry) Unregister(userID int64, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.channels[userID]
	if !ok {
		return false
	}
	if _, ok := conns[conn.ID()]; !ok {
		return false
	}
	delete(conns, conn.ID())

	r.logger.Debug().Int64("user_id", userID).Str("conn_id", conn.ID()).Int("subscribers", len(conns)).Msg("Connection unregistered")
	return true
}

// Broadcast encodes payload as JSON once and hands it to every connection subscribed
// to userID at the time of the call. A connection that refuses the message is dropped
// and closed. It returns how many connections accepted the message; an error is
// returned only when payload cannot be encoded.
func (r *Registry) Broadcast(userID int64, payload any) (int, error) {
	msg, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode broadcast payload: %w", err)
	}

	r.mu.RLock()
	snapshot := make([]Conn, 0, len(r.channels[userID]))
	for _, conn := range r.channels[userID] {
		snapshot = append(snapshot, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range snapshot {
		if err := conn.Send(msg); err != nil {
			r.logger.Warn().Err(err).Int64("user_id", userID).Str("conn_id", conn.ID()).Msg("Dropping connection that refused a message")
			if r.Unregister(userID, conn) {
				_ = conn.Close()
			}
			continue
		}
		delivered++
	}

	return delivered, nil
}

// Subscribers returns how many connections userID currently has.
func (r *Registry) Subscribers(userID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[userID])
}

// Disconnect closes and forgets every connection of userID and returns how many there were.
func (r *Registry) Disconnect(userID int64) int {
	r.mu.Lock()
	conns := r.channels[userID]
	delete(r.channels, userID)
	r.mu.Unlock()

	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			r.logger.Warn().Err(err).Str("conn_id", conn.ID()).Msg("Close failed during disconnect")
		}
	}

	if len(conns) > 0 {
		r.logger.Info().Int64("user_id", userID).Int("closed", len(conns)).Msg("User disconnected")
	}
	return len(conns)
}

// CloseAll closes and forgets every connection.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	channels := r.channels
	r.channels = make(map[int64]map[string]Conn)
	r.mu.Unlock()

	closed := 0
	for _, conns := range channels {
		for _, conn := range conns {
			if err := conn.Close(); err != nil {
				r.logger.Warn().Err(err).Str("conn_id", conn.ID()).Msg("Close failed during shutdown")
			}
			closed++
		}
	}

	r.logger.Info().Int("closed", closed).Msg("Registry closed")
}
