package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"noticehub/internal/pkg/logx"
)

const (
	channelPrefix  = "notices:user:"
	channelPattern = channelPrefix + "*"

	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// ChannelFor returns the pub/sub channel carrying userID's notices.
func ChannelFor(userID int64) string {
	return channelPrefix + strconv.FormatInt(userID, 10)
}

type envelope struct {
	UserID  int64           `json:"user_id"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBus fans broadcasts out through Redis so every node delivers to its own
// registry. Run must be running for messages published anywhere to reach local clients.
type RedisBus struct {
	client   redis.UniversalClient
	registry *Registry

	ready     chan struct{}
	readyOnce sync.Once

	logger zerolog.Logger
}

// NewRedisBus returns a bus delivering into registry.
func NewRedisBus(client redis.UniversalClient, registry *Registry) *RedisBus {
	return &RedisBus{
		client:   client,
		registry: registry,
		ready:    make(chan struct{}),
		logger:   logx.Component("redis_bus"),
	}
}

// Ready is closed once the first subscription is confirmed.
func (b *RedisBus) Ready() <-chan struct{} {
	return b.ready
}

// Broadcast publishes payload for userID to every node. It returns ErrNoSubscribers
// when no node is listening.
func (b *RedisBus) Broadcast(ctx context.Context, userID int64, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode broadcast payload: %w", err)
	}

	data, err := json.Marshal(envelope{UserID: userID, Payload: raw})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	receivers, err := b.client.Publish(ctx, ChannelFor(userID), data).Result()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", ChannelFor(userID), err)
	}
	if receivers == 0 {
		return ErrNoSubscribers
	}
	return nil
}

// Run subscribes to every user channel and delivers into the local registry until
// ctx is cancelled, resubscribing with exponential backoff when the connection drops.
func (b *RedisBus) Run(ctx context.Context) {
	backoff := minBackoff

	for ctx.Err() == nil {
		subscribed, err := b.listen(ctx)
		if ctx.Err() != nil {
			break
		}
		if subscribed {
			backoff = minBackoff
		}

		b.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("Redis subscriber interrupted")

		select {
		case <-ctx.Done():
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	b.logger.Info().Msg("Redis subscriber stopped")
}

// listen reports whether the subscription was confirmed before it failed.
func (b *RedisBus) listen(ctx context.Context) (bool, error) {
	pubsub := b.client.PSubscribe(ctx, channelPattern)
	defer pubsub.Close()

	// ReceiveMessage does not return on cancellation by itself; closing the
	// subscription unblocks the read.
	stop := context.AfterFunc(ctx, func() { _ = pubsub.Close() })
	defer stop()

	if _, err := pubsub.Receive(ctx); err != nil {
		return false, fmt.Errorf("psubscribe %s: %w", channelPattern, err)
	}

	b.readyOnce.Do(func() { close(b.ready) })
	b.logger.Info().Str("pattern", channelPattern).Msg("Redis subscriber started")

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return true, err
		}
		b.deliver(msg)
	}
}

func (b *RedisBus) deliver(msg *redis.Message) {
	var env envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		b.logger.Warn().Err(err).Str("channel", msg.Channel).Msg("Dropping undecodable envelope")
		return
	}

	if msg.Channel != ChannelFor(env.UserID) {
		b.logger.Warn().Str("channel", msg.Channel).Int64("user_id", env.UserID).Msg("Dropping envelope addressed to another channel")
		return
	}

	if _, err := b.registry.Broadcast(env.UserID, env.Payload); err != nil {
		b.logger.Error().Err(err).Int64("user_id", env.UserID).Msg("Local delivery failed")
	}
}
