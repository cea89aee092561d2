/*
Package relay pushes a stored notice to the live connections of the two users involved.

Relay.Perform is one delivery: the rendered notice to the recipient, then an
acknowledgement to the sender. Dispatcher runs Perform on a bounded worker pool so
request handlers never wait on delivery.
*/
package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"noticehub/internal/app/notice"
	"noticehub/internal/app/realtime"
	"noticehub/internal/pkg/logx"
)

// AckMessage is the acknowledgement pushed to a notice's sender.
const AckMessage = "Notice sent successfully"

// Notification is the message a recipient receives.
type Notification struct {
	Notification string `json:"notification"`
}

// Ack is the message a sender receives.
type Ack struct {
	Success string `json:"success"`
}

// Broadcaster delivers a payload to every connection subscribed to userID.
type Broadcaster interface {
	Broadcast(ctx context.Context, userID int64, payload any) error
}

// LocalBroadcaster delivers straight into this node's registry.
type LocalBroadcaster struct {
	Registry *realtime.Registry
}

// Broadcast implements Broadcaster. It returns realtime.ErrNoSubscribers when
// userID has no connection on this node.
func (b LocalBroadcaster) Broadcast(_ context.Context, userID int64, payload any) error {
	delivered, err := b.Registry.Broadcast(userID, payload)
	if err != nil {
		return err
	}
	if delivered == 0 {
		return realtime.ErrNoSubscribers
	}
	return nil
}

// Relay performs a single notice delivery.
type Relay struct {
	bus      Broadcaster
	users    notice.UserLookup
	renderer *Renderer
	logger   zerolog.Logger
}

// NewRelay returns a Relay that resolves sender names through users.
func NewRelay(bus Broadcaster, users notice.UserLookup) *Relay {
	return &Relay{
		bus:      bus,
		users:    users,
		renderer: NewRenderer(),
		logger:   logx.Component("relay"),
	}
}

// Perform sends the rendered notice to its recipient and then the acknowledgement to
// its sender. The acknowledgement is attempted even when the first step fails. The
// returned error joins every failure and is for logging only; there is nothing to retry.
// A recipient with no connection is reported as realtime.ErrNoSubscribers; a sender
// with none is not a failure.
func (r *Relay) Perform(ctx context.Context, n notice.Notice) error {
	var failures []error

	fragment, err := r.renderer.render(noticeView{
		ID:        n.ID,
		Sender:    r.senderName(ctx, n.SenderID),
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		failures = append(failures, fmt.Errorf("render notice %d: %w", n.ID, err))
	} else if err := r.bus.Broadcast(ctx, n.RecipientID, Notification{Notification: fragment}); err != nil {
		failures = append(failures, fmt.Errorf("notify recipient %d: %w", n.RecipientID, err))
	}

	err = r.bus.Broadcast(ctx, n.SenderID, Ack{Success: AckMessage})
	switch {
	case errors.Is(err, realtime.ErrNoSubscribers):
		r.logger.Debug().Int64("sender_id", n.SenderID).Int64("notice_id", n.ID).Msg("Sender not connected, acknowledgement skipped")
	case err != nil:
		failures = append(failures, fmt.Errorf("acknowledge sender %d: %w", n.SenderID, err))
	}

	return errors.Join(failures...)
}

func (r *Relay) senderName(ctx context.Context, senderID int64) string {
	u, err := r.users.GetUserByID(ctx, senderID)
	if err != nil {
		r.logger.Debug().Err(err).Int64("sender_id", senderID).Msg("Sender lookup failed, rendering by id")
		return fmt.Sprintf("user #%d", senderID)
	}
	return u.Email
}
