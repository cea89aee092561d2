package relay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticehub/internal/app/db/memdb"
	"noticehub/internal/app/notice"
	"noticehub/internal/app/realtime"
)

type sent struct {
	userID  int64
	payload any
}

// recordingBus records broadcasts and fails those addressed to users in failFor.
type recordingBus struct {
	mu      sync.Mutex
	calls   []sent
	failFor map[int64]bool
}

func (b *recordingBus) Broadcast(_ context.Context, userID int64, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, sent{userID, payload})
	if b.failFor[userID] {
		return errors.New("bus unavailable")
	}
	return nil
}

type chanConn struct {
	id  string
	out chan []byte
}

func (c *chanConn) ID() string { return c.id }
func (c *chanConn) Send(msg []byte) error {
	c.out <- msg
	return nil
}
func (c *chanConn) Close() error { return nil }

func seedNotice(t *testing.T, body string) (*memdb.DB, notice.Notice) {
	t.Helper()
	d := memdb.New()
	ctx := context.Background()

	u1, err := d.CreateUser(ctx, "u1@example.com", "h")
	require.NoError(t, err)
	u2, err := d.CreateUser(ctx, "u2@example.com", "h")
	require.NoError(t, err)

	n, err := notice.NewStore(d, d).Create(ctx, u1.ID, u2.ID, body)
	require.NoError(t, err)
	return d, *n
}

func TestPerform_RecipientThenSender(t *testing.T) {
	d, n := seedNotice(t, "Hi")
	bus := &recordingBus{}

	require.NoError(t, NewRelay(bus, d).Perform(context.Background(), n))

	require.Len(t, bus.calls, 2)
	assert.Equal(t, n.RecipientID, bus.calls[0].userID)
	note, ok := bus.calls[0].payload.(Notification)
	require.True(t, ok)
	assert.Contains(t, note.Notification, "Hi")
	assert.Contains(t, note.Notification, "u1@example.com")

	assert.Equal(t, n.SenderID, bus.calls[1].userID)
	assert.Equal(t, Ack{Success: AckMessage}, bus.calls[1].payload)
}

func TestPerform_AckStillSentWhenRecipientFails(t *testing.T) {
	d, n := seedNotice(t, "Hi")
	bus := &recordingBus{failFor: map[int64]bool{n.RecipientID: true}}

	err := NewRelay(bus, d).Perform(context.Background(), n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notify recipient")

	require.Len(t, bus.calls, 2)
	assert.Equal(t, n.SenderID, bus.calls[1].userID)
}

func TestPerform_BothFailuresReported(t *testing.T) {
	d, n := seedNotice(t, "Hi")
	bus := &recordingBus{failFor: map[int64]bool{n.RecipientID: true, n.SenderID: true}}

	err := NewRelay(bus, d).Perform(context.Background(), n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notify recipient")
	assert.Contains(t, err.Error(), "acknowledge sender")
}

func TestPerform_EscapesBody(t *testing.T) {
	d, n := seedNotice(t, `<script>alert("x")</script>`)
	bus := &recordingBus{}

	require.NoError(t, NewRelay(bus, d).Perform(context.Background(), n))

	html := bus.calls[0].payload.(Notification).Notification
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestPerform_UnknownSenderFallsBackToID(t *testing.T) {
	d, n := seedNotice(t, "Hi")
	bus := &recordingBus{}

	orphan := n
	orphan.SenderID = 999
	require.NoError(t, NewRelay(bus, d).Perform(context.Background(), orphan))

	assert.Contains(t, bus.calls[0].payload.(Notification).Notification, "user #999")
}

func TestPerform_ThroughRegistry(t *testing.T) {
	d, n := seedNotice(t, "Hi")
	reg := realtime.NewRegistry()

	recipient := &chanConn{id: "r", out: make(chan []byte, 1)}
	sender := &chanConn{id: "s", out: make(chan []byte, 1)}
	reg.Register(n.RecipientID, recipient)
	reg.Register(n.SenderID, sender)

	require.NoError(t, NewRelay(LocalBroadcaster{Registry: reg}, d).Perform(context.Background(), n))

	var got map[string]string
	require.NoError(t, json.Unmarshal(<-recipient.out, &got))
	assert.Contains(t, got["notification"], "Hi")
	assert.NotContains(t, got, "success")

	got = nil
	require.NoError(t, json.Unmarshal(<-sender.out, &got))
	assert.Equal(t, map[string]string{"success": AckMessage}, got)
}

func TestPerform_RecipientNotConnected(t *testing.T) {
	d, n := seedNotice(t, "Hi")
	reg := realtime.NewRegistry()

	sender := &chanConn{id: "s", out: make(chan []byte, 1)}
	reg.Register(n.SenderID, sender)

	err := NewRelay(LocalBroadcaster{Registry: reg}, d).Perform(context.Background(), n)
	require.Error(t, err)
	assert.ErrorIs(t, err, realtime.ErrNoSubscribers)
	assert.True(t, onlyUnreached(err))

	var got map[string]string
	require.NoError(t, json.Unmarshal(<-sender.out, &got))
	assert.Equal(t, AckMessage, got["success"])
}

func TestPerform_NobodyConnected(t *testing.T) {
	d, n := seedNotice(t, "Hi")
	reg := realtime.NewRegistry()

	dispatcher := NewDispatcher(NewRelay(LocalBroadcaster{Registry: reg}, d), 1, 1, time.Second)
	dispatcher.Start()
	require.True(t, dispatcher.Enqueue(n))
	require.NoError(t, dispatcher.Shutdown(context.Background()))

	assert.Equal(t, Stats{Enqueued: 1, Unreached: 1}, dispatcher.Stats())
}

func TestPerform_SenderNotConnectedIsNotAFailure(t *testing.T) {
	d, n := seedNotice(t, "Hi")
	reg := realtime.NewRegistry()

	recipient := &chanConn{id: "r", out: make(chan []byte, 1)}
	reg.Register(n.RecipientID, recipient)

	require.NoError(t, NewRelay(LocalBroadcaster{Registry: reg}, d).Perform(context.Background(), n))
	assert.Len(t, recipient.out, 1)
}

func TestRenderer_Format(t *testing.T) {
	html, err := NewRenderer().render(noticeView{
		ID:        3,
		Sender:    "a@b.co",
		Body:      "Hi & bye",
		CreatedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Contains(t, html, `id="notice-3"`)
	assert.Contains(t, html, "Hi &amp; bye")
	assert.Contains(t, html, `datetime="2026-03-04T05:06:07Z"`)
}
