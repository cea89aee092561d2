package notice_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticehub/internal/app/db/memdb"
	"noticehub/internal/app/notice"
	"noticehub/internal/app/user"
	"noticehub/internal/pkg/errs"
)

func seed(t *testing.T) (*memdb.DB, *user.User, *user.User) {
	t.Helper()
	d := memdb.New()
	u1, err := d.CreateUser(context.Background(), "u1@example.com", "h")
	require.NoError(t, err)
	u2, err := d.CreateUser(context.Background(), "u2@example.com", "h")
	require.NoError(t, err)
	return d, u1, u2
}

func TestCreate_ThenListedForRecipient(t *testing.T) {
	d, u1, u2 := seed(t)
	s := notice.NewStore(d, d)
	ctx := context.Background()

	before, err := s.ListForRecipient(ctx, u2.ID)
	require.NoError(t, err)
	assert.Empty(t, before)

	n, err := s.Create(ctx, u1.ID, u2.ID, "Hi")
	require.NoError(t, err)
	assert.NotZero(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())

	after, err := s.ListForRecipient(ctx, u2.ID)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, *n, after[0])

	sent, err := s.ListForRecipient(ctx, u1.ID)
	require.NoError(t, err)
	assert.Empty(t, sent)
}

func TestListForRecipient_MostRecentFirst(t *testing.T) {
	d, u1, u2 := seed(t)
	s := notice.NewStore(d, d)
	ctx := context.Background()

	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	d.SetClock(func() time.Time { return clock })

	for _, body := range []string{"a", "b", "c"} {
		_, err := s.Create(ctx, u1.ID, u2.ID, body)
		require.NoError(t, err)
		clock = clock.Add(time.Minute)
	}

	list, err := s.ListForRecipient(ctx, u2.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].Body)
	assert.Equal(t, "a", list[2].Body)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt))
	}
}

func TestCreate_Validation(t *testing.T) {
	d, u1, u2 := seed(t)
	s := notice.NewStore(d, d)

	cases := []struct {
		name      string
		sender    int64
		recipient int64
		body      string
		code      int
		field     string
	}{
		{"empty body", u1.ID, u2.ID, "", errs.ErrNoticeBodyEmpty, "body"},
		{"blank body", u1.ID, u2.ID, "  \n\t", errs.ErrNoticeBodyEmpty, "body"},
		{"long body", u1.ID, u2.ID, strings.Repeat("x", notice.MaxBodyBytes+1), errs.ErrNoticeBodyTooLong, "body"},
		{"unknown sender", 999, u2.ID, "Hi", errs.ErrUnknownParticipant, "sender_id"},
		{"unknown recipient", u1.ID, 999, "Hi", errs.ErrUnknownParticipant, "recipient_id"},
		{"zero recipient", u1.ID, 0, "Hi", errs.ErrUnknownParticipant, "recipient_id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), tc.sender, tc.recipient, tc.body)
			require.Error(t, err)

			var ce *errs.CustomError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tc.code, ce.Code)
			assert.Equal(t, errs.KindValidation, ce.Kind)
			assert.Equal(t, tc.field, ce.Field)
		})
	}

	list, err := s.ListForRecipient(context.Background(), u2.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// racingRepo deletes user gone just before the insert, as a concurrent account
// deletion would, and then reports the foreign key violation.
type racingRepo struct {
	notice.Repository
	db   *memdb.DB
	gone int64
}

func (r racingRepo) CreateNotice(ctx context.Context, _, _ int64, _ string) (*notice.Notice, error) {
	if err := r.db.DeleteUser(ctx, r.gone); err != nil {
		return nil, err
	}
	return nil, notice.ErrParticipantMissing
}

func TestCreate_ParticipantDeletedBeforeInsert(t *testing.T) {
	cases := []struct {
		name  string
		gone  func(sender, recipient *user.User) int64
		field string
	}{
		{"recipient", func(_, r *user.User) int64 { return r.ID }, "recipient_id"},
		{"sender", func(s, _ *user.User) int64 { return s.ID }, "sender_id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, u1, u2 := seed(t)
			s := notice.NewStore(racingRepo{Repository: d, db: d, gone: tc.gone(u1, u2)}, d)

			_, err := s.Create(context.Background(), u1.ID, u2.ID, "Hi")
			require.Error(t, err)

			var ce *errs.CustomError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, errs.ErrUnknownParticipant, ce.Code)
			assert.Equal(t, errs.KindValidation, ce.Kind)
			assert.Equal(t, tc.field, ce.Field)
			assert.ErrorIs(t, err, notice.ErrParticipantMissing)
		})
	}
}

type failingUsers struct{}

func (failingUsers) GetUserByID(context.Context, int64) (*user.User, error) {
	return nil, errors.New("connection reset")
}

func TestCreate_LookupFailureIsNotValidation(t *testing.T) {
	d, u1, u2 := seed(t)
	s := notice.NewStore(d, failingUsers{})

	_, err := s.Create(context.Background(), u1.ID, u2.ID, "Hi")
	require.Error(t, err)
	assert.Equal(t, errs.KindInternal, errs.KindOf(err))
}
