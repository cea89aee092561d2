package notice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"noticehub/internal/app/user"
	"noticehub/internal/pkg/errs"
)

// MaxBodyBytes is the largest accepted notice body.
const MaxBodyBytes = 5000

// UserLookup resolves participants by id.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*user.User, error)
}

// Store validates and records notices.
type Store struct {
	notices Repository
	users   UserLookup
}

// NewStore returns a Store backed by the given repositories.
func NewStore(notices Repository, users UserLookup) *Store {
	return &Store{notices: notices, users: users}
}

// Create validates and persists a notice. Validation failures are *errs.CustomError of
// kind validation: a blank or oversize body (field "body"), or a participant id that does
// not resolve to a user (field "sender_id" or "recipient_id").
func (s *Store) Create(ctx context.Context, senderID, recipientID int64, body string) (*Notice, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errs.NewError(errs.ErrNoticeBodyEmpty)
	}
	if len(body) > MaxBodyBytes {
		return nil, errs.NewError(errs.ErrNoticeBodyTooLong, MaxBodyBytes)
	}

	if err := s.requireUser(ctx, senderID, "Sender", "sender_id"); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, recipientID, "Recipient", "recipient_id"); err != nil {
		return nil, err
	}

	n, err := s.notices.CreateNotice(ctx, senderID, recipientID, body)
	if err != nil {
		if errors.Is(err, ErrParticipantMissing) {
			return nil, s.vanishedParticipant(ctx, senderID, recipientID, err)
		}
		return nil, fmt.Errorf("create notice: %w", err)
	}

	return n, nil
}

// ListForRecipient returns the notices addressed to userID, newest first.
// Each call runs a fresh query.
func (s *Store) ListForRecipient(ctx context.Context, userID int64) ([]Notice, error) {
	notices, err := s.notices.ListNoticesByRecipient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notices for recipient %d: %w", userID, err)
	}
	if notices == nil {
		notices = []Notice{}
	}
	return notices, nil
}

// vanishedParticipant names whichever participant was deleted between validation and
// insert. When both resolve again the recipient is blamed.
func (s *Store) vanishedParticipant(ctx context.Context, senderID, recipientID int64, cause error) error {
	err := s.requireUser(ctx, senderID, "Sender", "sender_id")
	if err == nil {
		err = s.requireUser(ctx, recipientID, "Recipient", "recipient_id")
	}
	if err == nil {
		err = errs.NewError(errs.ErrUnknownParticipant, "Recipient").WithField("recipient_id")
	}

	var ce *errs.CustomError
	if errors.As(err, &ce) {
		return ce.Wrap(cause)
	}
	return err
}

func (s *Store) requireUser(ctx context.Context, id int64, label, field string) error {
	if id <= 0 {
		return errs.NewError(errs.ErrUnknownParticipant, label).WithField(field)
	}

	if _, err := s.users.GetUserByID(ctx, id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return errs.NewError(errs.ErrUnknownParticipant, label).WithField(field)
		}
		return fmt.Errorf("lookup %s: %w", field, err)
	}

	return nil
}
