/*
Package notice records user-to-user notices and lists them per recipient.

A notice is immutable once stored. Storing it is the only step here; fanning it out to
live connections is the caller's follow-up once Create has returned successfully.
*/
package notice

import (
	"context"
	"errors"
	"time"
)

// ErrParticipantMissing is returned by repositories when an insert references a user
// that does not exist (for example, one deleted between validation and insert).
var ErrParticipantMissing = errors.New("notice participant does not exist")

// Notice is a short message from one user to another.
type Notice struct {
	ID          int64     `json:"id"`
	Body        string    `json:"body"`
	SenderID    int64     `json:"senderId"`
	RecipientID int64     `json:"recipientId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Repository persists notices.
type Repository interface {
	CreateNotice(ctx context.Context, senderID, recipientID int64, body string) (*Notice, error)

	// ListNoticesByRecipient returns the recipient's notices, newest first.
	ListNoticesByRecipient(ctx context.Context, recipientID int64) ([]Notice, error)
}
