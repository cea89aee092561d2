package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"noticehub/internal/app/notice"
)

const createNotice = `INSERT INTO notices (sender_id, recipient_id, body)
VALUES ($1, $2, $3)
RETURNING id, body, sender_id, recipient_id, created_at`

// CreateNotice inserts a notice. A missing participant yields notice.ErrParticipantMissing.
func (q *Queries) CreateNotice(ctx context.Context, senderID, recipientID int64, body string) (*notice.Notice, error) {
	var n notice.Notice
	err := q.db.QueryRow(ctx, createNotice, senderID, recipientID, body).
		Scan(&n.ID, &n.Body, &n.SenderID, &n.RecipientID, &n.CreatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %w", notice.ErrParticipantMissing, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &n, nil
}

const listNoticesByRecipient = `SELECT id, body, sender_id, recipient_id, created_at
FROM notices
WHERE recipient_id = $1
ORDER BY created_at DESC, id DESC`

// ListNoticesByRecipient returns the recipient's notices, newest first.
func (q *Queries) ListNoticesByRecipient(ctx context.Context, recipientID int64) ([]notice.Notice, error) {
	rows, err := q.db.Query(ctx, listNoticesByRecipient, recipientID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	notices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (notice.Notice, error) {
		var n notice.Notice
		err := row.Scan(&n.ID, &n.Body, &n.SenderID, &n.RecipientID, &n.CreatedAt)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return notices, nil
}
