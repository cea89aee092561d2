/*
Package memdb is an in-process implementation of the user and notice repositories.

It backs STORAGE_DRIVER=memory for local runs and is the fixture store for tests.
Data lives only as long as the process.
*/
package memdb

import (
	"context"
	"sort"
	"sync"
	"time"

	"noticehub/internal/app/notice"
	"noticehub/internal/app/user"
)

// DB holds users and notices behind one mutex.
type DB struct {
	mu sync.RWMutex

	users      map[int64]user.User
	emailIndex map[string]int64
	notices    []notice.Notice

	nextUserID   int64
	nextNoticeID int64

	now func() time.Time
}

var (
	_ user.Repository   = (*DB)(nil)
	_ notice.Repository = (*DB)(nil)
)

// New returns an empty DB.
func New() *DB {
	return &DB{
		users:      make(map[int64]user.User),
		emailIndex: make(map[string]int64),
		now:        time.Now,
	}
}

// SetClock replaces the time source used for created_at.
func (d *DB) SetClock(now func() time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now = now
}

// CreateUser implements user.Repository.
func (d *DB) CreateUser(_ context.Context, email, passwordHash string) (*user.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.emailIndex[email]; ok {
		return nil, user.ErrEmailTaken
	}

	d.nextUserID++
	u := user.User{
		ID:           d.nextUserID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    d.now().UTC(),
	}
	d.users[u.ID] = u
	d.emailIndex[email] = u.ID

	return &u, nil
}

// GetUserByID implements user.Repository.
func (d *DB) GetUserByID(_ context.Context, id int64) (*user.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

// GetUserByEmail implements user.Repository.
func (d *DB) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.emailIndex[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	u := d.users[id]
	return &u, nil
}

// DeleteUser implements user.Repository. The user's notices, sent or received, go with it.
func (d *DB) DeleteUser(_ context.Context, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return user.ErrNotFound
	}
	delete(d.users, id)
	delete(d.emailIndex, u.Email)

	kept := d.notices[:0]
	for _, n := range d.notices {
		if n.SenderID != id && n.RecipientID != id {
			kept = append(kept, n)
		}
	}
	d.notices = kept

	return nil
}

// CreateNotice implements notice.Repository.
func (d *DB) CreateNotice(_ context.Context, senderID, recipientID int64, body string) (*notice.Notice, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[senderID]; !ok {
		return nil, notice.ErrParticipantMissing
	}
	if _, ok := d.users[recipientID]; !ok {
		return nil, notice.ErrParticipantMissing
	}

	d.nextNoticeID++
	n := notice.Notice{
		ID:          d.nextNoticeID,
		Body:        body,
		SenderID:    senderID,
		RecipientID: recipientID,
		CreatedAt:   d.now().UTC(),
	}
	d.notices = append(d.notices, n)

	return &n, nil
}

// ListNoticesByRecipient implements notice.Repository.
func (d *DB) ListNoticesByRecipient(_ context.Context, recipientID int64) ([]notice.Notice, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]notice.Notice, 0)
	for _, n := range d.notices {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}
