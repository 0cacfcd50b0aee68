package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/studyqr/api/internal/domain/note"
	"github.com/studyqr/api/internal/domain/user"
	"github.com/studyqr/api/internal/utils"
)

// NotesRepo mirrors the postgres notes store contract in memory. The
// transactional variants exist so the service layer can run against it
// unchanged; a single mutex plays the role of row locks.
type NotesRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]note.Note
	users  *UsersRepo // referential check on create; nil skips it
}

func NewNotesRepo(users *UsersRepo) *NotesRepo {
	r := &NotesRepo{
		nextID: 1,
		items:  make(map[int64]note.Note),
		users:  users,
	}

	if users != nil {
		users.notes = r
	}

	return r
}

// memTx satisfies pgx.Tx just enough for the service layer, which only
// ever calls Commit and Rollback on it.
type memTx struct {
	pgx.Tx
}

func (memTx) Commit(ctx context.Context) error   { return nil }
func (memTx) Rollback(ctx context.Context) error { return nil }

func (r *NotesRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return memTx{}, nil
}

func (r *NotesRepo) Create(ctx context.Context, req note.CreateNoteRequest, qrData string, createdAt time.Time) (note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.users != nil {
		if _, err := r.users.GetByID(ctx, req.UserID); err != nil {
			return note.Note{}, user.ErrNotFound
		}
	}

	n := note.Note{
		ID:         r.nextID,
		Content:    req.Content,
		Subject:    req.Subject,
		QRCodeData: qrData,
		UserID:     req.UserID,
		CreatedAt:  createdAt,
		Attachment: req.Attachment,
	}
	r.nextID++
	r.items[n.ID] = n

	return n, nil
}

func (r *NotesRepo) GetByID(ctx context.Context, id int64) (note.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.items[id]

	if !ok {
		return note.Note{}, note.ErrNotFound
	}

	return n, nil
}

func (r *NotesRepo) GetAttachment(ctx context.Context, id int64) (note.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.items[id]

	if !ok || !n.HasAttachment() {
		return note.Attachment{}, note.ErrNotFound
	}

	return *n.Attachment, nil
}

func (r *NotesRepo) sortedByUser(userID int64) []note.Note {
	out := make([]note.Note, 0)

	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}

func (r *NotesRepo) ListAll(ctx context.Context) ([]note.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]note.Note, 0, len(r.items))

	for _, n := range r.items {
		out = append(out, n)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

// deleteByUser removes every note owned by userID, the way the foreign
// key cascade does in postgres when a user row goes away.
func (r *NotesRepo) deleteByUser(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, n := range r.items {
		if n.UserID == userID {
			delete(r.items, id)
		}
	}
}

func (r *NotesRepo) ListByUser(ctx context.Context, userID int64) ([]note.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedByUser(userID), nil
}

func (r *NotesRepo) ListByUserCursor(
	ctx context.Context,
	userID int64,
	limit int,
	afterCreatedAt time.Time,
	afterID int64,
) ([]note.Note, *string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.sortedByUser(userID)
	out := make([]note.Note, 0, limit)

	for _, n := range all {
		if n.CreatedAt.Before(afterCreatedAt) {
			continue
		}
		if n.CreatedAt.Equal(afterCreatedAt) && n.ID <= afterID {
			continue
		}
		out = append(out, n)
	}

	if len(out) > limit {
		out = out[:limit]
		last := out[len(out)-1]
		cur, err := utils.EncodeNoteCursor(last.CreatedAt, last.ID)
		if err != nil {
			return nil, nil, false, err
		}
		return out, &cur, true, nil
	}

	return out, nil, false, nil
}

func (r *NotesRepo) UpdateContent(ctx context.Context, id int64, newContent string) (note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.updateContentLocked(id, newContent)
}

func (r *NotesRepo) updateContentLocked(id int64, newContent string) (note.Note, error) {
	n, ok := r.items[id]

	if !ok {
		return note.Note{}, note.ErrNotFound
	}

	n.Content = newContent
	r.items[id] = n

	return n, nil
}

func (r *NotesRepo) UpdateQr(ctx context.Context, id int64, qrData string) (note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.updateQrLocked(id, qrData)
}

func (r *NotesRepo) updateQrLocked(id int64, qrData string) (note.Note, error) {
	n, ok := r.items[id]

	if !ok {
		return note.Note{}, note.ErrNotFound
	}

	n.QRCodeData = qrData
	r.items[id] = n

	return n, nil
}

func (r *NotesRepo) Delete(ctx context.Context, id int64) (note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.deleteLocked(id)
}

func (r *NotesRepo) deleteLocked(id int64) (note.Note, error) {
	n, ok := r.items[id]

	if !ok {
		return note.Note{}, note.ErrNotFound
	}

	delete(r.items, id)

	return n, nil
}

func (r *NotesRepo) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (note.Note, error) {
	return r.GetByID(ctx, id)
}

func (r *NotesRepo) UpdateContentTx(ctx context.Context, tx pgx.Tx, id int64, newContent string) (note.Note, error) {
	return r.UpdateContent(ctx, id, newContent)
}

func (r *NotesRepo) UpdateQrTx(ctx context.Context, tx pgx.Tx, id int64, qrData string) (note.Note, error) {
	return r.UpdateQr(ctx, id, qrData)
}

func (r *NotesRepo) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) (note.Note, error) {
	return r.Delete(ctx, id)
}
