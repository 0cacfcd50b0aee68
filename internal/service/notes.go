package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/studyqr/api/internal/domain/note"
	"github.com/studyqr/api/internal/utils"
)

// NoteStore is the record store contract for notes. Owned mutations run
// inside a transaction: the row is locked, the owner compared, and only
// then mutated, so a concurrent delete cannot slip between check and act.
type NoteStore interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	Create(ctx context.Context, req note.CreateNoteRequest, qrData string, createdAt time.Time) (note.Note, error)
	GetByID(ctx context.Context, id int64) (note.Note, error)
	GetAttachment(ctx context.Context, id int64) (note.Attachment, error)
	ListAll(ctx context.Context) ([]note.Note, error)
	ListByUser(ctx context.Context, userID int64) ([]note.Note, error)
	ListByUserCursor(ctx context.Context, userID int64, limit int, afterCreatedAt time.Time, afterID int64) ([]note.Note, *string, bool, error)
	UpdateQr(ctx context.Context, id int64, qrData string) (note.Note, error)
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (note.Note, error)
	UpdateContentTx(ctx context.Context, tx pgx.Tx, id int64, newContent string) (note.Note, error)
	UpdateQrTx(ctx context.Context, tx pgx.Tx, id int64, qrData string) (note.Note, error)
	DeleteTx(ctx context.Context, tx pgx.Tx, id int64) (note.Note, error)
}

type NoteService struct {
	store NoteStore
	links *utils.LinkBuilder
}

func NewNoteService(store NoteStore, links *utils.LinkBuilder) *NoteService {
	return &NoteService{
		store: store,
		links: links,
	}
}

// CreateNote validates input, stamps the record, and stores the shareable
// view link as the note's QR payload once the id is known.
func (s *NoteService) CreateNote(ctx context.Context, req note.CreateNoteRequest) (note.Note, error) {
	if strings.TrimSpace(req.Content) == "" {
		return note.Note{}, ErrInvalidInput
	}

	// attachment name and bytes travel as a unit
	if req.Attachment != nil && (req.Attachment.FileName == "" || len(req.Attachment.Data) == 0) {
		return note.Note{}, ErrInvalidInput
	}

	n, err := s.store.Create(ctx, req, "", time.Now().UTC())

	if err != nil {
		return note.Note{}, err
	}

	if s.links == nil {
		return n, nil
	}

	return s.store.UpdateQr(ctx, n.ID, s.links.NoteLink(n.ID))
}

func (s *NoteService) GetNote(ctx context.Context, id int64) (note.Note, error) {
	return s.store.GetByID(ctx, id)
}

func (s *NoteService) GetAttachment(ctx context.Context, id int64) (note.Attachment, error) {
	return s.store.GetAttachment(ctx, id)
}

func (s *NoteService) ListNotes(ctx context.Context) ([]note.Note, error) {
	return s.store.ListAll(ctx)
}

func (s *NoteService) ListNotesByUser(ctx context.Context, userID int64) ([]note.Note, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *NoteService) ListNotesByUserCursor(ctx context.Context, userID int64, limit int, afterCreatedAt time.Time, afterID int64) ([]note.Note, *string, bool, error) {
	return s.store.ListByUserCursor(ctx, userID, limit, afterCreatedAt, afterID)
}

// UpdateNote replaces the note content after an ownership check. The check
// and the write share one transaction with the row locked.
func (s *NoteService) UpdateNote(ctx context.Context, noteID int64, newContent string, requesterID int64) (note.Note, error) {
	if strings.TrimSpace(newContent) == "" {
		return note.Note{}, ErrInvalidInput
	}

	return s.mutateOwned(ctx, noteID, requesterID, func(tx pgx.Tx) (note.Note, error) {
		return s.store.UpdateContentTx(ctx, tx, noteID, newContent)
	})
}

// UpdateNoteQr replaces the QR payload. Only the note owner may rewrite it.
func (s *NoteService) UpdateNoteQr(ctx context.Context, noteID int64, qrData string, requesterID int64) (note.Note, error) {
	if qrData == "" {
		return note.Note{}, ErrInvalidInput
	}

	return s.mutateOwned(ctx, noteID, requesterID, func(tx pgx.Tx) (note.Note, error) {
		return s.store.UpdateQrTx(ctx, tx, noteID, qrData)
	})
}

// DeleteNote removes the note after the same ownership check and returns
// the deleted snapshot.
func (s *NoteService) DeleteNote(ctx context.Context, noteID int64, requesterID int64) (note.Note, error) {
	return s.mutateOwned(ctx, noteID, requesterID, func(tx pgx.Tx) (note.Note, error) {
		return s.store.DeleteTx(ctx, tx, noteID)
	})
}

func (s *NoteService) mutateOwned(ctx context.Context, noteID, requesterID int64, act func(pgx.Tx) (note.Note, error)) (note.Note, error) {
	tx, err := s.store.BeginTx(ctx)

	if err != nil {
		return note.Note{}, err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	current, err := s.store.GetForUpdateTx(ctx, tx, noteID)

	if err != nil {
		return note.Note{}, err
	}

	if current.UserID != requesterID {
		return note.Note{}, note.ErrForbidden
	}

	n, err := act(tx)

	if err != nil {
		return note.Note{}, err
	}

	err = tx.Commit(ctx)

	if err != nil {
		return note.Note{}, err
	}

	return n, nil
}
