package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyqr/api/internal/domain/note"
	"github.com/studyqr/api/internal/domain/user"
	"github.com/studyqr/api/internal/observability"
	"github.com/studyqr/api/internal/utils"
)

type NotesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewNotesRepo(pool *pgxpool.Pool, prom *observability.Prom) *NotesRepo {
	return &NotesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *NotesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *NotesRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.BeginTx(ctx, pgx.TxOptions{})
}

// Create inserts the note; the referenced user must exist (FK), otherwise
// user.ErrNotFound.
func (r *NotesRepo) Create(ctx context.Context, req note.CreateNoteRequest, qrData string, createdAt time.Time) (note.Note, error) {
	n := note.Note{
		Content:    req.Content,
		Subject:    req.Subject,
		QRCodeData: qrData,
		UserID:     req.UserID,
		CreatedAt:  createdAt,
		Attachment: req.Attachment,
	}

	var fileName *string
	var fileData []byte

	if req.Attachment != nil {
		fileName = &req.Attachment.FileName
		fileData = req.Attachment.Data
	}

	err := r.observe("notes.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO notes (content, subject, qr_code_data, user_id, created_at, file_name, file_data)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)
			 RETURNING id`,
			n.Content, n.Subject, n.QRCodeData, n.UserID, n.CreatedAt, fileName, fileData,
		).Scan(&n.ID)
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return note.Note{}, user.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}

const noteColumns = `id, content, subject, qr_code_data, user_id, created_at, file_name`

func scanNote(row pgx.Row) (note.Note, error) {
	var n note.Note
	var fileName *string

	err := row.Scan(&n.ID, &n.Content, &n.Subject, &n.QRCodeData, &n.UserID, &n.CreatedAt, &fileName)

	if err != nil {
		return note.Note{}, err
	}

	if fileName != nil {
		n.Attachment = &note.Attachment{FileName: *fileName}
	}

	return n, nil
}

func (r *NotesRepo) GetByID(ctx context.Context, id int64) (note.Note, error) {
	var n note.Note
	err := r.observe("notes.get_by_id", func() error {
		var e error
		n, e = scanNote(r.pool.QueryRow(ctx,
			`SELECT `+noteColumns+` FROM notes WHERE id = $1`, id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}

// GetAttachment loads the stored file for a note. Notes without a file
// report note.ErrNotFound as well: there is nothing to download.
func (r *NotesRepo) GetAttachment(ctx context.Context, id int64) (note.Attachment, error) {
	var fileName *string
	var fileData []byte

	err := r.observe("notes.get_attachment", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT file_name, file_data FROM notes WHERE id = $1`, id,
		).Scan(&fileName, &fileData)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Attachment{}, note.ErrNotFound
		}

		return note.Attachment{}, err
	}

	if fileName == nil {
		return note.Attachment{}, note.ErrNotFound
	}

	return note.Attachment{FileName: *fileName, Data: fileData}, nil
}

func (r *NotesRepo) ListAll(ctx context.Context) (notes []note.Note, err error) {
	var rows pgx.Rows

	err = r.observe("notes.list_all", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT `+noteColumns+`
			 FROM notes
			 ORDER BY created_at ASC, id ASC`,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	notes = make([]note.Note, 0)

	for rows.Next() {
		n, e := scanNote(rows)

		if e != nil {
			err = e
			return
		}
		notes = append(notes, n)
	}

	err = rows.Err()

	return
}

func (r *NotesRepo) ListByUser(ctx context.Context, userID int64) (notes []note.Note, err error) {
	var rows pgx.Rows

	err = r.observe("notes.list_by_user", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT `+noteColumns+`
			 FROM notes
			 WHERE user_id = $1
			 ORDER BY created_at ASC, id ASC`,
			userID,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	notes = make([]note.Note, 0)

	for rows.Next() {
		n, e := scanNote(rows)

		if e != nil {
			err = e
			return
		}
		notes = append(notes, n)
	}

	err = rows.Err()

	return
}

func (r *NotesRepo) ListByUserCursor(
	ctx context.Context,
	userID int64,
	limit int,
	afterCreatedAt time.Time,
	afterID int64,
) (items []note.Note, nextCursor *string, hasMore bool, err error) {
	op := "notes.list_by_user_cursor"

	q := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE user_id = $1
		  AND (created_at, id) > ($2, $3)
		ORDER BY created_at ASC, id ASC
		LIMIT $4
	`
	limitPlusOne := limit + 1

	var rows pgx.Rows
	err = r.observe(op, func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, q, userID, afterCreatedAt, afterID, limitPlusOne)
		return qerr
	})
	if err != nil {
		return nil, nil, false, err
	}
	defer rows.Close()

	out := make([]note.Note, 0, limit)

	for rows.Next() {
		n, scanErr := scanNote(rows)
		if scanErr != nil {
			return nil, nil, false, scanErr
		}
		out = append(out, n)
	}
	if rows.Err() != nil {
		return nil, nil, false, rows.Err()
	}

	if len(out) > limit {
		hasMore = true
		out = out[:limit]
		last := out[len(out)-1]
		cur, encErr := utils.EncodeNoteCursor(last.CreatedAt, last.ID)
		if encErr != nil {
			return nil, nil, false, encErr
		}
		nextCursor = &cur
	}

	return out, nextCursor, hasMore, nil
}

func (r *NotesRepo) UpdateContent(ctx context.Context, id int64, newContent string) (note.Note, error) {
	var n note.Note

	err := r.observe("notes.update_content", func() error {
		var e error
		n, e = scanNote(r.pool.QueryRow(ctx,
			`UPDATE notes
			 SET content = $2
			 WHERE id = $1
			 RETURNING `+noteColumns,
			id, newContent))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) UpdateQr(ctx context.Context, id int64, qrData string) (note.Note, error) {
	var n note.Note

	err := r.observe("notes.update_qr", func() error {
		var e error
		n, e = scanNote(r.pool.QueryRow(ctx,
			`UPDATE notes
			 SET qr_code_data = $2
			 WHERE id = $1
			 RETURNING `+noteColumns,
			id, qrData))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) Delete(ctx context.Context, id int64) (note.Note, error) {
	var n note.Note

	err := r.observe("notes.delete", func() error {
		var e error
		n, e = scanNote(r.pool.QueryRow(ctx,
			`DELETE FROM notes
			 WHERE id = $1
			 RETURNING `+noteColumns,
			id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}

// Transactional variants. Owned mutations lock the row first so the
// ownership check and the write cannot interleave with a concurrent
// update or delete.

func (r *NotesRepo) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (note.Note, error) {
	var n note.Note

	err := r.observe("notes.get_for_update", func() error {
		var e error
		n, e = scanNote(tx.QueryRow(ctx,
			`SELECT `+noteColumns+`
			 FROM notes
			 WHERE id = $1
			 FOR UPDATE`,
			id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) UpdateContentTx(ctx context.Context, tx pgx.Tx, id int64, newContent string) (note.Note, error) {
	var n note.Note

	err := r.observe("notes.update_content_tx", func() error {
		var e error
		n, e = scanNote(tx.QueryRow(ctx,
			`UPDATE notes
			 SET content = $2
			 WHERE id = $1
			 RETURNING `+noteColumns,
			id, newContent))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) UpdateQrTx(ctx context.Context, tx pgx.Tx, id int64, qrData string) (note.Note, error) {
	var n note.Note

	err := r.observe("notes.update_qr_tx", func() error {
		var e error
		n, e = scanNote(tx.QueryRow(ctx,
			`UPDATE notes
			 SET qr_code_data = $2
			 WHERE id = $1
			 RETURNING `+noteColumns,
			id, qrData))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) (note.Note, error) {
	var n note.Note

	err := r.observe("notes.delete_tx", func() error {
		var e error
		n, e = scanNote(tx.QueryRow(ctx,
			`DELETE FROM notes
			 WHERE id = $1
			 RETURNING `+noteColumns,
			id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}
