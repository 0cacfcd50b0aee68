package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyqr/api/internal/cache"
	"github.com/studyqr/api/internal/config"
	"github.com/studyqr/api/internal/domain/note"
	"github.com/studyqr/api/internal/domain/user"
	"github.com/studyqr/api/internal/http/middlewares"
	"github.com/studyqr/api/internal/service"
	"github.com/studyqr/api/internal/utils"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Notes interface {
	CreateNote(ctx context.Context, req note.CreateNoteRequest) (note.Note, error)
	GetNote(ctx context.Context, id int64) (note.Note, error)
	GetAttachment(ctx context.Context, id int64) (note.Attachment, error)
	ListNotes(ctx context.Context) ([]note.Note, error)
	ListNotesByUser(ctx context.Context, userID int64) ([]note.Note, error)
	ListNotesByUserCursor(ctx context.Context, userID int64, limit int, afterCreatedAt time.Time, afterID int64) ([]note.Note, *string, bool, error)
	UpdateNote(ctx context.Context, noteID int64, newContent string, requesterID int64) (note.Note, error)
	UpdateNoteQr(ctx context.Context, noteID int64, qrData string, requesterID int64) (note.Note, error)
	DeleteNote(ctx context.Context, noteID int64, requesterID int64) (note.Note, error)
}

type NotesHandler struct {
	svc   Notes
	cache cache.Store
}

func NewNotesHandler(svc Notes) *NotesHandler {
	return &NotesHandler{svc: svc}
}

func NewNotesHandlerWithCache(svc Notes, c cache.Store) *NotesHandler {
	return &NotesHandler{svc: svc, cache: c}
}

func noteCacheKey(id int64) string {
	return "note:" + strconv.FormatInt(id, 10)
}

// deletedNote is the tombstone a delete leaves under the note's cache key.
// Readers fill the cache with SetIfAbsent, so a read that raced the delete
// cannot overwrite the tombstone and resurrect the note. Ids come from a
// sequence and are never reused, so a tombstone can only ever mark a note
// that is gone for good.
var deletedNote = []byte("deleted")

func (h *NotesHandler) requester(ctx *gin.Context) (int64, bool) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok || id == 0 {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return 0, false
	}

	return id, true
}

// CreateNote accepts a multipart form: subject, content, and an optional
// file. The authenticated user owns the note.
func (h *NotesHandler) CreateNote(ctx *gin.Context) {
	userID, ok := h.requester(ctx)
	if !ok {
		return
	}

	content := ctx.PostForm("content")
	subject := ctx.PostForm("subject")

	req := note.CreateNoteRequest{
		Content: content,
		Subject: subject,
		UserID:  userID,
	}

	fileHeader, err := ctx.FormFile("file")

	if err == nil && fileHeader != nil {
		f, openErr := fileHeader.Open()

		if openErr != nil {
			RespondBadRequest(ctx, "Could not read uploaded file", nil)
			return
		}

		data, readErr := io.ReadAll(f)
		_ = f.Close()

		if readErr != nil {
			// MaxBytesReader surfaces oversized uploads here
			RespondBadRequest(ctx, "Could not read uploaded file", nil)
			return
		}

		req.Attachment = &note.Attachment{
			FileName: fileHeader.Filename,
			Data:     data,
		}
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	n, err := h.svc.CreateNote(cctx, req)

	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			RespondBadRequest(ctx, "Content is required.", nil)
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		default:
			RespondInternal(ctx, "Could not create note")
		}
		return
	}

	RespondData(ctx, http.StatusCreated, n)
}

// GetNoteById is the public read path behind a scanned QR link, so it
// carries no auth. Hot reads come out of the cache.
func (h *NotesHandler) GetNoteById(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if h.cache != nil {
		if b, hit := h.cache.Get(cctx, noteCacheKey(id)); hit {
			if bytes.Equal(b, deletedNote) {
				RespondNotFound(ctx, "Note not found")
				return
			}

			var n note.Note
			if json.Unmarshal(b, &n) == nil {
				RespondCacheable(ctx, http.StatusOK, gin.H{"success": true, "data": n})
				return
			}
		}
	}

	n, err := h.svc.GetNote(cctx, id)

	if err != nil {
		if errors.Is(err, note.ErrNotFound) {
			RespondNotFound(ctx, "Note not found")
			return
		}

		RespondInternal(ctx, "Could not fetch note")
		return
	}

	if h.cache != nil {
		if b, mErr := json.Marshal(n); mErr == nil {
			h.cache.SetIfAbsent(cctx, noteCacheKey(id), b)
		}
	}

	RespondCacheable(ctx, http.StatusOK, gin.H{"success": true, "data": n})
}

// DownloadAttachment streams the stored file under its original name.
func (h *NotesHandler) DownloadAttachment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	att, err := h.svc.GetAttachment(cctx, id)

	if err != nil {
		if errors.Is(err, note.ErrNotFound) {
			RespondNotFound(ctx, "Note has no attachment")
			return
		}

		RespondInternal(ctx, "Could not download attachment")
		return
	}

	ctx.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": att.FileName}))
	ctx.Data(http.StatusOK, "application/octet-stream", att.Data)
}

func (h *NotesHandler) ListNotes(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, err := h.svc.ListNotes(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list notes")
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *NotesHandler) ListNotesByUser(ctx *gin.Context) {
	userID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	limit := defaultListLimit

	if raw := ctx.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)

		if err != nil || v <= 0 {
			RespondBadRequest(ctx, "limit must be a positive integer", nil)
			return
		}

		if v > maxListLimit {
			v = maxListLimit
		}

		limit = v
	}

	// first page starts before every (created_at, id) pair
	afterCreatedAt := time.Unix(0, 0).UTC()
	afterID := int64(0)

	if raw := ctx.Query("cursor"); raw != "" {
		c, err := utils.DecodeNoteCursor(raw)

		if err != nil {
			RespondBadRequest(ctx, "invalid cursor", nil)
			return
		}

		afterCreatedAt = c.CreatedAt
		afterID = c.ID
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, nextCursor, hasMore, err := h.svc.ListNotesByUserCursor(cctx, userID, limit, afterCreatedAt, afterID)

	if err != nil {
		RespondInternal(ctx, "Could not list notes")
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{
		"items":      items,
		"count":      len(items),
		"nextCursor": nextCursor,
		"hasMore":    hasMore,
	})
}

func (h *NotesHandler) UpdateNote(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	requesterID, ok := h.requester(ctx)
	if !ok {
		return
	}

	var req note.UpdateContentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	n, err := h.svc.UpdateNote(cctx, id, req.Content, requesterID)

	if err != nil {
		h.respondNoteMutationError(ctx, err, "Could not update note")
		return
	}

	h.invalidate(cctx, id)

	RespondData(ctx, http.StatusOK, n)
}

func (h *NotesHandler) UpdateNoteQr(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	requesterID, ok := h.requester(ctx)
	if !ok {
		return
	}

	var req note.UpdateQrRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	n, err := h.svc.UpdateNoteQr(cctx, id, req.QRCodeData, requesterID)

	if err != nil {
		h.respondNoteMutationError(ctx, err, "Could not update note link")
		return
	}

	h.invalidate(cctx, id)

	RespondData(ctx, http.StatusOK, n)
}

func (h *NotesHandler) DeleteNote(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	requesterID, ok := h.requester(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	n, err := h.svc.DeleteNote(cctx, id, requesterID)

	if err != nil {
		h.respondNoteMutationError(ctx, err, "Could not delete note")
		return
	}

	// Tombstone instead of a plain eviction so a read that loaded the note
	// just before the delete cannot write it back and serve it again.
	if h.cache != nil {
		h.cache.Set(cctx, noteCacheKey(id), deletedNote)
	}

	// deleted snapshot back for confirmation
	RespondData(ctx, http.StatusOK, n)
}

func (h *NotesHandler) respondNoteMutationError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, note.ErrNotFound):
		RespondNotFound(ctx, "Note not found")
	case errors.Is(err, note.ErrForbidden):
		RespondForbidden(ctx, "You do not own this note")
	case errors.Is(err, service.ErrInvalidInput):
		RespondBadRequest(ctx, "Content is required.", nil)
	default:
		RespondInternal(ctx, fallback)
	}
}

func (h *NotesHandler) invalidate(ctx context.Context, id int64) {
	if h.cache != nil {
		h.cache.Delete(ctx, noteCacheKey(id))
	}
}
