package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyqr/api/internal/cache"
	"github.com/studyqr/api/internal/domain/note"
	"github.com/studyqr/api/internal/http/handlers"
	"github.com/studyqr/api/internal/http/middlewares"
	"github.com/studyqr/api/internal/service"
	"github.com/studyqr/api/internal/utils"
)

// Fake note service implementation of the handlers.Notes interface

type fakeNotesService struct {
	createFn     func(ctx context.Context, req note.CreateNoteRequest) (note.Note, error)
	getFn        func(ctx context.Context, id int64) (note.Note, error)
	attachmentFn func(ctx context.Context, id int64) (note.Attachment, error)
	listAllFn    func(ctx context.Context) ([]note.Note, error)
	listFn       func(ctx context.Context, userID int64) ([]note.Note, error)
	listCursorFn func(ctx context.Context, userID int64, limit int, afterCreatedAt time.Time, afterID int64) ([]note.Note, *string, bool, error)
	updateFn     func(ctx context.Context, noteID int64, newContent string, requesterID int64) (note.Note, error)
	updateQrFn   func(ctx context.Context, noteID int64, qrData string, requesterID int64) (note.Note, error)
	deleteFn     func(ctx context.Context, noteID int64, requesterID int64) (note.Note, error)
}

func (f *fakeNotesService) CreateNote(ctx context.Context, req note.CreateNoteRequest) (note.Note, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}

	return note.Note{}, nil
}

func (f *fakeNotesService) GetNote(ctx context.Context, id int64) (note.Note, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return note.Note{}, nil
}

func (f *fakeNotesService) GetAttachment(ctx context.Context, id int64) (note.Attachment, error) {
	if f.attachmentFn != nil {
		return f.attachmentFn(ctx, id)
	}

	return note.Attachment{}, nil
}

func (f *fakeNotesService) ListNotes(ctx context.Context) ([]note.Note, error) {
	if f.listAllFn != nil {
		return f.listAllFn(ctx)
	}

	return nil, nil
}

func (f *fakeNotesService) ListNotesByUser(ctx context.Context, userID int64) ([]note.Note, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}

	return nil, nil
}

func (f *fakeNotesService) ListNotesByUserCursor(
	ctx context.Context,
	userID int64,
	limit int,
	afterCreatedAt time.Time,
	afterID int64,
) ([]note.Note, *string, bool, error) {
	if f.listCursorFn != nil {
		return f.listCursorFn(ctx, userID, limit, afterCreatedAt, afterID)
	}

	return []note.Note{}, nil, false, nil
}

func (f *fakeNotesService) UpdateNote(ctx context.Context, noteID int64, newContent string, requesterID int64) (note.Note, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, noteID, newContent, requesterID)
	}

	return note.Note{}, nil
}

func (f *fakeNotesService) UpdateNoteQr(ctx context.Context, noteID int64, qrData string, requesterID int64) (note.Note, error) {
	if f.updateQrFn != nil {
		return f.updateQrFn(ctx, noteID, qrData, requesterID)
	}

	return note.Note{}, nil
}

func (f *fakeNotesService) DeleteNote(ctx context.Context, noteID int64, requesterID int64) (note.Note, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, noteID, requesterID)
	}

	return note.Note{}, nil
}

// The real token verifier with a known secret keeps the auth middleware in
// the loop without a database.

func authedRouter(method, path string, h gin.HandlerFunc) (*gin.Engine, string) {
	jwt := testJWT()
	token, _ := jwt.GenerateAccessToken(42, "alice@example.com", "Alice")

	r := gin.New()
	mw := middlewares.NewAuthMiddleware(jwt)
	r.Handle(method, path, mw.RequireAuth(), h)

	return r, token
}

func multipartNoteBody(t *testing.T, content, subject, fileName, fileData string) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	if err := w.WriteField("content", content); err != nil {
		t.Fatalf("write content field: %v", err)
	}

	if subject != "" {
		if err := w.WriteField("subject", subject); err != nil {
			t.Fatalf("write subject field: %v", err)
		}
	}

	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)

		if err != nil {
			t.Fatalf("create form file: %v", err)
		}

		if _, err := fw.Write([]byte(fileData)); err != nil {
			t.Fatalf("write file data: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	return buf, w.FormDataContentType()
}

func TestCreateNoteHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		content        string
		fileName       string
		withAuth       bool
		setUp          func(*fakeNotesService)
		wantStatusCode int
	}{
		{
			name:     "success",
			content:  "revise chapter 3",
			withAuth: true,
			setUp: func(f *fakeNotesService) {
				f.createFn = func(ctx context.Context, req note.CreateNoteRequest) (note.Note, error) {
					if req.UserID != 42 {
						t.Fatalf("expected owner 42, got %d", req.UserID)
					}
					return note.Note{ID: 1, Content: req.Content, Subject: req.Subject, UserID: req.UserID, CreatedAt: now}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:     "success_with_file",
			content:  "see attached",
			fileName: "notes.pdf",
			withAuth: true,
			setUp: func(f *fakeNotesService) {
				f.createFn = func(ctx context.Context, req note.CreateNoteRequest) (note.Note, error) {
					if req.Attachment == nil || req.Attachment.FileName != "notes.pdf" {
						t.Fatalf("expected attachment notes.pdf, got %+v", req.Attachment)
					}
					return note.Note{ID: 2, Content: req.Content, UserID: req.UserID, CreatedAt: now, Attachment: req.Attachment}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:     "empty_content",
			content:  "  ",
			withAuth: true,
			setUp: func(f *fakeNotesService) {
				f.createFn = func(ctx context.Context, req note.CreateNoteRequest) (note.Note, error) {
					return note.Note{}, service.ErrInvalidInput
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_token",
			content:        "revise chapter 3",
			withAuth:       false,
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeNotesService{}

			if tt.setUp != nil {
				tt.setUp(svc)
			}

			h := handlers.NewNotesHandler(svc)
			r, token := authedRouter(http.MethodPost, "/notes", h.CreateNote)

			body, contentType := multipartNoteBody(t, tt.content, "biology", tt.fileName, "%PDF-1.4")

			req := httptest.NewRequest(http.MethodPost, "/notes", body)
			req.Header.Set("Content-Type", contentType)

			if tt.withAuth {
				req.Header.Set("Authorization", "Bearer "+token)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestGetNoteByIdHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		target         string
		setUp          func(*fakeNotesService)
		wantStatusCode int
	}{
		{
			name:   "success",
			target: "/notes/1",
			setUp: func(f *fakeNotesService) {
				f.getFn = func(ctx context.Context, id int64) (note.Note, error) {
					return note.Note{ID: id, Content: "hello", UserID: 42, CreatedAt: now}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "not_found",
			target: "/notes/99",
			setUp: func(f *fakeNotesService) {
				f.getFn = func(ctx context.Context, id int64) (note.Note, error) {
					return note.Note{}, note.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "bad_id",
			target:         "/notes/abc",
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeNotesService{}

			if tt.setUp != nil {
				tt.setUp(svc)
			}

			h := handlers.NewNotesHandler(svc)
			r := setupRouter(http.MethodGet, "/notes/:id", h.GetNoteById)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestGetNoteETagRevalidation(t *testing.T) {
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	svc := &fakeNotesService{
		getFn: func(ctx context.Context, id int64) (note.Note, error) {
			return note.Note{ID: id, Content: "hello", UserID: 42, CreatedAt: fixed}, nil
		},
	}

	h := handlers.NewNotesHandler(svc)
	r := setupRouter(http.MethodGet, "/notes/:id", h.GetNoteById)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/notes/1", nil))

	if first.Code != http.StatusOK {
		t.Fatalf("first request: got status %d", first.Code)
	}

	etag := first.Header().Get("ETag")

	if etag == "" {
		t.Fatal("expected an ETag header")
	}

	req := httptest.NewRequest(http.MethodGet, "/notes/1", nil)
	req.Header.Set("If-None-Match", etag)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, req)

	if second.Code != http.StatusNotModified {
		t.Fatalf("revalidation: got status %d, want 304", second.Code)
	}
}

func TestGetNoteServesFromCache(t *testing.T) {
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	calls := 0

	svc := &fakeNotesService{
		getFn: func(ctx context.Context, id int64) (note.Note, error) {
			calls++
			return note.Note{ID: id, Content: "hello", UserID: 42, CreatedAt: fixed}, nil
		},
	}

	h := handlers.NewNotesHandlerWithCache(svc, cache.New(time.Minute))
	r := setupRouter(http.MethodGet, "/notes/:id", h.GetNoteById)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notes/1", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d", i, w.Code)
		}
	}

	if calls != 1 {
		t.Fatalf("expected 1 service call with warm cache, got %d", calls)
	}
}

// A delete must win over the cached copy even when a read loaded the note
// just before the row went away. The fake store keeps returning the note
// after the delete, standing in for that stale reader.
func TestDeleteNoteTombstonesCache(t *testing.T) {
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	svc := &fakeNotesService{
		getFn: func(ctx context.Context, id int64) (note.Note, error) {
			return note.Note{ID: id, Content: "hello", UserID: 42, CreatedAt: fixed}, nil
		},
		deleteFn: func(ctx context.Context, noteID int64, requesterID int64) (note.Note, error) {
			return note.Note{ID: noteID, UserID: requesterID}, nil
		},
	}

	h := handlers.NewNotesHandlerWithCache(svc, cache.New(time.Minute))

	jwt := testJWT()
	token, _ := jwt.GenerateAccessToken(42, "alice@example.com", "Alice")
	mw := middlewares.NewAuthMiddleware(jwt)

	r := gin.New()
	r.GET("/notes/:id", h.GetNoteById)
	r.DELETE("/notes/:id", mw.RequireAuth(), h.DeleteNote)

	warm := httptest.NewRecorder()
	r.ServeHTTP(warm, httptest.NewRequest(http.MethodGet, "/notes/1", nil))

	if warm.Code != http.StatusOK {
		t.Fatalf("warm read: got status %d", warm.Code)
	}

	del := httptest.NewRequest(http.MethodDelete, "/notes/1", nil)
	del.Header.Set("Authorization", "Bearer "+token)

	delRec := httptest.NewRecorder()
	r.ServeHTTP(delRec, del)

	if delRec.Code != http.StatusOK {
		t.Fatalf("delete: got status %d, body=%s", delRec.Code, delRec.Body.String())
	}

	for i := 0; i < 2; i++ {
		after := httptest.NewRecorder()
		r.ServeHTTP(after, httptest.NewRequest(http.MethodGet, "/notes/1", nil))

		if after.Code != http.StatusNotFound {
			t.Fatalf("read %d after delete: got status %d, want 404, body=%s", i, after.Code, after.Body.String())
		}
	}
}

func TestDownloadAttachmentHandler(t *testing.T) {
	svc := &fakeNotesService{
		attachmentFn: func(ctx context.Context, id int64) (note.Attachment, error) {
			if id == 1 {
				return note.Attachment{FileName: "notes.pdf", Data: []byte("%PDF-1.4")}, nil
			}
			return note.Attachment{}, note.ErrNotFound
		},
	}

	h := handlers.NewNotesHandler(svc)
	r := setupRouter(http.MethodGet, "/notes/:id/download", h.DownloadAttachment)

	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notes/1/download", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}

		if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "notes.pdf") {
			t.Fatalf("unexpected Content-Disposition %q", cd)
		}

		if w.Body.String() != "%PDF-1.4" {
			t.Fatalf("unexpected body %q", w.Body.String())
		}
	})

	t.Run("no_attachment", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notes/2/download", nil))

		if w.Code != http.StatusNotFound {
			t.Fatalf("got status %d, want 404", w.Code)
		}
	})
}

// File names are user input; quotes and separators must survive the
// Content-Disposition header intact instead of breaking its quoting.
func TestDownloadAttachmentFilenameEscaping(t *testing.T) {
	const fileName = `bio "week 3"; notes.pdf`

	svc := &fakeNotesService{
		attachmentFn: func(ctx context.Context, id int64) (note.Attachment, error) {
			return note.Attachment{FileName: fileName, Data: []byte("%PDF-1.4")}, nil
		},
	}

	h := handlers.NewNotesHandler(svc)
	r := setupRouter(http.MethodGet, "/notes/:id/download", h.DownloadAttachment)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notes/1/download", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))

	if err != nil {
		t.Fatalf("unparseable Content-Disposition %q: %v", w.Header().Get("Content-Disposition"), err)
	}

	if disposition != "attachment" {
		t.Fatalf("got disposition %q, want attachment", disposition)
	}

	if params["filename"] != fileName {
		t.Fatalf("filename mangled: got %q, want %q", params["filename"], fileName)
	}
}

func TestListNotesHandler(t *testing.T) {
	now := time.Now().UTC()

	svc := &fakeNotesService{
		listAllFn: func(ctx context.Context) ([]note.Note, error) {
			return []note.Note{
				{ID: 1, Content: "first", UserID: 42, CreatedAt: now.Add(-time.Minute)},
				{ID: 2, Content: "second", UserID: 7, CreatedAt: now},
			}, nil
		},
	}

	h := handlers.NewNotesHandler(svc)
	r := setupRouter(http.MethodGet, "/notes", h.ListNotes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notes", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if !bytes.Contains(w.Body.Bytes(), []byte(`"count":2`)) {
		t.Fatalf("expected count 2 in body: %s", w.Body.String())
	}
}

func TestListNotesByUserHandler(t *testing.T) {
	now := time.Now().UTC()

	// A real cursor the handler can decode.
	validCursor, err := utils.EncodeNoteCursor(now.Add(-time.Minute), 3)

	if err != nil {
		t.Fatalf("failed to build cursor: %v", err)
	}

	tests := []struct {
		name           string
		target         string
		setUp          func(*fakeNotesService)
		wantStatusCode int
	}{
		{
			name:   "first_page",
			target: "/notes/user/42",
			setUp: func(f *fakeNotesService) {
				f.listCursorFn = func(ctx context.Context, userID int64, limit int, afterCreatedAt time.Time, afterID int64) ([]note.Note, *string, bool, error) {
					if userID != 42 || limit != 20 {
						t.Fatalf("unexpected args userID=%d limit=%d", userID, limit)
					}
					return []note.Note{{ID: 1, UserID: 42, CreatedAt: now}}, nil, false, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "with_cursor_and_limit",
			target: "/notes/user/42?limit=2&cursor=" + validCursor,
			setUp: func(f *fakeNotesService) {
				f.listCursorFn = func(ctx context.Context, userID int64, limit int, afterCreatedAt time.Time, afterID int64) ([]note.Note, *string, bool, error) {
					if limit != 2 || afterID != 3 {
						t.Fatalf("cursor not applied: limit=%d afterID=%d", limit, afterID)
					}
					return []note.Note{}, nil, false, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid_cursor",
			target:         "/notes/user/42?cursor=%21%21not-base64",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "invalid_limit",
			target:         "/notes/user/42?limit=-5",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:   "clamped_limit",
			target: "/notes/user/42?limit=9999",
			setUp: func(f *fakeNotesService) {
				f.listCursorFn = func(ctx context.Context, userID int64, limit int, afterCreatedAt time.Time, afterID int64) ([]note.Note, *string, bool, error) {
					if limit != 100 {
						t.Fatalf("expected clamped limit 100, got %d", limit)
					}
					return []note.Note{}, nil, false, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeNotesService{}

			if tt.setUp != nil {
				tt.setUp(svc)
			}

			h := handlers.NewNotesHandler(svc)
			r := setupRouter(http.MethodGet, "/notes/user/:id", h.ListNotesByUser)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateNoteHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setUp          func(*fakeNotesService)
		wantStatusCode int
	}{
		{
			name: "owner_updates",
			body: `{"content": "final"}`,
			setUp: func(f *fakeNotesService) {
				f.updateFn = func(ctx context.Context, noteID int64, newContent string, requesterID int64) (note.Note, error) {
					if requesterID != 42 {
						t.Fatalf("expected requester 42, got %d", requesterID)
					}
					return note.Note{ID: noteID, Content: newContent, UserID: requesterID}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_owner",
			body: `{"content": "hijack"}`,
			setUp: func(f *fakeNotesService) {
				f.updateFn = func(ctx context.Context, noteID int64, newContent string, requesterID int64) (note.Note, error) {
					return note.Note{}, note.ErrForbidden
				}
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name: "missing_note",
			body: `{"content": "x"}`,
			setUp: func(f *fakeNotesService) {
				f.updateFn = func(ctx context.Context, noteID int64, newContent string, requesterID int64) (note.Note, error) {
					return note.Note{}, note.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "validation_error",
			body:           `{"content": ""}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeNotesService{}

			if tt.setUp != nil {
				tt.setUp(svc)
			}

			h := handlers.NewNotesHandler(svc)
			r, token := authedRouter(http.MethodPut, "/notes/:id", h.UpdateNote)

			req := httptest.NewRequest(http.MethodPut, "/notes/1", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateNoteQrHandler(t *testing.T) {
	svc := &fakeNotesService{
		updateQrFn: func(ctx context.Context, noteID int64, qrData string, requesterID int64) (note.Note, error) {
			if requesterID != 42 {
				return note.Note{}, note.ErrForbidden
			}
			return note.Note{ID: noteID, QRCodeData: qrData, UserID: requesterID}, nil
		},
	}

	h := handlers.NewNotesHandler(svc)
	r, token := authedRouter(http.MethodPut, "/notes/:id/qr", h.UpdateNoteQr)

	req := httptest.NewRequest(http.MethodPut, "/notes/1/qr", bytes.NewBufferString(`{"qrCodeData": "custom"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if !bytes.Contains(w.Body.Bytes(), []byte(`"qrCodeData":"custom"`)) {
		t.Fatalf("expected rewritten qr payload in body: %s", w.Body.String())
	}
}

func TestDeleteNoteHandler(t *testing.T) {
	tests := []struct {
		name           string
		setUp          func(*fakeNotesService)
		wantStatusCode int
	}{
		{
			name: "owner_deletes",
			setUp: func(f *fakeNotesService) {
				f.deleteFn = func(ctx context.Context, noteID int64, requesterID int64) (note.Note, error) {
					return note.Note{ID: noteID, UserID: requesterID}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_owner",
			setUp: func(f *fakeNotesService) {
				f.deleteFn = func(ctx context.Context, noteID int64, requesterID int64) (note.Note, error) {
					return note.Note{}, note.ErrForbidden
				}
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name: "service_error",
			setUp: func(f *fakeNotesService) {
				f.deleteFn = func(ctx context.Context, noteID int64, requesterID int64) (note.Note, error) {
					return note.Note{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeNotesService{}

			if tt.setUp != nil {
				tt.setUp(svc)
			}

			h := handlers.NewNotesHandler(svc)
			r, token := authedRouter(http.MethodDelete, "/notes/:id", h.DeleteNote)

			req := httptest.NewRequest(http.MethodDelete, "/notes/1", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
