package integration__test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyqr/api/internal/config"
	"github.com/studyqr/api/internal/db"
	apphttp "github.com/studyqr/api/internal/http"
)

func testConfig() config.Config {
	return config.Config{
		Env:            "test",
		Port:           0,
		PublicURL:      "http://localhost:8080",
		JWTSecret:      "test-secret-key",
		AccessTTL:      time.Hour,
		MaxUploadBytes: 5 << 20,
	}
}

// These tests need a real database; set TEST_DB_DSN to run them.
func setupTestRouter(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")

	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping integration tests")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)

	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}

	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := apphttp.NewRouter(logger, pool, testConfig())

	return router, pool
}

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE notes, users
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func registerAndLogin(t *testing.T, r *gin.Engine, email string) (int64, string) {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/auth/register",
		`{"name": "Tester", "email": "`+email+`", "password": "s3cret1"}`, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("register: got status %d, body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/auth/login",
		`{"email": "`+email+`", "password": "s3cret1"}`, "")

	if w.Code != http.StatusOK {
		t.Fatalf("login: got status %d, body=%s", w.Code, w.Body.String())
	}

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode login envelope: %v", err)
	}

	var data struct {
		UserID      int64  `json:"userId"`
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode login data: %v", err)
	}

	return data.UserID, data.AccessToken
}

func createNote(t *testing.T, r *gin.Engine, token, content, fileName, fileData string) int64 {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	if err := mw.WriteField("content", content); err != nil {
		t.Fatalf("write content field: %v", err)
	}

	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)

		if err != nil {
			t.Fatalf("create form file: %v", err)
		}

		if _, err := fw.Write([]byte(fileData)); err != nil {
			t.Fatalf("write file data: %v", err)
		}
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/notes", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create note: got status %d, body=%s", w.Code, w.Body.String())
	}

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode create envelope: %v", err)
	}

	var n struct {
		ID         int64  `json:"id"`
		QRCodeData string `json:"qrCodeData"`
	}
	if err := json.Unmarshal(env.Data, &n); err != nil {
		t.Fatalf("decode created note: %v", err)
	}

	if n.QRCodeData == "" {
		t.Fatal("created note is missing its QR payload")
	}

	return n.ID
}

func TestNoteLifecycleOverHTTP(t *testing.T) {
	r, pool := setupTestRouter(t)
	defer pool.Close()
	resetDB(t, pool)

	_, aliceToken := registerAndLogin(t, r, "alice@example.com")
	_, bobToken := registerAndLogin(t, r, "bob@example.com")

	noteID := createNote(t, r, aliceToken, "first draft", "notes.pdf", "%PDF-1.4")
	notePath := fmt.Sprintf("/notes/%d", noteID)

	// anyone with the link may read
	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/notes/view/%d", noteID), "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("public view: got status %d, body=%s", w.Code, w.Body.String())
	}

	// attachment download
	req := httptest.NewRequest(http.MethodGet, notePath+"/download", nil)
	dl := httptest.NewRecorder()
	r.ServeHTTP(dl, req)

	if dl.Code != http.StatusOK || dl.Body.String() != "%PDF-1.4" {
		t.Fatalf("download: got status %d, body=%q", dl.Code, dl.Body.String())
	}

	// only the owner may update
	w = doJSON(t, r, http.MethodPut, notePath, `{"content": "second draft"}`, bobToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner update: got status %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, notePath, `{"content": "second draft"}`, aliceToken)
	if w.Code != http.StatusOK {
		t.Fatalf("owner update: got status %d, body=%s", w.Code, w.Body.String())
	}

	// only the owner may delete
	w = doJSON(t, r, http.MethodDelete, notePath, "", bobToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete: got status %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, notePath, "", aliceToken)
	if w.Code != http.StatusOK {
		t.Fatalf("owner delete: got status %d, body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/notes/view/%d", noteID), "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("view after delete: got status %d, want 404", w.Code)
	}
}

func TestDeleteUserCascadesNotes(t *testing.T) {
	r, pool := setupTestRouter(t)
	defer pool.Close()
	resetDB(t, pool)

	userID, token := registerAndLogin(t, r, "alice@example.com")
	noteID := createNote(t, r, token, "will be orphaned", "", "")

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/users/%d", userID), "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("delete user: got status %d, body=%s", w.Code, w.Body.String())
	}

	var count int
	err := pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM notes WHERE user_id = $1", userID).Scan(&count)

	if err != nil {
		t.Fatalf("count notes: %v", err)
	}

	if count != 0 {
		t.Fatalf("expected cascade delete to remove notes, %d left (note %d)", count, noteID)
	}
}
