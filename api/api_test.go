package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/backend/auth"
	"github.com/portfolio-site/backend/blob"
	"github.com/portfolio-site/backend/config"
	"github.com/portfolio-site/backend/database"
	"github.com/portfolio-site/backend/models"
)

const (
	testAdmin    = "admin"
	testPassword = "s3cret"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

type recordingNotifier struct {
	calls chan models.Feedback
}

func (n *recordingNotifier) NotifyFeedback(_ context.Context, f models.Feedback) error {
	n.calls <- f
	return nil
}

type testEnv struct {
	router    http.Handler
	db        database.Database
	stores    stores
	cfg       config.Config
	uploadDir string
	tokens    *auth.TokenIssuer
	notifier  *recordingNotifier
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	gdb, err := database.Open(config.DBConfig{Type: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	db := database.New(gdb)
	t.Cleanup(func() { _ = db.Close() })

	uploadDir := t.TempDir()
	store, err := blob.NewDiskStore(uploadDir, "/uploads")
	require.NoError(t, err)

	authenticator, err := auth.NewStaticAuthenticator(testAdmin, testPassword, "")
	require.NoError(t, err)
	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	cfg := config.Config{
		AcceptedOrigins: []string{"*"},
		MaxUploadBytes:  1 << 20,
		Blob:            config.BlobConfig{Backend: "disk", UploadDir: uploadDir, BaseURL: "/uploads"},
	}
	for _, m := range mutate {
		m(&cfg)
	}

	notifier := &recordingNotifier{calls: make(chan models.Feedback, 4)}
	env := &testEnv{
		db:        db,
		cfg:       cfg,
		uploadDir: uploadDir,
		tokens:    tokens,
		notifier:  notifier,
	}
	env.stores = storesFor(Dependencies{
		Database:      db,
		Blobs:         store,
		Authenticator: authenticator,
		Tokens:        tokens,
		Notifier:      notifier,
	})
	env.rebuild()
	return env
}

// rebuild re-creates the router after env.stores has been swapped out.
func (e *testEnv) rebuild() {
	e.router = newRouter(e.stores, withConfig(e.cfg), withStartupTime(time.Now()))
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) uploadedFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(e.uploadDir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

type formFile struct {
	field string
	name  string
	data  []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asAdmin(req *http.Request) *http.Request {
	req.SetBasicAuth(testAdmin, testPassword)
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func projectFields() map[string]string {
	return map[string]string{
		"title":       "Portfolio",
		"description": "This site",
		"github":      "https://github.com/example/portfolio",
		"live":        "https://example.com",
	}
}

func (e *testEnv) createProject(t *testing.T, imageName string) ProjectResponse {
	t.Helper()
	req := asAdmin(multipartRequest(t, http.MethodPost, "/projects", projectFields(),
		formFile{field: "image", name: imageName, data: pngBytes}))
	rec := e.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ProjectResponse](t, rec)
}

func (e *testEnv) createFeedback(t *testing.T, name string, files ...formFile) FeedbackResponse {
	t.Helper()
	req := multipartRequest(t, http.MethodPost, "/feedback", map[string]string{
		"name":     name,
		"feedback": "Great work",
		"stars":    "5",
	}, files...)
	rec := e.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[FeedbackResponse](t, rec)
}
