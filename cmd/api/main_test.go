package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-order-notify/internal/config"
	"github.com/imrishuroy/go-order-notify/internal/mail"
	"github.com/imrishuroy/go-order-notify/internal/metrics"
	"github.com/imrishuroy/go-order-notify/internal/notify"
	"github.com/imrishuroy/go-order-notify/internal/records"
)

func testDeps(t *testing.T) deps {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", "scarf.png"), []byte("png"), 0o644))

	store, err := records.OpenFileStore(filepath.Join(dir, "db.json"))
	require.NoError(t, err)

	outbox, err := mail.NewFileOutbox(filepath.Join(dir, "outbox"))
	require.NoError(t, err)

	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := metrics.NewRegistry()
	d, err := notify.NewDispatcher(notify.Config{FromEmail: "shop@example.com", Currency: "Ksh"}, outbox,
		notify.WithLogger(lg),
		notify.WithRecorder(reg),
	)
	require.NoError(t, err)

	return deps{
		cfg: config.Config{App: config.App{
			ImagesDir:   filepath.Join(dir, "images"),
			CORSOrigins: []string{"*"},
		}},
		log:        lg,
		dispatcher: d,
		store:      store,
		metrics:    reg,
	}
}

func TestSetupRouter(t *testing.T) {
	r := setupRouter(testDeps(t))

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	assert.Equal(t, "OK", get("/").Body.String())
	assert.JSONEq(t, `{"status":"ok","mail_transport":"file"}`, get("/health").Body.String())
	assert.Equal(t, "png", get("/images/scarf.png").Body.String())
	assert.Equal(t, http.StatusOK, get("/api/products").Code)

	req := httptest.NewRequest(http.MethodPost, "/send-order-email", strings.NewReader(`{"order":{"id":"1"}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	m := get("/metrics").Body.String()
	assert.Contains(t, m, `order_emails_total{outcome="sent",recipient="owner"} 1`)
}

func TestSetupRouter_CORS(t *testing.T) {
	r := setupRouter(testDeps(t))

	req := httptest.NewRequest(http.MethodOptions, "/send-order-email", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
