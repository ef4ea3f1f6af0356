package api

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/kalambet/judicia/internal/model"
	"github.com/kalambet/judicia/internal/service"
	"github.com/kalambet/judicia/internal/storage"
	"github.com/kalambet/judicia/internal/uploads"
)

func newTestService(t *testing.T, backend model.Backend) (*service.Service, *storage.Store) {
	t.Helper()
	store, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	files, err := uploads.New(t.TempDir())
	if err != nil {
		t.Fatalf("uploads.New: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.New(backend, store, files, logger), store
}

func setupHandler(t *testing.T, backend model.Backend) (http.Handler, *storage.Store) {
	t.Helper()
	svc, store := newTestService(t, backend)
	h := NewHandler(Deps{
		Service: svc,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return h, store
}
