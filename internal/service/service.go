// Package service orchestrates chat, upload and history requests on top of
// the model backend, text extraction and the storage gateway. It is shared by
// the HTTP and MCP surfaces.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kalambet/judicia/internal/extract"
	"github.com/kalambet/judicia/internal/model"
	"github.com/kalambet/judicia/internal/storage"
)

const (
	// DefaultHistoryLimit is used when a caller asks for zero or fewer turns.
	DefaultHistoryLimit = 50
	// PreviewChars is the length of the content preview returned on upload.
	PreviewChars = 1000
)

// Store is the subset of the storage gateway the service needs.
type Store interface {
	SaveChatTurn(ctx context.Context, userID *int64, message, response string) (storage.ChatTurn, error)
	SaveDocument(ctx context.Context, filename, content string) (storage.Document, error)
	ListChatTurns(ctx context.Context, limit int) ([]storage.ChatTurn, error)
	ListDocuments(ctx context.Context, limit int) ([]storage.Document, error)
	Ping(ctx context.Context) error
}

// FileSaver writes raw upload bytes and returns the stored path.
type FileSaver interface {
	Save(filename string, data []byte) (string, error)
}

// Service holds the shared, read-only collaborators for every request.
type Service struct {
	backend model.Backend
	store   Store
	files   FileSaver
	logger  *slog.Logger

	// pdfText is swapped in tests.
	pdfText func(path string) extract.Result
}

// New returns a Service. A nil logger uses slog.Default().
func New(backend model.Backend, store Store, files FileSaver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		backend: backend,
		store:   store,
		files:   files,
		logger:  logger,
		pdfText: extract.PDF,
	}
}

// Backend returns the model backend in use.
func (s *Service) Backend() model.Backend { return s.backend }

// UploadResult is returned to the client after an upload.
type UploadResult struct {
	Filename       string `json:"filename"`
	ContentPreview string `json:"content_preview"`
}

// Chat sends prompt to the model backend and records the exchange. Nothing is
// recorded when the backend fails. If recording fails after a successful
// model call the reply is lost to the caller and the storage error returned.
func (s *Service) Chat(ctx context.Context, prompt string, userID *int64) (string, error) {
	res, err := s.backend.Predict(ctx, model.Request{Prompt: prompt})
	if err != nil {
		s.logger.Error("model predict failed", "backend", s.backend.Name(), "error", err)
		return "", err
	}

	turn, err := s.store.SaveChatTurn(ctx, userID, prompt, res.Output)
	if err != nil {
		s.logger.Error("chat turn not recorded after model reply",
			"backend", s.backend.Name(), "reply_len", len(res.Output), "error", err)
		return "", err
	}
	s.logger.Debug("chat turn recorded", "id", turn.ID, "backend", s.backend.Name())
	return res.Output, nil
}

// Upload stores the raw bytes, extracts text and records a document. Extraction
// failures do not fail the upload; the failure text becomes the content.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (UploadResult, error) {
	path, err := s.files.Save(filename, data)
	if err != nil {
		return UploadResult{}, fmt.Errorf("saving upload: %w", err)
	}

	var res extract.Result
	if extract.IsPDF(filename) {
		res = s.pdfText(path)
	} else {
		res = extract.DecodeText(data)
	}
	if !res.OK() {
		s.logger.Warn("text extraction failed", "filename", filename, "error", res.Err)
	}
	content := res.Content()

	doc, err := s.store.SaveDocument(ctx, filename, content)
	if err != nil {
		return UploadResult{}, err
	}
	s.logger.Info("document uploaded", "id", doc.ID, "filename", filename, "bytes", len(data))

	return UploadResult{
		Filename:       filename,
		ContentPreview: Preview(content),
	}, nil
}

// History returns up to limit chat turns, most recent first.
func (s *Service) History(ctx context.Context, limit int) ([]storage.ChatTurn, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.ListChatTurns(ctx, limit)
}

// Documents returns up to limit documents, most recent first.
func (s *Service) Documents(ctx context.Context, limit int) ([]storage.Document, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.ListDocuments(ctx, limit)
}

// Health checks the store.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Preview returns the first PreviewChars characters of content.
func Preview(content string) string {
	return extract.Truncate(content, PreviewChars)
}
