package model

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kalambet/judicia/internal/config"
)

// HTTPServer calls a self-hosted model server that accepts {"prompt": ...}
// and answers {"output": ...}.
type HTTPServer struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPServer returns an HTTPServer backend. endpoint is required.
func NewHTTPServer(endpoint string) (*HTTPServer, error) {
	if endpoint == "" {
		return nil, &config.MissingError{Scope: "http model backend", Keys: []string{"JUDICIA_MODEL_HTTP_ENDPOINT"}}
	}
	return &HTTPServer{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: newHTTPClient(),
		logger:     slog.Default().With("backend", "http"),
	}, nil
}

func (h *HTTPServer) Name() string { return "http" }

func (h *HTTPServer) Predict(ctx context.Context, req Request) (Result, error) {
	raw, status, err := postJSON(ctx, h.httpClient, h.logger, h.endpoint, req, nil)
	if err != nil {
		return Result{}, &BackendError{Backend: h.Name(), Status: status, Err: err}
	}
	if status < 200 || status >= 300 {
		return Result{}, &BackendError{Backend: h.Name(), Status: status, Detail: describeBody(raw)}
	}

	v, err := decodeValue(raw)
	if err != nil {
		return Result{}, &BackendError{Backend: h.Name(), Err: fmt.Errorf("decoding response: %w", err)}
	}
	p := Classify(v)
	if p.Kind == KindObject {
		if out, ok := p.Object["output"]; ok {
			return Result{Output: stringify(out)}, nil
		}
	}
	return Result{Output: stringify(p.Value())}, nil
}
