package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// maxResponseSize caps how much of an upstream body is read. Larger bodies
// are an error, never truncated.
var maxResponseSize int64 = 8 << 20

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: predictTimeout}
}

// postJSON sends body as JSON to url and returns the raw response body and
// status. A non-nil error means the request never produced a response.
func postJSON(ctx context.Context, client *http.Client, logger *slog.Logger, url string, body any, headers map[string]string) ([]byte, int, error) {
	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, predictTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.Debug("model request", "req_id", reqID, "url", url, "content_length", len(bs))

	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("model request failed", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	if int64(len(raw)) > maxResponseSize {
		logger.Warn("model response too large", "req_id", reqID, "status", resp.StatusCode, "limit", maxResponseSize)
		return nil, resp.StatusCode, fmt.Errorf("response exceeds %d bytes", maxResponseSize)
	}

	logger.Debug("model response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return raw, resp.StatusCode, nil
}

// describeBody renders an error body for diagnostics: compact JSON when it
// parses, raw text otherwise.
func describeBody(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err == nil {
		return buf.String()
	}
	return string(bytes.TrimSpace(raw))
}
