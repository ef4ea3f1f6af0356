package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kalambet/judicia/internal/export"
	"github.com/kalambet/judicia/internal/service"
	"github.com/kalambet/judicia/internal/storage"
)

// HistoryItem is one entry of GET /history.
type HistoryItem struct {
	ID       int64  `json:"id"`
	UserID   *int64 `json:"user_id"`
	Message  string `json:"message"`
	Response string `json:"response"`
	TS       string `json:"ts"`
}

// DocumentItem is one entry of GET /documents.
type DocumentItem struct {
	ID             int64  `json:"id"`
	Filename       string `json:"filename"`
	ContentPreview string `json:"content_preview"`
	UploadedAt     string `json:"uploaded_at"`
}

func historyItems(turns []storage.ChatTurn) []HistoryItem {
	items := make([]HistoryItem, 0, len(turns))
	for _, t := range turns {
		items = append(items, HistoryItem{
			ID:       t.ID,
			UserID:   t.UserID,
			Message:  t.Message,
			Response: t.Response,
			TS:       t.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
	return items
}

func documentItems(docs []storage.Document) []DocumentItem {
	items := make([]DocumentItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, DocumentItem{
			ID:             d.ID,
			Filename:       d.Filename,
			ContentPreview: service.Preview(d.Content),
			UploadedAt:     d.UploadedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return items
}

func handleHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", service.DefaultHistoryLimit)

		turns, err := deps.Service.History(r.Context(), limit)
		if err != nil {
			deps.Logger.Error("history failed", "error", err)
			httpError(w, http.StatusInternalServerError, "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, historyItems(turns))
	}
}

func handleHistoryExport(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", service.DefaultHistoryLimit)

		turns, err := deps.Service.History(r.Context(), limit)
		if err != nil {
			deps.Logger.Error("history export failed", "error", err)
			httpError(w, http.StatusInternalServerError, "%v", err)
			return
		}
		data, err := export.HistoryXLSX(turns)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "%v", err)
			return
		}

		name := fmt.Sprintf("judicia-history-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func handleDocuments(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", service.DefaultHistoryLimit)

		docs, err := deps.Service.Documents(r.Context(), limit)
		if err != nil {
			deps.Logger.Error("documents failed", "error", err)
			httpError(w, http.StatusInternalServerError, "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, documentItems(docs))
	}
}
