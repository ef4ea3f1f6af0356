package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kalambet/judicia/internal/model"
	"github.com/kalambet/judicia/internal/storage"
)

// --- helpers ---

func newTestMCPDeps(t *testing.T) (MCPDeps, *storage.Store) {
	t.Helper()
	svc, store := newTestService(t, model.Dummy{})
	return MCPDeps{Service: svc, Version: "test"}, store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

// --- tests ---

func TestMCPTool_Chat(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	handler := mcpChat(deps)

	req := makeCallToolRequest("chat", map[string]interface{}{
		"message": "hello",
		"user_id": 7,
	})
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}
	if got := toolText(t, result); got != "Dummy response: hello" {
		t.Fatalf("reply = %q", got)
	}

	turns, err := store.ListChatTurns(context.Background(), 10)
	if err != nil {
		t.Fatalf("listing turns: %v", err)
	}
	if len(turns) != 1 || turns[0].UserID == nil || *turns[0].UserID != 7 {
		t.Fatalf("unexpected turns: %+v", turns)
	}
}

func TestMCPTool_Chat_MissingMessage(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	result, err := mcpChat(deps)(context.Background(), makeCallToolRequest("chat", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
}

func TestMCPTool_Chat_FractionalUserID(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	req := makeCallToolRequest("chat", map[string]interface{}{
		"message": "hi",
		"user_id": 1.5,
	})
	result, err := mcpChat(deps)(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error for fractional user_id")
	}
}

func TestMCPTool_UploadText(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	req := makeCallToolRequest("upload_text", map[string]interface{}{
		"filename": "notes.md",
		"content":  strings.Repeat("b", 1500),
	})
	result, err := mcpUploadText(deps)(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}

	var res struct {
		Filename       string `json:"filename"`
		ContentPreview string `json:"content_preview"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &res); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if res.Filename != "notes.md" || len(res.ContentPreview) != 1000 {
		t.Fatalf("unexpected result: filename=%q preview=%d", res.Filename, len(res.ContentPreview))
	}

	docs, err := store.ListDocuments(context.Background(), 10)
	if err != nil {
		t.Fatalf("listing docs: %v", err)
	}
	if len(docs) != 1 || len(docs[0].Content) != 1500 {
		t.Fatalf("unexpected docs: %d", len(docs))
	}
}

func TestMCPTool_History(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	ctx := context.Background()
	for _, m := range []string{"A", "B", "C"} {
		if _, err := deps.Service.Chat(ctx, m, nil); err != nil {
			t.Fatalf("Chat: %v", err)
		}
	}

	result, err := mcpHistory(deps)(ctx, makeCallToolRequest("history", map[string]interface{}{"limit": 2}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var items []HistoryItem
	if err := json.Unmarshal([]byte(toolText(t, result)), &items); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(items) != 2 || items[0].Message != "C" || items[1].Message != "B" {
		t.Fatalf("unexpected history: %+v", items)
	}
}

func TestMCPResource_Recent(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	ctx := context.Background()
	if _, err := deps.Service.Chat(ctx, strings.Repeat("x", 300), nil); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	contents, err := mcpResourceRecent(deps)(ctx, makeReadResourceRequest("judicia://history/recent"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}

	var summaries []struct {
		ID      int64  `json:"id"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(tc.Text), &summaries); err != nil {
		t.Fatalf("failed to parse resource: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if len(summaries[0].Message) != 203 || !strings.HasSuffix(summaries[0].Message, "...") {
		t.Errorf("message not truncated: len %d", len(summaries[0].Message))
	}
}

func TestNewMCPServer(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	if s := NewMCPServer(deps); s == nil {
		t.Fatal("expected server")
	}
}

func TestOptionalInt(t *testing.T) {
	tests := []struct {
		in      any
		want    *int64
		wantErr bool
	}{
		{nil, nil, false},
		{float64(3), ptr(3), false},
		{3, ptr(3), false},
		{json.Number("12"), ptr(12), false},
		{2.5, nil, true},
		{"7", nil, true},
	}
	for _, tt := range tests {
		got, err := optionalInt(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("optionalInt(%v) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("optionalInt(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func ptr(v int64) *int64 { return &v }
