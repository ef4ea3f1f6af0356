package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/judicia/internal/service"
)

const recentResourceLimit = 10

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Service *service.Service
	Version string
}

// NewMCPServer creates an MCP server exposing chat, upload and history as
// tools and the latest chat turns as a resource.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"judicia",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("judicia: chat with a language model and keep uploaded documents and chat history."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("chat",
			mcp.WithDescription("Send a message to the configured model backend and record the exchange in chat history."),
			mcp.WithString("message", mcp.Description("The prompt to send"), mcp.Required()),
			mcp.WithNumber("user_id", mcp.Description("Optional integer user id stored with the turn")),
		),
		mcpChat(deps),
	)

	s.AddTool(
		mcp.NewTool("upload_text",
			mcp.WithDescription("Store a text document. Returns the filename and a content preview."),
			mcp.WithString("filename", mcp.Description("Document file name"), mcp.Required()),
			mcp.WithString("content", mcp.Description("Document text"), mcp.Required()),
		),
		mcpUploadText(deps),
	)

	s.AddTool(
		mcp.NewTool("history",
			mcp.WithDescription("List recorded chat turns, most recent first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of turns (default 50)")),
		),
		mcpHistory(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"judicia://history/recent",
			"Recent Chat History",
			mcp.WithResourceDescription("Last 10 chat turns"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecent(deps),
	)

	return s
}

func mcpChat(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}

		userID, err := optionalInt(req.GetArguments()["user_id"])
		if err != nil {
			return mcpError("user_id must be an integer"), nil
		}

		reply, err := deps.Service.Chat(ctx, message, userID)
		if err != nil {
			return mcpError(fmt.Sprintf("chat failed: %v", err)), nil
		}
		return mcpText(reply), nil
	}
}

func mcpUploadText(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filename, err := req.RequireString("filename")
		if err != nil {
			return mcpError("filename is required"), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}

		res, err := deps.Service.Upload(ctx, filename, []byte(content))
		if err != nil {
			return mcpError(fmt.Sprintf("upload failed: %v", err)), nil
		}

		b, err := json.Marshal(res)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpHistory(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", service.DefaultHistoryLimit)

		turns, err := deps.Service.History(ctx, limit)
		if err != nil {
			return mcpError(fmt.Sprintf("history failed: %v", err)), nil
		}

		b, err := json.Marshal(historyItems(turns))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal history: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		turns, err := deps.Service.History(ctx, recentResourceLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to get recent history: %w", err)
		}

		type turnSummary struct {
			ID      int64  `json:"id"`
			TS      string `json:"ts"`
			Message string `json:"message"`
		}

		summaries := make([]turnSummary, len(turns))
		for i, t := range turns {
			msg := t.Message
			if utf8.RuneCountInString(msg) > 200 {
				runes := []rune(msg)
				msg = string(runes[:200]) + "..."
			}
			summaries[i] = turnSummary{
				ID:      t.ID,
				TS:      t.Timestamp.UTC().Format(time.RFC3339),
				Message: msg,
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal history: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

// optionalInt converts a decoded JSON argument to *int64; nil stays nil.
func optionalInt(raw any) (*int64, error) {
	var v int64
	switch n := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		if n != math.Trunc(n) {
			return nil, fmt.Errorf("not an integer: %v", n)
		}
		v = int64(n)
	case int:
		v = int64(n)
	case int64:
		v = n
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return nil, err
		}
		v = i
	default:
		return nil, fmt.Errorf("unexpected type %T", raw)
	}
	return &v, nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
