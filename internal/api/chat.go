package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const maxRequestBodySize = 1 << 20 // 1MB

const defaultTopK = 5

//go:embed schema/chat_request.json
var schemaFS embed.FS

// chatSchema validates POST /chat bodies.
var chatSchema = mustCompileSchema("schema/chat_request.json")

// ChatRequest is the POST /chat body. TopK is accepted for compatibility and
// not used.
type ChatRequest struct {
	UserID  *int64 `json:"user_id"`
	Message string `json:"message"`
	TopK    *int   `json:"top_k,omitempty"`
}

// ChatResponse is the POST /chat reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

func mustCompileSchema(name string) *jsonschema.Schema {
	b, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("reading %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("adding %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// decodeChatRequest validates body against the chat schema and decodes it.
func decodeChatRequest(body []byte) (ChatRequest, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return ChatRequest{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := chatSchema.Validate(v); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return ChatRequest{}, fmt.Errorf("invalid request: %s", leafMessage(verr))
		}
		return ChatRequest{}, err
	}

	var req ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return ChatRequest{}, fmt.Errorf("invalid request: %w", err)
	}
	if req.TopK == nil {
		k := defaultTopK
		req.TopK = &k
	}
	return req, nil
}

// leafMessage returns the most specific cause of a validation failure.
func leafMessage(e *jsonschema.ValidationError) string {
	for len(e.Causes) > 0 {
		e = e.Causes[0]
	}
	if e.InstanceLocation == "" {
		return e.Message
	}
	return e.InstanceLocation + ": " + e.Message
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, "reading request body: %v", err)
			return
		}
		req, err := decodeChatRequest(body)
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, "%v", err)
			return
		}

		reply, err := deps.Service.Chat(r.Context(), req.Message, req.UserID)
		if err != nil {
			deps.Logger.Error("chat failed", "error", err)
			httpError(w, http.StatusInternalServerError, "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
	}
}
