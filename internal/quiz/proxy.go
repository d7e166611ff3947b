package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxRequestBytes = 1 << 20

// Generator produces a JSON document for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (json.RawMessage, error)
}

// Logger is the subset of leveled logging the proxy uses.
type Logger interface {
	Debugf(format string, args ...any)
	Errorf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Errorf(string, ...any) {}

// Proxy turns quiz requests into model prompts and validates the answers.
type Proxy struct {
	gen    Generator
	origin string
	logger Logger
}

// NewProxy creates a proxy. allowedOrigin is sent in the CORS headers.
func NewProxy(gen Generator, allowedOrigin string, logger Logger) *Proxy {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Proxy{gen: gen, origin: allowedOrigin, logger: logger}
}

// Handle runs a generation or marking request and returns the validated JSON array.
func (p *Proxy) Handle(ctx context.Context, req Request) (json.RawMessage, error) {
	if p.gen == nil {
		return nil, ErrMissingAPIKey
	}
	if c, ok := p.gen.(interface{ Configured() bool }); ok && !c.Configured() {
		return nil, ErrMissingAPIKey
	}

	var prompt string
	marking := req.IsMarking()
	switch {
	case marking:
		var err error
		prompt, err = MarkingPrompt(string(req.Payload.ChapterContext), req.Payload.Answers)
		if err != nil {
			return nil, err
		}
		p.logger.Debugf("constructed marking prompt for chapter %s", req.Payload.ChapterContext)
	case strings.TrimSpace(req.Prompt) != "":
		prompt = req.Prompt
	case req.Chapter != "":
		var err error
		prompt, err = ChapterPrompt(req.Chapter)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	default:
		return nil, ErrInvalidRequest
	}

	raw, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	items, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}
	if marking {
		err = validateFeedback(items, len(req.Payload.Answers))
	} else {
		err = validateQuestions(items)
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// ServeHTTP exposes Handle with CORS and the error bodies browsers expect.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for k, v := range CORSHeaders(p.origin) {
		w.Header()[k] = v
	}
	if r.Method == http.MethodOptions {
		w.Write([]byte("ok"))
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, map[string]any{"error": ErrInvalidRequest.Error()})
		return
	}

	result, err := p.Handle(r.Context(), req)
	if err != nil {
		p.logger.Errorf("quiz proxy: %v", err)
		status, payload := errorResponse(err)
		writeError(w, status, payload)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(result)
}

func errorResponse(err error) (int, map[string]any) {
	var upstream *UpstreamError
	switch {
	case errors.Is(err, ErrMissingAPIKey):
		return http.StatusInternalServerError, map[string]any{"error": "Server configuration error: API key missing or invalid"}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, map[string]any{"error": "Invalid or missing prompt data in request body"}
	case errors.As(err, &upstream):
		return upstream.Status, map[string]any{"error": upstream.Error(), "details": upstream.Details}
	case errors.Is(err, ErrMalformedResponse):
		msg := strings.TrimPrefix(err.Error(), ErrMalformedResponse.Error()+": ")
		return http.StatusInternalServerError, map[string]any{"error": "Failed to process AI response: " + msg}
	default:
		return http.StatusInternalServerError, map[string]any{"error": err.Error()}
	}
}

func writeError(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// CORSHeaders returns the headers sent with every proxy response.
func CORSHeaders(origin string) http.Header {
	if origin == "" {
		origin = "*"
	}
	h := http.Header{}
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	return h
}
