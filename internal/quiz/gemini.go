package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-1.5-flash"

	generationTemperature = 0.6
	maxResponseBytes      = 4 << 20
)

var safetyCategories = []string{
	"HARM_CATEGORY_DANGEROUS_CONTENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []json.RawMessage `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiClient calls the generateContent endpoint and returns the JSON
// document found in the first candidate part.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiClient creates a client. Empty model or baseURL select the defaults.
func NewGeminiClient(apiKey, model, baseURL string) *GeminiClient {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether an API key is set.
func (c *GeminiClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

func (c *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
}

// Generate sends prompt to the model and extracts the JSON result.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}

	body := generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: generationTemperature, ResponseMimeType: "application/json"},
	}
	for _, cat := range safetyCategories {
		body.SafetySettings = append(body.SafetySettings, safetySetting{Category: cat, Threshold: "BLOCK_NONE"})
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call model API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read model response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var details any = string(respBody)
		var parsed any
		if json.Unmarshal(respBody, &parsed) == nil {
			details = parsed
		}
		return nil, &UpstreamError{Status: resp.StatusCode, Details: details}
	}

	return firstPartJSON(respBody)
}

// firstPartJSON unwraps candidates[0].content.parts[0]. A part without a
// text field is taken as the JSON result itself.
func firstPartJSON(respBody []byte) (json.RawMessage, error) {
	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: AI response structure missing expected content part", ErrMalformedResponse)
	}
	raw := gr.Candidates[0].Content.Parts[0]

	var p map[string]json.RawMessage
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: AI response content part is not an object", ErrMalformedResponse)
	}
	textRaw, ok := p["text"]
	if !ok {
		return raw, nil
	}
	var text string
	if err := json.Unmarshal(textRaw, &text); err != nil || text == "" {
		return nil, fmt.Errorf("%w: AI response content part has invalid 'text' field", ErrMalformedResponse)
	}
	return ExtractJSON(text)
}
