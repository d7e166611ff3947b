// Package client is a Go client for notebase-server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/stranger0g/NoteBase/internal/formula"
	"github.com/stranger0g/NoteBase/internal/particles"
	"github.com/stranger0g/NoteBase/internal/simulation"
	"github.com/stranger0g/NoteBase/internal/stoich"
)

// SimulationBuilder provides a fluent API for building simulation configs.
// Unset values fall back to the regime defaults on the server.
type SimulationBuilder struct {
	cfg simulation.Config
}

// NewSimulation creates a builder for the given regime.
func NewSimulation(regime particles.Regime) *SimulationBuilder {
	return &SimulationBuilder{cfg: simulation.Config{Regime: regime}}
}

// Count sets the number of particles.
func (sb *SimulationBuilder) Count(n int) *SimulationBuilder {
	sb.cfg.Count = &n
	return sb
}

// Compare mixes light and heavy particles. Only diffusion accepts it.
func (sb *SimulationBuilder) Compare() *SimulationBuilder {
	sb.cfg.Compare = true
	return sb
}

// Surface sets the container size in pixels.
func (sb *SimulationBuilder) Surface(width, height float64) *SimulationBuilder {
	sb.cfg.Width = width
	sb.cfg.Height = height
	return sb
}

// Temperature sets the initial slider value.
func (sb *SimulationBuilder) Temperature(t float64) *SimulationBuilder {
	sb.cfg.Temperature = &t
	return sb
}

// Build returns the config. It is not validated; the server does that.
func (sb *SimulationBuilder) Build() simulation.Config {
	return sb.cfg
}

// WebhookBuilder provides a fluent API for webhook notifier registrations.
type WebhookBuilder struct {
	id      string
	url     string
	headers map[string]string
	kinds   []simulation.EventKind
	all     bool
}

// NewWebhook creates a webhook registration posting events to url.
func NewWebhook(id, url string) *WebhookBuilder {
	return &WebhookBuilder{id: id, url: url, headers: make(map[string]string)}
}

// Header adds a header sent with every delivery.
func (wb *WebhookBuilder) Header(key, value string) *WebhookBuilder {
	wb.headers[key] = value
	return wb
}

// Kinds restricts deliveries to the given event kinds.
func (wb *WebhookBuilder) Kinds(kinds ...simulation.EventKind) *WebhookBuilder {
	wb.kinds = append(wb.kinds, kinds...)
	return wb
}

// AllSimulations subscribes the webhook to every current and future simulation.
func (wb *WebhookBuilder) AllSimulations() *WebhookBuilder {
	wb.all = true
	return wb
}

// WebhookRegistration is the body of POST /notifiers.
type WebhookRegistration struct {
	Type           string                 `json:"type"`
	ID             string                 `json:"id"`
	Config         map[string]any         `json:"config"`
	Kinds          []simulation.EventKind `json:"kinds,omitempty"`
	AllSimulations bool                   `json:"all_simulations,omitempty"`
}

// Build converts the builder into a registration body.
func (wb *WebhookBuilder) Build() WebhookRegistration {
	cfg := map[string]any{"url": wb.url}
	if len(wb.headers) > 0 {
		headers := make(map[string]any, len(wb.headers))
		for k, v := range wb.headers {
			headers[k] = v
		}
		cfg["headers"] = headers
	}
	return WebhookRegistration{
		Type:           "webhook",
		ID:             wb.id,
		Config:         cfg,
		Kinds:          wb.kinds,
		AllSimulations: wb.all,
	}
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Body)
}

// Client talks to a notebase-server instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: 30 * time.Second}}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.http = hc
}

// FormulaMass is the server's answer for a formula.
type FormulaMass struct {
	Formula string  `json:"formula"`
	Mr      float64 `json:"mr"`
	MathJax string  `json:"mathjax"`
}

// FormulaMass computes the relative formula mass of f.
func (c *Client) FormulaMass(ctx context.Context, f string) (FormulaMass, error) {
	var out FormulaMass
	err := c.do(ctx, http.MethodPost, "/api/formula/mass", nil, map[string]string{"formula": f}, &out)
	return out, err
}

// Composition returns the percentage by mass of each element in f.
func (c *Client) Composition(ctx context.Context, f string) ([]formula.Share, error) {
	var out struct {
		Shares []formula.Share `json:"shares"`
	}
	q := url.Values{"formula": {f}}
	err := c.do(ctx, http.MethodGet, "/api/formula/composition", q, nil, &out)
	return out.Shares, err
}

// IonicFormula builds the neutral compound of two ions.
func (c *Client) IonicFormula(ctx context.Context, cation, anion stoich.Ion) (stoich.IonicResult, error) {
	var out stoich.IonicResult
	body := map[string]stoich.Ion{"cation": cation, "anion": anion}
	err := c.do(ctx, http.MethodPost, "/api/stoich/ionic", nil, body, &out)
	return out, err
}

// EmpiricalFormula derives the simplest whole-number ratio from composition data.
func (c *Client) EmpiricalFormula(ctx context.Context, elements ...stoich.ElementInput) (stoich.EmpiricalResult, error) {
	var out stoich.EmpiricalResult
	body := map[string][]stoich.ElementInput{"elements": elements}
	err := c.do(ctx, http.MethodPost, "/api/stoich/empirical", nil, body, &out)
	return out, err
}

// Configure creates the simulation id, or resets it when it exists, and
// returns the first frame.
func (c *Client) Configure(ctx context.Context, id string, sb *SimulationBuilder) (simulation.Frame, error) {
	var out simulation.Frame
	err := c.do(ctx, http.MethodPost, simPath(id, "config"), nil, sb.Build(), &out)
	return out, err
}

// Tick advances the simulation n steps and returns the new tick.
func (c *Client) Tick(ctx context.Context, id string, n int) (int64, error) {
	var out struct {
		Tick int64 `json:"tick"`
	}
	q := url.Values{"n": {strconv.Itoa(n)}}
	err := c.do(ctx, http.MethodPost, simPath(id, "tick"), q, nil, &out)
	return out.Tick, err
}

// Start runs the simulation on the server. A zero interval uses the server default.
func (c *Client) Start(ctx context.Context, id string, interval time.Duration) error {
	var q url.Values
	if interval > 0 {
		q = url.Values{"interval": {strconv.FormatInt(interval.Milliseconds(), 10)}}
	}
	return c.do(ctx, http.MethodPost, simPath(id, "start"), q, nil, nil)
}

// Stop halts a running simulation.
func (c *Client) Stop(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, simPath(id, "stop"), nil, nil, nil)
}

// StartDiffusion lifts the barrier of a diffusion simulation.
func (c *Client) StartDiffusion(ctx context.Context, id string) (simulation.Frame, error) {
	var out simulation.Frame
	err := c.do(ctx, http.MethodPost, simPath(id, "diffuse"), nil, nil, &out)
	return out, err
}

// SetTemperature changes the temperature slider.
func (c *Client) SetTemperature(ctx context.Context, id string, t float64) error {
	return c.do(ctx, http.MethodPost, simPath(id, "temperature"), nil, map[string]float64{"temperature": t}, nil)
}

// Frame fetches the current frame.
func (c *Client) Frame(ctx context.Context, id string) (simulation.Frame, error) {
	var out simulation.Frame
	err := c.do(ctx, http.MethodGet, simPath(id, "frame"), nil, nil, &out)
	return out, err
}

// Stats fetches the mixing and speed statistics.
func (c *Client) Stats(ctx context.Context, id string) (particles.Stats, error) {
	var out particles.Stats
	err := c.do(ctx, http.MethodGet, simPath(id, "stats"), nil, nil, &out)
	return out, err
}

// Snapshot asks the server to save a snapshot and returns its path.
func (c *Client) Snapshot(ctx context.Context, id string) (string, error) {
	var out map[string]string
	err := c.do(ctx, http.MethodPost, simPath(id, "snapshot"), nil, nil, &out)
	return out["path"], err
}

// Export downloads the current frame as an xlsx workbook.
func (c *Client) Export(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, simPath(id, "export.xlsx"), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// Delete removes the simulation.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, simPath(id, ""), nil, nil, nil)
}

// Simulations lists the simulation IDs on the server.
func (c *Client) Simulations(ctx context.Context) ([]string, error) {
	var out struct {
		Simulations []string `json:"simulations"`
	}
	err := c.do(ctx, http.MethodGet, "/sims", nil, nil, &out)
	return out.Simulations, err
}

// RegisterWebhook registers a webhook notifier on the server.
func (c *Client) RegisterWebhook(ctx context.Context, wb *WebhookBuilder) error {
	return c.do(ctx, http.MethodPost, "/notifiers", nil, wb.Build(), nil)
}

// UnregisterNotifier removes a notifier and all of its subscriptions.
func (c *Client) UnregisterNotifier(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notifiers/"+url.PathEscape(id), nil, nil, nil)
}

// StreamURL returns the websocket URL streaming events for simulation id.
func (c *Client) StreamURL(id string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.JoinPath(simPath(id, "ws")).String(), nil
}

func simPath(id, action string) string {
	p := "/sim/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	return resp, nil
}
