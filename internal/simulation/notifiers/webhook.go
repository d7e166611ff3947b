package notifiers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/stranger0g/NoteBase/internal/simulation"
)

// WebhookNotifier POSTs each event as JSON to a fixed URL.
type WebhookNotifier struct {
	id      string
	url     string
	client  *http.Client
	mu      sync.RWMutex
	headers map[string]string
}

// NewWebhookNotifier creates a webhook notifier with a 5s request timeout
func NewWebhookNotifier(id, url string) *WebhookNotifier {
	return &WebhookNotifier{
		id:      id,
		url:     url,
		client:  &http.Client{Timeout: 5 * time.Second},
		headers: make(map[string]string),
	}
}

// SetHeader sets a custom header sent with every request
func (wn *WebhookNotifier) SetHeader(key, value string) {
	wn.mu.Lock()
	defer wn.mu.Unlock()
	wn.headers[key] = value
}

// ID returns the notifier ID
func (wn *WebhookNotifier) ID() string {
	return wn.id
}

// Type returns the notifier type
func (wn *WebhookNotifier) Type() string {
	return "webhook"
}

// URL returns the target URL
func (wn *WebhookNotifier) URL() string {
	return wn.url
}

// Notify sends the event. Any non-2xx answer is an error so the manager retries.
func (wn *WebhookNotifier) Notify(ctx context.Context, event simulation.Event) error {
	jsonData, err := event.JSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wn.url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Simulation-Event", string(event.Kind))
	wn.mu.RLock()
	for key, value := range wn.headers {
		req.Header.Set(key, value)
	}
	wn.mu.RUnlock()

	resp, err := wn.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// Close is a no-op for webhooks
func (wn *WebhookNotifier) Close() error {
	return nil
}
