package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Webhook posts every message once as JSON to an incident collector.
type Webhook struct {
	URL      string
	Token    string
	ServerIP string
	Client   *http.Client
}

type webhookPayload struct {
	ServerIP string   `json:"server_ip,omitempty"`
	Module   string   `json:"module"`
	Severity string   `json:"severity"`
	Event    string   `json:"event"`
	CycleID  string   `json:"cycle_id,omitempty"`
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`
	Tags     []string `json:"tags"`
}

// Fire returns an error when the request fails or the collector answers
// with a non-2xx status.
func (w *Webhook) Fire(ctx context.Context, msg Message) error {
	payload := webhookPayload{
		ServerIP: w.ServerIP,
		Module:   "pi-monitor",
		Severity: string(msg.Kind.Severity()),
		Event:    "uptime_" + string(msg.Kind),
		CycleID:  msg.CycleID,
		Subject:  msg.Subject,
		Message:  msg.Body,
		Tags:     []string{"uptime", "monitoring"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating request for %s: %w", w.URL, err)
	}
	request.Header.Set("Content-Type", "application/json")
	if w.Token != "" {
		request.Header.Set("Authorization", "Bearer "+w.Token)
	}

	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	response, err := client.Do(request)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", w.URL, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(response.Body, 4096))
		return fmt.Errorf("webhook: unexpected status %d from %s. Body: %s", response.StatusCode, w.URL, string(respBody))
	}

	return nil
}
