// Package webhook delivers watchlist alerts to a configured HTTP
// endpoint. Delivery channels behind that endpoint (email, push) are
// the receiver's concern.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const httpTimeout = 10 * time.Second

// Notifier posts alert payloads to a webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a webhook notifier. If webhookURL is empty, Notify is a
// no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

type alertPayload struct {
	OwnerID      string    `json:"owner_id"`
	RecallTitle  string    `json:"recall_title"`
	MatchedValue string    `json:"matched_value"`
	SentAt       time.Time `json:"sent_at"`
}

// Notify posts one watchlist match to the configured webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Notify(ctx context.Context, ownerID, recallTitle, matchedValue string) error {
	if n.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(alertPayload{
		OwnerID:      ownerID,
		RecallTitle:  recallTitle,
		MatchedValue: matchedValue,
		SentAt:       time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post alert: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook: endpoint returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
