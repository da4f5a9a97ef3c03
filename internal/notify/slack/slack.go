// Package slack delivers watchlist alerts to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"
)

const (
	maxTitleLen = 150
	httpTimeout = 10 * time.Second
)

// Notifier posts recall alerts as Block Kit messages.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a Slack notifier. If webhookURL is empty, Notify is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Notify posts one watchlist match to the configured webhook.
func (n *Notifier) Notify(ctx context.Context, ownerID, recallTitle, matchedValue string) error {
	if n.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(buildMessage(ownerID, recallTitle, matchedValue))
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(ownerID, recallTitle, matchedValue string) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(recallTitle),
			{"type": "divider"},
			fieldsBlock(ownerID, matchedValue),
			{"type": "divider"},
			contextBlock(),
		},
	}
}

func headerBlock(recallTitle string) map[string]any {
	text := fmt.Sprintf("\U0001f534 Recall Alert: %s", truncate(recallTitle, maxTitleLen))

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(ownerID, matchedValue string) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Watchlist owner:* %s", ownerID),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Matched:* %s", matchedValue),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func contextBlock() map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("redalert • %s", time.Now().UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

// truncate caps s at limit bytes, backing up to a rune boundary so a
// multi-byte character is never split.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
