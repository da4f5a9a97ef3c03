package ingest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/linnemanlabs/redalert/internal/recall"
)

const cpscBaseURL = "https://www.saferproducts.gov/RestWebServices/Recall"

// cpscLookback bounds the fetch window. The endpoint has no paging,
// so the date filter is the only cap.
const cpscLookback = 90 * 24 * time.Hour

// CPSC collects consumer-product recalls from the SaferProducts REST
// API. The endpoint returns a bare JSON array.
type CPSC struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewCPSC creates the CPSC collector. An empty baseURL selects the
// production endpoint.
func NewCPSC(baseURL string, client *http.Client) *CPSC {
	if baseURL == "" {
		baseURL = cpscBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &CPSC{baseURL: baseURL, client: client, now: time.Now}
}

func (c *CPSC) Name() string            { return "cpsc" }
func (c *CPSC) Kind() recall.SourceKind { return recall.SourceGov }
func (c *CPSC) Origin() string          { return "CPSC" }

type cpscRecall struct {
	RecallID    int    `json:"RecallID"`
	RecallDate  string `json:"RecallDate"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	URL         string `json:"URL"`
}

// FetchLatest returns recalls announced within the lookback window.
func (c *CPSC) FetchLatest(ctx context.Context) ([]recall.Item, error) {
	start := c.now().UTC().Add(-cpscLookback).Format("2006-01-02")

	q := url.Values{}
	q.Set("Format", "json")
	q.Set("RecallDateStart", start)

	var raw []cpscRecall
	if err := getJSON(ctx, c.client, c.baseURL+"?"+q.Encode(), &raw); err != nil {
		return nil, err
	}

	items := make([]recall.Item, 0, len(raw))
	for _, r := range raw {
		if r.Title == "" {
			continue
		}
		items = append(items, recall.Item{
			Title:     r.Title,
			Summary:   r.Description,
			Link:      r.URL,
			Published: r.RecallDate,
			Origin:    c.Origin(),
		})
	}
	return items, nil
}
