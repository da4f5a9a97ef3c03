package ingest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/linnemanlabs/redalert/internal/recall"
)

const nhtsaBaseURL = "https://api.nhtsa.gov/recalls/recallquery"

// NHTSA collects vehicle recalls for the current and previous model
// years. The endpoint wraps results as {Count, Message, Results: [...]}.
type NHTSA struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewNHTSA creates the NHTSA collector. An empty baseURL selects the
// production endpoint.
func NewNHTSA(baseURL string, client *http.Client) *NHTSA {
	if baseURL == "" {
		baseURL = nhtsaBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &NHTSA{baseURL: baseURL, client: client, now: time.Now}
}

func (n *NHTSA) Name() string            { return "nhtsa" }
func (n *NHTSA) Kind() recall.SourceKind { return recall.SourceGov }
func (n *NHTSA) Origin() string          { return "NHTSA" }

type nhtsaEnvelope struct {
	Count   int           `json:"Count"`
	Message string        `json:"Message"`
	Results []nhtsaRecall `json:"Results"`
}

type nhtsaRecall struct {
	Manufacturer       string `json:"Manufacturer"`
	Component          string `json:"Component"`
	Summary            string `json:"Summary"`
	ReportReceivedDate string `json:"ReportReceivedDate"`
	CampaignNumber     string `json:"NHTSACampaignNumber"`
}

// FetchLatest queries the current and previous model years. A failed
// year is skipped, not fatal; the error surfaces only when both fail.
func (n *NHTSA) FetchLatest(ctx context.Context) ([]recall.Item, error) {
	year := n.now().Year()

	var (
		items   []recall.Item
		lastErr error
		fetched int
	)
	for _, y := range []int{year, year - 1} {
		q := url.Values{}
		q.Set("modelyear", strconv.Itoa(y))
		q.Set("format", "json")

		var env nhtsaEnvelope
		if err := getJSON(ctx, n.client, n.baseURL+"?"+q.Encode(), &env); err != nil {
			lastErr = err
			continue
		}
		fetched++

		for _, r := range env.Results {
			if r.Component == "" && r.Summary == "" {
				continue
			}
			title := r.Manufacturer + " recall: " + r.Component
			if r.Manufacturer == "" {
				title = "Vehicle recall: " + r.Component
			}
			items = append(items, recall.Item{
				Title:     title,
				Summary:   r.Summary,
				Published: r.ReportReceivedDate,
				Origin:    n.Origin(),
			})
		}
	}
	if fetched == 0 {
		return nil, lastErr
	}
	return items, nil
}
