package ingest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/linnemanlabs/redalert/internal/recall"
)

const (
	fdaBaseURL = "https://api.fda.gov/food/enforcement.json"
	fdaLimit   = "50"
)

// FDA collects ongoing food-enforcement actions from openFDA. The
// endpoint wraps results as {meta, results: [...]}.
type FDA struct {
	baseURL string
	client  *http.Client
}

// NewFDA creates the FDA collector. An empty baseURL selects the
// production endpoint.
func NewFDA(baseURL string, client *http.Client) *FDA {
	if baseURL == "" {
		baseURL = fdaBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &FDA{baseURL: baseURL, client: client}
}

func (f *FDA) Name() string            { return "fda" }
func (f *FDA) Kind() recall.SourceKind { return recall.SourceGov }
func (f *FDA) Origin() string          { return "FDA" }

type fdaEnvelope struct {
	Results []fdaEnforcement `json:"results"`
}

type fdaEnforcement struct {
	ProductDescription string `json:"product_description"`
	ReasonForRecall    string `json:"reason_for_recall"`
	RecallingFirm      string `json:"recalling_firm"`
	ReportDate         string `json:"report_date"`
}

// FetchLatest returns the most recent ongoing enforcement actions.
func (f *FDA) FetchLatest(ctx context.Context) ([]recall.Item, error) {
	q := url.Values{}
	q.Set("search", "status:Ongoing")
	q.Set("sort", "report_date:desc")
	q.Set("limit", fdaLimit)

	var env fdaEnvelope
	if err := getJSON(ctx, f.client, f.baseURL+"?"+q.Encode(), &env); err != nil {
		return nil, err
	}

	items := make([]recall.Item, 0, len(env.Results))
	for _, r := range env.Results {
		if r.ProductDescription == "" {
			continue
		}
		title := r.ProductDescription
		if r.RecallingFirm != "" {
			title = r.RecallingFirm + " recalls " + r.ProductDescription
		}
		items = append(items, recall.Item{
			Title:     title,
			Summary:   r.ReasonForRecall,
			Published: fdaDate(r.ReportDate),
			Origin:    f.Origin(),
		})
	}
	return items, nil
}

// fdaDate converts openFDA's compact YYYYMMDD form to YYYY-MM-DD.
func fdaDate(d string) string {
	if len(d) != 8 {
		return d
	}
	return d[:4] + "-" + d[4:6] + "-" + d[6:]
}
