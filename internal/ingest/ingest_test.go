package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linnemanlabs/redalert/internal/recall"
)

func TestCPSCFetchLatest(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"RecallID": 101, "RecallDate": "2026-08-01", "Title": "Acme Toys recalls wooden blocks", "Description": "Choking hazard for small children", "URL": "https://example.com/101"},
			{"RecallID": 102, "Title": "", "Description": "no title, dropped"}
		]`))
	}))
	defer srv.Close()

	c := NewCPSC(srv.URL, srv.Client())
	c.now = func() time.Time { return time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC) }

	items, err := c.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (untitled entry dropped)", len(items))
	}
	got := items[0]
	if got.Title != "Acme Toys recalls wooden blocks" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Summary != "Choking hazard for small children" {
		t.Errorf("Summary = %q", got.Summary)
	}
	if got.Link != "https://example.com/101" {
		t.Errorf("Link = %q", got.Link)
	}
	if got.Origin != "CPSC" {
		t.Errorf("Origin = %q, want CPSC", got.Origin)
	}
	if !strings.Contains(gotQuery, "RecallDateStart=2026-05-30") {
		t.Errorf("query %q missing 90-day lookback start", gotQuery)
	}
}

func TestFDAFetchLatest(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"meta": {"results": {"total": 2}},
			"results": [
				{"product_description": "Frozen Peas 500g", "reason_for_recall": "Possible listeria contamination", "recalling_firm": "Acme Foods", "report_date": "20260815"},
				{"product_description": "", "reason_for_recall": "dropped"}
			]
		}`))
	}))
	defer srv.Close()

	f := NewFDA(srv.URL, srv.Client())
	items, err := f.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	got := items[0]
	if got.Title != "Acme Foods recalls Frozen Peas 500g" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Published != "2026-08-15" {
		t.Errorf("Published = %q, want 2026-08-15", got.Published)
	}
	if got.Origin != "FDA" {
		t.Errorf("Origin = %q, want FDA", got.Origin)
	}
	for _, want := range []string{"search=status%3AOngoing", "limit=50", "sort=report_date%3Adesc"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestNHTSAFetchLatest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		year := r.URL.Query().Get("modelyear")
		if year == "2025" {
			// Previous model year is down; the current year still serves.
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"Count": 1, "Message": "Results returned successfully",
			"Results": [
				{"Manufacturer": "Moto Corp", "Component": "AIR BAGS", "Summary": "Inflator may rupture", "ReportReceivedDate": "2026-07-01", "NHTSACampaignNumber": "26V123"}
			]
		}`))
	}))
	defer srv.Close()

	n := NewNHTSA(srv.URL, srv.Client())
	n.now = func() time.Time { return time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC) }

	items, err := n.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	got := items[0]
	if got.Title != "Moto Corp recall: AIR BAGS" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Summary != "Inflator may rupture" {
		t.Errorf("Summary = %q", got.Summary)
	}
	if got.Origin != "NHTSA" {
		t.Errorf("Origin = %q, want NHTSA", got.Origin)
	}
}

func TestNHTSAFetchLatestAllYearsFail(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	n := NewNHTSA(srv.URL, srv.Client())
	if _, err := n.FetchLatest(context.Background()); err == nil {
		t.Fatal("want error when every model year fails")
	}
}

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
	<title>Google News</title>
	<item>
		<title>FSSAI bans sale of contaminated spice mix</title>
		<link>https://example.com/spice</link>
		<pubDate>Tue, 25 Aug 2026 08:00:00 GMT</pubDate>
		<description>Samples failed lab analysis</description>
	</item>
</channel></rss>`

func TestRSSFetchLatest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	c := NewRSS(Feed{URL: srv.URL, Origin: "GoogleNews-IN-FSSAI"}, srv.Client())
	items, err := c.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	got := items[0]
	if got.Title != "FSSAI bans sale of contaminated spice mix" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Summary != "Samples failed lab analysis" {
		t.Errorf("Summary = %q", got.Summary)
	}
	if got.Origin != "GoogleNews-IN-FSSAI" {
		t.Errorf("Origin = %q", got.Origin)
	}
	if got.Published == "" {
		t.Error("Published is empty, want the feed pubDate")
	}
}

type stubCollector struct {
	name  string
	items []recall.Item
	err   error
	delay time.Duration
}

func (s *stubCollector) Name() string            { return s.name }
func (s *stubCollector) Kind() recall.SourceKind { return recall.SourceNews }
func (s *stubCollector) Origin() string          { return s.name }

func (s *stubCollector) FetchLatest(ctx context.Context) ([]recall.Item, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.items, s.err
}

func TestFetchAllIsolatesFailures(t *testing.T) {
	t.Parallel()

	good := &stubCollector{name: "good", items: []recall.Item{{Title: "ok", Origin: "good"}}}
	bad := &stubCollector{name: "bad", err: errors.New("boom")}
	slow := &stubCollector{name: "slow", delay: time.Minute, items: []recall.Item{{Title: "late"}}}

	results := FetchAll(context.Background(), nil, []Collector{good, bad, slow}, 50*time.Millisecond)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Collector] = r
	}

	if r := byName["good"]; r.Err != nil || len(r.Items) != 1 {
		t.Errorf("good: err=%v items=%d, want nil err and 1 item", r.Err, len(r.Items))
	}
	if r := byName["bad"]; r.Err == nil || len(r.Items) != 0 {
		t.Errorf("bad: err=%v items=%d, want error and no items", r.Err, len(r.Items))
	}
	if r := byName["slow"]; r.Err == nil {
		t.Error("slow: want timeout error past the per-collector deadline")
	}
}
