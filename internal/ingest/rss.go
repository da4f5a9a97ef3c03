package ingest

import (
	"context"
	"net/http"

	"github.com/mmcdole/gofeed"

	"github.com/linnemanlabs/redalert/internal/recall"
)

// Feed is one syndication source: a URL plus the provenance tag its
// items carry. Origin tags containing "-IN" mark India-origin feeds
// for region resolution.
type Feed struct {
	URL    string
	Origin string
}

// DefaultFeeds is the Google News query set the scheduler runs when
// no feed list is configured.
var DefaultFeeds = []Feed{
	{"https://news.google.com/rss/search?q=product+recall+india+when:15d&hl=en-IN&gl=IN&ceid=IN:en", "GoogleNews-IN-General"},
	{"https://news.google.com/rss/search?q=FSSAI+unsafe+sample+when:15d&hl=en-IN&gl=IN&ceid=IN:en", "GoogleNews-IN-FSSAI"},
	{"https://news.google.com/rss/search?q=food+safety+sample+failed+when:15d&hl=en-IN&gl=IN&ceid=IN:en", "GoogleNews-IN-FoodSafety"},
	{"https://news.google.com/rss/search?q=CDSCO+alert+drug+when:15d&hl=en-IN&gl=IN&ceid=IN:en", "GoogleNews-IN-CDSCO"},
	{"https://news.google.com/rss/search?q=drug+licence+cancelled+india+when:15d&hl=en-IN&gl=IN&ceid=IN:en", "GoogleNews-IN-Pharma"},
	{"https://news.google.com/rss/search?q=food+safety+seizure+india+when:15d&hl=en-IN&gl=IN&ceid=IN:en", "GoogleNews-IN-Seizure"},
	{"https://news.google.com/rss/search?q=WHO+medical+product+alert+India+when:30d&hl=en-IN&gl=IN&ceid=IN:en", "GoogleNews-IN-WHO"},
	{"https://news.google.com/rss/search?q=product+recall+usa+when:7d&hl=en-US&gl=US&ceid=US:en", "GoogleNews-US"},
}

// RSS collects items from one syndication feed.
type RSS struct {
	feed   Feed
	parser *gofeed.Parser
}

// NewRSS creates a collector for one feed. A nil client uses a
// default with the package timeout.
func NewRSS(feed Feed, client *http.Client) *RSS {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	p := gofeed.NewParser()
	p.Client = client
	return &RSS{feed: feed, parser: p}
}

func (r *RSS) Name() string            { return "rss:" + r.feed.Origin }
func (r *RSS) Kind() recall.SourceKind { return recall.SourceNews }
func (r *RSS) Origin() string          { return r.feed.Origin }

// FetchLatest parses the feed and returns its entries.
func (r *RSS) FetchLatest(ctx context.Context) ([]recall.Item, error) {
	feed, err := r.parser.ParseURLWithContext(r.feed.URL, ctx)
	if err != nil {
		return nil, err
	}

	items := make([]recall.Item, 0, len(feed.Items))
	for _, e := range feed.Items {
		if e == nil || e.Title == "" {
			continue
		}
		items = append(items, recall.Item{
			Title:     e.Title,
			Summary:   e.Description,
			Link:      e.Link,
			Published: e.Published,
			Origin:    r.feed.Origin,
		})
	}
	return items, nil
}
