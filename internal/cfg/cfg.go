package cfg

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

// Config adds service-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	DatabaseURL           string
	NotifyWebhookURL      string
	SlackWebhookURL       string
	AdminToken            string

	CycleIntervalHours  int
	BatchLimit          int
	FetchTimeoutSeconds int
	DedupThreshold      float64

	EnableCPSC   bool
	EnableFDA    bool
	EnableNHTSA  bool
	EnableNews   bool
	CPSCBaseURL  string
	FDABaseURL   string
	NHTSABaseURL string
	NewsFeeds    string
}

// FeedSpec is one parsed entry of the news feed list.
type FeedSpec struct {
	Origin string
	URL    string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (empty = in-memory store)")
	fs.StringVar(&c.NotifyWebhookURL, "notify-webhook-url", "", "webhook URL for watchlist alert delivery (empty = alerts logged only)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack incoming webhook URL for watchlist alerts")
	fs.StringVar(&c.AdminToken, "admin-token", "", "bearer token for admin endpoints (empty = admin routes disabled)")

	fs.IntVar(&c.CycleIntervalHours, "cycle-interval-hours", 12, "hours between ingestion cycles (1..168)")
	fs.IntVar(&c.BatchLimit, "batch-limit", 500, "max raw signals processed per cycle (1..10000)")
	fs.IntVar(&c.FetchTimeoutSeconds, "fetch-timeout-seconds", 30, "per-collector fetch timeout in seconds (1..300)")
	fs.Float64Var(&c.DedupThreshold, "dedup-threshold", 0.65, "title similarity ratio above which two recalls merge (0..1 exclusive)")

	fs.BoolVar(&c.EnableCPSC, "enable-cpsc", true, "enable the CPSC collector")
	fs.BoolVar(&c.EnableFDA, "enable-fda", true, "enable the FDA food enforcement collector")
	fs.BoolVar(&c.EnableNHTSA, "enable-nhtsa", true, "enable the NHTSA vehicle recall collector")
	fs.BoolVar(&c.EnableNews, "enable-news", true, "enable the news feed collectors")
	fs.StringVar(&c.CPSCBaseURL, "cpsc-base-url", "", "override CPSC API base URL (empty = production)")
	fs.StringVar(&c.FDABaseURL, "fda-base-url", "", "override FDA API base URL (empty = production)")
	fs.StringVar(&c.NHTSABaseURL, "nhtsa-base-url", "", "override NHTSA API base URL (empty = production)")
	fs.StringVar(&c.NewsFeeds, "news-feeds", "", "comma-separated origin=url feed list (empty = built-in Google News set)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	if c.CycleIntervalHours <= 0 || c.CycleIntervalHours > 168 {
		errs = append(errs, fmt.Errorf("invalid CYCLE_INTERVAL_HOURS %d (must be 1..168)", c.CycleIntervalHours))
	}
	if c.BatchLimit <= 0 || c.BatchLimit > 10000 {
		errs = append(errs, fmt.Errorf("invalid BATCH_LIMIT %d (must be 1..10000)", c.BatchLimit))
	}
	if c.FetchTimeoutSeconds <= 0 || c.FetchTimeoutSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid FETCH_TIMEOUT_SECONDS %d (must be 1..300)", c.FetchTimeoutSeconds))
	}

	// The merge threshold is an exclusive ratio: 0 would merge
	// everything, 1 would merge nothing.
	if !(c.DedupThreshold > 0 && c.DedupThreshold < 1) {
		errs = append(errs, fmt.Errorf("invalid DEDUP_THRESHOLD %g (must be between 0 and 1 exclusive)", c.DedupThreshold))
	}

	if _, err := c.ParseFeeds(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ParseFeeds parses the news-feeds flag. An empty flag returns nil;
// callers fall back to the built-in feed set.
func (c *Config) ParseFeeds() ([]FeedSpec, error) {
	if strings.TrimSpace(c.NewsFeeds) == "" {
		return nil, nil
	}

	var specs []FeedSpec
	for _, entry := range strings.Split(c.NewsFeeds, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		origin, url, ok := strings.Cut(entry, "=")
		if !ok || origin == "" || url == "" {
			return nil, fmt.Errorf("invalid NEWS_FEEDS entry %q (want origin=url)", entry)
		}
		specs = append(specs, FeedSpec{Origin: origin, URL: url})
	}
	return specs, nil
}
