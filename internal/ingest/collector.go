// Package ingest fetches raw product-safety signals from upstream
// sources and normalizes them into items the pipeline can admit.
// Per-source response envelopes and field names never leave this
// package.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/redalert/internal/recall"
)

const defaultTimeout = 30 * time.Second

// Collector fetches the latest items from one upstream source.
type Collector interface {
	// Name identifies the collector in logs and metrics.
	Name() string
	// Kind classifies the source for scoring (GOV, MFG, NEWS).
	Kind() recall.SourceKind
	// Origin is the provenance tag stamped onto every fetched item.
	Origin() string
	// FetchLatest returns the source's recent items. It respects ctx
	// and returns an error on network, HTTP, or decode failure.
	FetchLatest(ctx context.Context) ([]recall.Item, error)
}

// Result is one collector's outcome for a cycle. Err and Items are
// mutually exclusive.
type Result struct {
	Collector string
	Kind      recall.SourceKind
	Origin    string
	Items     []recall.Item
	Err       error
}

// FetchAll runs every collector concurrently, each under its own
// timeout. A failing collector yields a Result with Err set; it never
// blocks or aborts the others.
func FetchAll(ctx context.Context, logger log.Logger, collectors []Collector, timeout time.Duration) []Result {
	if logger == nil {
		logger = log.Nop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	results := make([]Result, len(collectors))
	g, ctx := errgroup.WithContext(ctx)
	for i, c := range collectors {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			items, err := c.FetchLatest(fetchCtx)
			results[i] = Result{
				Collector: c.Name(),
				Kind:      c.Kind(),
				Origin:    c.Origin(),
				Items:     items,
				Err:       err,
			}
			if err != nil {
				logger.Error(ctx, err, "collector fetch failed",
					"collector", c.Name(),
					"duration", time.Since(start).Seconds(),
				)
				results[i].Items = nil
				return nil
			}
			logger.Info(ctx, "collector fetch complete",
				"collector", c.Name(),
				"items", len(items),
				"duration", time.Since(start).Seconds(),
			)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// getJSON fetches url and decodes the response body into v.
func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("get %s: status %d: %s", url, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
