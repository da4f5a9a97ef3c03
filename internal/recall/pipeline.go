package recall

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"
)

// hazardSummaryLimit truncates stored hazard descriptions.
const hazardSummaryLimit = 500

// Notifier is the external notification collaborator. Delivery channel
// and retry policy are its concern; the pipeline fires and forgets.
type Notifier interface {
	Notify(ctx context.Context, ownerID, recallTitle, matchedValue string) error
}

// Pipeline owns the intake gate and the classify -> score -> dedup ->
// alert loop. Processing is sequential per batch: dedup must see records
// created earlier in the same cycle.
type Pipeline struct {
	store      Store
	classifier *Classifier
	scorer     *Scorer
	sim        Similarity
	threshold  float64
	notifier   Notifier
	logger     log.Logger
	metrics    *Metrics
}

// NewPipeline wires the pipeline. notifier may be nil (alerts are then
// matched and logged but not delivered); metrics may be nil in tests.
func NewPipeline(store Store, classifier *Classifier, scorer *Scorer, sim Similarity, threshold float64, notifier Notifier, logger log.Logger, metrics *Metrics) *Pipeline {
	if logger == nil {
		logger = log.Nop()
	}
	return &Pipeline{
		store:      store,
		classifier: classifier,
		scorer:     scorer,
		sim:        sim,
		threshold:  threshold,
		notifier:   notifier,
		logger:     logger,
		metrics:    metrics,
	}
}

// Fingerprint returns the deterministic content hash of a normalized
// item. Identical payloads always produce the same fingerprint.
func Fingerprint(item Item) (string, []byte, error) {
	payload, err := json.Marshal(item)
	if err != nil {
		return "", nil, fmt.Errorf("marshal item: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), payload, nil
}

// Admit runs the intake gate: the item becomes a RawSignal only if no
// signal with the same fingerprint exists. Rejection is silent; a feed
// re-served tomorrow must not re-enter the pipeline.
func (p *Pipeline) Admit(ctx context.Context, kind SourceKind, item Item) (bool, error) {
	fp, payload, err := Fingerprint(item)
	if err != nil {
		return false, err
	}

	exists, err := p.store.RawSignalExists(ctx, fp)
	if err != nil {
		return false, fmt.Errorf("fingerprint lookup: %w", err)
	}
	if exists {
		if p.metrics != nil {
			p.metrics.SignalsRejected.WithLabelValues(item.Origin).Inc()
		}
		return false, nil
	}

	sig := &RawSignal{
		ID:          ulid.Make().String(),
		Fingerprint: fp,
		SourceKind:  kind,
		Origin:      item.Origin,
		Payload:     payload,
		IngestedAt:  time.Now().UTC(),
	}
	if err := p.store.InsertRawSignal(ctx, sig); err != nil {
		return false, fmt.Errorf("insert raw signal: %w", err)
	}
	if p.metrics != nil {
		p.metrics.SignalsAdmitted.WithLabelValues(item.Origin).Inc()
	}
	return true, nil
}

// ProcessBatch classifies up to limit unprocessed signals. Per-item
// failures are logged and skipped; only batch-level persistence errors
// propagate to the caller.
func (p *Pipeline) ProcessBatch(ctx context.Context, limit int) (int, error) {
	sigs, err := p.store.ListUnprocessedRawSignals(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list unprocessed signals: %w", err)
	}
	if p.metrics != nil {
		p.metrics.BatchSize.Observe(float64(len(sigs)))
	}

	created := 0
	for _, sig := range sigs {
		madeNew, err := p.processSignal(ctx, sig)
		if err != nil {
			p.logger.Error(ctx, err, "signal processing failed", "signal_id", sig.ID, "origin", sig.Origin)
			if p.metrics != nil {
				p.metrics.ItemErrors.Inc()
			}
		}
		if madeNew {
			created++
		}
		// Mark processed regardless of outcome so a poison payload
		// cannot wedge every future batch.
		if err := p.store.MarkRawSignalProcessed(ctx, sig.ID); err != nil {
			return created, fmt.Errorf("mark signal %s processed: %w", sig.ID, err)
		}
	}
	return created, nil
}

func (p *Pipeline) processSignal(ctx context.Context, sig *RawSignal) (bool, error) {
	var item Item
	if err := json.Unmarshal(sig.Payload, &item); err != nil {
		return false, fmt.Errorf("unmarshal payload: %w", err)
	}
	if item.Title == "" {
		return false, fmt.Errorf("payload has no title")
	}

	text := p.classifier.NormalizeText(item.Title, item.Summary)

	// Noise wins over everything, including recall keywords. The stored
	// RawSignal stays behind as the audit trail.
	if p.classifier.IsNoise(text) {
		p.drop("noise")
		return false, nil
	}

	analysis := p.classifier.Classify(text)
	if !analysis.IsRecall {
		p.drop("no_intent")
		return false, nil
	}

	verdict := p.scorer.Score(sig.SourceKind, analysis, text, IndiaOrigin(sig.Origin))
	published := ParseDate(item.Published)

	// Dedup against canonical records in the same region only.
	existing, err := p.store.ListRecallsByRegion(ctx, verdict.Region)
	if err != nil {
		return false, fmt.Errorf("list recalls for %s: %w", verdict.Region, err)
	}
	for _, rec := range existing {
		if p.sim.Ratio(item.Title, rec.Title) <= p.threshold {
			continue
		}
		if err := p.merge(ctx, rec, sig.SourceKind, item, published); err != nil {
			return false, err
		}
		return false, nil
	}

	rec := &Recall{
		ID:            ulid.Make().String(),
		Title:         item.Title,
		HazardSummary: truncate(strippedSummary(text, item.Title), hazardSummaryLimit),
		Region:        verdict.Region,
		Confidence:    verdict.Confidence,
		SignalType:    verdict.SignalType,
		URL:           item.Link,
		PublishedDate: published,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if len(analysis.Entities) > 0 {
		rec.Brand = analysis.Entities[0]
	}

	if err := p.store.InsertRecall(ctx, rec); err != nil {
		return false, fmt.Errorf("insert recall: %w", err)
	}
	src := &RecallSource{
		ID:          ulid.Make().String(),
		RecallID:    rec.ID,
		SourceKind:  sig.SourceKind,
		URL:         item.Link,
		Title:       item.Title,
		PublishedAt: published,
	}
	if err := p.store.InsertRecallSource(ctx, src); err != nil {
		return false, fmt.Errorf("insert recall source: %w", err)
	}

	if p.metrics != nil {
		p.metrics.RecallsCreated.WithLabelValues(string(rec.Region), string(rec.Confidence)).Inc()
	}
	p.logger.Info(ctx, "recall created",
		"recall_id", rec.ID,
		"title", rec.Title,
		"region", rec.Region,
		"confidence", rec.Confidence,
		"signal_type", rec.SignalType,
	)

	// Synchronous by design: the next candidate in the batch may merge
	// into this record, and its subscribers must already be notified.
	p.dispatchAlerts(ctx, rec)
	return true, nil
}

// merge appends an evidence link to an existing recall. Idempotent on
// (recall, url).
func (p *Pipeline) merge(ctx context.Context, rec *Recall, kind SourceKind, item Item, published *time.Time) error {
	exists, err := p.store.RecallSourceExists(ctx, rec.ID, item.Link)
	if err != nil {
		return fmt.Errorf("recall source lookup: %w", err)
	}
	if !exists {
		src := &RecallSource{
			ID:          ulid.Make().String(),
			RecallID:    rec.ID,
			SourceKind:  kind,
			URL:         item.Link,
			Title:       item.Title,
			PublishedAt: published,
		}
		if err := p.store.InsertRecallSource(ctx, src); err != nil {
			return fmt.Errorf("append recall source: %w", err)
		}
	}
	if p.metrics != nil {
		p.metrics.MergesTotal.WithLabelValues(string(rec.Region)).Inc()
	}
	p.logger.Info(ctx, "merged into existing recall", "recall_id", rec.ID, "url", item.Link)
	return nil
}

// dispatchAlerts scans every watchlist against a newly created recall.
// No pre-filtering: O(watchlists) per create is fine at this scale.
// Notifier failures never abort the scan or the surrounding create.
func (p *Pipeline) dispatchAlerts(ctx context.Context, rec *Recall) {
	watchlists, err := p.store.ListWatchlists(ctx)
	if err != nil {
		p.logger.Error(ctx, err, "watchlist scan failed", "recall_id", rec.ID)
		return
	}

	for _, w := range watchlists {
		if !watchMatches(w, rec) {
			continue
		}
		p.logger.Info(ctx, "watchlist match",
			"owner_id", w.OwnerID,
			"value", w.Value,
			"recall_id", rec.ID,
		)
		if p.notifier == nil {
			continue
		}
		if err := p.notifier.Notify(ctx, w.OwnerID, rec.Title, w.Value); err != nil {
			p.logger.Error(ctx, err, "notification failed", "owner_id", w.OwnerID, "recall_id", rec.ID)
			if p.metrics != nil {
				p.metrics.AlertsDispatched.WithLabelValues("error").Inc()
			}
			continue
		}
		if p.metrics != nil {
			p.metrics.AlertsDispatched.WithLabelValues("sent").Inc()
		}
	}
}

func watchMatches(w *Watchlist, rec *Recall) bool {
	value := strings.ToLower(w.Value)
	if value == "" {
		return false
	}
	switch w.Type {
	case WatchBrand:
		return rec.Brand != "" && strings.Contains(strings.ToLower(rec.Brand), value)
	case WatchProduct:
		return strings.Contains(strings.ToLower(rec.Title), value)
	default:
		return false
	}
}

func (p *Pipeline) drop(reason string) {
	if p.metrics != nil {
		p.metrics.ItemsDropped.WithLabelValues(reason).Inc()
	}
}

// IndiaOrigin reports whether a provenance tag marks an India-targeted
// source, e.g. "GoogleNews-IN-FSSAI".
func IndiaOrigin(origin string) bool {
	return strings.Contains(origin, "-IN")
}

// dateLayouts are tried in order: ISO-8601 first, then the RFC-2822
// mailbox shapes syndication feeds use, then a bare date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// ParseDate best-effort parses a source date string. Unparseable input
// yields nil, never an error: a record without a date beats no record.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// strippedSummary recovers the summary part of the normalized blob.
func strippedSummary(text, title string) string {
	return strings.TrimSpace(strings.TrimPrefix(text, title))
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
