// Package memstore provides an in-memory implementation of recall.Store.
package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/linnemanlabs/redalert/internal/recall"
)

// Store holds pipeline state in memory. Suitable for dev/testing.
type Store struct {
	mu           sync.RWMutex
	signals      map[string]*recall.RawSignal // signal ID -> signal
	signalOrder  []string                     // insertion order
	fingerprints map[string]string            // fingerprint -> signal ID
	recalls      map[string]*recall.Recall
	recallOrder  []string
	sources      map[string][]*recall.RecallSource // recall ID -> sources
	watchlists   map[string]*recall.Watchlist
	watchOrder   []string
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		signals:      make(map[string]*recall.RawSignal),
		fingerprints: make(map[string]string),
		recalls:      make(map[string]*recall.Recall),
		sources:      make(map[string][]*recall.RecallSource),
		watchlists:   make(map[string]*recall.Watchlist),
	}
}

// InsertRawSignal stores a copy of the signal.
func (s *Store) InsertRawSignal(_ context.Context, sig *recall.RawSignal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sig
	s.signals[sig.ID] = &cp
	s.signalOrder = append(s.signalOrder, sig.ID)
	s.fingerprints[sig.Fingerprint] = sig.ID
	return nil
}

// RawSignalExists reports whether a signal with the fingerprint was admitted.
func (s *Store) RawSignalExists(_ context.Context, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fingerprints[fingerprint]
	return ok, nil
}

// ListUnprocessedRawSignals returns up to limit unprocessed signals in
// admission order. A limit of zero or less returns them all. Returns copies.
func (s *Store) ListUnprocessedRawSignals(_ context.Context, limit int) ([]*recall.RawSignal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*recall.RawSignal
	for _, id := range s.signalOrder {
		if limit > 0 && len(out) >= limit {
			break
		}
		sig := s.signals[id]
		if sig.Processed {
			continue
		}
		cp := *sig
		out = append(out, &cp)
	}
	return out, nil
}

// MarkRawSignalProcessed flags a signal as consumed by the pipeline.
func (s *Store) MarkRawSignalProcessed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sig, ok := s.signals[id]; ok {
		sig.Processed = true
	}
	return nil
}

// InsertRecall stores a copy of the recall.
func (s *Store) InsertRecall(_ context.Context, r *recall.Recall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.recalls[r.ID] = &cp
	s.recallOrder = append(s.recallOrder, r.ID)
	return nil
}

// GetRecall retrieves a recall by ID. Returns a copy.
func (s *Store) GetRecall(_ context.Context, id string) (*recall.Recall, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recalls[id]
	if !ok {
		return nil, false, nil
	}
	cp := *r
	return &cp, true, nil
}

// ListRecallsByRegion returns all recalls in a region, newest first.
func (s *Store) ListRecallsByRegion(_ context.Context, region recall.Region) ([]*recall.Recall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*recall.Recall
	for i := len(s.recallOrder) - 1; i >= 0; i-- {
		r := s.recalls[s.recallOrder[i]]
		if r.Region != region {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

// ListRecalls returns filtered recalls, newest first, offset+limit paged.
func (s *Store) ListRecalls(_ context.Context, f recall.RecallFilter) ([]*recall.Recall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*recall.Recall
	for i := len(s.recallOrder) - 1; i >= 0; i-- {
		r := s.recalls[s.recallOrder[i]]
		if !filterMatches(f, r) {
			continue
		}
		cp := *r
		matched = append(matched, &cp)
	}

	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func filterMatches(f recall.RecallFilter, r *recall.Recall) bool {
	if f.Region != "" && r.Region != f.Region {
		return false
	}
	if f.Confidence != "" && r.Confidence != f.Confidence {
		return false
	}
	if f.SignalType != "" && r.SignalType != f.SignalType {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(r.Title), strings.ToLower(f.Query)) {
		return false
	}
	if !f.From.IsZero() && r.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.CreatedAt.After(f.To) {
		return false
	}
	return true
}

// InsertRecallSource appends a copy of the evidence link.
func (s *Store) InsertRecallSource(_ context.Context, src *recall.RecallSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *src
	s.sources[src.RecallID] = append(s.sources[src.RecallID], &cp)
	return nil
}

// RecallSourceExists reports whether the recall already links this URL.
func (s *Store) RecallSourceExists(_ context.Context, recallID, url string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, src := range s.sources[recallID] {
		if src.URL == url {
			return true, nil
		}
	}
	return false, nil
}

// ListRecallSources returns the evidence links of a recall in insertion
// order. Returns copies.
func (s *Store) ListRecallSources(_ context.Context, recallID string) ([]*recall.RecallSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	srcs := s.sources[recallID]
	out := make([]*recall.RecallSource, 0, len(srcs))
	for _, src := range srcs {
		cp := *src
		out = append(out, &cp)
	}
	return out, nil
}

// ListWatchlists returns all watchlist entries in insertion order.
func (s *Store) ListWatchlists(_ context.Context) ([]*recall.Watchlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*recall.Watchlist, 0, len(s.watchOrder))
	for _, id := range s.watchOrder {
		cp := *s.watchlists[id]
		out = append(out, &cp)
	}
	return out, nil
}

// PutWatchlist inserts or replaces a watchlist entry.
func (s *Store) PutWatchlist(_ context.Context, w *recall.Watchlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.watchlists[w.ID]; !ok {
		s.watchOrder = append(s.watchOrder, w.ID)
	}
	cp := *w
	s.watchlists[w.ID] = &cp
	return nil
}
