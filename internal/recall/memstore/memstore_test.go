package memstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/linnemanlabs/redalert/internal/recall"
	"github.com/linnemanlabs/redalert/internal/recall/memstore"
)

func TestRawSignalLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()

	for i := 0; i < 3; i++ {
		sig := &recall.RawSignal{
			ID:          fmt.Sprintf("sig-%d", i),
			Fingerprint: fmt.Sprintf("fp-%d", i),
			SourceKind:  recall.SourceGov,
			Origin:      "CPSC",
			Payload:     []byte("{}"),
			IngestedAt:  time.Now().UTC(),
		}
		if err := s.InsertRawSignal(ctx, sig); err != nil {
			t.Fatalf("InsertRawSignal: %v", err)
		}
	}

	ok, err := s.RawSignalExists(ctx, "fp-1")
	if err != nil || !ok {
		t.Errorf("RawSignalExists(fp-1) = %v, %v; want true, nil", ok, err)
	}
	ok, err = s.RawSignalExists(ctx, "fp-missing")
	if err != nil || ok {
		t.Errorf("RawSignalExists(fp-missing) = %v, %v; want false, nil", ok, err)
	}

	if err := s.MarkRawSignalProcessed(ctx, "sig-0"); err != nil {
		t.Fatalf("MarkRawSignalProcessed: %v", err)
	}

	sigs, err := s.ListUnprocessedRawSignals(ctx, 0)
	if err != nil {
		t.Fatalf("ListUnprocessedRawSignals: %v", err)
	}
	if len(sigs) != 2 || sigs[0].ID != "sig-1" || sigs[1].ID != "sig-2" {
		t.Errorf("unprocessed = %+v, want sig-1, sig-2 in admission order", sigs)
	}

	sigs, err = s.ListUnprocessedRawSignals(ctx, 1)
	if err != nil {
		t.Fatalf("ListUnprocessedRawSignals(limit=1): %v", err)
	}
	if len(sigs) != 1 || sigs[0].ID != "sig-1" {
		t.Errorf("limited unprocessed = %+v, want only sig-1", sigs)
	}
}

func seedRecalls(t *testing.T, s *memstore.Store) {
	t.Helper()
	ctx := context.Background()
	recs := []*recall.Recall{
		{ID: "r1", Title: "Frozen peas recall", Region: recall.RegionUS, Confidence: recall.ConfidenceProbable,
			CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "r2", Title: "Ghee samples failed", Region: recall.RegionIN, Confidence: recall.ConfidenceProbable,
			SignalType: recall.SignalSampleFailure,
			CreatedAt:  time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "r3", Title: "Toy battery fire risk", Region: recall.RegionUS, Confidence: recall.ConfidenceConfirmed,
			CreatedAt: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)},
	}
	for _, r := range recs {
		if err := s.InsertRecall(ctx, r); err != nil {
			t.Fatalf("InsertRecall: %v", err)
		}
	}
}

func TestListRecallsByRegionNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()
	seedRecalls(t, s)

	recs, err := s.ListRecallsByRegion(ctx, recall.RegionUS)
	if err != nil {
		t.Fatalf("ListRecallsByRegion: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "r3" || recs[1].ID != "r1" {
		t.Errorf("US recalls = %+v, want r3 then r1", recs)
	}
}

func TestListRecallsFiltering(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()
	seedRecalls(t, s)

	tests := []struct {
		name    string
		filter  recall.RecallFilter
		wantIDs []string
	}{
		{name: "no filter", filter: recall.RecallFilter{}, wantIDs: []string{"r3", "r2", "r1"}},
		{name: "region", filter: recall.RecallFilter{Region: recall.RegionIN}, wantIDs: []string{"r2"}},
		{name: "confidence", filter: recall.RecallFilter{Confidence: recall.ConfidenceConfirmed}, wantIDs: []string{"r3"}},
		{name: "signal type", filter: recall.RecallFilter{SignalType: recall.SignalSampleFailure}, wantIDs: []string{"r2"}},
		{name: "query is case-insensitive", filter: recall.RecallFilter{Query: "PEAS"}, wantIDs: []string{"r1"}},
		{name: "from", filter: recall.RecallFilter{From: time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)}, wantIDs: []string{"r3", "r2"}},
		{name: "to", filter: recall.RecallFilter{To: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)}, wantIDs: []string{"r2", "r1"}},
		{name: "limit", filter: recall.RecallFilter{Limit: 2}, wantIDs: []string{"r3", "r2"}},
		{name: "offset", filter: recall.RecallFilter{Offset: 1}, wantIDs: []string{"r2", "r1"}},
		{name: "offset past end", filter: recall.RecallFilter{Offset: 10}, wantIDs: nil},
		{name: "no match", filter: recall.RecallFilter{Query: "airbag"}, wantIDs: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			recs, err := s.ListRecalls(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListRecalls: %v", err)
			}
			if len(recs) != len(tt.wantIDs) {
				t.Fatalf("got %d recalls, want %d", len(recs), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if recs[i].ID != id {
					t.Errorf("recs[%d].ID = %s, want %s", i, recs[i].ID, id)
				}
			}
		})
	}
}

func TestGetRecallReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()
	seedRecalls(t, s)

	r, ok, err := s.GetRecall(ctx, "r1")
	if err != nil || !ok {
		t.Fatalf("GetRecall(r1) = %v, %v; want record", ok, err)
	}
	r.Title = "mutated"

	again, ok, err := s.GetRecall(ctx, "r1")
	if err != nil || !ok {
		t.Fatalf("GetRecall(r1) second read = %v, %v", ok, err)
	}
	if again.Title != "Frozen peas recall" {
		t.Errorf("stored title = %q; caller mutation leaked into the store", again.Title)
	}

	if _, ok, err := s.GetRecall(ctx, "missing"); err != nil || ok {
		t.Errorf("GetRecall(missing) = %v, %v; want false, nil", ok, err)
	}
}

func TestRecallSources(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()

	for i := 0; i < 2; i++ {
		src := &recall.RecallSource{
			ID:         fmt.Sprintf("src-%d", i),
			RecallID:   "r1",
			SourceKind: recall.SourceGov,
			URL:        fmt.Sprintf("https://example.com/%d", i),
			Title:      "evidence",
		}
		if err := s.InsertRecallSource(ctx, src); err != nil {
			t.Fatalf("InsertRecallSource: %v", err)
		}
	}

	ok, err := s.RecallSourceExists(ctx, "r1", "https://example.com/0")
	if err != nil || !ok {
		t.Errorf("RecallSourceExists(known) = %v, %v; want true, nil", ok, err)
	}
	ok, err = s.RecallSourceExists(ctx, "r1", "https://example.com/9")
	if err != nil || ok {
		t.Errorf("RecallSourceExists(unknown) = %v, %v; want false, nil", ok, err)
	}

	srcs, err := s.ListRecallSources(ctx, "r1")
	if err != nil {
		t.Fatalf("ListRecallSources: %v", err)
	}
	if len(srcs) != 2 || srcs[0].ID != "src-0" || srcs[1].ID != "src-1" {
		t.Errorf("sources = %+v, want src-0 then src-1", srcs)
	}

	srcs, err = s.ListRecallSources(ctx, "other")
	if err != nil || len(srcs) != 0 {
		t.Errorf("ListRecallSources(other) = %+v, %v; want empty", srcs, err)
	}
}

func TestPutWatchlistUpsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memstore.New()

	w := &recall.Watchlist{ID: "w1", OwnerID: "u1", Type: recall.WatchBrand, Value: "acme"}
	if err := s.PutWatchlist(ctx, w); err != nil {
		t.Fatalf("PutWatchlist: %v", err)
	}
	w.Value = "acme foods"
	if err := s.PutWatchlist(ctx, w); err != nil {
		t.Fatalf("PutWatchlist update: %v", err)
	}

	got, err := s.ListWatchlists(ctx)
	if err != nil {
		t.Fatalf("ListWatchlists: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("watchlists = %d, want 1 after upsert", len(got))
	}
	if got[0].Value != "acme foods" {
		t.Errorf("Value = %q, want %q", got[0].Value, "acme foods")
	}
}
