package recall

import (
	"context"
	"time"
)

// RecallFilter narrows ListRecalls. Zero values mean "no constraint".
// Results are always ordered newest-first.
type RecallFilter struct {
	Region     Region
	Query      string // case-insensitive substring of title
	Confidence ConfidenceLevel
	SignalType SignalType
	From       time.Time // created_at >= From
	To         time.Time // created_at <= To
	Offset     int
	Limit      int
}

// Store is the persistence interface for the recall pipeline. No
// implementation detail of the backing engine may leak through it.
type Store interface {
	// Raw intake. ListUnprocessedRawSignals returns signals in admission
	// order; a limit of zero or less means no cap.
	InsertRawSignal(ctx context.Context, sig *RawSignal) error
	RawSignalExists(ctx context.Context, fingerprint string) (bool, error)
	ListUnprocessedRawSignals(ctx context.Context, limit int) ([]*RawSignal, error)
	MarkRawSignalProcessed(ctx context.Context, id string) error

	// Canonical recalls.
	InsertRecall(ctx context.Context, r *Recall) error
	GetRecall(ctx context.Context, id string) (*Recall, bool, error)
	ListRecallsByRegion(ctx context.Context, region Region) ([]*Recall, error)
	ListRecalls(ctx context.Context, f RecallFilter) ([]*Recall, error)

	// Evidence links.
	InsertRecallSource(ctx context.Context, src *RecallSource) error
	RecallSourceExists(ctx context.Context, recallID, url string) (bool, error)
	ListRecallSources(ctx context.Context, recallID string) ([]*RecallSource, error)

	// Watchlists are owned by the account layer; the pipeline only reads
	// them. PutWatchlist exists for seeding and tests.
	ListWatchlists(ctx context.Context) ([]*Watchlist, error)
	PutWatchlist(ctx context.Context, w *Watchlist) error
}
