// Package pgstore provides a PostgreSQL implementation of recall.Store.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/redalert/internal/recall"
)

var tracer = otel.Tracer("github.com/linnemanlabs/redalert/internal/recall/pgstore")

//go:embed schema.sql
var schema string

// Store persists pipeline state in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema and returns a ready Store. The pool stays
// owned by the caller.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func startSpan(ctx context.Context, name, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", op),
	))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// InsertRawSignal stores one admitted signal.
func (s *Store) InsertRawSignal(ctx context.Context, sig *recall.RawSignal) error {
	ctx, span := startSpan(ctx, "pgstore.InsertRawSignal", "INSERT")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO raw_signals (id, fingerprint, source_kind, origin, payload, ingested_at, processed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sig.ID, sig.Fingerprint, string(sig.SourceKind), sig.Origin, sig.Payload, sig.IngestedAt, sig.Processed,
	)
	if err != nil {
		return fail(span, fmt.Errorf("insert raw signal: %w", err))
	}
	return nil
}

// RawSignalExists reports whether a signal with the fingerprint was admitted.
func (s *Store) RawSignalExists(ctx context.Context, fingerprint string) (bool, error) {
	ctx, span := startSpan(ctx, "pgstore.RawSignalExists", "SELECT")
	defer span.End()

	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM raw_signals WHERE fingerprint = $1)`,
		fingerprint,
	).Scan(&exists)
	if err != nil {
		return false, fail(span, fmt.Errorf("fingerprint exists: %w", err))
	}
	return exists, nil
}

// ListUnprocessedRawSignals returns up to limit unprocessed signals in
// admission order. A limit of zero or less returns them all.
func (s *Store) ListUnprocessedRawSignals(ctx context.Context, limit int) ([]*recall.RawSignal, error) {
	ctx, span := startSpan(ctx, "pgstore.ListUnprocessedRawSignals", "SELECT")
	defer span.End()

	query := `SELECT id, fingerprint, source_kind, origin, payload, ingested_at, processed
		 FROM raw_signals WHERE NOT processed ORDER BY ingested_at`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fail(span, fmt.Errorf("query unprocessed: %w", err))
	}
	defer rows.Close()

	var out []*recall.RawSignal
	for rows.Next() {
		var (
			sig  recall.RawSignal
			kind string
		)
		if err := rows.Scan(&sig.ID, &sig.Fingerprint, &kind, &sig.Origin, &sig.Payload, &sig.IngestedAt, &sig.Processed); err != nil {
			return nil, fail(span, fmt.Errorf("scan raw signal: %w", err))
		}
		sig.SourceKind = recall.SourceKind(kind)
		out = append(out, &sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(span, fmt.Errorf("iterate raw signals: %w", err))
	}
	return out, nil
}

// MarkRawSignalProcessed flags a signal as consumed.
func (s *Store) MarkRawSignalProcessed(ctx context.Context, id string) error {
	ctx, span := startSpan(ctx, "pgstore.MarkRawSignalProcessed", "UPDATE")
	defer span.End()

	if _, err := s.pool.Exec(ctx, `UPDATE raw_signals SET processed = TRUE WHERE id = $1`, id); err != nil {
		return fail(span, fmt.Errorf("mark processed: %w", err))
	}
	return nil
}

const recallColumns = `id, title, brand, hazard_summary, region, confidence_level,
	signal_type, url, published_date, created_at, updated_at`

// InsertRecall stores one canonical recall.
func (s *Store) InsertRecall(ctx context.Context, r *recall.Recall) error {
	ctx, span := startSpan(ctx, "pgstore.InsertRecall", "INSERT")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO recalls (`+recallColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		r.ID, r.Title, r.Brand, r.HazardSummary, string(r.Region), string(r.Confidence),
		string(r.SignalType), r.URL, r.PublishedDate, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fail(span, fmt.Errorf("insert recall: %w", err))
	}
	return nil
}

// GetRecall retrieves a recall by ID.
func (s *Store) GetRecall(ctx context.Context, id string) (*recall.Recall, bool, error) {
	ctx, span := startSpan(ctx, "pgstore.GetRecall", "SELECT")
	defer span.End()

	r, err := scanRecallRow(s.pool.QueryRow(ctx,
		`SELECT `+recallColumns+` FROM recalls WHERE id = $1`, id))
	if err != nil {
		return nil, false, fail(span, err)
	}
	if r == nil {
		return nil, false, nil
	}
	return r, true, nil
}

// ListRecallsByRegion returns all recalls in a region, newest first.
func (s *Store) ListRecallsByRegion(ctx context.Context, region recall.Region) ([]*recall.Recall, error) {
	ctx, span := startSpan(ctx, "pgstore.ListRecallsByRegion", "SELECT")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT `+recallColumns+` FROM recalls WHERE region = $1 ORDER BY created_at DESC, id DESC`,
		string(region),
	)
	if err != nil {
		return nil, fail(span, fmt.Errorf("query recalls by region: %w", err))
	}
	defer rows.Close()

	out, err := scanRecallRows(rows)
	if err != nil {
		return nil, fail(span, err)
	}
	return out, nil
}

// ListRecalls returns filtered recalls, newest first, offset+limit paged.
func (s *Store) ListRecalls(ctx context.Context, f recall.RecallFilter) ([]*recall.Recall, error) {
	ctx, span := startSpan(ctx, "pgstore.ListRecalls", "SELECT")
	defer span.End()

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Region != "" {
		where = append(where, "region = "+arg(string(f.Region)))
	}
	if f.Confidence != "" {
		where = append(where, "confidence_level = "+arg(string(f.Confidence)))
	}
	if f.SignalType != "" {
		where = append(where, "signal_type = "+arg(string(f.SignalType)))
	}
	if f.Query != "" {
		where = append(where, "title ILIKE "+arg("%"+f.Query+"%"))
	}
	if !f.From.IsZero() {
		where = append(where, "created_at >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "created_at <= "+arg(f.To))
	}

	query := `SELECT ` + recallColumns + ` FROM recalls`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fail(span, fmt.Errorf("query recalls: %w", err))
	}
	defer rows.Close()

	out, err := scanRecallRows(rows)
	if err != nil {
		return nil, fail(span, err)
	}
	return out, nil
}

// InsertRecallSource appends one evidence link.
func (s *Store) InsertRecallSource(ctx context.Context, src *recall.RecallSource) error {
	ctx, span := startSpan(ctx, "pgstore.InsertRecallSource", "INSERT")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO recall_sources (id, recall_id, source_kind, url, title, published_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (recall_id, url) DO NOTHING`,
		src.ID, src.RecallID, string(src.SourceKind), src.URL, src.Title, src.PublishedAt,
	)
	if err != nil {
		return fail(span, fmt.Errorf("insert recall source: %w", err))
	}
	return nil
}

// RecallSourceExists reports whether the recall already links this URL.
func (s *Store) RecallSourceExists(ctx context.Context, recallID, url string) (bool, error) {
	ctx, span := startSpan(ctx, "pgstore.RecallSourceExists", "SELECT")
	defer span.End()

	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM recall_sources WHERE recall_id = $1 AND url = $2)`,
		recallID, url,
	).Scan(&exists)
	if err != nil {
		return false, fail(span, fmt.Errorf("recall source exists: %w", err))
	}
	return exists, nil
}

// ListRecallSources returns the evidence links of a recall.
func (s *Store) ListRecallSources(ctx context.Context, recallID string) ([]*recall.RecallSource, error) {
	ctx, span := startSpan(ctx, "pgstore.ListRecallSources", "SELECT")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT id, recall_id, source_kind, url, title, published_at
		 FROM recall_sources WHERE recall_id = $1 ORDER BY id`,
		recallID,
	)
	if err != nil {
		return nil, fail(span, fmt.Errorf("query recall sources: %w", err))
	}
	defer rows.Close()

	var out []*recall.RecallSource
	for rows.Next() {
		var (
			src  recall.RecallSource
			kind string
		)
		if err := rows.Scan(&src.ID, &src.RecallID, &kind, &src.URL, &src.Title, &src.PublishedAt); err != nil {
			return nil, fail(span, fmt.Errorf("scan recall source: %w", err))
		}
		src.SourceKind = recall.SourceKind(kind)
		out = append(out, &src)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(span, fmt.Errorf("iterate recall sources: %w", err))
	}
	return out, nil
}

// ListWatchlists returns every watchlist entry.
func (s *Store) ListWatchlists(ctx context.Context) ([]*recall.Watchlist, error) {
	ctx, span := startSpan(ctx, "pgstore.ListWatchlists", "SELECT")
	defer span.End()

	rows, err := s.pool.Query(ctx, `SELECT id, owner_id, type, value FROM watchlists ORDER BY id`)
	if err != nil {
		return nil, fail(span, fmt.Errorf("query watchlists: %w", err))
	}
	defer rows.Close()

	var out []*recall.Watchlist
	for rows.Next() {
		var (
			w   recall.Watchlist
			typ string
		)
		if err := rows.Scan(&w.ID, &w.OwnerID, &typ, &w.Value); err != nil {
			return nil, fail(span, fmt.Errorf("scan watchlist: %w", err))
		}
		w.Type = recall.WatchType(typ)
		out = append(out, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(span, fmt.Errorf("iterate watchlists: %w", err))
	}
	return out, nil
}

// PutWatchlist inserts or replaces a watchlist entry.
func (s *Store) PutWatchlist(ctx context.Context, w *recall.Watchlist) error {
	ctx, span := startSpan(ctx, "pgstore.PutWatchlist", "UPSERT")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO watchlists (id, owner_id, type, value)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			type     = EXCLUDED.type,
			value    = EXCLUDED.value`,
		w.ID, w.OwnerID, string(w.Type), w.Value,
	)
	if err != nil {
		return fail(span, fmt.Errorf("upsert watchlist: %w", err))
	}
	return nil
}

func scanRecallRows(rows pgx.Rows) ([]*recall.Recall, error) {
	var out []*recall.Recall
	for rows.Next() {
		r, err := scanRecall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recalls: %w", err)
	}
	return out, nil
}

// scanRecallRow scans a single row into a recall.Recall.
// Returns (nil, nil) when no row is found.
func scanRecallRow(row pgx.Row) (*recall.Recall, error) {
	r, err := scanRecall(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

func scanRecall(row pgx.Row) (*recall.Recall, error) {
	var (
		r          recall.Recall
		region     string
		confidence string
		signalType string
		published  *time.Time
	)
	err := row.Scan(
		&r.ID, &r.Title, &r.Brand, &r.HazardSummary, &region, &confidence,
		&signalType, &r.URL, &published, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan recall: %w", err)
	}
	r.Region = recall.Region(region)
	r.Confidence = recall.ConfidenceLevel(confidence)
	r.SignalType = recall.SignalType(signalType)
	r.PublishedDate = published
	return &r, nil
}
