package recallapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/redalert/internal/recall"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type recallResponse struct {
	*recall.Recall
	Sources []*recall.RecallSource `json:"sources,omitempty"`
}

func (a *API) handleListRecalls(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := recall.RecallFilter{
		Region:     recall.Region(q.Get("region")),
		Query:      q.Get("q"),
		Confidence: recall.ConfidenceLevel(q.Get("confidence")),
		SignalType: recall.SignalType(q.Get("signal_type")),
		Limit:      defaultListLimit,
	}

	if v := q.Get("from"); v != "" {
		t, err := parseQueryTime(v)
		if err != nil {
			http.Error(w, `{"error":"invalid from date"}`, http.StatusBadRequest)
			return
		}
		filter.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseQueryTime(v)
		if err != nil {
			http.Error(w, `{"error":"invalid to date"}`, http.StatusBadRequest)
			return
		}
		filter.To = t
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, `{"error":"invalid offset"}`, http.StatusBadRequest)
			return
		}
		filter.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, `{"error":"invalid limit"}`, http.StatusBadRequest)
			return
		}
		if n > maxListLimit {
			n = maxListLimit
		}
		filter.Limit = n
	}

	recalls, err := a.store.ListRecalls(r.Context(), filter)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to list recalls")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if recalls == nil {
		recalls = []*recall.Recall{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"recalls": recalls,
		"offset":  filter.Offset,
		"limit":   filter.Limit,
	})
}

func (a *API) handleGetRecall(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("redalert.recall.id", id))

	rec, ok, err := a.store.GetRecall(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get recall", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	sources, err := a.store.ListRecallSources(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to list recall sources", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.String("redalert.recall.region", string(rec.Region)))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(recallResponse{Recall: rec, Sources: sources})
}

func (a *API) handleTriggerCycle(w http.ResponseWriter, r *http.Request) {
	if a.cycles == nil {
		http.Error(w, `{"error":"cycles not available"}`, http.StatusServiceUnavailable)
		return
	}

	a.logger.Info(r.Context(), "manual cycle triggered")

	// The cycle outlives the request.
	ctx := context.WithoutCancel(r.Context())
	go func() {
		if err := a.cycles.RunCycle(ctx); err != nil {
			a.logger.Error(ctx, err, "manual cycle failed")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "cycle started"})
}

func parseQueryTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
