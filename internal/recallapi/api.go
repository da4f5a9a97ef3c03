// Package recallapi exposes the read API over canonical recalls and
// the admin cycle trigger.
package recallapi

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/redalert/internal/authmw"
	"github.com/linnemanlabs/redalert/internal/recall"
)

// RecallReader is the read surface the API needs from the store.
type RecallReader interface {
	GetRecall(ctx context.Context, id string) (*recall.Recall, bool, error)
	ListRecalls(ctx context.Context, f recall.RecallFilter) ([]*recall.Recall, error)
	ListRecallSources(ctx context.Context, recallID string) ([]*recall.RecallSource, error)
}

// CycleRunner triggers one ingestion cycle on demand.
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger     log.Logger
	store      RecallReader
	cycles     CycleRunner
	adminToken string
}

// New creates a new API handler.
func New(logger log.Logger, store RecallReader, cycles CycleRunner, adminToken string) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if store == nil {
		panic(xerrors.New("recall store is required"))
	}
	return &API{
		logger:     logger,
		store:      store,
		cycles:     cycles,
		adminToken: adminToken,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/recalls", a.handleListRecalls)
		r.Get("/recalls/{id}", a.handleGetRecall)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authmw.BearerToken(a.adminToken))
			r.Post("/cycle", a.handleTriggerCycle)
		})
	})
}
