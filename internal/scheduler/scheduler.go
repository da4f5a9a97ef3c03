// Package scheduler drives periodic ingestion cycles. A cycle fans
// out to every collector, admits what they fetched, then processes
// one bounded batch through the pipeline. Cycles never overlap: a
// tick that fires while the previous cycle still runs is skipped.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/redalert/internal/ingest"
	"github.com/linnemanlabs/redalert/internal/recall"
)

// ErrCycleRunning is returned by RunCycle when a cycle is already in
// flight. Callers treat it as "try again later", not a failure.
var ErrCycleRunning = errors.New("cycle already running")

// Scheduler owns the cron loop and the cycle body.
type Scheduler struct {
	pipeline     *recall.Pipeline
	collectors   []ingest.Collector
	interval     time.Duration
	fetchTimeout time.Duration
	batchLimit   int
	logger       log.Logger
	metrics      *recall.Metrics

	// runMu serializes cycles from every entry point, cron ticks and
	// manual triggers alike.
	runMu sync.Mutex
	cron  *cron.Cron
}

// Options configures a Scheduler.
type Options struct {
	Interval     time.Duration
	FetchTimeout time.Duration
	BatchLimit   int
	Logger       log.Logger
	Metrics      *recall.Metrics
}

// New builds a Scheduler. The cron loop is not started until Start.
func New(pipeline *recall.Pipeline, collectors []ingest.Collector, opts Options) *Scheduler {
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	return &Scheduler{
		pipeline:     pipeline,
		collectors:   collectors,
		interval:     opts.Interval,
		fetchTimeout: opts.FetchTimeout,
		batchLimit:   opts.BatchLimit,
		logger:       logger,
		metrics:      opts.Metrics,
	}
}

// Start schedules the recurring cycle and begins ticking. ctx is the
// lifetime context every cycle runs under.
func (s *Scheduler) Start(ctx context.Context) error {
	cl := cronLogger{logger: s.logger}
	s.cron = cron.New(cron.WithChain(
		cron.Recover(cl),
		cron.SkipIfStillRunning(cl),
	))

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() {
		switch err := s.RunCycle(ctx); {
		case errors.Is(err, ErrCycleRunning):
			s.logger.Info(ctx, "cycle tick skipped, previous cycle still running")
		case err != nil:
			s.logger.Error(ctx, err, "cycle failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule cycle: %w", err)
	}

	s.cron.Start()
	s.logger.Info(ctx, "scheduler started", "interval", s.interval.String())
	return nil
}

// Stop halts ticking and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// RunCycle executes one full fetch-admit-process cycle. It is also
// called directly for manual triggers. At most one cycle runs at a
// time; overlapping calls return ErrCycleRunning immediately.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	if !s.runMu.TryLock() {
		return ErrCycleRunning
	}
	defer s.runMu.Unlock()

	start := time.Now()
	s.logger.Info(ctx, "cycle started", "collectors", len(s.collectors))

	results := ingest.FetchAll(ctx, s.logger, s.collectors, s.fetchTimeout)

	var fetched, admitted int
	for _, res := range results {
		if res.Err != nil {
			if s.metrics != nil {
				s.metrics.CollectorErrors.WithLabelValues(res.Collector).Inc()
			}
			continue
		}
		for _, item := range res.Items {
			fetched++
			if s.metrics != nil {
				s.metrics.SignalsFetched.WithLabelValues(res.Origin).Inc()
			}
			ok, err := s.pipeline.Admit(ctx, res.Kind, item)
			if err != nil {
				s.logger.Error(ctx, err, "admit failed",
					"collector", res.Collector,
					"title", item.Title,
				)
				continue
			}
			if ok {
				admitted++
			}
		}
	}

	created, err := s.pipeline.ProcessBatch(ctx, s.batchLimit)
	dur := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	if s.metrics != nil {
		s.metrics.CyclesTotal.WithLabelValues(status).Inc()
		s.metrics.CycleDuration.Observe(dur.Seconds())
	}

	if err != nil {
		return fmt.Errorf("process batch: %w", err)
	}

	s.logger.Info(ctx, "cycle complete",
		"fetched", fetched,
		"admitted", admitted,
		"recalls_created", created,
		"duration", dur.Seconds(),
	)
	return nil
}

// cronLogger adapts the structured logger to the cron.Logger shape.
type cronLogger struct {
	logger log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.logger.Info(context.Background(), "cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.logger.Error(context.Background(), err, "cron: "+msg, keysAndValues...)
}
