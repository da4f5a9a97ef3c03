package recall

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the ingest/processing pipeline.
type Metrics struct {
	SignalsFetched   *prometheus.CounterVec
	SignalsAdmitted  *prometheus.CounterVec
	SignalsRejected  *prometheus.CounterVec
	ItemsDropped     *prometheus.CounterVec
	ItemErrors       prometheus.Counter
	RecallsCreated   *prometheus.CounterVec
	MergesTotal      *prometheus.CounterVec
	AlertsDispatched *prometheus.CounterVec
	CollectorErrors  *prometheus.CounterVec
	CyclesTotal      *prometheus.CounterVec
	CycleDuration    prometheus.Histogram
	BatchSize        prometheus.Histogram
}

// NewMetrics registers and returns pipeline metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SignalsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redalert_signals_fetched_total",
			Help: "Items returned by source collectors, by origin.",
		}, []string{"origin"}),
		SignalsAdmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redalert_signals_admitted_total",
			Help: "Items admitted through the intake gate, by origin.",
		}, []string{"origin"}),
		SignalsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redalert_signals_rejected_total",
			Help: "Items rejected at the intake gate as exact repeats, by origin.",
		}, []string{"origin"}),
		ItemsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redalert_items_dropped_total",
			Help: "Signals dropped during processing, by reason.",
		}, []string{"reason"}),
		ItemErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "redalert_item_errors_total",
			Help: "Signals skipped because of per-item processing errors.",
		}),
		RecallsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redalert_recalls_created_total",
			Help: "Canonical recalls created, by region and confidence.",
		}, []string{"region", "confidence"}),
		MergesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redalert_merges_total",
			Help: "Candidates merged into an existing recall, by region.",
		}, []string{"region"}),
		AlertsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redalert_alerts_dispatched_total",
			Help: "Watchlist notifications handed to the notifier, by result.",
		}, []string{"result"}),
		CollectorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redalert_collector_errors_total",
			Help: "Collector fetches that failed and yielded an empty set, by collector.",
		}, []string{"collector"}),
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redalert_cycles_total",
			Help: "Ingestion cycles run, by outcome.",
		}, []string{"status"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "redalert_cycle_duration_seconds",
			Help:    "Duration of full ingestion cycles in seconds.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s .. ~512s
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "redalert_batch_signals",
			Help:    "Unprocessed signals picked up per processing batch.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 .. 512
		}),
	}

	reg.MustRegister(
		m.SignalsFetched,
		m.SignalsAdmitted,
		m.SignalsRejected,
		m.ItemsDropped,
		m.ItemErrors,
		m.RecallsCreated,
		m.MergesTotal,
		m.AlertsDispatched,
		m.CollectorErrors,
		m.CyclesTotal,
		m.CycleDuration,
		m.BatchSize,
	)

	return m
}
