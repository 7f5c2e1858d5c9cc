package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RecordsStored counts normalized records written to storage.
	RecordsStored = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_records_stored_total",
		Help: "Normalized records written to storage",
	})

	// RowsDropped counts rows removed by validation, by reason.
	RowsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_rows_dropped_total",
		Help: "Rows removed by validation",
	}, []string{"reason"})

	// TickerOutcomes counts ticker results by terminal state.
	TickerOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_ticker_outcomes_total",
		Help: "Ticker results by terminal state",
	}, []string{"state"})

	// FetchFailures counts failed provider fetches.
	FetchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_fetch_failures_total",
		Help: "Failed provider fetches",
	})

	// StoreFailures counts failed storage writes.
	StoreFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_store_failures_total",
		Help: "Failed storage writes",
	})

	// TickerDuration observes wall time spent per ticker.
	TickerDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pipeline_ticker_duration_seconds",
		Help:    "Wall time spent per ticker",
		Buckets: prometheus.DefBuckets,
	})

	// RunDuration observes wall time per full run.
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pipeline_run_duration_seconds",
		Help:    "Wall time per full run",
		Buckets: prometheus.DefBuckets,
	})
)

// Register installs the pipeline collectors on the given registerer. Only
// the process exposing /metrics should call this; collectors work unexposed
// everywhere else.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		RecordsStored,
		RowsDropped,
		TickerOutcomes,
		FetchFailures,
		StoreFailures,
		TickerDuration,
		RunDuration,
	)
}
