package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	metricPrefix = "fleetledger_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	fuelEstimates *prometheus.CounterVec

	ledgerAggregations       *prometheus.CounterVec
	ledgerAggregationLatency *prometheus.HistogramVec
	ledgerEventsFolded       prometheus.Counter

	statementImports     *prometheus.CounterVec
	statementImportLines *prometheus.CounterVec

	statementExports       *prometheus.CounterVec
	statementExportLatency *prometheus.HistogramVec
)

// Init registers the collectors with the default registry. db may be nil.
func Init(db *sql.DB) {
	registerOnce.Do(func() {
		fuelEstimates = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "fuel_estimates_total",
				Help: "Total fuel estimates by kind and result",
			},
			[]string{"kind", "result"},
		)

		ledgerAggregations = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_aggregations_total",
				Help: "Total ledger aggregations by operation and result",
			},
			[]string{"op", "result"},
		)
		ledgerAggregationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ledger_aggregation_latency_seconds",
				Help:    "Ledger aggregation latency in seconds, store read included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		)
		ledgerEventsFolded = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_events_folded_total",
				Help: "Total events folded into summaries",
			},
		)

		statementImports = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "statement_imports_total",
				Help: "Total statement imports by profile and result",
			},
			[]string{"profile", "result"},
		)
		statementImportLines = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "statement_import_lines_total",
				Help: "Total statement lines imported by profile",
			},
			[]string{"profile"},
		)

		statementExports = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "statement_exports_total",
				Help: "Total statement exports by format and result",
			},
			[]string{"format", "result"},
		)
		statementExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "statement_export_latency_seconds",
				Help:    "Statement export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)

		prometheus.MustRegister(
			fuelEstimates,
			ledgerAggregations,
			ledgerAggregationLatency,
			ledgerEventsFolded,
			statementImports,
			statementImportLines,
			statementExports,
			statementExportLatency,
		)

		if db != nil {
			prometheus.MustRegister(collectors.NewDBStatsCollector(db, "fleetledger"))
		}
	})
}

func result(err error) string {
	if err != nil {
		return ResultError
	}

	return ResultSuccess
}

// ObserveFuelEstimate counts an estimate; kind is "estimate" or "compare".
func ObserveFuelEstimate(kind string, err error) {
	if fuelEstimates != nil {
		fuelEstimates.WithLabelValues(kind, result(err)).Inc()
	}
}

func ObserveLedgerAggregation(op string, events int, duration time.Duration, err error) {
	if ledgerAggregations != nil {
		ledgerAggregations.WithLabelValues(op, result(err)).Inc()
	}

	if ledgerAggregationLatency != nil {
		ledgerAggregationLatency.WithLabelValues(op).Observe(duration.Seconds())
	}

	if ledgerEventsFolded != nil && err == nil && events > 0 {
		ledgerEventsFolded.Add(float64(events))
	}
}

func ObserveImport(profile string, lines int, err error) {
	if profile == "" {
		profile = "unknown"
	}

	if statementImports != nil {
		statementImports.WithLabelValues(profile, result(err)).Inc()
	}

	if statementImportLines != nil && err == nil {
		statementImportLines.WithLabelValues(profile).Add(float64(lines))
	}
}

func ObserveExport(format string, duration time.Duration, err error) {
	if statementExports != nil {
		statementExports.WithLabelValues(format, result(err)).Inc()
	}

	if statementExportLatency != nil {
		statementExportLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}
