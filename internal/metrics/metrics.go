package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IngestMetrics holds the Prometheus counters for the ingest process.
type IngestMetrics struct {
	DatagramsTotal  prometheus.Counter
	EventsStored    prometheus.Counter
	StoreErrors     prometheus.Counter
	EmptyExtraction prometheus.Counter
}

// NewIngest creates the ingest counters and registers them with the
// default registry.
func NewIngest() *IngestMetrics {
	return &IngestMetrics{
		DatagramsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "logsentry_ingest_datagrams_total",
			Help: "Total number of datagrams received",
		}),
		EventsStored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "logsentry_ingest_events_stored_total",
			Help: "Total number of events appended to the event store",
		}),
		StoreErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "logsentry_ingest_store_errors_total",
			Help: "Total number of events dropped due to store write failures",
		}),
		EmptyExtraction: promauto.NewCounter(prometheus.CounterOpts{
			Name: "logsentry_ingest_empty_extractions_total",
			Help: "Total number of lines that yielded no recognizable fields",
		}),
	}
}

// EngineMetrics holds the Prometheus counters for the rule engine.
type EngineMetrics struct {
	CyclesTotal      prometheus.Counter
	DegradedCycles   prometheus.Counter
	RuleErrors       *prometheus.CounterVec
	AlertsTotal      *prometheus.CounterVec
	AlertsSuppressed *prometheus.CounterVec
}

// NewEngine creates the rule engine counters and registers them with
// the default registry.
func NewEngine() *EngineMetrics {
	return &EngineMetrics{
		CyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "logsentry_rules_cycles_total",
			Help: "Total number of evaluation cycles started",
		}),
		DegradedCycles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "logsentry_rules_degraded_cycles_total",
			Help: "Total number of cycles skipped because the store was unavailable",
		}),
		RuleErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "logsentry_rules_errors_total",
			Help: "Total number of per-rule evaluation errors",
		}, []string{"rule"}),
		AlertsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "logsentry_alerts_total",
			Help: "Total number of alerts written to the alert store",
		}, []string{"rule"}),
		AlertsSuppressed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "logsentry_alerts_suppressed_total",
			Help: "Total number of alerts dropped by the suppression window",
		}, []string{"rule"}),
	}
}
