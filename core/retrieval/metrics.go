package retrieval

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stages reported in the stage label
const (
	StageEmbed      = "embed"
	StageIndex      = "index"
	StagePostfilter = "postfilter"
	StageRerank     = "rerank"
)

// Metrics holds the retrieval pipeline collectors
type Metrics struct {
	Requests        prometheus.Counter
	Errors          *prometheus.CounterVec
	FiltersApplied  *prometheus.CounterVec
	StageCandidates *prometheus.HistogramVec
	Duration        prometheus.Histogram
}

// NewMetrics creates the retrieval collectors and registers them on reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounter(prometheus.CounterOpts{
			Name: "eventrag_retrieval_requests_total",
			Help: "Total number of retrieval requests",
		}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventrag_retrieval_errors_total",
			Help: "Total number of failed retrievals by stage",
		}, []string{"stage"}),
		FiltersApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventrag_retrieval_filters_total",
			Help: "Total number of extracted filters by field",
		}, []string{"field"}),
		StageCandidates: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eventrag_retrieval_stage_candidates",
			Help:    "Number of candidates leaving each pipeline stage",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 250, 500, 1000},
		}, []string{"stage"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventrag_retrieval_duration_seconds",
			Help:    "Duration of retrievals in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
