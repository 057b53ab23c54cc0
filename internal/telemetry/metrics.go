package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the session-wide Prometheus instruments: how many
// vector sets were fetched, how fast the MCT engine churns through
// rounds, how long submissions take, and how often auth had to refresh.
type Metrics struct {
	VectorSetsFetched  *prometheus.CounterVec
	MCTRoundsTotal     prometheus.Counter
	MCTRoundDuration   prometheus.Histogram
	SubmitDuration     *prometheus.HistogramVec
	AuthRefreshesTotal prometheus.Counter
}

// NewMetrics registers the session's instruments against reg. With a
// nil reg the instruments are created but registered nowhere.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		VectorSetsFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "libacvp_vector_sets_fetched_total",
				Help: "Total vector sets fetched, by algorithm.",
			},
			[]string{"algorithm"},
		),
		MCTRoundsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "libacvp_mct_rounds_total",
			Help: "Total MCT inner rounds executed across all test cases.",
		}),
		MCTRoundDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "libacvp_mct_round_duration_seconds",
			Help:    "Duration of one MCT outer round (1000 inner rounds).",
			Buckets: prometheus.DefBuckets,
		}),
		SubmitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "libacvp_submit_duration_seconds",
				Help:    "Duration of a vector-set response submission, by algorithm.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"algorithm"},
		),
		AuthRefreshesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "libacvp_auth_refreshes_total",
			Help: "Total single-shot JWT refreshes performed by the auth controller.",
		}),
	}
}

// ObserveMCTOuterRound records one outer round's wall-clock duration
// and adds its 1000 inner rounds to the running total.
func (m *Metrics) ObserveMCTOuterRound(d time.Duration) {
	m.MCTRoundDuration.Observe(d.Seconds())
	m.MCTRoundsTotal.Add(1000)
}
