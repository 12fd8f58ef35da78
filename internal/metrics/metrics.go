package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danielpatrickdp/trait-interview/internal/interview"
	"github.com/danielpatrickdp/trait-interview/internal/quality"
)

const namespace = "trait_interview"

// Oracle call labels.
const (
	CallNextStep = "next_step"
	CallAnalyze  = "analyze"
)

// Metrics exposes Prometheus collectors for interview activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	turns          *prometheus.CounterVec
	warnings       *prometheus.CounterVec
	oracleFailures *prometheus.CounterVec
	matches        prometheus.Counter
	similarity     prometheus.Histogram
	sessionsActive prometheus.Gauge
}

// New registers the collectors with reg. Pass a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed session operations by progression action.",
		}, []string{"action"}),
		warnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quality_warnings_total",
			Help:      "Low-effort warnings raised by kind.",
		}, []string{"kind"}),
		oracleFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_failures_total",
			Help:      "Failed or malformed oracle calls by call type.",
		}, []string{"call"}),
		matches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archetype_matches_total",
			Help:      "Final profiles matched against the archetype corpus.",
		}),
		similarity: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "archetype_match_similarity",
			Help:      "Cosine similarity of the best archetype match.",
			Buckets:   []float64{0.5, 0.7, 0.8, 0.9, 0.95, 0.98, 0.99, 1},
		}),
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Interview sessions started and not yet finished.",
		}),
	}
}

// RecordTurn counts a successful turn and any warning it raised.
func (m *Metrics) RecordTurn(turn interview.Turn) {
	if m == nil || turn.NoOp {
		return
	}
	m.turns.WithLabelValues(string(turn.Decision.Action)).Inc()
	if turn.Flag != quality.KindNone {
		m.warnings.WithLabelValues(string(turn.Flag)).Inc()
	}
	switch {
	case turn.Decision.Action == interview.ActionStart:
		m.sessionsActive.Inc()
	case turn.Done():
		m.sessionsActive.Dec()
	}
}

// RecordOracleFailure counts a failed oracle call.
func (m *Metrics) RecordOracleFailure(call string) {
	if m == nil {
		return
	}
	m.oracleFailures.WithLabelValues(call).Inc()
}

// RecordMatch observes a final archetype match.
func (m *Metrics) RecordMatch(similarity float64) {
	if m == nil {
		return
	}
	m.matches.Inc()
	m.similarity.Observe(similarity)
}

// SessionDropped decrements the active gauge for a session abandoned
// before it finished.
func (m *Metrics) SessionDropped() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}
