package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/danielpatrickdp/trait-interview/internal/interview"
	"github.com/danielpatrickdp/trait-interview/internal/quality"
)

func TestRecordTurn(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordTurn(interview.Turn{Decision: interview.Decision{Action: interview.ActionStart}})
	m.RecordTurn(interview.Turn{Decision: interview.Decision{Action: interview.ActionContinue}})
	m.RecordTurn(interview.Turn{Decision: interview.Decision{Action: interview.ActionSkip}, Flag: quality.KindSkip})
	m.RecordTurn(interview.Turn{Decision: interview.Decision{Action: interview.ActionBack}, NoOp: true})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.turns.WithLabelValues("start")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.turns.WithLabelValues("continue")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.turns.WithLabelValues("back")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.warnings.WithLabelValues("skip_streak")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsActive))

	m.RecordTurn(interview.Turn{
		Decision:   interview.Decision{Action: interview.ActionTerminate},
		Completion: &interview.Completion{},
	})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessionsActive))
}

func TestRecordOracleFailureAndMatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordOracleFailure(CallNextStep)
	m.RecordOracleFailure(CallNextStep)
	m.RecordOracleFailure(CallAnalyze)
	m.RecordMatch(0.97)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.oracleFailures.WithLabelValues(CallNextStep)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.oracleFailures.WithLabelValues(CallAnalyze)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.matches))
	assert.Equal(t, 1, testutil.CollectAndCount(m.similarity))

	count, err := testutil.GatherAndCount(reg, "trait_interview_archetype_matches_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordTurn(interview.Turn{Decision: interview.Decision{Action: interview.ActionStart}})
		m.RecordOracleFailure(CallAnalyze)
		m.RecordMatch(1)
		m.SessionDropped()
	})
}
