package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r, err := New(reg)
	require.NoError(t, err)

	r.TurnFinished("SkillAgent", "ok", 1500*time.Millisecond)
	r.TurnFinished("SkillAgent", "ok", time.Second)
	r.TurnFinished("JobAgent", "error", time.Second)
	r.Handoff("CareerMentorTriageAgent", "SkillAgent")
	r.InvalidHandoff("CareerMentorTriageAgent", "LawAgent")
	r.ToolInvoked("get_career_roadmap", true)
	r.ToolInvoked("get_salary_table", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.turns.WithLabelValues("SkillAgent", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.turns.WithLabelValues("JobAgent", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.handoffs.WithLabelValues("CareerMentorTriageAgent", "SkillAgent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.invalidHandoffs.WithLabelValues("CareerMentorTriageAgent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.toolCalls.WithLabelValues("get_salary_table", "false")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.turnDuration))
}

func TestNewRejectsDoubleRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	require.Error(t, err)
}
