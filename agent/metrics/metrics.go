package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
)

const namespace = "career_mentor"

// Recorder is a prometheus backed TurnObserver.
type Recorder struct {
	turns           *prometheus.CounterVec
	turnDuration    *prometheus.HistogramVec
	handoffs        *prometheus.CounterVec
	invalidHandoffs *prometheus.CounterVec
	toolCalls       *prometheus.CounterVec
}

var _ contractx.TurnObserver = (*Recorder)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_total",
				Help:      "Finalized turns by answering specialist and outcome.",
			},
			[]string{"specialist", "outcome"},
		),
		turnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "turn_duration_seconds",
				Help:      "Wall time of a turn including streaming.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"specialist"},
		),
		handoffs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handoffs_total",
				Help:      "Delegations from the entry specialist.",
			},
			[]string{"from", "to"},
		),
		invalidHandoffs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invalid_handoffs_total",
				Help:      "Handoff signals naming an undeclared target.",
			},
			[]string{"from"},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Tool invocations by tool and whether it was registered.",
			},
			[]string{"tool", "found"},
		),
	}

	for _, c := range []prometheus.Collector{r.turns, r.turnDuration, r.handoffs, r.invalidHandoffs, r.toolCalls} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) TurnFinished(specialist, outcome string, elapsed time.Duration) {
	r.turns.WithLabelValues(specialist, outcome).Inc()
	r.turnDuration.WithLabelValues(specialist).Observe(elapsed.Seconds())
}

func (r *Recorder) Handoff(from, to string) {
	r.handoffs.WithLabelValues(from, to).Inc()
}

// InvalidHandoff drops the target label: it comes from model output and is
// unbounded.
func (r *Recorder) InvalidHandoff(from, _ string) {
	r.invalidHandoffs.WithLabelValues(from).Inc()
}

func (r *Recorder) ToolInvoked(tool string, found bool) {
	label := "true"
	if !found {
		label = "false"
	}
	r.toolCalls.WithLabelValues(tool, label).Inc()
}
