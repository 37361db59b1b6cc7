package contract

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"
)

// Backend is the generation capability. Stream starts one generation pass
// and returns the read end of a fragment pipe; the producer stops once the
// reader is closed or ctx is done.
type Backend interface {
	Stream(ctx context.Context, req GenerateRequest) (*schema.StreamReader[Fragment], error)
}

// Router decides whether a message should be delegated to one of the
// candidate targets. ok is false when the entry specialist should resolve the
// turn itself.
type Router interface {
	Classify(ctx context.Context, message string, candidates []HandoffSpec) (target string, ok bool, err error)
}

// ToolInvoker is the read-only view of the tool registry used during a turn.
type ToolInvoker interface {
	Invoke(name string, args map[string]any) (string, error)
	Specs(names []string) []ToolSpec
}

// StreamSink receives generated text in arrival order. It is owned by the
// transport; a Send error means the consumer is gone.
type StreamSink interface {
	Send(ctx context.Context, fragment string) error
}

// SinkFunc adapts a function to StreamSink.
type SinkFunc func(ctx context.Context, fragment string) error

func (f SinkFunc) Send(ctx context.Context, fragment string) error {
	return f(ctx, fragment)
}

// Discard is a StreamSink that drops everything.
var Discard StreamSink = SinkFunc(func(context.Context, string) error { return nil })

// TurnObserver receives turn lifecycle events for metrics.
type TurnObserver interface {
	TurnFinished(specialist, outcome string, elapsed time.Duration)
	Handoff(from, to string)
	InvalidHandoff(from, to string)
	ToolInvoked(tool string, found bool)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) TurnFinished(string, string, time.Duration) {}
func (NopObserver) Handoff(string, string)                     {}
func (NopObserver) InvalidHandoff(string, string)              {}
func (NopObserver) ToolInvoked(string, bool)                   {}
