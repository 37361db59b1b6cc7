package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
)

var errStreamingUnsupported = errors.New("streaming not supported")

// eventStream is a StreamSink writing server-sent events. Data lines are JSON
// so fragments containing newlines survive framing.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

var _ contractx.StreamSink = (*eventStream)(nil)

func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &eventStream{w: w, flusher: flusher}, nil
}

func (s *eventStream) Send(ctx context.Context, fragment string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.event("token", fragment)
}

func (s *eventStream) event(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
