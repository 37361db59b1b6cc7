package orchestratornode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	statex "github.com/tanpawarit/career-mentor-ai/agent/state"
)

func TestCheckRequest(t *testing.T) {
	t.Parallel()

	id, text, err := CheckRequest("  s1 ", "  hi  ")
	if err != nil {
		t.Fatalf("CheckRequest() error = %v", err)
	}
	if id != "s1" || text != "hi" {
		t.Fatalf("unexpected trim: %q %q", id, text)
	}

	if _, _, err := CheckRequest(" ", "hi"); !errors.Is(err, statex.ErrInvalidSession) || !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected invalid session, got %v", err)
	}
	if _, _, err := CheckRequest("s1", "\n"); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected invalid message, got %v", err)
	}
}

func TestValidateRequestDefaultsSink(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	state, err := ValidateRequest(GraphInput{SessionID: "s1", Text: "hi"}, func() time.Time { return fixed })
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	if state.Sink == nil || !state.Started.Equal(fixed) {
		t.Fatalf("unexpected state: %#v", state)
	}
}

func TestErrorText(t *testing.T) {
	t.Parallel()

	unavailable := ErrorText(fmt.Errorf("%w: 503", contractx.ErrBackendUnavailable))
	generic := ErrorText(fmt.Errorf("%w: bad request", contractx.ErrBackend))
	for _, got := range []string{unavailable, generic} {
		if !strings.HasPrefix(got, contractx.ErrorMarker) {
			t.Fatalf("missing error marker: %q", got)
		}
	}
	if unavailable == generic {
		t.Fatal("unavailable and generic failures must read differently")
	}
	if strings.Contains(generic, "bad request") {
		t.Fatal("raw error text must not reach the user")
	}
}

type collectSink struct{ parts []string }

func (c *collectSink) Send(_ context.Context, s string) error {
	c.parts = append(c.parts, s)
	return nil
}

func TestFinalizeReplyAppendsErrorAfterPartialText(t *testing.T) {
	t.Parallel()

	sink := &collectSink{}
	in := &GraphState{SessionID: "s1", Sink: sink, Reply: "partial", Failure: contractx.ErrBackend}
	out, err := FinalizeReply(context.Background(), in)
	if err != nil {
		t.Fatalf("FinalizeReply() error = %v", err)
	}
	if len(sink.parts) != 1 || !strings.HasPrefix(sink.parts[0], "\n\n"+contractx.ErrorMarker) {
		t.Fatalf("unexpected delivery: %q", sink.parts)
	}
	if out.Reply != "partial"+sink.parts[0] {
		t.Fatalf("reply must equal delivered text, got %q", out.Reply)
	}
}

func TestFinalizeReplyEmptyAndCanceled(t *testing.T) {
	t.Parallel()

	sink := &collectSink{}
	out, err := FinalizeReply(context.Background(), &GraphState{Sink: sink})
	if err != nil {
		t.Fatalf("FinalizeReply() error = %v", err)
	}
	if out.Reply != emptyReplyText {
		t.Fatalf("expected empty-reply text, got %q", out.Reply)
	}

	canceled := &collectSink{}
	if _, err := FinalizeReply(context.Background(), &GraphState{Sink: canceled, Canceled: true, Failure: contractx.ErrBackend}); err != nil {
		t.Fatalf("FinalizeReply() error = %v", err)
	}
	if len(canceled.parts) != 0 {
		t.Fatalf("canceled turn must not deliver anything: %q", canceled.parts)
	}
}

func TestSaveHistoryDiscardsCanceledTurn(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	out, err := SaveHistory(context.Background(), &GraphState{SessionID: "s1", Text: "hi", Canceled: true}, store)
	if err != nil {
		t.Fatalf("SaveHistory() error = %v", err)
	}
	if !out.Canceled {
		t.Fatal("output must report the cancellation")
	}
	if _, err := store.Get(context.Background(), "s1"); !errors.Is(err, statex.ErrStateNotFound) {
		t.Fatalf("nothing may be written for a canceled turn, got %v", err)
	}
}
