package orchestratornode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	statex "github.com/tanpawarit/career-mentor-ai/agent/state"
	toolx "github.com/tanpawarit/career-mentor-ai/agent/tool"
)

const resolveYourselfNote = "Answer the user's request yourself. Do not hand off."

// Resolve runs the active specialist until it has answered. Text is
// forwarded to the sink the moment it arrives; tool and handoff signals are
// acted upon and never forwarded. Backend failures are recorded on the state
// for FinalizeReply rather than returned.
func Resolve(ctx context.Context, in *GraphState, deps Deps) (*GraphState, error) {
	if in == nil || in.Active == nil {
		return nil, fmt.Errorf("%w: graph state has no active specialist", contractx.ErrValidation)
	}

	// The deadline bounds generation only; the sink keeps the caller's ctx so
	// a late fragment is not mistaken for a vanished consumer.
	sinkCtx := ctx
	if deps.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deps.TurnTimeout)
		defer cancel()
	}

	r := &resolver{
		in:       in,
		deps:     deps,
		sinkCtx:  sinkCtx,
		budget:   deps.MaxToolCalls,
		handoffs: deps.Router == nil && !in.Delegated,
		history:  in.History.Append(statex.UserMessage(in.Text)),
	}
	r.run(ctx)
	return in, nil
}

type resolver struct {
	in      *GraphState
	deps    Deps
	sinkCtx context.Context

	budget   int
	handoffs bool
	retried  bool

	history   statex.History
	exchanges []contractx.ToolExchange
	notes     []string
}

type pass struct {
	text           string
	call           *contractx.ToolCall
	handoff        string
	invalidHandoff bool
}

func (r *resolver) run(ctx context.Context) {
	for {
		p, err := r.stream(ctx, r.request())
		if r.in.Canceled {
			return
		}
		if err != nil {
			r.fail(ctx, err)
			return
		}

		switch {
		case p.handoff != "":
			if err := switchTo(r.in, r.deps, p.handoff); err != nil {
				r.fail(ctx, err)
				return
			}
			r.handoffs = false
			r.exchanges = nil
			r.notes = nil
		case p.call != nil:
			r.invoke(p)
		case p.invalidHandoff && strings.TrimSpace(p.text) == "" && !r.retried:
			r.retried = true
			r.handoffs = false
			r.notes = append(r.notes, resolveYourselfNote)
		default:
			return
		}
	}
}

func (r *resolver) request() contractx.GenerateRequest {
	active := r.in.Active
	req := contractx.GenerateRequest{
		Specialist:   active.Name,
		Instructions: active.Instructions,
		History:      r.history,
		Exchanges:    append([]contractx.ToolExchange(nil), r.exchanges...),
		Notes:        append([]string(nil), r.notes...),
	}
	if r.budget > 0 {
		req.Tools = r.deps.Tools.Specs(active.Tools)
	}
	if r.handoffs {
		req.Handoffs = r.deps.Set.HandoffSpecs(active.Name)
	}
	return req
}

// stream consumes one generation pass. A valid handoff ends the pass early;
// closing the reader tells the producer to stop.
func (r *resolver) stream(ctx context.Context, req contractx.GenerateRequest) (pass, error) {
	var p pass

	sr, err := r.deps.Backend.Stream(ctx, req)
	if err != nil {
		r.checkCanceled(ctx)
		return p, err
	}
	defer sr.Close()

	var text strings.Builder

	for {
		frag, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			p.text = text.String()
			return p, nil
		}
		if err != nil {
			r.checkCanceled(ctx)
			p.text = text.String()
			return p, err
		}

		switch frag.Kind {
		case contractx.FragmentText:
			if frag.Text == "" {
				continue
			}
			if err := r.in.Sink.Send(r.sinkCtx, frag.Text); err != nil {
				log.Info().Err(err).Str("session_id", r.in.SessionID).Msg("stream consumer gone, abandoning turn")
				r.in.Canceled = true
				return p, nil
			}
			r.in.Reply += frag.Text
			text.WriteString(frag.Text)

		case contractx.FragmentToolCall:
			if frag.ToolCall == nil {
				continue
			}
			if p.call != nil || r.budget <= 0 {
				log.Warn().
					Str("session_id", r.in.SessionID).
					Str("specialist", req.Specialist).
					Str("tool", frag.ToolCall.Name).
					Msg("tool budget spent, ignoring tool call")
				continue
			}
			call := *frag.ToolCall
			p.call = &call

		case contractx.FragmentHandoff:
			if r.handoffs && r.deps.Set.CanHandoff(req.Specialist, frag.Handoff) {
				p.handoff = frag.Handoff
				p.text = text.String()
				return p, nil
			}
			r.deps.observer().InvalidHandoff(req.Specialist, frag.Handoff)
			log.Warn().
				Err(fmt.Errorf("%w: %s -> %s", contractx.ErrInvalidHandoff, req.Specialist, frag.Handoff)).
				Str("session_id", r.in.SessionID).
				Msg("ignoring handoff")
			p.invalidHandoff = true
		}
	}
}

// checkCanceled marks the turn canceled when the caller went away. A turn
// deadline is not a cancellation: it surfaces as an unavailable backend.
func (r *resolver) checkCanceled(ctx context.Context) {
	if errors.Is(ctx.Err(), context.Canceled) {
		r.in.Canceled = true
	}
}

func (r *resolver) invoke(p pass) {
	call := *p.call
	active := r.in.Active
	r.budget--
	r.handoffs = false

	var (
		result string
		found  bool
	)
	if !active.CanUseTool(call.Name) {
		result = toolx.NotFoundText(call.Name)
		log.Warn().
			Err(fmt.Errorf("%w: %s", contractx.ErrToolNotAllowed, call.Name)).
			Str("session_id", r.in.SessionID).
			Str("specialist", active.Name).
			Msg("specialist called an undeclared tool, using fallback")
	} else {
		out, err := r.deps.Tools.Invoke(call.Name, call.Args)
		found = err == nil
		result = out
		if err != nil {
			if result == "" {
				result = toolx.NotFoundText(call.Name)
			}
			log.Error().
				Err(err).
				Str("session_id", r.in.SessionID).
				Str("specialist", active.Name).
				Str("tool", call.Name).
				Msg("tool lookup failed, using fallback")
		}
	}

	r.deps.observer().ToolInvoked(call.Name, found)
	r.in.ToolCalls = append(r.in.ToolCalls, call)
	r.exchanges = append(r.exchanges, contractx.ToolExchange{
		Preamble: p.text,
		Call:     call,
		Result:   result,
	})
}

func (r *resolver) fail(ctx context.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", contractx.ErrBackendUnavailable, err)
	}
	r.in.Failure = err
	log.Error().
		Err(err).
		Str("session_id", r.in.SessionID).
		Str("specialist", r.in.Active.Name).
		Msg("generation failed")
}
