package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
)

const (
	NodeDelegate = "delegate"
	NodeResolve  = "resolve"
)

// Route starts every turn at the entry specialist. With a router configured
// the delegation decision is made here; without one it is left to the entry
// specialist's own stream.
func Route(ctx context.Context, in *GraphState, deps Deps) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	entry := deps.Set.Entry()
	in.Active = entry
	if deps.Router == nil {
		return in, nil
	}

	target, ok, err := deps.Router.Classify(ctx, in.Text, deps.Set.HandoffSpecs(entry.Name))
	if err != nil {
		log.Warn().Err(err).Str("session_id", in.SessionID).Msg("router failed, entry specialist resolves")
		return in, nil
	}
	if !ok {
		return in, nil
	}
	if !deps.Set.CanHandoff(entry.Name, target) {
		deps.observer().InvalidHandoff(entry.Name, target)
		log.Warn().
			Err(fmt.Errorf("%w: %s -> %s", contractx.ErrInvalidHandoff, entry.Name, target)).
			Str("session_id", in.SessionID).
			Msg("router picked an undeclared target, ignoring")
		return in, nil
	}

	in.RouteTarget = target
	return in, nil
}

func NextAfterRoute(_ context.Context, in *GraphState) (string, error) {
	if in != nil && in.RouteTarget != "" {
		return NodeDelegate, nil
	}
	return NodeResolve, nil
}

// Delegate hands the whole remaining turn to the routed target.
func Delegate(in *GraphState, deps Deps) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if err := switchTo(in, deps, in.RouteTarget); err != nil {
		return nil, err
	}
	return in, nil
}

func switchTo(in *GraphState, deps Deps, target string) error {
	next, ok := deps.Set.Get(target)
	if !ok {
		return fmt.Errorf("%w: target=%s", contractx.ErrInvalidHandoff, target)
	}
	from := in.Active.Name
	deps.observer().Handoff(from, next.Name)
	log.Info().
		Str("session_id", in.SessionID).
		Str("specialist", from).
		Str("target", next.Name).
		Msg("handoff")

	in.Active = next
	in.Delegated = true
	return nil
}
