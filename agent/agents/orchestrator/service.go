package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	specialistx "github.com/tanpawarit/career-mentor-ai/agent/agents/specialist"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	nodex "github.com/tanpawarit/career-mentor-ai/agent/nodes"
	promptx "github.com/tanpawarit/career-mentor-ai/agent/prompt"
	routex "github.com/tanpawarit/career-mentor-ai/agent/route"
	statex "github.com/tanpawarit/career-mentor-ai/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = statex.ErrInvalidSession
)

const (
	RouterBackend = "backend"
	RouterKeyword = "keyword"
)

type Config struct {
	RouterMode   string        `envconfig:"ROUTER_MODE" split_words:"true" default:"backend"`
	MaxToolCalls int           `envconfig:"MAX_TOOL_CALLS" split_words:"true" default:"1"`
	TurnTimeout  time.Duration `envconfig:"TURN_TIMEOUT" split_words:"true" default:"2m"`
}

type Option func(*Orchestrator)

// WithRouter replaces the router selected by Config.RouterMode.
func WithRouter(r contractx.Router) Option {
	return func(o *Orchestrator) {
		o.deps.Router = r
		o.routerSet = true
	}
}

func WithObserver(obs contractx.TurnObserver) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.deps.Observer = obs
		}
	}
}

func WithLocks(l *statex.TurnLocks) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.locks = l
		}
	}
}

func WithWelcome(text string) Option {
	return func(o *Orchestrator) {
		o.welcome = strings.TrimSpace(text)
	}
}

type Orchestrator struct {
	deps      nodex.Deps
	locks     *statex.TurnLocks
	cfg       Config
	welcome   string
	routerSet bool

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	store statex.Store,
	set *specialistx.Set,
	tools contractx.ToolInvoker,
	backend contractx.Backend,
	cfg Config,
	opts ...Option,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if set == nil {
		return nil, errors.New("specialist set is required")
	}
	if tools == nil {
		return nil, errors.New("tool registry is required")
	}
	if backend == nil {
		return nil, errors.New("generation backend is required")
	}
	if cfg.MaxToolCalls < 0 {
		cfg.MaxToolCalls = 0
	}

	o := &Orchestrator{
		deps: nodex.Deps{
			Store:        store,
			Set:          set,
			Tools:        tools,
			Backend:      backend,
			Observer:     contractx.NopObserver{},
			MaxToolCalls: cfg.MaxToolCalls,
			TurnTimeout:  cfg.TurnTimeout,
		},
		locks:   statex.NewTurnLocks(),
		cfg:     cfg,
		welcome: promptx.LoadPromptSet().Welcome,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	if !o.routerSet {
		switch strings.ToLower(strings.TrimSpace(cfg.RouterMode)) {
		case "", RouterBackend:
		case RouterKeyword:
			o.deps.Router = routex.NewKeywordRouter(set.Keywords())
		default:
			return nil, fmt.Errorf("%w: unsupported router mode=%q", contractx.ErrValidation, cfg.RouterMode)
		}
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// StartSession creates an empty history for sessionID and returns the
// welcome message the transport should show.
func (o *Orchestrator) StartSession(ctx context.Context, sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", fmt.Errorf("%w: %w", contractx.ErrValidation, ErrInvalidSession)
	}

	err := o.locks.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return o.deps.Store.Set(ctx, sessionID, statex.History{})
	})
	if err != nil {
		return "", err
	}
	log.Info().Str("session_id", sessionID).Msg("session started")
	return o.welcome, nil
}

func (o *Orchestrator) Welcome() string {
	return o.welcome
}

func (o *Orchestrator) EndSession(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("%w: %w", contractx.ErrValidation, ErrInvalidSession)
	}

	err := o.locks.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return o.deps.Store.Delete(ctx, sessionID)
	})
	if err != nil {
		return err
	}
	log.Info().Str("session_id", sessionID).Msg("session ended")
	return nil
}

func (o *Orchestrator) History(ctx context.Context, sessionID string) (statex.History, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: %w", contractx.ErrValidation, ErrInvalidSession)
	}

	h, err := o.deps.Store.Get(ctx, sessionID)
	if errors.Is(err, statex.ErrStateNotFound) {
		return nil, fmt.Errorf("%w: %s", contractx.ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, err
	}
	return h.Clone(), nil
}

// HandleMessage runs one turn. Text is delivered to sink as it is generated
// and the finalized exchange is appended to the session history. Turns of
// the same session run one at a time. When ctx is canceled mid-turn nothing
// is written and ErrTurnCanceled is returned.
func (o *Orchestrator) HandleMessage(
	ctx context.Context,
	sessionID string,
	text string,
	sink contractx.StreamSink,
) (contractx.TurnResult, error) {
	sessionID, text, err := nodex.CheckRequest(sessionID, text)
	if err != nil {
		return contractx.TurnResult{}, err
	}

	started := o.now()
	var out nodex.GraphOutput
	err = o.locks.WithLock(ctx, sessionID, func(ctx context.Context) error {
		res, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
			SessionID: sessionID,
			Text:      text,
			Sink:      sink,
		})
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	elapsed := o.now().Sub(started)
	observer := o.deps.Observer

	switch {
	case err != nil && ctx.Err() != nil:
		observer.TurnFinished(o.deps.Set.Entry().Name, contractx.OutcomeCanceled, elapsed)
		log.Info().Str("session_id", sessionID).Msg("turn canceled")
		return contractx.TurnResult{SessionID: sessionID}, fmt.Errorf("%w: %v", contractx.ErrTurnCanceled, ctx.Err())
	case err != nil:
		observer.TurnFinished(o.deps.Set.Entry().Name, contractx.OutcomeError, elapsed)
		log.Error().Err(err).Str("session_id", sessionID).Msg("turn failed")
		return contractx.TurnResult{SessionID: sessionID}, err
	case out.Canceled:
		observer.TurnFinished(out.Result.Specialist, contractx.OutcomeCanceled, elapsed)
		log.Info().
			Str("session_id", sessionID).
			Str("specialist", out.Result.Specialist).
			Msg("turn canceled, partial reply discarded")
		return out.Result, contractx.ErrTurnCanceled
	}

	outcome := contractx.OutcomeOK
	if out.Result.Failed {
		outcome = contractx.OutcomeError
	}
	observer.TurnFinished(out.Result.Specialist, outcome, elapsed)
	log.Info().
		Str("session_id", sessionID).
		Str("specialist", out.Result.Specialist).
		Bool("delegated", out.Result.Delegated).
		Int("tool_calls", len(out.Result.ToolCalls)).
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Msg("turn finished")
	return out.Result, nil
}
