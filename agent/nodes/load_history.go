package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	statex "github.com/tanpawarit/career-mentor-ai/agent/state"
)

// LoadHistory reads the session history. An unknown session starts with an
// empty history.
func LoadHistory(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	history, err := store.Get(ctx, in.SessionID)
	switch {
	case errors.Is(err, statex.ErrStateNotFound):
		log.Debug().Str("session_id", in.SessionID).Msg("session not found, starting with empty history")
		history = statex.History{}
	case err != nil:
		return nil, fmt.Errorf("load history session=%s: %w", in.SessionID, err)
	}

	in.History = history.Clone()
	return in, nil
}
