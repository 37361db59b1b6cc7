package orchestratornode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
)

const (
	unavailableText = "The mentor service is temporarily unavailable. Please try again in a moment."
	failureText     = "Something went wrong while generating a response. Please try again."
	emptyReplyText  = "I'm sorry, I couldn't come up with an answer. Could you rephrase your question?"
)

// FinalizeReply closes the stream with a terminal message when the turn
// failed or produced no text, so every finalized turn has a visible answer.
func FinalizeReply(ctx context.Context, in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Canceled {
		return in, nil
	}

	switch {
	case in.Failure != nil:
		msg := ErrorText(in.Failure)
		if in.Reply != "" {
			msg = "\n\n" + msg
		}
		deliver(ctx, in, msg)
	case strings.TrimSpace(in.Reply) == "":
		deliver(ctx, in, emptyReplyText)
	}
	return in, nil
}

// ErrorText is the user-visible rendering of a turn failure. Raw error text
// is only logged.
func ErrorText(err error) string {
	if errors.Is(err, contractx.ErrBackendUnavailable) {
		return contractx.ErrorMarker + unavailableText
	}
	return contractx.ErrorMarker + failureText
}

func deliver(ctx context.Context, in *GraphState, text string) {
	if err := in.Sink.Send(ctx, text); err != nil {
		log.Info().Err(err).Str("session_id", in.SessionID).Msg("stream consumer gone before final message")
		in.Canceled = true
		return
	}
	in.Reply += text
}
