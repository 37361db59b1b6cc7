package orchestratornode

import (
	"errors"
	"fmt"
	"strings"
	"time"

	specialistx "github.com/tanpawarit/career-mentor-ai/agent/agents/specialist"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	statex "github.com/tanpawarit/career-mentor-ai/agent/state"
)

var ErrInvalidMessage = errors.New("message is empty")

type GraphInput struct {
	SessionID string
	Text      string
	Sink      contractx.StreamSink
}

type GraphOutput struct {
	Result   contractx.TurnResult
	Canceled bool
}

// GraphState is the working state of one turn. Reply holds exactly the text
// that has been delivered to the sink so far.
type GraphState struct {
	SessionID string
	Text      string
	Started   time.Time
	Sink      contractx.StreamSink

	History statex.History
	Active  *specialistx.Specialist

	RouteTarget string
	Delegated   bool

	Reply     string
	ToolCalls []contractx.ToolCall
	Failure   error
	Canceled  bool

	Saved statex.History
}

func CheckRequest(sessionID, text string) (string, string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", "", fmt.Errorf("%w: %w", contractx.ErrValidation, statex.ErrInvalidSession)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", fmt.Errorf("%w: %w", contractx.ErrValidation, ErrInvalidMessage)
	}
	return sessionID, text, nil
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID, text, err := CheckRequest(in.SessionID, in.Text)
	if err != nil {
		return nil, err
	}

	sink := in.Sink
	if sink == nil {
		sink = contractx.Discard
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Started:   nowFn().UTC(),
		Sink:      sink,
	}, nil
}
