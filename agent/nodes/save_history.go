package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	statex "github.com/tanpawarit/career-mentor-ai/agent/state"
)

// SaveHistory appends the user entry and the assistant entry in one write.
// A canceled turn writes nothing.
func SaveHistory(ctx context.Context, in *GraphState, store statex.Store) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	out := GraphOutput{Result: result(in), Canceled: in.Canceled}
	if in.Canceled {
		return out, nil
	}

	next := in.History.Append(
		statex.UserMessage(in.Text),
		statex.AssistantMessage(in.Active.Name, in.Reply),
	)
	if err := next.Validate(); err != nil {
		return GraphOutput{}, err
	}
	if err := store.Set(ctx, in.SessionID, next); err != nil {
		return GraphOutput{}, fmt.Errorf("save history session=%s: %w", in.SessionID, err)
	}

	in.Saved = next
	out.Result.History = next.Clone()
	return out, nil
}

func result(in *GraphState) contractx.TurnResult {
	res := contractx.TurnResult{
		SessionID: in.SessionID,
		Reply:     in.Reply,
		Delegated: in.Delegated,
		ToolCalls: append([]contractx.ToolCall(nil), in.ToolCalls...),
		Failed:    in.Failure != nil,
	}
	if in.Active != nil {
		res.Specialist = in.Active.Name
	}
	return res
}
