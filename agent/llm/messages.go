package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	statex "github.com/tanpawarit/career-mentor-ai/agent/state"
	toolx "github.com/tanpawarit/career-mentor-ai/agent/tool"
)

// systemPrompt joins the specialist instructions with the per-pass notes.
func systemPrompt(req contractx.GenerateRequest) string {
	parts := []string{strings.TrimSpace(req.Instructions)}
	for _, n := range req.Notes {
		if n = strings.TrimSpace(n); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "\n\n")
}

// callID returns the id of the i-th tool exchange, minting one when the
// backend did not supply it.
func callID(ex contractx.ToolExchange, i int) string {
	if ex.Call.ID != "" {
		return ex.Call.ID
	}
	return fmt.Sprintf("call_%d", i)
}

func encodeArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func decodeArgs(raw string) map[string]any {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{}
	}
	return args
}

// signal converts a completed model tool call into a fragment: a handoff for
// transfer_to_ pseudo-tools, a tool call otherwise.
func signal(id, name, rawArgs string) contractx.Fragment {
	if target, ok := toolx.ParseHandoffTool(name); ok {
		return contractx.HandoffFragment(target)
	}
	return contractx.ToolCallFragment(contractx.ToolCall{
		ID:   id,
		Name: name,
		Args: decodeArgs(rawArgs),
	})
}

// BuildMessages renders a generation request as eino chat messages: the
// system prompt, the history in order, then every tool exchange of the turn
// as an assistant tool call followed by its tool result.
func BuildMessages(req contractx.GenerateRequest) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(req.History)+2*len(req.Exchanges)+1)
	msgs = append(msgs, schema.SystemMessage(systemPrompt(req)))

	for _, m := range req.History {
		switch m.Role {
		case statex.RoleUser:
			msgs = append(msgs, schema.UserMessage(m.Content))
		case statex.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(m.Content, nil))
		}
	}

	for i, ex := range req.Exchanges {
		id := callID(ex, i)
		msgs = append(msgs,
			schema.AssistantMessage(ex.Preamble, []schema.ToolCall{{
				ID:   id,
				Type: "function",
				Function: schema.FunctionCall{
					Name:      ex.Call.Name,
					Arguments: encodeArgs(ex.Call.Args),
				},
			}}),
			schema.ToolMessage(ex.Result, id),
		)
	}
	return msgs
}
