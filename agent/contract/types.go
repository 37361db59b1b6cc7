package contract

import (
	statex "github.com/tanpawarit/career-mentor-ai/agent/state"
)

// FragmentKind tells plain generated text apart from out-of-band signals.
type FragmentKind int

const (
	FragmentText FragmentKind = iota
	FragmentToolCall
	FragmentHandoff
)

func (k FragmentKind) String() string {
	switch k {
	case FragmentText:
		return "text"
	case FragmentToolCall:
		return "tool_call"
	case FragmentHandoff:
		return "handoff"
	default:
		return "unknown"
	}
}

// Fragment is one element of a backend stream. Only FragmentText is ever
// forwarded to a StreamSink.
type Fragment struct {
	Kind     FragmentKind
	Text     string
	ToolCall *ToolCall
	Handoff  string
}

func TextFragment(text string) Fragment {
	return Fragment{Kind: FragmentText, Text: text}
}

func ToolCallFragment(call ToolCall) Fragment {
	return Fragment{Kind: FragmentToolCall, ToolCall: &call}
}

func HandoffFragment(target string) Fragment {
	return Fragment{Kind: FragmentHandoff, Handoff: target}
}

type ToolCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolExchange is a tool call made during the current turn together with the
// text the registry returned for it.
type ToolExchange struct {
	// Text the specialist generated before requesting the tool.
	Preamble string   `json:"preamble,omitempty"`
	Call     ToolCall `json:"call"`
	Result   string   `json:"result"`
}

// ToolParam describes a single string argument of a tool.
type ToolParam struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// ToolSpec is the backend-facing description of a tool.
type ToolSpec struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []ToolParam `json:"params,omitempty"`
}

// HandoffSpec is the backend-facing description of a delegation target.
type HandoffSpec struct {
	Target      string `json:"target"`
	Description string `json:"description"`
}

// GenerateRequest is everything the backend needs for one generation pass of
// the active specialist.
type GenerateRequest struct {
	Specialist   string         `json:"specialist"`
	Instructions string         `json:"instructions"`
	History      statex.History `json:"history"`
	Exchanges    []ToolExchange `json:"exchanges,omitempty"`
	Tools        []ToolSpec     `json:"tools,omitempty"`
	Handoffs     []HandoffSpec  `json:"handoffs,omitempty"`
	Notes        []string       `json:"notes,omitempty"`
}

// TurnResult summarizes a finalized turn for the transport.
type TurnResult struct {
	SessionID  string         `json:"session_id"`
	Specialist string         `json:"specialist"`
	Reply      string         `json:"reply"`
	Delegated  bool           `json:"delegated"`
	ToolCalls  []ToolCall     `json:"tool_calls,omitempty"`
	Failed     bool           `json:"failed"`
	History    statex.History `json:"-"`
}

// Outcome labels used for logging and metrics.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// ErrorMarker prefixes every user-visible failure message.
const ErrorMarker = "❌ Error: "
