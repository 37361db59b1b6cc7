package state

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the author of a history entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a session transcript. The transcript is the literal
// context handed to generation, so order is significant and entries are never
// reordered or deduplicated.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Specialist that produced an assistant entry; empty for user entries.
	Specialist string `json:"specialist,omitempty"`
}

// History is the ordered transcript of a session.
type History []Message

var (
	ErrHistoryOrder = errors.New("history entries must alternate user/assistant")
	ErrInvalidRole  = errors.New("invalid history role")
)

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(specialist, content string) Message {
	return Message{Role: RoleAssistant, Content: content, Specialist: specialist}
}

// Clone returns an independent copy. A nil history clones to an empty one.
func (h History) Clone() History {
	out := make(History, len(h))
	copy(out, h)
	return out
}

// Append returns a new history with msgs appended; h is left untouched so
// readers holding the previous slice never observe the change.
func (h History) Append(msgs ...Message) History {
	out := make(History, 0, len(h)+len(msgs))
	out = append(out, h...)
	return append(out, msgs...)
}

func (h History) Turns() int {
	return len(h) / 2
}

func (h History) Last() (Message, bool) {
	if len(h) == 0 {
		return Message{}, false
	}
	return h[len(h)-1], true
}

// Validate checks that entries strictly alternate user, assistant, user, ...
func (h History) Validate() error {
	for i, m := range h {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return fmt.Errorf("%w: index=%d role=%q", ErrInvalidRole, i, m.Role)
		}
		want := RoleUser
		if i%2 == 1 {
			want = RoleAssistant
		}
		if m.Role != want {
			return fmt.Errorf("%w: index=%d got=%s want=%s", ErrHistoryOrder, i, m.Role, want)
		}
	}
	return nil
}

// Transcript renders the history as "role: content" lines, mostly for
// diagnostics and the terminal client.
func (h History) Transcript() string {
	var b strings.Builder
	for i, m := range h {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(string(m.Role))
		if m.Specialist != "" {
			b.WriteString(" (" + m.Specialist + ")")
		}
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}
