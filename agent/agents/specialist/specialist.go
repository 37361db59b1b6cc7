package specialist

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
)

// Specialist is a named responder. Instructions are opaque to the
// orchestrator and passed through to the backend untouched; tools and
// handoff targets are referenced by name only.
type Specialist struct {
	Name         string
	Description  string
	Instructions string
	Tools        []string
	Handoffs     []string
	Keywords     []string
}

func (s *Specialist) CanUseTool(name string) bool {
	return contains(s.Tools, name)
}

func (s *Specialist) CanHandoffTo(target string) bool {
	return contains(s.Handoffs, target)
}

func (s *Specialist) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: specialist name is empty", contractx.ErrValidation)
	}
	if strings.TrimSpace(s.Instructions) == "" {
		return fmt.Errorf("%w: specialist=%s has no instructions", contractx.ErrPromptMissing, s.Name)
	}
	if dup := firstDuplicate(s.Tools); dup != "" {
		return fmt.Errorf("%w: specialist=%s lists tool=%s twice", contractx.ErrValidation, s.Name, dup)
	}
	if dup := firstDuplicate(s.Handoffs); dup != "" {
		return fmt.Errorf("%w: specialist=%s lists handoff=%s twice", contractx.ErrInvalidGraph, s.Name, dup)
	}
	return nil
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}

func firstDuplicate(list []string) string {
	seen := make(map[string]struct{}, len(list))
	for _, v := range list {
		if _, ok := seen[v]; ok {
			return v
		}
		seen[v] = struct{}{}
	}
	return ""
}
