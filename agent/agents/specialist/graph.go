package specialist

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
)

// Set is the immutable specialist graph of a process: one entry specialist
// and the targets it may hand off to. Only the entry may declare handoffs and
// no target hands off further, so every turn resolves in a single pass with
// at most one delegation.
type Set struct {
	entry  string
	byName map[string]*Specialist
	order  []string
}

// NewSet validates the graph and returns it. specs are copied.
func NewSet(entry string, specs ...Specialist) (*Set, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return nil, fmt.Errorf("%w: entry specialist is not set", contractx.ErrInvalidGraph)
	}

	set := &Set{
		entry:  entry,
		byName: make(map[string]*Specialist, len(specs)),
	}
	for i := range specs {
		s := specs[i]
		s.Tools = append([]string(nil), s.Tools...)
		s.Handoffs = append([]string(nil), s.Handoffs...)
		s.Keywords = append([]string(nil), s.Keywords...)
		if err := s.validate(); err != nil {
			return nil, err
		}
		if _, dup := set.byName[s.Name]; dup {
			return nil, fmt.Errorf("%w: specialist=%s defined twice", contractx.ErrInvalidGraph, s.Name)
		}
		set.byName[s.Name] = &s
		set.order = append(set.order, s.Name)
	}

	root, ok := set.byName[entry]
	if !ok {
		return nil, fmt.Errorf("%w: entry specialist=%s is not defined", contractx.ErrInvalidGraph, entry)
	}

	for _, name := range set.order {
		s := set.byName[name]
		if name != entry && len(s.Handoffs) > 0 {
			return nil, fmt.Errorf("%w: only the entry specialist may hand off, specialist=%s declares %v",
				contractx.ErrInvalidGraph, name, s.Handoffs)
		}
	}
	for _, target := range root.Handoffs {
		if target == entry {
			return nil, fmt.Errorf("%w: entry specialist=%s hands off to itself", contractx.ErrInvalidGraph, entry)
		}
		if _, ok := set.byName[target]; !ok {
			return nil, fmt.Errorf("%w: handoff target=%s is not defined", contractx.ErrInvalidGraph, target)
		}
	}

	return set, nil
}

func (s *Set) Entry() *Specialist {
	return s.byName[s.entry]
}

func (s *Set) Get(name string) (*Specialist, bool) {
	sp, ok := s.byName[name]
	return sp, ok
}

// CanHandoff reports whether from may delegate the turn to to.
func (s *Set) CanHandoff(from, to string) bool {
	sp, ok := s.byName[from]
	return ok && sp.CanHandoffTo(to)
}

func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// HandoffSpecs describes the handoff targets of from for the backend.
func (s *Set) HandoffSpecs(from string) []contractx.HandoffSpec {
	sp, ok := s.byName[from]
	if !ok {
		return nil
	}
	out := make([]contractx.HandoffSpec, 0, len(sp.Handoffs))
	for _, target := range sp.Handoffs {
		out = append(out, contractx.HandoffSpec{
			Target:      target,
			Description: s.byName[target].Description,
		})
	}
	return out
}

// ToolNames returns the union of every tool any specialist declares.
func (s *Set) ToolNames() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, name := range s.order {
		for _, t := range s.byName[name].Tools {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// Keywords maps every specialist that declares routing keywords to them.
func (s *Set) Keywords() map[string][]string {
	out := make(map[string][]string)
	for _, name := range s.order {
		if kw := s.byName[name].Keywords; len(kw) > 0 {
			out[name] = append([]string(nil), kw...)
		}
	}
	return out
}
