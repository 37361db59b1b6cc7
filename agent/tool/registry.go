package tool

import (
	"fmt"
	"sort"
	"strings"

	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
)

// Func is a deterministic lookup. It must not call other tools, reach the
// generation backend, or touch shared mutable state; unknown input is
// answered with a readable fallback string instead of an error.
type Func func(args map[string]any) string

type entry struct {
	spec contractx.ToolSpec
	fn   Func
}

// Registry holds tools by name. It is populated once at startup and is then
// read concurrently without locking.
type Registry struct {
	tools map[string]entry
	order []string
}

var _ contractx.ToolInvoker = (*Registry)(nil)

// Option customizes the spec of a registered tool.
type Option func(*contractx.ToolSpec)

func WithDescription(desc string) Option {
	return func(s *contractx.ToolSpec) {
		s.Description = strings.TrimSpace(desc)
	}
}

func WithParam(name, desc string, required bool) Option {
	return func(s *contractx.ToolSpec) {
		s.Params = append(s.Params, contractx.ToolParam{
			Name:        name,
			Description: desc,
			Required:    required,
		})
	}
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]entry)}
}

func (r *Registry) Register(name string, fn Func, opts ...Option) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: tool name is empty", contractx.ErrValidation)
	}
	if fn == nil {
		return fmt.Errorf("%w: tool=%s has no function", contractx.ErrValidation, name)
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: tool=%s registered twice", contractx.ErrValidation, name)
	}

	spec := contractx.ToolSpec{Name: name}
	for _, opt := range opts {
		opt(&spec)
	}

	r.tools[name] = entry{spec: spec, fn: fn}
	r.order = append(r.order, name)
	return nil
}

// Invoke runs the named tool. An unknown name yields NotFoundText together
// with ErrToolNotFound so the caller can log the misconfiguration and still
// hand the text to the specialist.
func (r *Registry) Invoke(name string, args map[string]any) (string, error) {
	e, ok := r.tools[name]
	if !ok {
		return NotFoundText(name), fmt.Errorf("%w: %s", contractx.ErrToolNotFound, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return e.fn(args), nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Specs returns the specs for names in the given order, skipping unknown ones.
func (r *Registry) Specs(names []string) []contractx.ToolSpec {
	out := make([]contractx.ToolSpec, 0, len(names))
	for _, n := range names {
		if e, ok := r.tools[n]; ok {
			out = append(out, e.spec)
		}
	}
	return out
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Missing returns the names that are not registered, sorted.
func (r *Registry) Missing(names []string) []string {
	var out []string
	for _, n := range names {
		if !r.Has(n) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// NotFoundText is the deterministic stand-in result for an unregistered tool.
func NotFoundText(name string) string {
	return fmt.Sprintf("The tool '%s' is not available right now. Answer from general knowledge instead.", name)
}
