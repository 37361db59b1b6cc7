package tool

import (
	"fmt"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
)

const (
	ToolCareerRoadmap = "get_career_roadmap"

	roadmapFieldArg = "field"
)

// RoadmapEntry is one row of the roadmap table as it appears in the catalog.
type RoadmapEntry struct {
	Field string   `yaml:"field"`
	Steps []string `yaml:"steps"`
}

// RoadmapTable maps a career field to its numbered learning roadmap.
type RoadmapTable struct {
	roadmaps map[string]string
	fields   []string
}

func NewRoadmapTable(entries []RoadmapEntry) (*RoadmapTable, error) {
	t := &RoadmapTable{roadmaps: make(map[string]string, len(entries))}
	for i, e := range entries {
		field := strings.TrimSpace(e.Field)
		if field == "" {
			return nil, fmt.Errorf("%w: roadmap entry %d has no field", contractx.ErrValidation, i)
		}
		key := strings.ToLower(field)
		if _, dup := t.roadmaps[key]; dup {
			return nil, fmt.Errorf("%w: roadmap field %q listed twice", contractx.ErrValidation, field)
		}
		if len(e.Steps) == 0 {
			return nil, fmt.Errorf("%w: roadmap field %q has no steps", contractx.ErrValidation, field)
		}
		t.roadmaps[key] = numbered(e.Steps)
		t.fields = append(t.fields, key)
	}
	return t, nil
}

// Lookup returns the roadmap for field, matched case-insensitively, or the
// fallback text naming the requested field and the known ones.
func (t *RoadmapTable) Lookup(field string) string {
	if text, ok := t.roadmaps[strings.ToLower(strings.TrimSpace(field))]; ok {
		return text
	}
	return fmt.Sprintf("No roadmap found for '%s'. Try asking about available fields like %s.", field, quotedList(t.fields))
}

// Fields lists the known fields in catalog order.
func (t *RoadmapTable) Fields() []string {
	return append([]string(nil), t.fields...)
}

func (t *RoadmapTable) invoke(args map[string]any) string {
	field, _ := args[roadmapFieldArg].(string)
	return t.Lookup(field)
}

// RegisterRoadmap registers the table as the career roadmap tool.
func RegisterRoadmap(r *Registry, t *RoadmapTable) error {
	return r.Register(ToolCareerRoadmap, t.invoke,
		WithDescription("Get a step-by-step learning roadmap for a career field."),
		WithParam(roadmapFieldArg, "Career field, for example 'software engineering' or 'data science'", true),
	)
}

func numbered(steps []string) string {
	var b strings.Builder
	for i, s := range steps {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(strings.TrimSpace(s))
	}
	return b.String()
}

func quotedList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	switch len(quoted) {
	case 0:
		return "none"
	case 1:
		return quoted[0]
	case 2:
		return quoted[0] + " or " + quoted[1]
	default:
		return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
	}
}
