package specialist

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	promptx "github.com/tanpawarit/career-mentor-ai/agent/prompt"
	toolx "github.com/tanpawarit/career-mentor-ai/agent/tool"
)

// Registry bundles what Build produces from a catalog: the validated
// specialist graph and the tool registry the specialists reference.
type Registry struct {
	Set      *Set
	Tools    *toolx.Registry
	Roadmaps *toolx.RoadmapTable
}

// Build resolves prompts, registers the catalog's tools and validates the
// specialist graph. A specialist that references an unregistered tool is not
// an error: the tool answers with the not-found fallback at run time, so the
// misconfiguration is only logged here.
func Build(cat *Catalog, prompts promptx.PromptSet) (*Registry, error) {
	if cat == nil {
		return nil, fmt.Errorf("%w: catalog is nil", contractx.ErrValidation)
	}

	tools := toolx.NewRegistry()
	var roadmaps *toolx.RoadmapTable
	if len(cat.Roadmaps) > 0 {
		table, err := toolx.NewRoadmapTable(cat.Roadmaps)
		if err != nil {
			return nil, err
		}
		if err := toolx.RegisterRoadmap(tools, table); err != nil {
			return nil, err
		}
		roadmaps = table
	}

	specs := make([]Specialist, 0, len(cat.Specialists))
	for _, def := range cat.Specialists {
		instructions := strings.TrimSpace(def.Instructions)
		if instructions == "" {
			text, err := prompts.Get(def.Prompt)
			if err != nil {
				return nil, fmt.Errorf("specialist=%s: %w", def.Name, err)
			}
			instructions = text
		}
		specs = append(specs, Specialist{
			Name:         def.Name,
			Description:  def.Description,
			Instructions: instructions,
			Tools:        def.Tools,
			Handoffs:     def.Handoffs,
			Keywords:     def.Keywords,
		})
	}

	set, err := NewSet(cat.Entry, specs...)
	if err != nil {
		return nil, err
	}

	if missing := tools.Missing(set.ToolNames()); len(missing) > 0 {
		log.Warn().Strs("tools", missing).Msg("catalog references unregistered tools")
	}

	return &Registry{Set: set, Tools: tools, Roadmaps: roadmaps}, nil
}
