package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
)

var (
	//go:embed template/triage.txt
	triageRaw string

	//go:embed template/skill.txt
	skillRaw string

	//go:embed template/job.txt
	jobRaw string

	//go:embed template/welcome.txt
	welcomeRaw string

	//go:embed template/catalog.yaml
	catalogRaw []byte
)

// PromptSet holds the embedded specialist instructions keyed by template name.
type PromptSet struct {
	Welcome   string
	templates map[string]string
}

// LoadPromptSet returns the embedded prompts, trimmed.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Welcome: strings.TrimSpace(welcomeRaw),
		templates: map[string]string{
			"triage": strings.TrimSpace(triageRaw),
			"skill":  strings.TrimSpace(skillRaw),
			"job":    strings.TrimSpace(jobRaw),
		},
	}
}

// Get returns the template called name.
func (p PromptSet) Get(name string) (string, error) {
	text, ok := p.templates[strings.TrimSpace(name)]
	if !ok || text == "" {
		return "", fmt.Errorf("%w: template=%q", contractx.ErrPromptMissing, name)
	}
	return text, nil
}

// With returns a copy of p with an extra or replaced template.
func (p PromptSet) With(name, text string) PromptSet {
	templates := make(map[string]string, len(p.templates)+1)
	for k, v := range p.templates {
		templates[k] = v
	}
	templates[name] = strings.TrimSpace(text)
	return PromptSet{Welcome: p.Welcome, templates: templates}
}

// DefaultCatalog returns the embedded specialist and tool catalog (YAML).
func DefaultCatalog() []byte {
	return append([]byte(nil), catalogRaw...)
}
