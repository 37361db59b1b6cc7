package specialist

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	promptx "github.com/tanpawarit/career-mentor-ai/agent/prompt"
	toolx "github.com/tanpawarit/career-mentor-ai/agent/tool"
	"gopkg.in/yaml.v3"
)

// Catalog is the static specialist and tool configuration loaded at start.
type Catalog struct {
	Entry       string               `yaml:"entry"`
	Specialists []Definition         `yaml:"specialists"`
	Roadmaps    []toolx.RoadmapEntry `yaml:"roadmaps"`
}

// Definition declares one specialist. Instructions, when set, take precedence
// over the named prompt template.
type Definition struct {
	Name         string   `yaml:"name"`
	Prompt       string   `yaml:"prompt,omitempty"`
	Instructions string   `yaml:"instructions,omitempty"`
	Description  string   `yaml:"description,omitempty"`
	Tools        []string `yaml:"tools,omitempty"`
	Handoffs     []string `yaml:"handoffs,omitempty"`
	Keywords     []string `yaml:"keywords,omitempty"`
}

// LoadCatalog decodes a YAML catalog. Unknown keys are rejected.
func LoadCatalog(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cat Catalog
	if err := dec.Decode(&cat); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: catalog is empty", contractx.ErrValidation)
		}
		return nil, fmt.Errorf("%w: decode catalog: %v", contractx.ErrValidation, err)
	}

	normalized := cat.Normalized()
	if err := normalized.Validate(); err != nil {
		return nil, err
	}
	return &normalized, nil
}

// LoadCatalogFile reads path, or the embedded catalog when path is empty.
func LoadCatalogFile(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return LoadCatalog(promptx.DefaultCatalog())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return LoadCatalog(data)
}

// Normalized trims names and drops empty list items.
func (c Catalog) Normalized() Catalog {
	out := Catalog{
		Entry:       strings.TrimSpace(c.Entry),
		Specialists: make([]Definition, 0, len(c.Specialists)),
		Roadmaps:    make([]toolx.RoadmapEntry, 0, len(c.Roadmaps)),
	}
	for _, d := range c.Specialists {
		out.Specialists = append(out.Specialists, Definition{
			Name:         strings.TrimSpace(d.Name),
			Prompt:       strings.TrimSpace(d.Prompt),
			Instructions: strings.TrimSpace(d.Instructions),
			Description:  strings.TrimSpace(d.Description),
			Tools:        trimList(d.Tools),
			Handoffs:     trimList(d.Handoffs),
			Keywords:     lowerList(d.Keywords),
		})
	}
	for _, r := range c.Roadmaps {
		out.Roadmaps = append(out.Roadmaps, toolx.RoadmapEntry{
			Field: strings.TrimSpace(r.Field),
			Steps: trimList(r.Steps),
		})
	}
	return out
}

// Validate checks the catalog shape. Graph rules are enforced by NewSet.
func (c Catalog) Validate() error {
	if c.Entry == "" {
		return fmt.Errorf("%w: catalog entry is required", contractx.ErrValidation)
	}
	if len(c.Specialists) == 0 {
		return fmt.Errorf("%w: catalog declares no specialists", contractx.ErrValidation)
	}
	for i, d := range c.Specialists {
		if d.Name == "" {
			return fmt.Errorf("%w: specialist %d has no name", contractx.ErrValidation, i)
		}
		if d.Prompt == "" && d.Instructions == "" {
			return fmt.Errorf("%w: specialist=%s needs a prompt or instructions", contractx.ErrPromptMissing, d.Name)
		}
	}
	return nil
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func lowerList(in []string) []string {
	out := trimList(in)
	for i := range out {
		out[i] = strings.ToLower(out[i])
	}
	return out
}
