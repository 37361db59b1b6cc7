package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	openrouterx "github.com/tanpawarit/career-mentor-ai/pkg/openrouter"
)

const (
	ProviderEino   = "eino"
	ProviderOpenAI = "openai"
)

type Config struct {
	Provider           string        `envconfig:"PROVIDER" split_words:"true" default:"eino"`
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"gemini-2.0-flash"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	// SpecialistModels overrides Model per specialist: "SkillAgent:gpt-4o,JobAgent:gpt-4o-mini".
	SpecialistModels map[string]string `envconfig:"SPECIALIST_MODELS" split_words:"true"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: llm api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case "", ProviderEino, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: unsupported llm provider=%q", contractx.ErrValidation, c.Provider)
	}
	return nil
}

// ModelFor returns the model name used for specialist.
func (c Config) ModelFor(specialist string) string {
	if v := strings.TrimSpace(c.SpecialistModels[specialist]); v != "" {
		return v
	}
	return strings.TrimSpace(c.Model)
}

func (c Config) OpenRouterFor(specialist string) openrouterx.Config {
	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              c.ModelFor(specialist),
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        c.Temperature,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
