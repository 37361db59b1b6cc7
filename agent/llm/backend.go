package llm

import (
	"context"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	openrouterx "github.com/tanpawarit/career-mentor-ai/pkg/openrouter"
)

// NewBackend builds the generation backend selected by cfg.Provider.
func NewBackend(cfg Config) (contractx.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		client, err := openrouterx.NewClient(cfg.OpenRouterFor(""))
		if err != nil {
			return nil, err
		}
		return NewOpenAIBackend(client, cfg), nil
	default:
		return NewEinoBackend(func(ctx context.Context, specialist string) (einomodel.ToolCallingChatModel, error) {
			modelCfg := cfg.OpenRouterFor(specialist)
			return modelCfg.New(ctx)
		}), nil
	}
}
