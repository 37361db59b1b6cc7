package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanpawarit/career-mentor-ai/agent/agents/orchestrator"
	specialistx "github.com/tanpawarit/career-mentor-ai/agent/agents/specialist"
	"github.com/tanpawarit/career-mentor-ai/agent/llm"
	"github.com/tanpawarit/career-mentor-ai/agent/metrics"
	promptx "github.com/tanpawarit/career-mentor-ai/agent/prompt"
	statex "github.com/tanpawarit/career-mentor-ai/agent/state"
	configx "github.com/tanpawarit/career-mentor-ai/pkg/config"
)

type AppConfig struct {
	CatalogFile string `envconfig:"CATALOG_FILE" split_words:"true"`
}

type app struct {
	registry     *specialistx.Registry
	store        statex.Store
	orchestrator *orchestrator.Orchestrator
}

func (a *app) Close() {
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("close session store")
		}
	}
}

// loadRegistry builds the specialist graph from --catalog, CATALOG_FILE or
// the embedded catalog, in that order.
func loadRegistry(cmd *cobra.Command) (*specialistx.Registry, error) {
	appCfg, err := configx.New[AppConfig]("")
	if err != nil {
		return nil, fmt.Errorf("load app config: %w", err)
	}
	path, _ := cmd.Flags().GetString("catalog")
	if strings.TrimSpace(path) == "" {
		path = appCfg.CatalogFile
	}

	cat, err := specialistx.LoadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	return specialistx.Build(cat, promptx.LoadPromptSet())
}

// newApp wires the full turn pipeline. reg may be nil when no metrics are
// exported.
func newApp(cmd *cobra.Command, reg prometheus.Registerer) (*app, error) {
	registry, err := loadRegistry(cmd)
	if err != nil {
		return nil, err
	}

	llmCfg, err := configx.New[llm.Config]("LLM")
	if err != nil {
		return nil, fmt.Errorf("load llm config: %w", err)
	}
	backend, err := llm.NewBackend(*llmCfg)
	if err != nil {
		return nil, err
	}

	storeCfg, err := configx.New[statex.StoreConfig]("STORE")
	if err != nil {
		return nil, fmt.Errorf("load store config: %w", err)
	}
	store, err := statex.NewStore(*storeCfg,
		func() (*statex.RedisConfig, error) { return configx.New[statex.RedisConfig]("REDIS") },
		func() (*statex.UpstashRedisConfig, error) { return configx.New[statex.UpstashRedisConfig]("UPSTASH") },
	)
	if err != nil {
		return nil, err
	}

	orchCfg, err := configx.New[orchestrator.Config]("ORCHESTRATOR")
	if err != nil {
		return nil, fmt.Errorf("load orchestrator config: %w", err)
	}

	var opts []orchestrator.Option
	if reg != nil {
		recorder, err := metrics.New(reg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithObserver(recorder))
	}

	orch, err := orchestrator.New(store, registry.Set, registry.Tools, backend, *orchCfg, opts...)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("entry", registry.Set.Entry().Name).
		Strs("specialists", registry.Set.Names()).
		Str("provider", llmCfg.Provider).
		Str("store", storeCfg.Backend).
		Str("router", orchCfg.RouterMode).
		Msg("career mentor ready")

	return &app{registry: registry, store: store, orchestrator: orch}, nil
}
