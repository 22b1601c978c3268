package main

import (
	"fmt"

	"github.com/saihaj/DOGE-AI-sub000/internal/config"
	"github.com/saihaj/DOGE-AI-sub000/internal/embedding"
	"github.com/saihaj/DOGE-AI-sub000/internal/llm"
	"github.com/saihaj/DOGE-AI-sub000/internal/resolve"
	"github.com/saihaj/DOGE-AI-sub000/internal/store"
)

// stack bundles the wired-up subsystem components for a command run.
type stack struct {
	store     *store.KnowledgeStore
	embedder  embedding.Engine
	client    *llm.OpenAIClient
	assembler *resolve.Assembler
}

// buildStack wires embedding engine, LLM client, knowledge store and the
// resolver chain from the loaded configuration.
func buildStack(cfg *config.Config) (*stack, error) {
	engine, err := embedding.NewEngine(embedding.Config{
		Provider:       cfg.Embedding.Provider,
		GenAIAPIKey:    cfg.Embedding.GenAIAPIKey,
		GenAIModel:     cfg.Embedding.GenAIModel,
		OllamaEndpoint: cfg.Embedding.OllamaEndpoint,
		OllamaModel:    cfg.Embedding.OllamaModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding engine: %w", err)
	}

	clientCfg := llm.DefaultConfig(cfg.LLM.APIKey)
	if cfg.LLM.Model != "" {
		clientCfg.Model = cfg.LLM.Model
	}
	if cfg.LLM.BaseURL != "" {
		clientCfg.BaseURL = cfg.LLM.BaseURL
	}
	if cfg.LLM.Timeout > 0 {
		clientCfg.Timeout = cfg.LLM.Timeout
	}
	client := llm.NewOpenAIClientWithConfig(clientCfg)

	ks, err := store.NewKnowledgeStore(cfg.Store.DatabasePath, engine)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge store: %w", err)
	}

	rcfg := resolve.Config{
		DistanceThreshold: cfg.Resolution.DistanceThreshold,
		CandidateLimit:    cfg.Resolution.CandidateLimit,
		ActiveCongress:    cfg.Resolution.ActiveCongress,
		AgentStepCap:      cfg.Resolution.AgentStepCap,
	}
	chain := resolve.NewChain(ks, engine, client, rcfg)
	docs := resolve.NewDocumentRetriever(ks, engine, client, rcfg)

	return &stack{
		store:     ks,
		embedder:  engine,
		client:    client,
		assembler: resolve.NewAssembler(chain, docs),
	}, nil
}

// Close releases the stack's resources.
func (s *stack) Close() error {
	if c, ok := s.embedder.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	return s.store.Close()
}
