package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/medhub/medhub/internal/agent/orchestrator"
	"github.com/medhub/medhub/internal/agent/specialist"
	"github.com/medhub/medhub/internal/agent/tools"
	"github.com/medhub/medhub/internal/config"
	"github.com/medhub/medhub/internal/platform/llm"
)

const toolTimeout = 30 * time.Second

type agentStack struct {
	orchestrator *orchestrator.Orchestrator
	compliance   *specialist.Compliance
}

// buildAgents wires the four specialists to their models and tools and
// puts them behind the configured classifier. retriever may be nil.
func buildAgents(ctx context.Context, cfg *config.Config, logger zerolog.Logger, retriever orchestrator.Retriever) (*agentStack, error) {
	factory := llm.NewFactory(cfg, logger)

	anatomyModel, err := factory.Chat(modelOrDefault(cfg.AnatomyModel, specialist.DefaultAnatomyModel), specialist.AnatomyTemperature)
	if err != nil {
		return nil, fmt.Errorf("anatomy model: %w", err)
	}
	complianceModel, err := factory.Chat(modelOrDefault(cfg.ComplianceModel, specialist.DefaultComplianceModel), specialist.ComplianceTemperature)
	if err != nil {
		return nil, fmt.Errorf("compliance model: %w", err)
	}
	marketModel, err := factory.Chat(modelOrDefault(cfg.MarketModel, specialist.DefaultMarketModel), specialist.MarketTemperature)
	if err != nil {
		return nil, fmt.Errorf("market model: %w", err)
	}
	trialsModel, err := factory.Chat(modelOrDefault(cfg.TrialsModel, specialist.DefaultTrialsModel), specialist.TrialsTemperature)
	if err != nil {
		return nil, fmt.Errorf("trials model: %w", err)
	}

	toolClient := &http.Client{Timeout: toolTimeout}
	registry := tools.NewClinicalTrials(cfg.ClinicalTrialsURL, toolClient)
	search := tools.NewWebSearch(cfg.SearchAPIKey, cfg.SearchEngineID, tools.WithSearchHTTPClient(toolClient))

	specOpts := []specialist.Option{specialist.WithLogger(logger)}
	compliance := specialist.NewCompliance(complianceModel, specOpts...)
	specialists := map[orchestrator.Category]specialist.Specialist{
		orchestrator.Anatomy:    specialist.NewAnatomy(anatomyModel, specOpts...),
		orchestrator.Compliance: compliance,
		orchestrator.Market:     specialist.NewMarket(marketModel, search, specOpts...),
		orchestrator.Trials:     specialist.NewTrials(trialsModel, registry, specOpts...),
	}

	var classifier orchestrator.Classifier = orchestrator.KeywordClassifier{}
	if cfg.RouterStrategy == "llm" {
		router, err := factory.Router(ctx)
		if err != nil {
			return nil, fmt.Errorf("router model: %w", err)
		}
		classifier = orchestrator.NewLLMClassifier(router)
	}

	opts := []orchestrator.Option{orchestrator.WithLogger(logger)}
	if retriever != nil {
		opts = append(opts, orchestrator.WithRetriever(retriever))
	}

	logger.Info().
		Str("provider", cfg.LLMProvider).
		Str("router", cfg.RouterStrategy).
		Bool("retrieval", retriever != nil).
		Msg("specialist agents ready")

	return &agentStack{
		orchestrator: orchestrator.New(classifier, specialists, opts...),
		compliance:   compliance,
	}, nil
}

// modelOrDefault returns name, or the specialist's default model when the
// configuration leaves it blank.
func modelOrDefault(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
