package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	orchestrator "github.com/tanpawarit/food-recommendation-agent/agent/agents/orchestrator"
	catalogx "github.com/tanpawarit/food-recommendation-agent/agent/catalog"
	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
	llmx "github.com/tanpawarit/food-recommendation-agent/agent/llm"
	promptx "github.com/tanpawarit/food-recommendation-agent/agent/prompt"
	toolx "github.com/tanpawarit/food-recommendation-agent/agent/tool"
	"github.com/tanpawarit/food-recommendation-agent/api"
	configx "github.com/tanpawarit/food-recommendation-agent/pkg/config"
	_ "github.com/tanpawarit/food-recommendation-agent/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/food-recommendation-agent/pkg/openrouter"
	postgresx "github.com/tanpawarit/food-recommendation-agent/pkg/postgres"
)

type options struct {
	query          string
	userID         string
	skipModelCheck bool
}

func main() {
	var opts options
	flag.StringVar(&opts.query, "query", "", "run a single recommendation for this query and exit")
	flag.StringVar(&opts.userID, "user", "", "user id for -query")
	flag.BoolVar(&opts.skipModelCheck, "skip-model-check", false, "do not probe the configured model at startup")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = log.Logger.WithContext(ctx)

	err := run(ctx, opts)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("exiting")
	}
}

// run owns every resource it opens, so deferred cleanup happens before main
// decides the exit code.
func run(ctx context.Context, opts options) error {
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	agentCfg := configx.MustNew[orchestrator.Config]("AGENT")
	pgCfg := configx.MustNew[postgresx.Config]("POSTGRES")
	httpCfg := configx.MustNew[api.Config]("HTTP")

	db, err := postgresx.Open(*pgCfg)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	catalog := catalogx.New(db)
	registry, err := toolx.NewCatalogRegistry(catalog)
	if err != nil {
		return fmt.Errorf("build tool registry: %w", err)
	}

	if !opts.skipModelCheck {
		orCfg := llmCfg.OpenRouterFor(contractx.AgentTypeTools)
		if err := openrouterx.CheckModel(ctx, openrouterx.NewClient(orCfg), orCfg.Model); err != nil {
			return fmt.Errorf("model check: %w", err)
		}
	}

	models, err := llmx.NewModels(ctx, *llmCfg)
	if err != nil {
		return fmt.Errorf("build chat models: %w", err)
	}

	agent, err := orchestrator.New(ctx, orchestrator.Models{
		Tools:   models.Tools,
		Final:   models.Final,
		Options: models.Options,
	}, registry, promptx.LoadPromptSet(), *agentCfg)
	if err != nil {
		return fmt.Errorf("build orchestrator: %w", err)
	}

	if opts.query != "" {
		return runOnce(ctx, os.Stdout, agent, catalog, opts.userID, opts.query)
	}

	server := api.New(*httpCfg, agent, catalog, registry)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	if err := server.Listen(); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// runOnce prints one recommendation as JSON. The fallback result is still
// printed when the agent is unavailable.
func runOnce(ctx context.Context, w io.Writer, agent contractx.Recommender, profiles api.UserProfiles, userID, query string) error {
	req := contractx.RecommendationRequest{UserID: userID, Query: query}
	if userID != "" && profiles != nil {
		profile, err := profiles.UserContext(ctx, userID)
		if err != nil {
			log.Warn().Err(err).Msg("user context unavailable")
		} else {
			req.OrderCount = profile.OrderCount
			req.FavoriteCuisines = profile.FavoriteCuisines
		}
	}

	result, err := agent.Recommend(ctx, req)
	if err != nil && !errors.Is(err, contractx.ErrRecommendationUnavailable) {
		return fmt.Errorf("recommend: %w", err)
	}
	if err != nil {
		log.Warn().Err(err).Msg("returning fallback recommendation")
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
