package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
	nodex "github.com/tanpawarit/food-recommendation-agent/agent/nodes/orchestrator"
	normalizex "github.com/tanpawarit/food-recommendation-agent/agent/normalize"
	promptx "github.com/tanpawarit/food-recommendation-agent/agent/prompt"
)

type Config struct {
	MaxToolRounds       int           `split_words:"true" default:"1"`
	AgentTimeout        time.Duration `split_words:"true" default:"30s"`
	ToolTimeout         time.Duration `split_words:"true" default:"10s"`
	ParallelTools       bool          `split_words:"true" default:"true"`
	MaxParallelTools    int           `split_words:"true" default:"4"`
	RecommendationCount int           `split_words:"true" default:"3"`
	PlaceholderLabel    string        `split_words:"true" default:"Default Option"`
}

func (c Config) Validate() error {
	if c.MaxToolRounds < 1 {
		return fmt.Errorf("%w: max tool rounds must be at least 1", contractx.ErrValidation)
	}
	if c.RecommendationCount < 1 {
		return fmt.Errorf("%w: recommendation count must be at least 1", contractx.ErrValidation)
	}
	if c.AgentTimeout < 0 || c.ToolTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", contractx.ErrValidation)
	}
	return nil
}

// Tools is the tool surface advertised to the agent and executed on its behalf.
type Tools interface {
	contractx.ToolGateway
	ToolInfos() []*schema.ToolInfo
}

type Models struct {
	Tools   einomodel.ToolCallingChatModel
	Final   einomodel.BaseChatModel
	Options einomodel.BaseChatModel
}

type Orchestrator struct {
	toolModel    einomodel.ToolCallingChatModel
	finalModel   einomodel.BaseChatModel
	optionsModel einomodel.BaseChatModel
	tools        Tools
	prompts      promptx.PromptSet
	normalizer   *normalizex.Normalizer
	cfg          Config

	graphRunner   compose.Runnable[nodex.GraphInput, nodex.GraphOutput]
	optionsRunner compose.Runnable[map[string]any, normalizex.OptionsReport]

	now func() time.Time
}

var _ contractx.Recommender = (*Orchestrator)(nil)

func New(ctx context.Context, models Models, tools Tools, prompts promptx.PromptSet, cfg Config) (*Orchestrator, error) {
	if models.Tools == nil || models.Final == nil || models.Options == nil {
		return nil, errors.New("tool, final and options models are required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := prompts.Validate(); err != nil {
		return nil, err
	}

	toolModel, err := models.Tools.WithTools(tools.ToolInfos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrModelInvoke, err)
	}

	o := &Orchestrator{
		toolModel:    toolModel,
		finalModel:   models.Final,
		optionsModel: models.Options,
		tools:        tools,
		prompts:      prompts,
		normalizer: normalizex.New(normalizex.Config{
			Count:            cfg.RecommendationCount,
			PlaceholderLabel: cfg.PlaceholderLabel,
		}),
		cfg: cfg,
		now: time.Now,
	}

	if o.graphRunner, err = o.compileRecommendGraph(ctx); err != nil {
		return nil, err
	}
	if o.optionsRunner, err = o.compileOptionsGraph(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// Recommend runs one tool-calling exchange. When the agent is unreachable the
// caller-safe fallback result is returned together with an error wrapping
// contract.ErrRecommendationUnavailable.
func (o *Orchestrator) Recommend(ctx context.Context, req contractx.RecommendationRequest) (contractx.RecommendationResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("user_id", req.UserID).Logger()
	ctx = logger.WithContext(ctx)

	if _, err := nodex.ValidateRequest(req, o.now); err != nil {
		return contractx.RecommendationResult{}, err
	}

	out, err := o.graphRunner.Invoke(ctx, req)
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			return contractx.RecommendationResult{}, err
		}
		logger.Error().Err(err).Msg("recommendation graph failed")
		return nodex.UnavailableResult(), fmt.Errorf("%w: %w", contractx.ErrRecommendationUnavailable, err)
	}
	if out.Err != nil {
		return out.Result, out.Err
	}
	return out.Result, nil
}
