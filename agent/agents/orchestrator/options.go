package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
	normalizex "github.com/tanpawarit/food-recommendation-agent/agent/normalize"
)

// Options asks the agent for quick food ideas without any tool lookups. The
// result always has exactly the configured number of options.
func (o *Orchestrator) Options(ctx context.Context, req contractx.OptionsRequest) (contractx.OptionsResult, error) {
	input := strings.TrimSpace(req.InputText)
	if input == "" {
		return contractx.OptionsResult{}, fmt.Errorf("%w: input text is empty", contractx.ErrValidation)
	}

	logger := zerolog.Ctx(ctx)
	if o.cfg.AgentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.AgentTimeout)
		defer cancel()
	}

	report, err := o.optionsRunner.Invoke(ctx, map[string]any{
		"input_text": input,
		"count":      o.normalizer.Count(),
	})
	if err != nil {
		logger.Error().Err(err).Msg("options request failed")
		return o.normalizer.FallbackOptions(), fmt.Errorf("%w: %w", contractx.ErrRecommendationUnavailable, err)
	}

	logger.Info().
		Str("parse_mode", string(report.Mode)).
		Str("shape", string(report.Shape)).
		Msg("options generated")
	return report.Result, nil
}

func (o *Orchestrator) compileOptionsGraph(
	ctx context.Context,
) (compose.Runnable[map[string]any, normalizex.OptionsReport], error) {
	graph := compose.NewGraph[map[string]any, normalizex.OptionsReport]()

	if err := graph.AddChatTemplateNode("prompt", o.prompts.OptionsTemplate()); err != nil {
		return nil, fmt.Errorf("add options prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", o.optionsModel); err != nil {
		return nil, fmt.Errorf("add options model node: %w", err)
	}
	if err := graph.AddLambdaNode("normalize",
		compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (normalizex.OptionsReport, error) {
			if msg == nil {
				return normalizex.OptionsReport{}, errors.New("options model returned no message")
			}
			return o.normalizer.Options(ctx, msg.Content), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add options normalize node: %w", err)
	}

	edges := [][2]string{
		{compose.START, "prompt"},
		{"prompt", "model"},
		{"model", "normalize"},
		{"normalize", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add options edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.options"))
	if err != nil {
		return nil, fmt.Errorf("compile options graph: %w", err)
	}
	return runner, nil
}
