package orchestratornode

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

type FinalPrompter interface {
	FinalMessage(ctx context.Context, count int) (*schema.Message, error)
}

// Finalize asks the agent, with no tools bound, for the structured answer.
// Tool calls in that answer are ignored.
func Finalize(
	ctx context.Context,
	in *GraphState,
	model einomodel.BaseChatModel,
	prompts FinalPrompter,
	count int,
	timeout time.Duration,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	logger := zerolog.Ctx(ctx)
	in.Phase = PhaseFinalizing

	instruction, err := prompts.FinalMessage(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrPromptMissing, err)
	}
	in.Transcript = append(in.Transcript, instruction)

	msg, err := Generate(ctx, model, in.Transcript, timeout)
	if err != nil {
		in.Err = fmt.Errorf("%w: finalize: %w", contractx.ErrRecommendationUnavailable, err)
		logger.Error().Err(err).Msg("final agent request failed")
		return in, nil
	}
	if n := len(msg.ToolCalls); n > 0 {
		logger.Warn().Int("tool_calls", n).Msg("ignoring tool calls in final answer")
	}

	content := strings.TrimSpace(msg.Content)
	in.Transcript = append(in.Transcript, &schema.Message{
		Role:    schema.Assistant,
		Content: content,
	})
	if content == "" {
		in.Err = fmt.Errorf("%w: final answer has no content", contractx.ErrRecommendationUnavailable)
		logger.Error().Err(in.Err).Msg("final agent answer is empty")
		return in, nil
	}

	in.FinalRaw = content
	return in, nil
}
