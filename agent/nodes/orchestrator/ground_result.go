package orchestratornode

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
	groundingx "github.com/tanpawarit/food-recommendation-agent/agent/grounding"
)

const (
	UnavailableMessage  = "I'm sorry, I couldn't generate recommendations at this time. Please try again later."
	UnavailableFollowUp = "Would you like to try a different type of cuisine?"
	NoToolsFollowUp     = "Can you provide more details about what you're looking for?"
)

// UnavailableResult is the caller-safe result returned with
// contract.ErrRecommendationUnavailable.
func UnavailableResult() contractx.RecommendationResult {
	return contractx.RecommendationResult{
		Summary:          UnavailableMessage,
		Recommendations:  []contractx.RecommendationEntry{},
		FollowUpQuestion: UnavailableFollowUp,
	}
}

// GroundResult removes entries that name entities no tool call returned.
func GroundResult(ctx context.Context, in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Err != nil {
		return Conclude(ctx, in)
	}

	observed := groundingx.Observe(in.ToolResults)
	result, dropped := groundingx.Filter(in.Report.Result, observed)

	logger := zerolog.Ctx(ctx)
	for _, err := range dropped {
		logger.Warn().Err(err).Msg("dropped ungrounded recommendation")
	}

	in.Phase = PhaseDone
	out := output(in, result)
	out.ParseMode = in.Report.Mode
	out.Dropped = len(dropped)
	logDone(ctx, in, out)
	return out, nil
}

// Conclude ends an exchange that never reached the final request: the agent
// failed, or it answered without calling any tool.
func Conclude(ctx context.Context, in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.Phase = PhaseDone
	if in.Err != nil {
		out := output(in, UnavailableResult())
		out.Err = in.Err
		logDone(ctx, in, out)
		return out, nil
	}

	out := output(in, contractx.RecommendationResult{
		Summary:          in.Prose,
		Recommendations:  []contractx.RecommendationEntry{},
		FollowUpQuestion: NoToolsFollowUp,
	})
	logDone(ctx, in, out)
	return out, nil
}

func output(in *GraphState, result contractx.RecommendationResult) GraphOutput {
	if result.Recommendations == nil {
		result.Recommendations = []contractx.RecommendationEntry{}
	}
	return GraphOutput{
		Result:    result,
		Phase:     in.Phase,
		Rounds:    in.Rounds,
		ToolCalls: in.ToolCallCount,
	}
}

func logDone(ctx context.Context, in *GraphState, out GraphOutput) {
	ev := zerolog.Ctx(ctx).Info()
	if out.Err != nil {
		ev = zerolog.Ctx(ctx).Warn().Err(out.Err)
	}
	ev.Int("rounds", out.Rounds).
		Int("tool_calls", out.ToolCalls).
		Bool("round_cap_reached", in.RoundCapReached).
		Int("recommendations", len(out.Result.Recommendations)).
		Int("dropped", out.Dropped).
		Str("parse_mode", string(out.ParseMode)).
		Dur("elapsed", time.Since(in.StartedAt)).
		Msg("recommendation exchange finished")
}
