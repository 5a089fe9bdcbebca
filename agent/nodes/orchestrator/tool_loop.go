package orchestratornode

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

type ToolLoop struct {
	Model        einomodel.BaseChatModel
	Gateway      contractx.ToolGateway
	MaxRounds    int
	AgentTimeout time.Duration
	ToolTimeout  time.Duration
	Parallel     bool
	MaxParallel  int
}

// RunToolLoop alternates between the agent and tool execution until the agent
// stops asking for tools or MaxRounds rounds have run.
func RunToolLoop(ctx context.Context, in *GraphState, loop ToolLoop) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	logger := zerolog.Ctx(ctx)

	for {
		in.Phase = PhaseAwaitingAgent
		msg, err := Generate(ctx, loop.Model, in.Transcript, loop.AgentTimeout)
		if err != nil {
			in.Err = fmt.Errorf("%w: round %d: %w", contractx.ErrRecommendationUnavailable, in.Rounds+1, err)
			logger.Error().Err(err).Int("round", in.Rounds+1).Msg("agent request failed")
			return in, nil
		}

		if len(msg.ToolCalls) == 0 {
			in.Prose = strings.TrimSpace(msg.Content)
			in.Transcript = append(in.Transcript, &schema.Message{
				Role:    schema.Assistant,
				Content: msg.Content,
			})
			return in, nil
		}

		in.Rounds++
		calls, assistant := in.acceptToolCalls(msg)
		in.Transcript = append(in.Transcript, assistant)

		in.Phase = PhaseExecutingTools
		results := executeCalls(ctx, calls, loop)
		for _, res := range results {
			in.Transcript = append(in.Transcript, &schema.Message{
				Role:       schema.Tool,
				Content:    encodePayload(res),
				ToolCallID: res.CallID,
			})
		}
		in.ToolResults = append(in.ToolResults, results...)
		in.ToolCallCount += len(results)

		logger.Info().
			Int("round", in.Rounds).
			Int("tool_calls", len(results)).
			Msg("tool round completed")

		if in.Rounds >= loop.MaxRounds {
			in.RoundCapReached = true
			logger.Info().Int("max_rounds", loop.MaxRounds).Msg("tool round cap reached, finalizing")
			return in, nil
		}
	}
}

// acceptToolCalls converts the agent's calls and gives every call a unique id
// for this exchange.
func (in *GraphState) acceptToolCalls(msg *schema.Message) ([]pendingCall, *schema.Message) {
	seen := make(map[string]struct{}, len(in.ToolResults)+len(msg.ToolCalls))
	for _, res := range in.ToolResults {
		seen[res.CallID] = struct{}{}
	}

	schemaCalls := make([]schema.ToolCall, 0, len(msg.ToolCalls))
	calls := make([]pendingCall, 0, len(msg.ToolCalls))
	for i, tc := range msg.ToolCalls {
		id := strings.TrimSpace(tc.ID)
		if _, dup := seen[id]; id == "" || dup {
			id = fmt.Sprintf("call_%d_%d", in.Rounds, i)
			for _, taken := seen[id]; taken; _, taken = seen[id] {
				in.ToolCallIDSeq++
				id = fmt.Sprintf("call_%d_%d_%d", in.Rounds, i, in.ToolCallIDSeq)
			}
		}
		seen[id] = struct{}{}

		tc.ID = id
		if tc.Type == "" {
			tc.Type = "function"
		}
		schemaCalls = append(schemaCalls, tc)
		args, err := decodeArgs(tc.Function.Arguments)
		calls = append(calls, pendingCall{
			call: contractx.ToolCall{
				ID:   id,
				Tool: strings.TrimSpace(tc.Function.Name),
				Args: args,
			},
			argErr: err,
		})
	}

	return calls, &schema.Message{
		Role:      schema.Assistant,
		Content:   msg.Content,
		ToolCalls: schemaCalls,
	}
}

type pendingCall struct {
	call   contractx.ToolCall
	argErr error
}

func decodeArgs(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}
	args := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("%w: arguments are not a JSON object: %v", contractx.ErrInvalidArgument, err)
	}
	return args, nil
}

func executeCalls(ctx context.Context, calls []pendingCall, loop ToolLoop) []contractx.ToolResult {
	run := func(p *pendingCall) contractx.ToolResult {
		if p.argErr != nil {
			return contractx.ToolResult{
				CallID: p.call.ID,
				Tool:   p.call.Tool,
				Error: &contractx.ToolError{
					Kind:    contractx.ErrorKind(p.argErr),
					Message: p.argErr.Error(),
				},
			}
		}
		return executeCall(ctx, p.call, loop)
	}
	if !loop.Parallel || len(calls) < 2 {
		out := make([]contractx.ToolResult, 0, len(calls))
		for i := range calls {
			out = append(out, run(&calls[i]))
		}
		return out
	}

	mapper := iter.Mapper[pendingCall, contractx.ToolResult]{
		MaxGoroutines: loop.MaxParallel,
	}
	return mapper.Map(calls, run)
}

func executeCall(ctx context.Context, call contractx.ToolCall, loop ToolLoop) contractx.ToolResult {
	if loop.ToolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, loop.ToolTimeout)
		defer cancel()
	}
	return loop.Gateway.Execute(ctx, call)
}

func encodePayload(res contractx.ToolResult) string {
	b, err := json.Marshal(res.Payload())
	if err != nil {
		b, _ = json.Marshal(map[string]any{
			"tool": res.Tool,
			"error": contractx.ToolError{
				Kind:    "internal",
				Message: fmt.Sprintf("encode tool result: %v", err),
			},
		})
	}
	return string(b)
}

// Generate sends the transcript to the agent under its own deadline.
func Generate(ctx context.Context, model einomodel.BaseChatModel, transcript []*schema.Message, timeout time.Duration) (*schema.Message, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	msg, err := model.Generate(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty agent response", contractx.ErrSchemaViolation)
	}
	return msg, nil
}
