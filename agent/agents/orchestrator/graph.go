package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/tanpawarit/food-recommendation-agent/agent/nodes/orchestrator"
)

func (o *Orchestrator) compileRecommendGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("init_transcript",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.InitTranscript(ctx, in, o.prompts)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node init_transcript: %w", err)
	}

	if err := graph.AddLambdaNode("tool_loop",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RunToolLoop(ctx, in, nodex.ToolLoop{
				Model:        o.toolModel,
				Gateway:      o.tools,
				MaxRounds:    o.cfg.MaxToolRounds,
				AgentTimeout: o.cfg.AgentTimeout,
				ToolTimeout:  o.cfg.ToolTimeout,
				Parallel:     o.cfg.ParallelTools,
				MaxParallel:  o.cfg.MaxParallelTools,
			})
		}),
	); err != nil {
		return nil, fmt.Errorf("add node tool_loop: %w", err)
	}

	if err := graph.AddLambdaNode("finalize",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Finalize(ctx, in, o.finalModel, o.prompts, o.normalizer.Count(), o.cfg.AgentTimeout)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize: %w", err)
	}

	if err := graph.AddLambdaNode("normalize_response",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.NormalizeResponse(ctx, in, o.normalizer)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node normalize_response: %w", err)
	}

	if err := graph.AddLambdaNode("ground_result",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.GroundResult(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node ground_result: %w", err)
	}

	if err := graph.AddLambdaNode("conclude",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.Conclude(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node conclude: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("tool loop returned nil state")
			}
			if in.Err != nil || in.Rounds == 0 {
				return "conclude", nil
			}
			return "finalize", nil
		},
		map[string]bool{
			"finalize": true,
			"conclude": true,
		},
	)
	if err := graph.AddBranch("tool_loop", branch); err != nil {
		return nil, fmt.Errorf("add tool_loop branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "init_transcript"},
		{"init_transcript", "tool_loop"},
		{"finalize", "normalize_response"},
		{"normalize_response", "ground_result"},
		{"ground_result", compose.END},
		{"conclude", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.recommend"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
