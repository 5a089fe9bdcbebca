package contract

import "context"

type Recommender interface {
	Recommend(ctx context.Context, req RecommendationRequest) (RecommendationResult, error)
	Options(ctx context.Context, req OptionsRequest) (OptionsResult, error)
}

type ToolGateway interface {
	Execute(ctx context.Context, call ToolCall) ToolResult
}
