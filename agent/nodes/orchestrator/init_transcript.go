package orchestratornode

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

type TranscriptBuilder interface {
	InitialMessages(ctx context.Context, req contractx.RecommendationRequest) ([]*schema.Message, error)
}

func InitTranscript(ctx context.Context, in *GraphState, prompts TranscriptBuilder) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	msgs, err := prompts.InitialMessages(ctx, in.Req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrPromptMissing, err)
	}

	in.Transcript = append(make([]*schema.Message, 0, len(msgs)+8), msgs...)
	return in, nil
}
