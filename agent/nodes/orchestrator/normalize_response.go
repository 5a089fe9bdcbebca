package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
	normalizex "github.com/tanpawarit/food-recommendation-agent/agent/normalize"
)

func NormalizeResponse(ctx context.Context, in *GraphState, normalizer *normalizex.Normalizer) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Err != nil {
		return in, nil
	}

	in.Report = normalizer.Recommendations(ctx, in.FinalRaw)
	return in, nil
}
