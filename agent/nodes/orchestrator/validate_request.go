package orchestratornode

import (
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
	normalizex "github.com/tanpawarit/food-recommendation-agent/agent/normalize"
)

type Phase string

const (
	PhaseInit           Phase = "INIT"
	PhaseAwaitingAgent  Phase = "AWAITING_AGENT"
	PhaseExecutingTools Phase = "EXECUTING_TOOLS"
	PhaseFinalizing     Phase = "FINALIZING"
	PhaseDone           Phase = "DONE"
)

type GraphInput = contractx.RecommendationRequest

type GraphOutput struct {
	Result    contractx.RecommendationResult
	Err       error
	Phase     Phase
	Rounds    int
	ToolCalls int
	ParseMode normalizex.ParseMode
	Dropped   int
}

// GraphState lives for one recommendation request. The transcript is
// append-only and is discarded with the state.
type GraphState struct {
	Req       contractx.RecommendationRequest
	StartedAt time.Time
	Phase     Phase

	Transcript  []*schema.Message
	ToolResults []contractx.ToolResult

	Rounds          int
	ToolCallCount   int
	ToolCallIDSeq   int
	RoundCapReached bool

	Prose    string
	FinalRaw string
	Report   normalizex.RecommendationReport

	// Err is set when the agent cannot be reached or gives no usable answer.
	// It always wraps contract.ErrRecommendationUnavailable.
	Err error
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", contractx.ErrValidation)
	}
	if in.OrderCount < 0 {
		return nil, fmt.Errorf("%w: order count must not be negative", contractx.ErrValidation)
	}

	req := in
	req.Query = query
	req.UserID = strings.TrimSpace(in.UserID)

	cuisines := make([]string, 0, len(in.FavoriteCuisines))
	for _, c := range in.FavoriteCuisines {
		if c = strings.TrimSpace(c); c != "" {
			cuisines = append(cuisines, c)
		}
	}
	req.FavoriteCuisines = cuisines

	return &GraphState{
		Req:       req,
		StartedAt: nowFn().UTC(),
		Phase:     PhaseInit,
	}, nil
}
