package prompt

import (
	"context"
	"fmt"
	"strings"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

// InitialMessages renders the system instructions and the user turn that open
// a recommendation transcript.
func (p PromptSet) InitialMessages(ctx context.Context, req contractx.RecommendationRequest) ([]*schema.Message, error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(p.System),
		schema.UserMessage(p.User),
	)

	cuisines := "unknown"
	if len(req.FavoriteCuisines) > 0 {
		cuisines = strings.Join(req.FavoriteCuisines, ", ")
	}

	msgs, err := template.Format(ctx, map[string]any{
		"user_id":           req.UserID,
		"order_count":       req.OrderCount,
		"favorite_cuisines": cuisines,
		"query":             req.Query,
	})
	if err != nil {
		return nil, fmt.Errorf("format initial prompt: %w", err)
	}
	return msgs, nil
}

// FinalMessage is the user turn asking for the structured answer.
func (p PromptSet) FinalMessage(ctx context.Context, count int) (*schema.Message, error) {
	template := einoprompt.FromMessages(schema.FString, schema.UserMessage(p.Final))
	msgs, err := template.Format(ctx, map[string]any{"count": count})
	if err != nil {
		return nil, fmt.Errorf("format final prompt: %w", err)
	}
	if len(msgs) != 1 {
		return nil, fmt.Errorf("%w: final prompt rendered %d messages", contractx.ErrPromptMissing, len(msgs))
	}
	return msgs[0], nil
}

// OptionsTemplate expects input_text and count.
func (p PromptSet) OptionsTemplate() einoprompt.ChatTemplate {
	return einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(p.OptionsSystem),
		schema.UserMessage(p.OptionsUser),
	)
}
