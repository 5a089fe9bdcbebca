package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

// Models holds one chat model per phase of the exchange.
type Models struct {
	Tools   model.ToolCallingChatModel
	Final   model.ToolCallingChatModel
	Options model.ToolCallingChatModel
}

func NewModels(ctx context.Context, cfg Config) (Models, error) {
	if err := cfg.Validate(); err != nil {
		return Models{}, err
	}

	build := func(agentType contractx.AgentType) (model.ToolCallingChatModel, error) {
		orCfg := cfg.OpenRouterFor(agentType)
		m, err := orCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("build %s model: %w", agentType, err)
		}
		return m, nil
	}

	var (
		out Models
		err error
	)
	if out.Tools, err = build(contractx.AgentTypeTools); err != nil {
		return Models{}, err
	}
	if out.Final, err = build(contractx.AgentTypeFinal); err != nil {
		return Models{}, err
	}
	if out.Options, err = build(contractx.AgentTypeOptions); err != nil {
		return Models{}, err
	}
	return out, nil
}
