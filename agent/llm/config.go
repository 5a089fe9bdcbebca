package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
	openrouterx "github.com/tanpawarit/food-recommendation-agent/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	ToolModel          string  `envconfig:"TOOL_MODEL" split_words:"true"`
	FinalModel         string  `envconfig:"FINAL_MODEL" split_words:"true"`
	OptionsModel       string  `envconfig:"OPTIONS_MODEL" split_words:"true"`
	ToolTemperature    float32 `envconfig:"TOOL_TEMPERATURE" split_words:"true" default:"-1"`
	FinalTemperature   float32 `envconfig:"FINAL_TEMPERATURE" split_words:"true" default:"-1"`
	OptionsTemperature float32 `envconfig:"OPTIONS_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: openrouter timeout must be positive", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the model settings for one phase of the exchange.
// Unset per-phase values fall back to the defaults.
func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := func(model string, temperature float32) {
		if v := strings.TrimSpace(model); v != "" {
			modelName = v
		}
		if temperature >= 0 {
			temp = temperature
		}
	}

	switch agentType {
	case contractx.AgentTypeTools:
		override(c.ToolModel, c.ToolTemperature)
	case contractx.AgentTypeFinal:
		override(c.FinalModel, c.FinalTemperature)
	case contractx.AgentTypeOptions:
		override(c.OptionsModel, c.OptionsTemperature)
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
