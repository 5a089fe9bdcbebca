package llm

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/food-recommendation-agent/agent/contract"
)

func baseConfig() Config {
	return Config{
		BaseURL:            " https://openrouter.ai/api/v1 ",
		APIKey:             " key ",
		Model:              "default/model",
		MaxCompletionToken: 1500,
		Temperature:        0.5,
		Timeout:            30 * time.Second,
		ToolTemperature:    -1,
		FinalTemperature:   -1,
		OptionsTemperature: -1,
	}
}

func TestOpenRouterForDefaults(t *testing.T) {
	t.Parallel()

	cfg := baseConfig().OpenRouterFor(contractx.AgentTypeTools)
	if cfg.Model != "default/model" || cfg.Temperature != 0.5 {
		t.Fatalf("unexpected config: model=%s temp=%v", cfg.Model, cfg.Temperature)
	}
	if cfg.APIKey != "key" || cfg.BaseURL != "https://openrouter.ai/api/v1" {
		t.Fatalf("values should be trimmed: %+v", cfg)
	}
	if cfg.MaxCompletionToken == nil || *cfg.MaxCompletionToken != 1500 {
		t.Fatalf("unexpected max tokens: %v", cfg.MaxCompletionToken)
	}
}

func TestOpenRouterForPhaseOverrides(t *testing.T) {
	t.Parallel()

	c := baseConfig()
	c.FinalModel = "final/model"
	c.FinalTemperature = 0
	c.OptionsModel = "options/model"

	final := c.OpenRouterFor(contractx.AgentTypeFinal)
	if final.Model != "final/model" || final.Temperature != 0 {
		t.Fatalf("unexpected final config: model=%s temp=%v", final.Model, final.Temperature)
	}

	options := c.OpenRouterFor(contractx.AgentTypeOptions)
	if options.Model != "options/model" || options.Temperature != 0.5 {
		t.Fatalf("unexpected options config: model=%s temp=%v", options.Model, options.Temperature)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := baseConfig().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	c := baseConfig()
	c.APIKey = ""
	if err := c.Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
