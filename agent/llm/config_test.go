package llm

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "ok", cfg: Config{APIKey: "k", Model: "m"}},
		{name: "missing key", cfg: Config{Model: "m"}, wantErr: true},
		{name: "blank model", cfg: Config{APIKey: "k", Model: "  "}, wantErr: true},
		{name: "negative steps", cfg: Config{APIKey: "k", Model: "m", MaxSteps: -1}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, contractx.ErrConfiguration) {
				t.Fatalf("Validate() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestOpenRouterForPurposeOverrides(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:              " key ",
		Model:               "base/model",
		Temperature:         0.2,
		ExplainModel:        "explain/model",
		ExplainTemperature:  0.7,
		GenerateTemperature: -1,
		MaxCompletionToken:  512,
	}

	gen := cfg.OpenRouterFor(contractx.PurposeGenerate)
	if gen.Model != "base/model" || gen.Temperature != 0.2 {
		t.Fatalf("generate config = %+v", gen)
	}
	if gen.APIKey != "key" {
		t.Fatalf("api key not trimmed: %q", gen.APIKey)
	}
	if gen.MaxCompletionToken == nil || *gen.MaxCompletionToken != 512 {
		t.Fatalf("max completion token = %v", gen.MaxCompletionToken)
	}

	exp := cfg.OpenRouterFor(contractx.PurposeExplain)
	if exp.Model != "explain/model" || exp.Temperature != 0.7 {
		t.Fatalf("explain config = %+v", exp)
	}
}

func TestStepBudgetDefault(t *testing.T) {
	t.Parallel()

	if got := (Config{}).StepBudget(); got != DefaultMaxSteps {
		t.Fatalf("StepBudget() = %d, want %d", got, DefaultMaxSteps)
	}
	if got := (Config{MaxSteps: 3}).StepBudget(); got != 3 {
		t.Fatalf("StepBudget() = %d, want 3", got)
	}
}
