package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	openrouterx "github.com/tanpawarit/ai-toolkit/pkg/openrouter"
)

const DefaultMaxSteps = 10

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"meta-llama/llama-3.2-3b-instruct:free"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
	MaxSteps           int           `envconfig:"MAX_STEPS" split_words:"true" default:"10"`

	GenerateModel       string  `envconfig:"GENERATE_MODEL" split_words:"true"`
	ExplainModel        string  `envconfig:"EXPLAIN_MODEL" split_words:"true"`
	GenerateTemperature float32 `envconfig:"GENERATE_TEMPERATURE" split_words:"true" default:"-1"`
	ExplainTemperature  float32 `envconfig:"EXPLAIN_TEMPERATURE" split_words:"true" default:"-1"`
}

// Validate runs before any network call so a bad setup fails fast.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: %v", contractx.ErrConfiguration, openrouterx.ErrMissingAPIKey)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrConfiguration)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: max steps must be >= 0", contractx.ErrConfiguration)
	}
	return nil
}

func (c Config) StepBudget() int {
	if c.MaxSteps <= 0 {
		return DefaultMaxSteps
	}
	return c.MaxSteps
}

func (c Config) OpenRouterFor(purpose contractx.Purpose) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch purpose {
	case contractx.PurposeGenerate:
		if v := strings.TrimSpace(c.GenerateModel); v != "" {
			modelName = v
		}
		if c.GenerateTemperature >= 0 {
			temp = c.GenerateTemperature
		}
	case contractx.PurposeExplain:
		if v := strings.TrimSpace(c.ExplainModel); v != "" {
			modelName = v
		}
		if c.ExplainTemperature >= 0 {
			temp = c.ExplainTemperature
		}
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
