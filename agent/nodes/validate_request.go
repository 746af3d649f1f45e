package servicenode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	gatex "github.com/tanpawarit/ai-toolkit/agent/gate"
	generationx "github.com/tanpawarit/ai-toolkit/agent/generation"
	parserx "github.com/tanpawarit/ai-toolkit/agent/parser"
	toolx "github.com/tanpawarit/ai-toolkit/agent/tool"
)

var (
	ErrEmptyRequest     = fmt.Errorf("%w: request is empty", contractx.ErrValidation)
	ErrNothingToExplain = fmt.Errorf("%w: nothing to explain, no input and no previous query or error in session memory", contractx.ErrValidation)
)

type GraphInput struct {
	Text string
}

// Runner is satisfied by *generation.Orchestrator.
type Runner interface {
	Run(ctx context.Context, sess generationx.Session) (generationx.Result, error)
}

// Stage is the model-facing half of a pipeline.
type Stage struct {
	Purpose      contractx.Purpose
	SystemPrompt string
	Registry     *toolx.Registry
	MaxSteps     int
	Runner       Runner
}

type GraphState struct {
	Text string

	Answer string
	Steps  []generationx.Step
	Output parserx.Output

	Verdict gatex.Verdict
}

func ValidateRequest(in GraphInput) (*GraphState, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrEmptyRequest
	}
	return &GraphState{Text: text}, nil
}
