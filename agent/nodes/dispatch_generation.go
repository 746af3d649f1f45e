package servicenode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	generationx "github.com/tanpawarit/ai-toolkit/agent/generation"
)

func DispatchGeneration(
	ctx context.Context,
	in *GraphState,
	stage Stage,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if stage.Runner == nil {
		return nil, fmt.Errorf("%w: no runner for purpose=%s", contractx.ErrConfiguration, stage.Purpose)
	}

	res, err := stage.Runner.Run(ctx, generationx.Session{
		SystemPrompt: stage.SystemPrompt,
		UserPrompt:   in.Text,
		Registry:     stage.Registry,
		MaxSteps:     stage.MaxSteps,
	})
	if err != nil {
		return nil, err
	}

	in.Answer = res.Text
	in.Steps = res.Steps
	return in, nil
}
