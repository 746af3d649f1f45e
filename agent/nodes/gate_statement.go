package servicenode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	gatex "github.com/tanpawarit/ai-toolkit/agent/gate"
	parserx "github.com/tanpawarit/ai-toolkit/agent/parser"
)

type Gate interface {
	Decide(ctx context.Context, out parserx.Output) (gatex.Verdict, error)
}

func GateStatement(
	ctx context.Context,
	in *GraphState,
	gate Gate,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	verdict, err := gate.Decide(ctx, in.Output)
	if err != nil {
		return nil, err
	}
	in.Verdict = verdict
	return in, nil
}
