package servicenode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	gatex "github.com/tanpawarit/ai-toolkit/agent/gate"
)

func FinalizeVerdict(in *GraphState) (gatex.Verdict, error) {
	if in == nil {
		return gatex.Verdict{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	v := in.Verdict
	v.Answer = in.Answer
	return v, nil
}

func FinalizeExplanation(in *GraphState) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	reply := strings.TrimSpace(in.Answer)
	if reply == "" {
		return "", fmt.Errorf("%w: explanation is empty", contractx.ErrService)
	}
	return reply, nil
}
