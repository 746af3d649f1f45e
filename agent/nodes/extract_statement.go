package servicenode

import (
	"fmt"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	parserx "github.com/tanpawarit/ai-toolkit/agent/parser"
)

func ExtractStatement(in *GraphState, extractor parserx.Extractor) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if extractor == nil {
		extractor = parserx.MarkerExtractor{}
	}
	in.Output = extractor.Extract(in.Answer)
	return in, nil
}
