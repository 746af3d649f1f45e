package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
)

var (
	//go:embed template/generate.txt
	generateRaw string

	//go:embed template/explain.txt
	explainRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Generate string
	Explain  string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Generate: strings.TrimSpace(generateRaw),
		Explain:  strings.TrimSpace(explainRaw),
	}
}

func (p PromptSet) For(purpose contractx.Purpose) (string, error) {
	var out string
	switch purpose {
	case contractx.PurposeGenerate:
		out = p.Generate
	case contractx.PurposeExplain:
		out = p.Explain
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%w: purpose=%s", contractx.ErrPromptMissing, purpose)
	}
	return out, nil
}
