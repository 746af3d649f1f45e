package servicenode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	memoryx "github.com/tanpawarit/ai-toolkit/agent/memory"
)

// ReadSessionMemory fills in the text to explain when the caller gave
// none: the last execution error first, then the last generated query.
func ReadSessionMemory(
	ctx context.Context,
	in GraphInput,
	memory contractx.MemoryStore,
) (*GraphState, error) {
	if text := strings.TrimSpace(in.Text); text != "" {
		return &GraphState{Text: text}, nil
	}

	lastError, err := memoryx.GetSession(ctx, memory, contractx.KeyLastError)
	if err != nil {
		return nil, err
	}
	lastQuery, err := memoryx.GetSession(ctx, memory, contractx.KeyLastQuery)
	if err != nil {
		return nil, err
	}

	switch {
	case lastError != "" && lastQuery != "":
		return &GraphState{Text: fmt.Sprintf("Statement:\n%s\n\nError:\n%s", lastQuery, lastError)}, nil
	case lastError != "":
		return &GraphState{Text: lastError}, nil
	case lastQuery != "":
		return &GraphState{Text: lastQuery}, nil
	default:
		return nil, ErrNothingToExplain
	}
}
