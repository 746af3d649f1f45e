package generation

import (
	"fmt"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	toolx "github.com/tanpawarit/ai-toolkit/agent/tool"
)

type State string

const (
	StateIdle                State = "idle"
	StateRequesting          State = "requesting"
	StateAwaitingToolResults State = "awaiting_tool_results"
	StateCompleted           State = "completed"
	StateFailed              State = "failed"
	StateStepBudgetExhausted State = "step_budget_exhausted"
)

// Session is owned by a single Run call.
type Session struct {
	SystemPrompt string
	UserPrompt   string
	Registry     *toolx.Registry
	// MaxSteps bounds the number of requests. Zero uses the orchestrator default.
	MaxSteps int
}

type Step struct {
	Index       int                    `json:"index"`
	Text        string                 `json:"text,omitempty"`
	ToolCalls   []contractx.ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []contractx.ToolResult `json:"tool_results,omitempty"`
}

type Result struct {
	Text  string
	Steps []Step
}

// RunError reports where a session stopped and the steps taken so far.
type RunError struct {
	State State
	Steps []Step
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("generation %s after %d step(s): %v", e.State, len(e.Steps), e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
