package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	toolx "github.com/tanpawarit/ai-toolkit/agent/tool"
)

type fakeToolCallingModel struct {
	mu        sync.Mutex
	responses []*schema.Message
	repeat    *schema.Message
	err       error
	inputs    [][]*schema.Message
	boundWith []*schema.ToolInfo
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, append([]*schema.Message(nil), input...))
	if f.err != nil {
		return nil, f.err
	}
	if f.repeat != nil {
		return f.repeat, nil
	}
	idx := len(f.inputs) - 1
	if idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	return f.responses[idx], nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	f.boundWith = tools
	return f, nil
}

func (f *fakeToolCallingModel) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

func toolCallMsg(calls ...schema.ToolCall) *schema.Message {
	return &schema.Message{Role: schema.Assistant, ToolCalls: calls}
}

func call(id, name, args string) schema.ToolCall {
	return schema.ToolCall{ID: id, Type: "function", Function: schema.FunctionCall{Name: name, Arguments: args}}
}

func newTestRegistry(t *testing.T, order *[]string) *toolx.Registry {
	t.Helper()

	r, err := toolx.NewRegistry(
		toolx.Spec{
			Name: "lookup",
			Params: map[string]toolx.Param{
				"name": {Type: toolx.TypeString, Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				if order != nil {
					*order = append(*order, args["name"].(string))
				}
				return "value of " + args["name"].(string), nil
			},
		},
	)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r
}

func TestRunCompletesAfterToolCalls(t *testing.T) {
	t.Parallel()

	var order []string
	model := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCallMsg(call("c1", "lookup", `{"name":"first"}`), call("c2", "lookup", `{"name":"second"}`)),
			{Role: schema.Assistant, Content: "  done  "},
		},
	}
	o, err := New(model)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := o.Run(context.Background(), Session{
		SystemPrompt: "system",
		UserPrompt:   "question",
		Registry:     newTestRegistry(t, &order),
		MaxSteps:     5,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Text != "done" {
		t.Fatalf("Text = %q, want done", res.Text)
	}
	if len(res.Steps) != 2 || len(res.Steps[0].ToolResults) != 2 {
		t.Fatalf("Steps = %+v", res.Steps)
	}
	if strings.Join(order, ",") != "first,second" {
		t.Fatalf("dispatch order = %v", order)
	}
	if len(model.boundWith) != 1 || model.boundWith[0].Name != "lookup" {
		t.Fatalf("tools bound = %+v", model.boundWith)
	}

	// second request carries system, user, assistant, then both tool messages in order
	second := model.inputs[1]
	if len(second) != 5 {
		t.Fatalf("second request has %d messages, want 5", len(second))
	}
	if second[0].Role != schema.System || second[1].Role != schema.User || second[2].Role != schema.Assistant {
		t.Fatalf("unexpected roles: %v %v %v", second[0].Role, second[1].Role, second[2].Role)
	}
	for i, wantID := range []string{"c1", "c2"} {
		m := second[3+i]
		if m.Role != schema.Tool || m.ToolCallID != wantID {
			t.Fatalf("message %d = role %v id %q", 3+i, m.Role, m.ToolCallID)
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(m.Content), &payload); err != nil {
			t.Fatalf("tool message is not json: %v", err)
		}
		if payload["success"] != true || payload["tool"] != "lookup" {
			t.Fatalf("tool payload = %v", payload)
		}
	}
}

func TestRunStepBudgetExhausted(t *testing.T) {
	t.Parallel()

	model := &fakeToolCallingModel{
		repeat: toolCallMsg(call("c", "lookup", `{"name":"x"}`)),
	}
	o, err := New(model)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = o.Run(context.Background(), Session{
		UserPrompt: "loop forever",
		Registry:   newTestRegistry(t, nil),
		MaxSteps:   3,
	})

	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("Run() error = %v, want *RunError", err)
	}
	if runErr.State != StateStepBudgetExhausted || !errors.Is(err, contractx.ErrStepBudgetExhausted) {
		t.Fatalf("RunError = %+v", runErr)
	}
	if !IsBudgetExhausted(err) {
		t.Fatal("IsBudgetExhausted() = false")
	}
	if got := model.requests(); got != 3 {
		t.Fatalf("requests = %d, want 3", got)
	}
	if len(runErr.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(runErr.Steps))
	}
}

func TestRunDefaultBudget(t *testing.T) {
	t.Parallel()

	model := &fakeToolCallingModel{repeat: toolCallMsg(call("c", "lookup", `{"name":"x"}`))}
	o, err := New(model, WithMaxSteps(2))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := o.Run(context.Background(), Session{UserPrompt: "q", Registry: newTestRegistry(t, nil)}); !IsBudgetExhausted(err) {
		t.Fatalf("Run() error = %v, want budget exhausted", err)
	}
	if got := model.requests(); got != 2 {
		t.Fatalf("requests = %d, want 2", got)
	}
}

func TestRunServiceFailure(t *testing.T) {
	t.Parallel()

	model := &fakeToolCallingModel{err: errors.New("429 rate limited")}
	o, err := New(model)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = o.Run(context.Background(), Session{UserPrompt: "q"})
	var runErr *RunError
	if !errors.As(err, &runErr) || runErr.State != StateFailed {
		t.Fatalf("Run() error = %v, want failed RunError", err)
	}
	if !errors.Is(err, contractx.ErrService) {
		t.Fatalf("Run() error = %v, want ErrService", err)
	}
	if !strings.Contains(err.Error(), "openrouter api error: 429 rate limited") {
		t.Fatalf("error message = %q", err.Error())
	}
	if got := model.requests(); got != 1 {
		t.Fatalf("requests = %d, want 1 (no retry)", got)
	}
}

func TestRunEmptyAnswerIsServiceError(t *testing.T) {
	t.Parallel()

	model := &fakeToolCallingModel{responses: []*schema.Message{{Role: schema.Assistant, Content: "   "}}}
	o, err := New(model)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = o.Run(context.Background(), Session{UserPrompt: "q"})
	if !errors.Is(err, contractx.ErrService) || !strings.Contains(err.Error(), "no usable answer") {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestRunToolFailuresDoNotAbort(t *testing.T) {
	t.Parallel()

	model := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCallMsg(
				call("", "missing_tool", `{}`),
				call("c2", "lookup", `{not json`),
				call("c3", "lookup", `{}`),
			),
			{Role: schema.Assistant, Content: "recovered"},
		},
	}
	o, err := New(model)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := o.Run(context.Background(), Session{UserPrompt: "q", Registry: newTestRegistry(t, nil)})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	results := res.Steps[0].ToolResults
	if len(results) != 3 {
		t.Fatalf("results = %+v", results)
	}
	for _, r := range results {
		if r.Success {
			t.Fatalf("expected failure, got %+v", r)
		}
	}
	if results[0].Error != "unknown tool" {
		t.Fatalf("results[0].Error = %q", results[0].Error)
	}
	if !strings.Contains(results[1].Error, "invalid arguments") {
		t.Fatalf("results[1].Error = %q", results[1].Error)
	}

	generatedID := res.Steps[0].ToolCalls[0].ID
	if !strings.HasPrefix(generatedID, "call_") {
		t.Fatalf("generated id = %q", generatedID)
	}
	assistant := model.inputs[1][2]
	if assistant.ToolCalls[0].ID != generatedID || model.inputs[1][3].ToolCallID != generatedID {
		t.Fatal("generated id not propagated to assistant and tool messages")
	}
}

func TestRunWithoutRegistry(t *testing.T) {
	t.Parallel()

	model := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCallMsg(call("c1", "lookup", `{}`)),
			{Role: schema.Assistant, Content: "ok"},
		},
	}
	o, err := New(model)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := o.Run(context.Background(), Session{UserPrompt: "q"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Steps[0].ToolResults[0].Error != "unknown tool" {
		t.Fatalf("result = %+v", res.Steps[0].ToolResults[0])
	}
	if model.boundWith != nil {
		t.Fatal("tools bound without a registry")
	}
}

func TestRunValidation(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); !errors.Is(err, contractx.ErrConfiguration) {
		t.Fatalf("New(nil) error = %v", err)
	}

	o, _ := New(&fakeToolCallingModel{})
	if _, err := o.Run(context.Background(), Session{UserPrompt: "  "}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Run() error = %v, want ErrValidation", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()

	model := &fakeToolCallingModel{responses: []*schema.Message{{Content: "never"}}}
	o, _ := New(model)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Run(ctx, Session{UserPrompt: "q"})
	if !errors.Is(err, contractx.ErrService) {
		t.Fatalf("Run() error = %v, want ErrService", err)
	}
	if model.requests() != 0 {
		t.Fatal("request sent on a cancelled context")
	}
}

func TestObserversReceiveEvents(t *testing.T) {
	t.Parallel()

	model := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCallMsg(call("c1", "lookup", `{"name":"a"}`)),
			{Role: schema.Assistant, Content: "done"},
		},
	}

	var kinds []EventKind
	recorder := ObserverFunc(func(e Event) { kinds = append(kinds, e.Kind) })
	panicky := ObserverFunc(func(Event) { panic("observer bug") })
	ch := NewChannelObserver(1)

	o, err := New(model, WithObserver(recorder), WithObserver(ch), WithObserver(panicky), WithObserver(LogObserver{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := o.Run(context.Background(), Session{UserPrompt: "q", Registry: newTestRegistry(t, nil)}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []EventKind{EventToolCallStarted, EventToolCallFinished, EventStepFinished, EventStepFinished}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events = %v, want %v", kinds, want)
		}
	}

	first := <-ch.Events()
	if first.Kind != EventToolCallStarted {
		t.Fatalf("first channel event = %v", first.Kind)
	}
	if ch.Dropped() != 3 {
		t.Fatalf("Dropped() = %d, want 3", ch.Dropped())
	}
}

func TestChannelObserverClose(t *testing.T) {
	t.Parallel()

	ch := NewChannelObserver(4)
	ch.Observe(Event{Kind: EventStepFinished, Step: 1})
	ch.Observe(Event{Kind: EventStepFinished, Step: 2})
	ch.Close()
	ch.Close()
	ch.Observe(Event{Kind: EventStepFinished, Step: 3})

	var steps []int
	for e := range ch.Events() {
		steps = append(steps, e.Step)
	}
	if len(steps) != 2 || steps[0] != 1 || steps[1] != 2 {
		t.Fatalf("steps = %v, want [1 2]", steps)
	}
	if ch.Dropped() != 1 {
		t.Fatalf("Dropped() = %d, want 1", ch.Dropped())
	}
}
