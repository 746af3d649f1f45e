// Package generation drives a bounded conversation with a tool-calling
// model: request, dispatch any tool calls in order, feed the results back,
// and repeat until the model answers in text or the step budget runs out.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	llmx "github.com/tanpawarit/ai-toolkit/agent/llm"
	telemetryx "github.com/tanpawarit/ai-toolkit/pkg/telemetry"
)

var tracer = telemetryx.Tracer("github.com/tanpawarit/ai-toolkit/agent/generation")

type Option func(*Orchestrator)

func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

func WithMaxSteps(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxSteps = n
		}
	}
}

type Orchestrator struct {
	model     einomodel.ToolCallingChatModel
	observers multiObserver
	maxSteps  int
}

func New(chatModel einomodel.ToolCallingChatModel, opts ...Option) (*Orchestrator, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrConfiguration)
	}
	o := &Orchestrator{
		model:    chatModel,
		maxSteps: llmx.DefaultMaxSteps,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o, nil
}

type run struct {
	o        *Orchestrator
	sess     Session
	model    einomodel.BaseChatModel
	messages []*schema.Message
	steps    []Step
	state    State
	observer Observer
}

func (o *Orchestrator) Run(ctx context.Context, sess Session) (Result, error) {
	userPrompt := strings.TrimSpace(sess.UserPrompt)
	if userPrompt == "" {
		return Result{}, fmt.Errorf("%w: user prompt is empty", contractx.ErrValidation)
	}

	maxSteps := sess.MaxSteps
	if maxSteps <= 0 {
		maxSteps = o.maxSteps
	}

	var chatModel einomodel.BaseChatModel = o.model
	if sess.Registry != nil {
		if infos := sess.Registry.Infos(); len(infos) > 0 {
			bound, err := o.model.WithTools(infos)
			if err != nil {
				return Result{}, fmt.Errorf("%w: bind tools: %v", contractx.ErrConfiguration, err)
			}
			chatModel = bound
		}
	}

	ctx, span := tracer.Start(ctx, "generation.run")
	span.SetAttributes(attribute.Int("generation.max_steps", maxSteps))
	defer span.End()

	r := &run{
		o:     o,
		sess:  sess,
		model: chatModel,
		messages: []*schema.Message{
			schema.SystemMessage(sess.SystemPrompt),
			schema.UserMessage(userPrompt),
		},
		state:    StateIdle,
		observer: o.observers,
	}

	res, err := r.loop(ctx, maxSteps)
	span.SetAttributes(
		attribute.Int("generation.steps", len(r.steps)),
		attribute.String("generation.state", string(r.state)),
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Warn().Err(err).Str("state", string(r.state)).Int("steps", len(r.steps)).Msg("generation stopped")
		return Result{}, err
	}
	return res, nil
}

func (r *run) loop(ctx context.Context, maxSteps int) (Result, error) {
	for index := 1; ; index++ {
		if index > maxSteps {
			return Result{}, r.fail(StateStepBudgetExhausted,
				fmt.Errorf("%w: limit=%d", contractx.ErrStepBudgetExhausted, maxSteps))
		}
		if err := ctx.Err(); err != nil {
			return Result{}, r.fail(StateFailed, fmt.Errorf("%w: %v", contractx.ErrService, err))
		}

		r.state = StateRequesting
		msg, err := r.request(ctx, index)
		if err != nil {
			return Result{}, r.fail(StateFailed, err)
		}

		step := Step{Index: index, Text: strings.TrimSpace(msg.Content)}
		if len(msg.ToolCalls) == 0 {
			if step.Text == "" {
				return Result{}, r.fail(StateFailed, fmt.Errorf("%w: no usable answer", contractx.ErrService))
			}
			r.finishStep(step)
			r.state = StateCompleted
			return Result{Text: step.Text, Steps: r.steps}, nil
		}

		r.state = StateAwaitingToolResults
		assistant, calls := normalizeToolCalls(msg)
		r.messages = append(r.messages, assistant)

		step.ToolCalls = make([]contractx.ToolCall, 0, len(calls))
		step.ToolResults = make([]contractx.ToolResult, 0, len(calls))
		for i := range calls {
			call, decodeErr := decodeToolCall(calls[i])
			r.emit(Event{Kind: EventToolCallStarted, Step: index, Call: &call})

			var res contractx.ToolResult
			switch {
			case decodeErr != nil:
				res = contractx.ToolResult{CallID: call.ID, Tool: call.Tool, Error: decodeErr.Error()}
			case r.sess.Registry == nil:
				res = contractx.ToolResult{CallID: call.ID, Tool: call.Tool, Error: "unknown tool"}
			default:
				res = r.sess.Registry.Dispatch(ctx, call)
			}

			r.emit(Event{Kind: EventToolCallFinished, Step: index, Call: &call, Result: &res})
			r.messages = append(r.messages, schema.ToolMessage(encodeToolResult(res), call.ID))
			step.ToolCalls = append(step.ToolCalls, call)
			step.ToolResults = append(step.ToolResults, res)
		}
		r.finishStep(step)
	}
}

func (r *run) request(ctx context.Context, index int) (*schema.Message, error) {
	ctx, span := tracer.Start(ctx, "generation.request")
	span.SetAttributes(attribute.Int("generation.step", index))
	defer span.End()

	msg, err := r.model.Generate(ctx, r.messages)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: openrouter api error: %v", contractx.ErrService, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty response", contractx.ErrService)
	}
	return msg, nil
}

func (r *run) finishStep(step Step) {
	r.steps = append(r.steps, step)
	r.emit(Event{Kind: EventStepFinished, Step: step.Index, Text: step.Text})
}

func (r *run) fail(state State, err error) error {
	r.state = state
	return &RunError{
		State: state,
		Steps: append([]Step(nil), r.steps...),
		Err:   err,
	}
}

func (r *run) emit(e Event) {
	if len(r.o.observers) == 0 {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("event", string(e.Kind)).Msg("observer panicked")
		}
	}()
	r.observer.Observe(e)
}

// normalizeToolCalls copies the assistant message and fills in missing
// call ids so every tool message can reference its call.
func normalizeToolCalls(msg *schema.Message) (*schema.Message, []schema.ToolCall) {
	calls := make([]schema.ToolCall, len(msg.ToolCalls))
	copy(calls, msg.ToolCalls)
	for i := range calls {
		if strings.TrimSpace(calls[i].ID) == "" {
			calls[i].ID = "call_" + uuid.NewString()
		}
	}
	assistant := *msg
	assistant.ToolCalls = calls
	return &assistant, calls
}

func decodeToolCall(tc schema.ToolCall) (contractx.ToolCall, error) {
	call := contractx.ToolCall{
		ID:      tc.ID,
		Tool:    strings.TrimSpace(tc.Function.Name),
		RawArgs: tc.Function.Arguments,
		Args:    map[string]any{},
	}

	raw := strings.TrimSpace(tc.Function.Arguments)
	if raw == "" || raw == "null" {
		return call, nil
	}
	if err := json.Unmarshal([]byte(raw), &call.Args); err != nil {
		return call, fmt.Errorf("invalid arguments: %v", err)
	}
	if call.Args == nil {
		call.Args = map[string]any{}
	}
	return call, nil
}

func encodeToolResult(res contractx.ToolResult) string {
	payload, err := json.Marshal(res)
	if err != nil {
		fallback, _ := json.Marshal(contractx.ToolResult{
			Tool:  res.Tool,
			Error: "result could not be encoded: " + err.Error(),
		})
		return string(fallback)
	}
	return string(payload)
}

// IsBudgetExhausted reports whether err ended a run on the step budget.
func IsBudgetExhausted(err error) bool {
	return errors.Is(err, contractx.ErrStepBudgetExhausted)
}
