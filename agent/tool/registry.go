// Package tool declares the tools a model may call and dispatches its
// calls. Dispatch never fails: every problem becomes a failed ToolResult
// that is handed back to the model.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	telemetryx "github.com/tanpawarit/ai-toolkit/pkg/telemetry"
)

var ErrDuplicateTool = errors.New("tool already registered")

var tracer = telemetryx.Tracer("github.com/tanpawarit/ai-toolkit/agent/tool")

type Registry struct {
	mu    sync.RWMutex
	order []string
	specs map[string]Spec
}

func NewRegistry(specs ...Spec) (*Registry, error) {
	r := &Registry{specs: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(spec Spec) error {
	spec.Name = strings.TrimSpace(spec.Name)
	if spec.Name == "" {
		return fmt.Errorf("%w: tool name is empty", contractx.ErrValidation)
	}
	if spec.Handler == nil {
		return fmt.Errorf("%w: tool %s has no handler", contractx.ErrValidation, spec.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.specs[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, spec.Name)
	}
	r.specs[spec.Name] = spec.clone()
	r.order = append(r.order, spec.Name)
	return nil
}

// Infos returns the declarations handed to the model, in registration order.
func (r *Registry) Infos() []*schema.ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*schema.ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name].toolInfo())
	}
	return out
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *Registry) lookup(name string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[name]
	return s, ok
}

func (r *Registry) Dispatch(ctx context.Context, call contractx.ToolCall) (result contractx.ToolResult) {
	ctx, span := tracer.Start(ctx, "tool.dispatch")
	span.SetAttributes(
		attribute.String("tool.name", call.Tool),
		attribute.String("tool.call_id", call.ID),
	)
	start := time.Now()
	defer func() {
		if !result.Success {
			span.SetStatus(codes.Error, result.Error)
		}
		span.End()
		log.Debug().
			Str("tool", call.Tool).
			Str("call_id", call.ID).
			Bool("success", result.Success).
			Dur("duration", time.Since(start)).
			Msg("tool dispatched")
	}()

	fail := func(msg string) contractx.ToolResult {
		return contractx.ToolResult{CallID: call.ID, Tool: call.Tool, Error: msg}
	}

	spec, ok := r.lookup(call.Tool)
	if !ok {
		return fail("unknown tool")
	}

	args := call.Args
	if args == nil {
		args = map[string]any{}
	}
	if err := validateArgs(spec, args); err != nil {
		return fail(err.Error())
	}

	out, err := invoke(ctx, spec.Handler, args)
	if err != nil {
		return fail(err.Error())
	}
	if _, err := json.Marshal(out); err != nil {
		return fail(fmt.Sprintf("%v: result could not be encoded: %v", contractx.ErrToolExecution, err))
	}
	return contractx.ToolResult{
		CallID:  call.ID,
		Tool:    call.Tool,
		Success: true,
		Result:  out,
	}
}

func invoke(ctx context.Context, h Handler, args map[string]any) (out any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("tool handler panicked")
			out = nil
			err = fmt.Errorf("%w: handler panicked: %v", contractx.ErrToolExecution, rec)
		}
	}()
	return h(ctx, args)
}
