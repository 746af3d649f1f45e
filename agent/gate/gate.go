// Package gate decides whether an extracted statement runs or is held
// back for manual review.
package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	memoryx "github.com/tanpawarit/ai-toolkit/agent/memory"
	parserx "github.com/tanpawarit/ai-toolkit/agent/parser"
	riskx "github.com/tanpawarit/ai-toolkit/agent/risk"
)

// Notifier is told about every quarantined statement.
type Notifier interface {
	NotifyQuarantined(ctx context.Context, v Verdict) error
}

type Option func(*Gatekeeper)

func WithNotifier(n Notifier) Option {
	return func(g *Gatekeeper) {
		g.notifier = n
	}
}

type Gatekeeper struct {
	executor contractx.Executor
	memory   contractx.MemoryStore
	notifier Notifier
}

func New(executor contractx.Executor, memory contractx.MemoryStore, opts ...Option) (*Gatekeeper, error) {
	if executor == nil {
		return nil, fmt.Errorf("%w: executor is required", contractx.ErrConfiguration)
	}
	if memory == nil {
		return nil, fmt.Errorf("%w: memory store is required", contractx.ErrConfiguration)
	}
	g := &Gatekeeper{executor: executor, memory: memory}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

func (g *Gatekeeper) Decide(ctx context.Context, out parserx.Output) (Verdict, error) {
	if !out.HasStatement() {
		return Verdict{Kind: KindNoStatement}, nil
	}

	g.remember(ctx, contractx.KeyLastQuery, out.Statement)

	level := riskx.Classify(out.Statement)
	if level == riskx.Mutating || out.Disclaimer != "" {
		return g.quarantine(ctx, out, level), nil
	}

	res, err := g.executor.Execute(ctx, out.Statement)
	if err != nil {
		g.remember(ctx, contractx.KeyLastError, err.Error())
		if !errors.Is(err, contractx.ErrExecution) {
			err = fmt.Errorf("%w: %v", contractx.ErrExecution, err)
		}
		return Verdict{}, err
	}

	log.Info().Int("row_count", res.RowCount).Msg("statement executed")
	return Verdict{
		Kind:      KindExecuted,
		Statement: out.Statement,
		Risk:      level,
		Result:    &res,
	}, nil
}

func (g *Gatekeeper) quarantine(ctx context.Context, out parserx.Output, level riskx.Level) Verdict {
	disclaimer := out.Disclaimer
	if disclaimer == "" {
		disclaimer = DefaultWarning
	}
	v := Verdict{
		Kind:       KindQuarantined,
		Statement:  out.Statement,
		Disclaimer: disclaimer,
		Risk:       level,
	}

	log.Warn().Str("risk", string(level)).Msg("statement quarantined")
	if g.notifier != nil {
		if err := g.notifier.NotifyQuarantined(ctx, v); err != nil {
			log.Warn().Err(err).Msg("quarantine notification failed")
		}
	}
	return v
}

// remember writes session memory. A failed write is logged and does not
// change the verdict.
func (g *Gatekeeper) remember(ctx context.Context, key, value string) {
	if err := memoryx.SetSession(ctx, g.memory, key, value); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("session memory write failed")
	}
}
