// Package service exposes the two caller-facing operations: turn a
// request into a gated statement, and explain a statement or error.
package service

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	gatex "github.com/tanpawarit/ai-toolkit/agent/gate"
	generationx "github.com/tanpawarit/ai-toolkit/agent/generation"
	nodex "github.com/tanpawarit/ai-toolkit/agent/nodes"
	parserx "github.com/tanpawarit/ai-toolkit/agent/parser"
	promptx "github.com/tanpawarit/ai-toolkit/agent/prompt"
	toolx "github.com/tanpawarit/ai-toolkit/agent/tool"
)

var (
	ErrEmptyRequest     = nodex.ErrEmptyRequest
	ErrNothingToExplain = nodex.ErrNothingToExplain
)

type Deps struct {
	GenerateModel einomodel.ToolCallingChatModel
	// ExplainModel defaults to GenerateModel.
	ExplainModel einomodel.ToolCallingChatModel

	Catalog  contractx.Catalog
	Memory   contractx.MemoryStore
	Executor contractx.Executor

	Notifier  gatex.Notifier
	Extractor parserx.Extractor
	Observers []generationx.Observer
	Prompts   *promptx.PromptSet
	MaxSteps  int
}

type Service struct {
	generate  nodex.Stage
	explain   nodex.Stage
	gate      *gatex.Gatekeeper
	memory    contractx.MemoryStore
	extractor parserx.Extractor

	generateRunner compose.Runnable[nodex.GraphInput, gatex.Verdict]
	explainRunner  compose.Runnable[nodex.GraphInput, string]
}

func New(ctx context.Context, deps Deps) (*Service, error) {
	if deps.GenerateModel == nil {
		return nil, fmt.Errorf("%w: generate model is required", contractx.ErrConfiguration)
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", contractx.ErrConfiguration)
	}
	if deps.Memory == nil {
		return nil, fmt.Errorf("%w: memory store is required", contractx.ErrConfiguration)
	}
	explainModel := deps.ExplainModel
	if explainModel == nil {
		explainModel = deps.GenerateModel
	}

	prompts := promptx.LoadPromptSet()
	if deps.Prompts != nil {
		prompts = *deps.Prompts
	}

	gateOpts := []gatex.Option{}
	if deps.Notifier != nil {
		gateOpts = append(gateOpts, gatex.WithNotifier(deps.Notifier))
	}
	gate, err := gatex.New(deps.Executor, deps.Memory, gateOpts...)
	if err != nil {
		return nil, err
	}

	generateTools, err := GenerateTools(deps.Catalog, deps.Memory)
	if err != nil {
		return nil, err
	}
	explainTools, err := ExplainTools(deps.Catalog, deps.Memory)
	if err != nil {
		return nil, err
	}

	generate, err := newStage(contractx.PurposeGenerate, deps.GenerateModel, prompts, generateTools, deps)
	if err != nil {
		return nil, err
	}
	explain, err := newStage(contractx.PurposeExplain, explainModel, prompts, explainTools, deps)
	if err != nil {
		return nil, err
	}

	s := &Service{
		generate:  generate,
		explain:   explain,
		gate:      gate,
		memory:    deps.Memory,
		extractor: deps.Extractor,
	}
	if s.extractor == nil {
		s.extractor = parserx.MarkerExtractor{}
	}

	if s.generateRunner, err = s.compileGenerateGraph(ctx); err != nil {
		return nil, err
	}
	if s.explainRunner, err = s.compileExplainGraph(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func newStage(
	purpose contractx.Purpose,
	chatModel einomodel.ToolCallingChatModel,
	prompts promptx.PromptSet,
	registry *toolx.Registry,
	deps Deps,
) (nodex.Stage, error) {
	systemPrompt, err := prompts.For(purpose)
	if err != nil {
		return nodex.Stage{}, err
	}

	opts := []generationx.Option{generationx.WithMaxSteps(deps.MaxSteps)}
	for _, obs := range deps.Observers {
		opts = append(opts, generationx.WithObserver(obs))
	}
	runner, err := generationx.New(chatModel, opts...)
	if err != nil {
		return nodex.Stage{}, err
	}

	return nodex.Stage{
		Purpose:      purpose,
		SystemPrompt: systemPrompt,
		Registry:     registry,
		MaxSteps:     deps.MaxSteps,
		Runner:       runner,
	}, nil
}

// GenerateTools is the full tool set: introspection plus memory read/write.
func GenerateTools(cat contractx.Catalog, memory contractx.MemoryStore) (*toolx.Registry, error) {
	specs := append(toolx.IntrospectionSpecs(cat), toolx.MemorySpecs(memory)...)
	return toolx.NewRegistry(specs...)
}

// ExplainTools can look but not write.
func ExplainTools(cat contractx.Catalog, memory contractx.MemoryStore) (*toolx.Registry, error) {
	specs := append(toolx.IntrospectionSpecs(cat), toolx.GetMemorySpec(memory))
	return toolx.NewRegistry(specs...)
}

func (s *Service) GenerateQuery(ctx context.Context, request string) (gatex.Verdict, error) {
	verdict, err := s.generateRunner.Invoke(ctx, nodex.GraphInput{Text: request})
	if err != nil {
		return gatex.Verdict{}, err
	}
	log.Info().Str("verdict", string(verdict.Kind)).Msg("query generated")
	return verdict, nil
}

// Explain describes statementOrError in plain language. Empty input
// falls back to the last error, then the last query, in session memory.
func (s *Service) Explain(ctx context.Context, statementOrError string) (string, error) {
	return s.explainRunner.Invoke(ctx, nodex.GraphInput{Text: statementOrError})
}

// Tools returns the registry used for purpose.
func (s *Service) Tools(purpose contractx.Purpose) *toolx.Registry {
	if purpose == contractx.PurposeExplain {
		return s.explain.Registry
	}
	return s.generate.Registry
}
