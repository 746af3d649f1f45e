package service

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	gatex "github.com/tanpawarit/ai-toolkit/agent/gate"
	nodex "github.com/tanpawarit/ai-toolkit/agent/nodes"
)

func (s *Service) compileGenerateGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, gatex.Verdict], error) {
	graph := compose.NewGraph[nodex.GraphInput, gatex.Verdict]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_generation",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.DispatchGeneration(ctx, in, s.generate)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_generation: %w", err)
	}

	if err := graph.AddLambdaNode("extract_statement",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExtractStatement(in, s.extractor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_statement: %w", err)
	}

	if err := graph.AddLambdaNode("gate_statement",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.GateStatement(ctx, in, s.gate)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node gate_statement: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_verdict",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (gatex.Verdict, error) {
			return nodex.FinalizeVerdict(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_verdict: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "dispatch_generation"},
		{"dispatch_generation", "extract_statement"},
		{"extract_statement", "gate_statement"},
		{"gate_statement", "finalize_verdict"},
		{"finalize_verdict", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("service.generate_query"))
	if err != nil {
		return nil, fmt.Errorf("compile generate graph: %w", err)
	}
	return runner, nil
}

func (s *Service) compileExplainGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, string], error) {
	graph := compose.NewGraph[nodex.GraphInput, string]()

	if err := graph.AddLambdaNode("read_session_memory",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ReadSessionMemory(ctx, in, s.memory)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node read_session_memory: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_generation",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.DispatchGeneration(ctx, in, s.explain)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_generation: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_explanation",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (string, error) {
			return nodex.FinalizeExplanation(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_explanation: %w", err)
	}

	edges := [][2]string{
		{compose.START, "read_session_memory"},
		{"read_session_memory", "dispatch_generation"},
		{"dispatch_generation", "finalize_explanation"},
		{"finalize_explanation", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("service.explain"))
	if err != nil {
		return nil, fmt.Errorf("compile explain graph: %w", err)
	}
	return runner, nil
}
