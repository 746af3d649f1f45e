package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	generationx "github.com/tanpawarit/ai-toolkit/agent/generation"
)

func TestRunChecksReportsEveryCheck(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := runChecks(context.Background(), &out, []check{
		{name: "config", run: func(context.Context) (string, error) { return "max steps 10", nil }},
		{name: "database", run: func(context.Context) (string, error) { return "", errors.New("connection refused") }},
		{name: "memory", run: func(context.Context) (string, error) { return "postgres", nil }},
	})
	if err == nil || !strings.Contains(err.Error(), "1 check(s) failed") {
		t.Fatalf("runChecks() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output lines = %d, want 3:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[1], "FAIL  database") || !strings.Contains(lines[1], "connection refused") {
		t.Fatalf("database line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "ok    memory") {
		t.Fatalf("memory line = %q", lines[2])
	}
}

func TestRunChecksAllPass(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := runChecks(context.Background(), &out, []check{
		{name: "config", run: func(context.Context) (string, error) { return "fine", nil }},
	})
	if err != nil {
		t.Fatalf("runChecks() error = %v", err)
	}
}

func TestMemorySetRejectsSessionCategory(t *testing.T) {
	t.Parallel()

	if err := memorySet(memorySetCmd, []string{" Session ", "last_query", "x"}); err == nil {
		t.Fatal("expected session category to be rejected")
	}
}

func TestPrintProgress(t *testing.T) {
	t.Parallel()

	obs := generationx.NewChannelObserver(8)
	obs.Observe(generationx.Event{Kind: generationx.EventToolCallStarted, Step: 1, Call: &contractx.ToolCall{Tool: "list_namespaces"}})
	obs.Observe(generationx.Event{Kind: generationx.EventToolCallFinished, Step: 1, Result: &contractx.ToolResult{Tool: "list_namespaces", Error: "catalog down"}})
	obs.Observe(generationx.Event{Kind: generationx.EventStepFinished, Step: 1})
	obs.Close()

	var out bytes.Buffer
	printProgress(&out, obs.Events())

	want := "step 1: calling list_namespaces\nstep 1: list_namespaces failed: catalog down\nstep 1: done\n"
	if out.String() != want {
		t.Fatalf("progress = %q, want %q", out.String(), want)
	}
}
