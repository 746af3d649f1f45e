package telemetry

import (
	"context"
	"testing"
)

func TestSetupDisabled(t *testing.T) {
	t.Parallel()

	shutdown, err := Setup(Config{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
}

func TestTracerNotNil(t *testing.T) {
	t.Parallel()

	if Tracer("github.com/tanpawarit/ai-toolkit/pkg/telemetry") == nil {
		t.Fatal("Tracer() returned nil")
	}
}
