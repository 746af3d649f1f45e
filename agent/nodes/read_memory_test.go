package servicenode

import (
	"context"
	"errors"
	"fmt"
	"testing"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
)

type mapMemory map[string]string

func (m mapMemory) Set(ctx context.Context, category, key, value string, notes *string) error {
	m[category+"/"+key] = value
	return nil
}

func (m mapMemory) Get(ctx context.Context, category, key string) (contractx.MemoryEntry, error) {
	v, ok := m[category+"/"+key]
	if !ok {
		return contractx.MemoryEntry{}, fmt.Errorf("%w: %s/%s", contractx.ErrNotFound, category, key)
	}
	return contractx.MemoryEntry{Category: category, Key: key, Value: v}, nil
}

func TestReadSessionMemory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		memory mapMemory
		want   string
	}{
		{name: "explicit input wins", input: " SELECT 1 ", memory: mapMemory{"session/last_query": "SELECT 2"}, want: "SELECT 1"},
		{name: "last error only", memory: mapMemory{"session/last_error": "boom"}, want: "boom"},
		{name: "last query only", memory: mapMemory{"session/last_query": "SELECT 2"}, want: "SELECT 2"},
		{
			name:   "both",
			memory: mapMemory{"session/last_query": "SELECT 2", "session/last_error": "boom"},
			want:   "Statement:\nSELECT 2\n\nError:\nboom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ReadSessionMemory(context.Background(), GraphInput{Text: tt.input}, tt.memory)
			if err != nil {
				t.Fatalf("ReadSessionMemory() error = %v", err)
			}
			if got.Text != tt.want {
				t.Fatalf("Text = %q, want %q", got.Text, tt.want)
			}
		})
	}
}

func TestReadSessionMemoryEmpty(t *testing.T) {
	t.Parallel()

	_, err := ReadSessionMemory(context.Background(), GraphInput{}, mapMemory{})
	if !errors.Is(err, ErrNothingToExplain) || !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("ReadSessionMemory() error = %v, want ErrNothingToExplain", err)
	}
}

func TestValidateRequestTrims(t *testing.T) {
	t.Parallel()

	state, err := ValidateRequest(GraphInput{Text: "  list users \n"})
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	if state.Text != "list users" {
		t.Fatalf("Text = %q", state.Text)
	}
	if _, err := ValidateRequest(GraphInput{Text: "\t"}); !errors.Is(err, ErrEmptyRequest) {
		t.Fatalf("ValidateRequest() error = %v, want ErrEmptyRequest", err)
	}
}
