package executor

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	postgresx "github.com/tanpawarit/ai-toolkit/pkg/postgres"
)

func TestNormalizeValue(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("x", 3600))
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "bytes", in: []byte("abc"), want: "abc"},
		{name: "time", in: ts, want: "2026-03-04T04:06:07Z"},
		{name: "int", in: int64(3), want: int64(3)},
		{name: "nil", in: nil, want: nil},
	}
	for _, tt := range tests {
		if got := normalizeValue(tt.in); got != tt.want {
			t.Fatalf("%s: normalizeValue() = %#v, want %#v", tt.name, got, tt.want)
		}
	}
}

func TestNewOptions(t *testing.T) {
	t.Parallel()

	e := New(nil, WithMaxRows(5), WithReadWrite(), WithMaxRows(0))
	if e.maxRows != 5 {
		t.Fatalf("maxRows = %d, want 5", e.maxRows)
	}
	if e.readOnly {
		t.Fatal("readOnly = true, want false")
	}
}

func TestExecuteEmptyStatement(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Execute(context.Background(), "   ")
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Execute() error = %v, want ErrValidation", err)
	}
}

func TestExecuteIntegration(t *testing.T) {
	dsn := os.Getenv("AI_TOOLKIT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("AI_TOOLKIT_TEST_DATABASE_URL not set")
	}

	db, err := postgresx.New(postgresx.Config{URL: dsn})
	if err != nil {
		t.Fatalf("postgres.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	e := New(db, WithMaxRows(2))
	res, err := e.Execute(context.Background(), "SELECT g AS n, '?' AS q FROM generate_series(1, 3) g")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.RowCount != 3 || len(res.Rows) != 2 {
		t.Fatalf("RowCount = %d rows = %d", res.RowCount, len(res.Rows))
	}
	if res.Columns[0] != "n" || res.Rows[0][1] != "?" {
		t.Fatalf("unexpected result %+v", res)
	}

	if _, err := e.Execute(context.Background(), "CREATE TABLE executor_it (id int)"); !errors.Is(err, contractx.ErrExecution) {
		t.Fatalf("Execute(write) error = %v, want ErrExecution", err)
	}
}
