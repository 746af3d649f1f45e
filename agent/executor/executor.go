package executor

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
)

const DefaultMaxRows = 1000

type Option func(*Executor)

// WithMaxRows caps how many rows are kept in the result. RowCount still
// reports every row the statement produced.
func WithMaxRows(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxRows = n
		}
	}
}

// WithReadWrite runs statements outside a read-only transaction.
func WithReadWrite() Option {
	return func(e *Executor) {
		e.readOnly = false
	}
}

type Executor struct {
	db       *bun.DB
	maxRows  int
	readOnly bool
}

var _ contractx.Executor = (*Executor)(nil)

func New(db *bun.DB, opts ...Option) *Executor {
	e := &Executor{
		db:       db,
		maxRows:  DefaultMaxRows,
		readOnly: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Execute runs statement verbatim. The text is not passed through bun's
// placeholder formatter, so literal '?' characters are preserved.
func (e *Executor) Execute(ctx context.Context, statement string) (contractx.QueryResult, error) {
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return contractx.QueryResult{}, fmt.Errorf("%w: empty statement", contractx.ErrValidation)
	}

	start := time.Now()
	tx, err := e.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: e.readOnly})
	if err != nil {
		return contractx.QueryResult{}, fmt.Errorf("%w: begin: %v", contractx.ErrExecution, err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.Tx.QueryContext(ctx, statement)
	if err != nil {
		return contractx.QueryResult{}, fmt.Errorf("%w: %v", contractx.ErrExecution, err)
	}
	defer rows.Close()

	result, err := e.collect(rows)
	if err != nil {
		return contractx.QueryResult{}, fmt.Errorf("%w: %v", contractx.ErrExecution, err)
	}

	if err := tx.Commit(); err != nil {
		return contractx.QueryResult{}, fmt.Errorf("%w: commit: %v", contractx.ErrExecution, err)
	}

	log.Debug().
		Int("row_count", result.RowCount).
		Dur("duration", time.Since(start)).
		Msg("statement executed")
	return result, nil
}

func (e *Executor) collect(rows *sql.Rows) (contractx.QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return contractx.QueryResult{}, err
	}

	result := contractx.QueryResult{
		Columns: columns,
		Rows:    [][]any{},
	}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return contractx.QueryResult{}, err
		}

		result.RowCount++
		if len(result.Rows) >= e.maxRows {
			continue
		}
		for i, v := range values {
			values[i] = normalizeValue(v)
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return contractx.QueryResult{}, err
	}
	return result, nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	default:
		return val
	}
}
