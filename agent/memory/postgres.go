package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
)

type memoryRow struct {
	bun.BaseModel `bun:"table:ai_memory"`

	Category  string    `bun:"category,pk"`
	Key       string    `bun:"key,pk"`
	Value     string    `bun:"value,notnull"`
	Notes     *string   `bun:"notes"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// PostgresStore keeps entries in the ai_memory table.
type PostgresStore struct {
	db  *bun.DB
	now func() time.Time
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*memoryRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: create ai_memory: %v", contractx.ErrStorage, err)
	}
	return nil
}

func (s *PostgresStore) Set(ctx context.Context, category, key, value string, notes *string) error {
	category, key, err := normalizeKey(category, key)
	if err != nil {
		return err
	}

	row := &memoryRow{
		Category:  category,
		Key:       key,
		Value:     value,
		Notes:     notes,
		UpdatedAt: s.now().UTC(),
	}
	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (category, key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("notes = EXCLUDED.notes").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: upsert %s/%s: %v", contractx.ErrStorage, category, key, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, category, key string) (Entry, error) {
	category, key, err := normalizeKey(category, key)
	if err != nil {
		return Entry{}, err
	}

	row := new(memoryRow)
	err = s.db.NewSelect().
		Model(row).
		Where("category = ?", category).
		Where("key = ?", key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s/%s", ErrNotFound, category, key)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("%w: select %s/%s: %v", contractx.ErrStorage, category, key, err)
	}

	return Entry{
		Category:  row.Category,
		Key:       row.Key,
		Value:     row.Value,
		Notes:     row.Notes,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
