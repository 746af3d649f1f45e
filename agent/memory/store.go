// Package memory persists small named notes that survive across requests.
// Entries are unique on (category, key) and writes are upserts.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
)

type (
	Entry = contractx.MemoryEntry
	Store = contractx.MemoryStore
)

const (
	BackendPostgres = "postgres"
	BackendUpstash  = "upstash"
)

var (
	ErrNotFound         = fmt.Errorf("%w: memory entry", contractx.ErrNotFound)
	ErrReservedCategory = fmt.Errorf("%w: category %q is reserved", contractx.ErrValidation, contractx.SessionCategory)
)

type Config struct {
	Backend   string `envconfig:"BACKEND" default:"postgres"`
	KeyPrefix string `split_words:"true" default:"ai_toolkit:memory:"`
}

// Open picks the backend named by cfg. db is required for postgres,
// upstash settings for upstash.
func Open(ctx context.Context, cfg Config, db *bun.DB, upstash UpstashRedisConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("%w: postgres memory backend requires a database", contractx.ErrConfiguration)
		}
		store := NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case BackendUpstash:
		store, err := NewUpstashRedisStore(upstash, WithKeyPrefix(cfg.KeyPrefix))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", contractx.ErrConfiguration, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown memory backend %q", contractx.ErrConfiguration, cfg.Backend)
	}
}

// ValidateCategory rejects categories that tools may not write.
func ValidateCategory(category string) error {
	if strings.EqualFold(strings.TrimSpace(category), contractx.SessionCategory) {
		return ErrReservedCategory
	}
	return nil
}

// SetSession records a value under the reserved session category.
func SetSession(ctx context.Context, store Store, key, value string) error {
	if store == nil {
		return fmt.Errorf("%w: nil memory store", contractx.ErrStorage)
	}
	return store.Set(ctx, contractx.SessionCategory, key, value, nil)
}

// GetSession returns the session value for key, or "" when it was never written.
func GetSession(ctx context.Context, store Store, key string) (string, error) {
	if store == nil {
		return "", fmt.Errorf("%w: nil memory store", contractx.ErrStorage)
	}
	entry, err := store.Get(ctx, contractx.SessionCategory, key)
	if errors.Is(err, contractx.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

func normalizeKey(category, key string) (string, string, error) {
	category = strings.TrimSpace(category)
	key = strings.TrimSpace(key)
	if category == "" {
		return "", "", fmt.Errorf("%w: category is empty", contractx.ErrValidation)
	}
	if key == "" {
		return "", "", fmt.Errorf("%w: key is empty", contractx.ErrValidation)
	}
	return category, key, nil
}
