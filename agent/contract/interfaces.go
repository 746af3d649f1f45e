package contract

import "context"

type MemoryStore interface {
	Set(ctx context.Context, category, key, value string, notes *string) error
	Get(ctx context.Context, category, key string) (MemoryEntry, error)
}

type Catalog interface {
	Namespaces(ctx context.Context) ([]string, error)
	Relations(ctx context.Context, namespace string) ([]string, error)
	Describe(ctx context.Context, relation string) (Relation, error)
}

type Executor interface {
	Execute(ctx context.Context, statement string) (QueryResult, error)
}
