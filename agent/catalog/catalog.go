// Package catalog reads PostgreSQL system catalogs so the model can
// discover schemas, relations and columns before writing a statement.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
)

const DefaultNamespace = "public"

const namespacesQuery = `
SELECT n.nspname
FROM pg_catalog.pg_namespace n
WHERE n.nspname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
  AND n.nspname NOT LIKE 'pg\_temp\_%'
  AND n.nspname NOT LIKE 'pg\_toast\_temp\_%'
ORDER BY n.nspname`

const relationsQuery = `
SELECT c.relname
FROM pg_catalog.pg_class c
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = ?
  AND c.relkind IN ('r', 'p', 'v', 'm', 'f')
ORDER BY c.relname`

const columnsQuery = `
SELECT a.attname AS column_name,
       pg_catalog.format_type(a.atttypid, a.atttypmod) AS data_type,
       NOT a.attnotnull AS nullable,
       pg_catalog.pg_get_expr(d.adbin, d.adrelid) AS column_default
FROM pg_catalog.pg_attribute a
JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_catalog.pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
WHERE n.nspname = ?
  AND c.relname = ?
  AND a.attnum > 0
  AND NOT a.attisdropped
ORDER BY a.attnum`

type (
	Relation = contractx.Relation
	Column   = contractx.Column
)

type Catalog struct {
	db *bun.DB
}

var _ contractx.Catalog = (*Catalog)(nil)

func New(db *bun.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) Namespaces(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.db.NewRaw(namespacesQuery).Scan(ctx, &names); err != nil {
		return nil, fmt.Errorf("%w: list namespaces: %v", contractx.ErrStorage, err)
	}
	return names, nil
}

func (c *Catalog) Relations(ctx context.Context, namespace string) ([]string, error) {
	namespace = unquoteIdent(namespace)
	if namespace == "" {
		return nil, fmt.Errorf("%w: namespace is empty", contractx.ErrValidation)
	}

	var names []string
	if err := c.db.NewRaw(relationsQuery, namespace).Scan(ctx, &names); err != nil {
		return nil, fmt.Errorf("%w: list relations in %s: %v", contractx.ErrStorage, namespace, err)
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, namespace+"."+name)
	}
	return out, nil
}

type columnRow struct {
	Name     string  `bun:"column_name"`
	Type     string  `bun:"data_type"`
	Nullable bool    `bun:"nullable"`
	Default  *string `bun:"column_default"`
}

func (c *Catalog) Describe(ctx context.Context, relation string) (Relation, error) {
	namespace, name, err := SplitQualified(relation)
	if err != nil {
		return Relation{}, err
	}

	var rows []columnRow
	if err := c.db.NewRaw(columnsQuery, namespace, name).Scan(ctx, &rows); err != nil {
		return Relation{}, fmt.Errorf("%w: describe %s.%s: %v", contractx.ErrStorage, namespace, name, err)
	}
	if len(rows) == 0 {
		return Relation{}, fmt.Errorf("%w: relation %s.%s", contractx.ErrNotFound, namespace, name)
	}

	rel := Relation{
		Namespace: namespace,
		Name:      name,
		Columns:   make([]Column, 0, len(rows)),
	}
	for _, row := range rows {
		rel.Columns = append(rel.Columns, Column{
			Name:     row.Name,
			Type:     row.Type,
			Nullable: row.Nullable,
			Default:  row.Default,
		})
	}
	rel.Create = CreateStatement(rel)
	return rel, nil
}

// SplitQualified splits "ns.rel" into its parts. A bare name lives in public.
func SplitQualified(relation string) (string, string, error) {
	relation = strings.TrimSpace(relation)
	if relation == "" {
		return "", "", fmt.Errorf("%w: relation is empty", contractx.ErrValidation)
	}

	namespace, name, found := strings.Cut(relation, ".")
	if !found {
		name = namespace
		namespace = DefaultNamespace
	}
	namespace = unquoteIdent(namespace)
	name = unquoteIdent(name)
	if namespace == "" || name == "" {
		return "", "", fmt.Errorf("%w: malformed relation %q", contractx.ErrValidation, relation)
	}
	return namespace, name, nil
}

func unquoteIdent(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}
