package tool

import (
	"context"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
)

const (
	ToolListNamespaces   = "list_namespaces"
	ToolListRelations    = "list_relations"
	ToolDescribeRelation = "describe_relation"
)

// IntrospectionSpecs exposes the catalog as three read-only tools.
func IntrospectionSpecs(cat contractx.Catalog) []Spec {
	return []Spec{
		{
			Name:        ToolListNamespaces,
			Description: "List the schemas (namespaces) of the connected database, excluding system schemas.",
			Handler: func(ctx context.Context, _ map[string]any) (any, error) {
				names, err := cat.Namespaces(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]any{"namespaces": nonNil(names)}, nil
			},
		},
		{
			Name:        ToolListRelations,
			Description: "List the tables and views in one schema as fully qualified namespace.relation names.",
			Params: map[string]Param{
				"namespace": {Type: TypeString, Desc: "Schema name, for example public", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				ns := stringArg(args, "namespace")
				names, err := cat.Relations(ctx, ns)
				if err != nil {
					return nil, err
				}
				return map[string]any{"namespace": ns, "relations": nonNil(names)}, nil
			},
		},
		{
			Name:        ToolDescribeRelation,
			Description: "Describe the columns of a table or view and return its CREATE TABLE statement.",
			Params: map[string]Param{
				"relation": {Type: TypeString, Desc: "Relation name, qualified as namespace.relation or bare for public", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return cat.Describe(ctx, stringArg(args, "relation"))
			},
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
