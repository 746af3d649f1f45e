package tool

import (
	"context"
	"errors"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	memoryx "github.com/tanpawarit/ai-toolkit/agent/memory"
)

const (
	ToolGetMemory = "get_memory"
	ToolSetMemory = "set_memory"
)

var memoryKeyParams = map[string]Param{
	"category": {Type: TypeString, Desc: "Memory category, for example conventions", Required: true},
	"key":      {Type: TypeString, Desc: "Key within the category", Required: true},
}

// GetMemorySpec reads an entry. A missing entry is a successful call
// with found=false so the model can carry on.
func GetMemorySpec(store contractx.MemoryStore) Spec {
	return Spec{
		Name:        ToolGetMemory,
		Description: "Read a note saved earlier under (category, key).",
		Params:      memoryKeyParams,
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			category := stringArg(args, "category")
			key := stringArg(args, "key")
			entry, err := store.Get(ctx, category, key)
			if errors.Is(err, contractx.ErrNotFound) {
				return map[string]any{"found": false, "category": category, "key": key}, nil
			}
			if err != nil {
				return nil, err
			}
			out := map[string]any{
				"found":      true,
				"category":   entry.Category,
				"key":        entry.Key,
				"value":      entry.Value,
				"updated_at": entry.UpdatedAt,
			}
			if entry.Notes != nil {
				out["notes"] = *entry.Notes
			}
			return out, nil
		},
	}
}

func SetMemorySpec(store contractx.MemoryStore) Spec {
	return Spec{
		Name:        ToolSetMemory,
		Description: "Save a note under (category, key), replacing any earlier value. The session category is reserved.",
		Params: map[string]Param{
			"category": memoryKeyParams["category"],
			"key":      memoryKeyParams["key"],
			"value":    {Type: TypeString, Desc: "Value to store", Required: true},
			"notes":    {Type: TypeString, Desc: "Optional free-form notes"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			category := stringArg(args, "category")
			if err := memoryx.ValidateCategory(category); err != nil {
				return nil, err
			}
			key := stringArg(args, "key")
			value, _ := args["value"].(string)
			if err := store.Set(ctx, category, key, value, optionalStringArg(args, "notes")); err != nil {
				return nil, err
			}
			return map[string]any{"stored": true, "category": category, "key": key}, nil
		},
	}
}

func MemorySpecs(store contractx.MemoryStore) []Spec {
	return []Spec{GetMemorySpec(store), SetMemorySpec(store)}
}
