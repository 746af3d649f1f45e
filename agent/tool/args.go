package tool

import (
	"fmt"
	"math"
	"strings"
)

func validateArgs(spec Spec, args map[string]any) error {
	for _, name := range spec.paramNames() {
		p := spec.Params[name]
		v, ok := args[name]
		if !ok || v == nil {
			if p.Required {
				return fmt.Errorf("%s is required", name)
			}
			continue
		}
		if !matchesType(p.Type, v) {
			return fmt.Errorf("%s must be of type %s", name, p.Type)
		}
	}
	return nil
}

func matchesType(t ParamType, v any) bool {
	switch t {
	case TypeString, "":
		_, ok := v.(string)
		return ok
	case TypeInteger:
		switch n := v.(type) {
		case int, int32, int64:
			return true
		case float64:
			return n == math.Trunc(n)
		}
		return false
	case TypeNumber:
		switch v.(type) {
		case int, int32, int64, float32, float64:
			return true
		}
		return false
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	case TypeArray:
		_, ok := v.([]any)
		return ok
	default:
		return false
	}
}

// stringArg returns a trimmed string argument; validation already ran.
func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return strings.TrimSpace(s)
}

func optionalStringArg(args map[string]any, name string) *string {
	s, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &s
}
