package tool

import (
	"context"
	"sort"

	"github.com/cloudwego/eino/schema"
)

type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeObject  ParamType = "object"
	TypeArray   ParamType = "array"
)

type Param struct {
	Type     ParamType
	Desc     string
	Required bool
}

// Handler receives arguments that already passed parameter validation.
type Handler func(ctx context.Context, args map[string]any) (any, error)

type Spec struct {
	Name        string
	Description string
	Params      map[string]Param
	Handler     Handler
}

func (s Spec) clone() Spec {
	out := s
	if s.Params != nil {
		out.Params = make(map[string]Param, len(s.Params))
		for k, v := range s.Params {
			out.Params[k] = v
		}
	}
	return out
}

func (s Spec) paramNames() []string {
	names := make([]string, 0, len(s.Params))
	for name := range s.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s Spec) toolInfo() *schema.ToolInfo {
	info := &schema.ToolInfo{
		Name: s.Name,
		Desc: s.Description,
	}
	if len(s.Params) == 0 {
		return info
	}

	params := make(map[string]*schema.ParameterInfo, len(s.Params))
	for name, p := range s.Params {
		params[name] = &schema.ParameterInfo{
			Type:     dataType(p.Type),
			Desc:     p.Desc,
			Required: p.Required,
		}
	}
	info.ParamsOneOf = schema.NewParamsOneOfByParams(params)
	return info
}

func dataType(t ParamType) schema.DataType {
	switch t {
	case TypeInteger:
		return schema.Integer
	case TypeNumber:
		return schema.Number
	case TypeBoolean:
		return schema.Boolean
	case TypeObject:
		return schema.Object
	case TypeArray:
		return schema.Array
	default:
		return schema.String
	}
}
