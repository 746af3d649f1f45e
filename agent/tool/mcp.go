package tool

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
)

// MCPServer serves the registry over the Model Context Protocol so other
// agents can use the same tools.
func (r *Registry) MCPServer(name, version string) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	r.mu.RLock()
	specs := make([]Spec, 0, len(r.order))
	for _, n := range r.order {
		specs = append(specs, r.specs[n])
	}
	r.mu.RUnlock()

	for _, spec := range specs {
		s.AddTool(mcpTool(spec), r.mcpHandler(spec.Name))
	}
	return s
}

func mcpTool(spec Spec) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(spec.Description)}
	for _, name := range spec.paramNames() {
		p := spec.Params[name]
		props := []mcp.PropertyOption{mcp.Description(p.Desc)}
		if p.Required {
			props = append(props, mcp.Required())
		}
		switch p.Type {
		case TypeInteger, TypeNumber:
			opts = append(opts, mcp.WithNumber(name, props...))
		case TypeBoolean:
			opts = append(opts, mcp.WithBoolean(name, props...))
		case TypeObject:
			opts = append(opts, mcp.WithObject(name, props...))
		case TypeArray:
			opts = append(opts, mcp.WithArray(name, props...))
		default:
			opts = append(opts, mcp.WithString(name, props...))
		}
	}
	return mcp.NewTool(spec.Name, opts...)
}

func (r *Registry) mcpHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := r.Dispatch(ctx, contractx.ToolCall{
			ID:   uuid.NewString(),
			Tool: name,
			Args: req.GetArguments(),
		})
		payload, err := json.Marshal(res)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !res.Success {
			return mcp.NewToolResultError(string(payload)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}
