package http

import (
	"context"
	"net/http"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexrag/aigateway/internal/domain"
)

// mcpUserHeader carries the caller identity for MCP tool invocations. Path
// identity is not available on the MCP transport, so the header fills the
// {user_id} binding segments instead.
const mcpUserHeader = "X-User-Id"

// MCPHandler exposes the tool catalog over the MCP streamable HTTP
// transport. Each request gets a server bound to the caller's user id.
func (api GatewayServer) MCPHandler() http.Handler {
	return mcpsdk.NewStreamableHTTPHandler(func(r *http.Request) *mcpsdk.Server {
		return api.mcpServer(r.Header.Get(mcpUserHeader))
	}, nil)
}

func (api GatewayServer) mcpServer(userID string) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "aigateway", Version: "1.0.0"}, nil)

	for _, tool := range api.Registry.List() {
		server.AddTool(&mcpsdk.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: toInputSchema(tool.Parameters),
		}, api.mcpToolHandler(userID, tool.Name))
	}
	return server
}

func (api GatewayServer) mcpToolHandler(userID, toolName string) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		call := domain.ToolCall{
			ID:        uuid.NewString(),
			Name:      toolName,
			Arguments: string(req.Params.Arguments),
		}

		result := api.Executor.Execute(ctx, userID, call)
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: result.Payload}},
			IsError: !result.IsSuccess(),
		}, nil
	}
}

func toInputSchema(params domain.ToolParameters) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       params.Type,
		Properties: map[string]*jsonschema.Schema{},
	}
	names := make([]string, 0, len(params.Properties))
	for name := range params.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		detail := params.Properties[name]
		schema.Properties[name] = &jsonschema.Schema{
			Type:        detail.Type,
			Description: detail.Description,
		}
		if detail.Required {
			schema.Required = append(schema.Required, name)
		}
	}
	return schema
}
