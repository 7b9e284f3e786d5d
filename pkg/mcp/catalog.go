package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/usecasehq/usecase-engine/pkg/llm"
)

// RegisterCatalog exposes every tool in the agent's catalog over MCP.
// Each tool keeps its JSON schema verbatim and delegates to the same
// executor the in-process agent loop uses, so both surfaces share one
// permission gate and one set of semantics.
func (s *Server) RegisterCatalog(tools []llm.ToolDefinition, executor llm.ToolExecutor) error {
	for _, def := range tools {
		schema, err := json.Marshal(def.Parameters)
		if err != nil {
			return err
		}

		name := def.Name
		tool := mcp.NewToolWithRawSchema(name, def.Description, schema)

		s.RegisterTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, err := json.Marshal(req.GetArguments())
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			result, err := executor.ExecuteTool(ctx, name, string(args))
			if err != nil {
				s.logger.Error("MCP tool fault",
					zap.String("tool", name),
					zap.Error(err))
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(result), nil
		})
	}

	s.logger.Info("Registered MCP tool catalog", zap.Int("tools", len(tools)))
	return nil
}
