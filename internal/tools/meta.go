package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/DEX-zha/town-hall-mcp/pkg/mcp"
)

type searchToolsInput struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type describeToolInput struct {
	Name string `json:"name"`
}

func (h *Handler) searchTools(_ context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in searchToolsInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid input: " + err.Error()), nil
	}
	if strings.TrimSpace(in.Query) == "" {
		return errorResult("query is required"), nil
	}

	results := h.registry.Search(in.Query, in.Category, in.Limit)
	if len(results) == 0 {
		return textResult(fmt.Sprintf("No tools found for query %q.", in.Query)), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d tool(s):\n\n", len(results)))
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("- %s [%s]: %s\n", r.Name, r.Category, r.Description))
	}
	sb.WriteString("\nUse describe_tool to see a tool's full input schema.")
	return textResult(sb.String()), nil
}

func (h *Handler) describeTool(_ context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in describeToolInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("Invalid input: " + err.Error()), nil
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return errorResult("name is required"), nil
	}

	tool, ok := h.registry.GetTool(name)
	if !ok {
		return errorResult(fmt.Sprintf("Tool '%s' not found. Use search_tools to list available tools.", name)), nil
	}

	return jsonResult(map[string]any{
		"name":        tool.Name,
		"description": tool.Description,
		"inputSchema": tool.InputSchema,
	}), nil
}
