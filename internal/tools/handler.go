package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/DEX-zha/town-hall-mcp/internal/auditlog"
	"github.com/DEX-zha/town-hall-mcp/internal/buddy"
	"github.com/DEX-zha/town-hall-mcp/internal/registry"
	"github.com/DEX-zha/town-hall-mcp/pkg/mcp"
)

// Config wires the handler's pipelines. Each node tool gets its own manual
// defaults; the combined tools share the configured default action for
// inference tie-breaks.
type Config struct {
	Client           *buddy.Client
	DefaultAction    buddy.Action
	LocationDefaults buddy.Defaults
	MaturityDefaults buddy.Defaults
	CombinedDefaults buddy.Defaults
	Audit            *auditlog.Store
}

// Handler processes tool calls for the Town Hall node tools plus the
// discovery meta-tools.
type Handler struct {
	registry *registry.Registry
	audit    *auditlog.Store

	location *buddy.Pipeline
	maturity *buddy.Pipeline
	combined *buddy.Pipeline
}

// NewHandler creates a handler from the given configuration.
func NewHandler(reg *registry.Registry, cfg Config) *Handler {
	return &Handler{
		registry: reg,
		audit:    cfg.Audit,
		location: &buddy.Pipeline{Client: cfg.Client, Defaults: cfg.LocationDefaults},
		maturity: &buddy.Pipeline{Client: cfg.Client, Defaults: cfg.MaturityDefaults},
		combined: &buddy.Pipeline{Client: cfg.Client, Defaults: cfg.CombinedDefaults, DefaultAction: cfg.DefaultAction},
	}
}

// Tools returns every tool this handler serves, in listing order.
func (h *Handler) Tools() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "townhall_submit_location",
			Description: "Validate and submit a location listing (address, price, surface, type) to the Project Buddy API.",
			InputSchema: locationSchema,
		},
		{
			Name:        "townhall_submit_maturity",
			Description: "Validate and submit a project-maturity assessment (level, percentage, positive/negative points) to the Project Buddy API.",
			InputSchema: maturitySchema,
		},
		{
			Name:        "townhall_submit",
			Description: "Submit either a location listing or a project-maturity assessment. When action is omitted it is inferred from which fields are populated.",
			InputSchema: combinedSchema,
		},
		{
			Name:        "townhall_submit_report",
			Description: "Same pipeline as townhall_submit, but the result is wrapped in a {success, message, raw, timestamp} envelope.",
			InputSchema: combinedSchema,
		},
		{
			Name:        "search_tools",
			Description: "Search the available node tools by keyword or category.",
			InputSchema: searchToolsSchema,
		},
		{
			Name:        "describe_tool",
			Description: "Get the full input schema and description of a specific node tool.",
			InputSchema: describeToolSchema,
		},
	}
}

// Handle dispatches a tool call by name. Unknown names return an error
// result, not a protocol error, so the calling agent can always parse the
// outcome.
func (h *Handler) Handle(ctx context.Context, name string, args json.RawMessage) (*mcp.CallToolResult, error) {
	tool, ok := h.registry.GetTool(name)
	if !ok {
		return errorResult("Tool '" + name + "' not found. Use search_tools to list available tools."), nil
	}

	if err := validateArgs(tool.Name, tool.InputSchema, args); err != nil {
		return errorResult("Invalid input: " + err.Error()), nil
	}

	start := time.Now()
	switch name {
	case "townhall_submit_location":
		return h.submit(ctx, name, h.location, buddy.ActionLocation, args, false, start)
	case "townhall_submit_maturity":
		return h.submit(ctx, name, h.maturity, buddy.ActionMaturity, args, false, start)
	case "townhall_submit":
		return h.submit(ctx, name, h.combined, "", args, false, start)
	case "townhall_submit_report":
		return h.submit(ctx, name, h.combined, "", args, true, start)
	case "search_tools":
		return h.searchTools(ctx, args)
	case "describe_tool":
		return h.describeTool(ctx, args)
	default:
		return errorResult("Tool '" + name + "' is registered but has no handler."), nil
	}
}

func (h *Handler) submit(ctx context.Context, tool string, p *buddy.Pipeline, fixed buddy.Action, args json.RawMessage, report bool, start time.Time) (*mcp.CallToolResult, error) {
	res := p.Run(ctx, fixed, args)

	if h.audit != nil {
		if err := h.audit.Log(ctx, tool, string(res.Action), string(res.Status), args, res, time.Since(start)); err != nil {
			logf("audit log write failed: %v", err)
		}
	}

	var payload any = res
	if report {
		payload = buddy.NewReport(res)
	}

	out := jsonResult(payload)
	out.IsError = res.Status != buddy.StatusSuccess
	return out, nil
}

func logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[townhall-mcp] "+format+"\n", args...)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.ContentBlock{{Type: "text", Text: text}}}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.ContentBlock{{Type: "text", Text: "Error: " + msg}}, IsError: true}
}

func jsonResult(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("failed to encode result: " + err.Error())
	}
	return textResult(string(b))
}
