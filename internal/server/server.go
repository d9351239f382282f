package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/DEX-zha/town-hall-mcp/internal/auditlog"
	"github.com/DEX-zha/town-hall-mcp/internal/buddy"
	"github.com/DEX-zha/town-hall-mcp/internal/registry"
	"github.com/DEX-zha/town-hall-mcp/internal/tools"
	"github.com/DEX-zha/town-hall-mcp/pkg/mcp"
)

const (
	serverName    = "town-hall-mcp"
	serverVersion = "1.0.0"
)

// Config is the operator-facing server configuration.
type Config struct {
	// BaseURL overrides the environment fallbacks when non-empty.
	BaseURL string `yaml:"base_url"`

	// DefaultAction breaks action-inference ties in the combined tools.
	DefaultAction string `yaml:"default_action"`

	// Per-tool manual defaults.
	LocationDefaults buddy.Defaults `yaml:"location_defaults"`
	MaturityDefaults buddy.Defaults `yaml:"maturity_defaults"`
	CombinedDefaults buddy.Defaults `yaml:"combined_defaults"`

	// AuditPath enables the SQLite invocation log when non-empty.
	AuditPath string `yaml:"audit_path"`
}

// Server is the Town Hall MCP server.
type Server struct {
	transport *mcp.Transport
	registry  *registry.Registry
	handler   *tools.Handler
	audit     *auditlog.Store
	ctx       context.Context
}

// New creates a server. The base URL is resolved here, before any request is
// served: a missing base URL is the one fatal configuration error.
func New(ctx context.Context, cfg Config) (*Server, error) {
	baseURL, err := buddy.ResolveBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	defaultAction, err := buddy.ParseAction(cfg.DefaultAction)
	if err != nil {
		return nil, fmt.Errorf("invalid default_action: %w", err)
	}

	var audit *auditlog.Store
	if strings.TrimSpace(cfg.AuditPath) != "" {
		audit, err = auditlog.Open(cfg.AuditPath)
		if err != nil {
			return nil, err
		}
	}

	reg := registry.New()
	handler := tools.NewHandler(reg, tools.Config{
		Client:           buddy.NewClient(baseURL),
		DefaultAction:    defaultAction,
		LocationDefaults: cfg.LocationDefaults,
		MaturityDefaults: cfg.MaturityDefaults,
		CombinedDefaults: cfg.CombinedDefaults,
		Audit:            audit,
	})
	reg.LoadTools(handler.Tools())

	return &Server{
		transport: mcp.NewTransport(os.Stdin, os.Stdout),
		registry:  reg,
		handler:   handler,
		audit:     audit,
		ctx:       ctx,
	}, nil
}

// Run starts the server main loop and blocks until stdin closes.
func (s *Server) Run() error {
	defer func() {
		if err := s.audit.Close(); err != nil {
			logf("failed to close audit log: %v", err)
		}
	}()

	logf("serving %d tools", s.registry.ToolCount())

	for {
		req, err := s.transport.ReadMessage()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			logf("error reading message: %v", err)
			continue
		}

		resp := s.handleRequest(req)
		if resp != nil {
			if err := s.transport.WriteResponse(resp); err != nil {
				logf("error writing response: %v", err)
			}
		}
	}
}

func (s *Server) handleRequest(req *mcp.Request) *mcp.Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// No response needed for notifications.
		return nil
	case "tools/list":
		return s.handleListTools(req)
	case "tools/call":
		return s.handleCallTool(req)
	case "ping":
		return s.handlePing(req)
	default:
		return mcp.NewErrorResponse(req.ID, mcp.MethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

func (s *Server) handleInitialize(req *mcp.Request) *mcp.Response {
	result := mcp.InitializeResult{
		ProtocolVersion: "2024-11-05",
		Capabilities: mcp.ServerCapabilities{
			Tools: &mcp.ToolsCapability{},
		},
		ServerInfo: mcp.ServerInfo{
			Name:    serverName,
			Version: serverVersion,
		},
		Instructions: s.buildInstructions(),
	}

	resp, err := mcp.NewResponse(req.ID, result)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	return resp
}

func (s *Server) handleListTools(req *mcp.Request) *mcp.Response {
	resp, err := mcp.NewResponse(req.ID, mcp.ListToolsResult{Tools: s.registry.List()})
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	return resp
}

func (s *Server) handleCallTool(req *mcp.Request) *mcp.Response {
	var params mcp.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InvalidParams, "Invalid params: "+err.Error())
	}

	result, err := s.handler.Handle(s.ctx, params.Name, params.Arguments)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}

	resp, err := mcp.NewResponse(req.ID, result)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	return resp
}

func (s *Server) handlePing(req *mcp.Request) *mcp.Response {
	resp, _ := mcp.NewResponse(req.ID, map[string]any{})
	return resp
}

func (s *Server) buildInstructions() string {
	var sb strings.Builder
	sb.WriteString("Town Hall node tools for the Project Buddy API.\n\n")
	sb.WriteString("Submit tools validate and normalize the input, apply configured defaults,\n")
	sb.WriteString("and POST the canonical body. Results are always structured JSON with a\n")
	sb.WriteString("status of success, validation_error or error.\n\n")
	sb.WriteString("Available categories:\n")
	for _, cat := range s.registry.Categories() {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", cat.Name, cat.Description))
	}
	sb.WriteString(fmt.Sprintf("\nTotal available tools: %d\n", s.registry.ToolCount()))
	return sb.String()
}

func logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[townhall-mcp] "+format+"\n", args...)
}
