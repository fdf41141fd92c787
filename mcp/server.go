// api/mcp/server.go
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
	"github.com/dev-mohitbeniwal/datagate/api/model"
	"github.com/dev-mohitbeniwal/datagate/api/session"
	"github.com/dev-mohitbeniwal/datagate/api/token"
)

// Server exposes the authorization core as MCP tools for agent callers.
// Handlers only decode arguments, call the core, and encode results.
type Server struct {
	mcpServer  *server.MCPServer
	httpServer *http.Server
	listener   net.Listener
	authority  token.IAuthority
	proxy      session.IProxy
}

// NewServer registers the tool surface over the authority and proxy.
func NewServer(authority token.IAuthority, proxy session.IProxy) *Server {
	s := &Server{
		authority: authority,
		proxy:     proxy,
	}

	s.mcpServer = server.NewMCPServer(
		"datagate",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcpServer.AddTool(mcp.NewTool("create_access_token",
		mcp.WithDescription("Issue a signed access token scoped to named datasets."),
		mcp.WithString("user_email", mcp.Required(), mcp.Description("Email of the user the token acts for")),
		mcp.WithArray("datasets", mcp.Required(), mcp.Description("Dataset names the token may access, or [\"*\"]")),
		mcp.WithArray("permissions", mcp.Description("Permission names, defaults to [\"read\"]")),
		mcp.WithNumber("expires_in", mcp.Description("Lifetime in seconds, defaults to the configured expiry")),
	), s.handleCreateAccessToken)

	s.mcpServer.AddTool(mcp.NewTool("verify_access",
		mcp.WithDescription("Check whether a credential may access a dataset."),
		mcp.WithString("access_token", mcp.Required(), mcp.Description("The signed credential")),
		mcp.WithString("dataset", mcp.Required(), mcp.Description("Target dataset name")),
	), s.handleVerifyAccess)

	s.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a session for subsequent permission checks."),
		mcp.WithString("user_email", mcp.Required(), mcp.Description("Email of the session user")),
		mcp.WithString("client_identifier", mcp.Required(), mcp.Description("Identifier of the calling client instance")),
	), s.handleCreateSession)

	s.mcpServer.AddTool(mcp.NewTool("check_permission",
		mcp.WithDescription("Check a session's permission on a datasite path."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Target path")),
		mcp.WithString("level", mcp.Description("Required permission level, defaults to read")),
	), s.handleCheckPermission)

	s.mcpServer.AddTool(mcp.NewTool("list_accessible_datasites",
		mcp.WithDescription("List datasite roots the session may read."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
	), s.handleListAccessibleDatasites)

	return s
}

func stringArg(req mcp.CallToolRequest, name string) string {
	v, _ := req.Params.Arguments[name].(string)
	return v
}

func stringSliceArg(req mcp.CallToolRequest, name string) []string {
	raw, ok := req.Params.Arguments[name].([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (s *Server) handleCreateAccessToken(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userEmail := stringArg(req, "user_email")
	datasets := stringSliceArg(req, "datasets")
	if userEmail == "" || len(datasets) == 0 {
		return mcp.NewToolResultError("user_email and datasets are required"), nil
	}

	var expiresIn time.Duration
	if secs, ok := req.Params.Arguments["expires_in"].(float64); ok {
		expiresIn = time.Duration(secs) * time.Second
	}

	credential, err := s.authority.Issue(ctx, userEmail, datasets, stringSliceArg(req, "permissions"), expiresIn)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to issue token: %v", err)), nil
	}
	return mcp.NewToolResultText(credential), nil
}

func (s *Server) handleVerifyAccess(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	credential := stringArg(req, "access_token")
	dataset := stringArg(req, "dataset")
	if credential == "" || dataset == "" {
		return mcp.NewToolResultError("access_token and dataset are required"), nil
	}

	allowed, reason := s.authority.Verify(ctx, credential, dataset)
	result, _ := json.Marshal(map[string]interface{}{
		"allowed": allowed,
		"reason":  reason.String(),
	})
	return mcp.NewToolResultText(string(result)), nil
}

func (s *Server) handleCreateSession(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userEmail := stringArg(req, "user_email")
	clientID := stringArg(req, "client_identifier")
	if userEmail == "" || clientID == "" {
		return mcp.NewToolResultError("user_email and client_identifier are required"), nil
	}
	return mcp.NewToolResultText(s.proxy.CreateSession(userEmail, clientID)), nil
}

func (s *Server) handleCheckPermission(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(req, "session_id")
	path := stringArg(req, "path")
	if sessionID == "" || path == "" {
		return mcp.NewToolResultError("session_id and path are required"), nil
	}

	level := model.PermissionRead
	if name := stringArg(req, "level"); name != "" {
		parsed, err := model.ParsePermissionLevel(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		level = parsed
	}

	allowed := s.proxy.CheckPermission(ctx, sessionID, path, level)
	result, _ := json.Marshal(map[string]bool{"allowed": allowed})
	return mcp.NewToolResultText(string(result)), nil
}

func (s *Server) handleListAccessibleDatasites(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(req, "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	roots := s.proxy.ListAccessibleRoots(ctx, sessionID)
	result, _ := json.Marshal(roots)
	return mcp.NewToolResultText(string(result)), nil
}

// Start binds to localhost and serves the tool surface over SSE, returning
// the endpoint URL.
func (s *Server) Start(addr string) (string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}
	s.listener = listener

	tcpAddr := listener.Addr().(*net.TCPAddr)
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", tcpAddr.Port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer)
	mux.Handle("/message", sseServer)

	s.httpServer = &http.Server{Handler: mux}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error", zap.Error(err))
		}
	}()

	logger.Info("MCP server listening", zap.String("url", baseURL+"/sse"))
	return baseURL + "/sse", nil
}

// Stop shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
