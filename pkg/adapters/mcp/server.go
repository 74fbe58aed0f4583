// Package mcp exposes Spark sessions as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/sparkbridge"
	"github.com/aretw0/sparkbridge/internal/logging"
	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/aretw0/sparkbridge/pkg/magic"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Sessions is the registry driven by the tools (see session.Manager).
type Sessions interface {
	Create(ctx context.Context, sessionID string) (*sparkbridge.Kernel, error)
	Execute(ctx context.Context, sessionID, code string, silent bool) (domain.DispatchResult, error)
	Shutdown(ctx context.Context, sessionID string, restart bool) error
	Inspect(ctx context.Context, sessionID string) (*domain.Snapshot, error)
	List(ctx context.Context) ([]string, error)
}

// ExecuteResponse is the structured result of the execute tool.
type ExecuteResponse struct {
	SessionID string                `json:"session_id" jsonschema_description:"Session the code ran on"`
	Result    domain.DispatchResult `json:"result" jsonschema_description:"Reply of the remote kernel"`
	State     domain.SessionState   `json:"state" jsonschema_description:"Session state after the call"`
}

// StateResponse is the structured result of the state and shutdown tools.
type StateResponse struct {
	SessionID string              `json:"session_id"`
	State     domain.SessionState `json:"state"`
}

// Server exposes a session registry as an MCP server.
type Server struct {
	sessions   Sessions
	translator *magic.Translator
	mcpServer  *server.MCPServer
	logger     *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithTranslator sets the translator used by the translate tool.
func WithTranslator(t *magic.Translator) Option {
	return func(s *Server) {
		s.translator = t
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions Sessions, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("sparkbridge-mcp", strings.TrimSpace(sparkbridge.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.translator == nil {
		s.translator = magic.NewTranslator()
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: execute
	executeTool := mcp.NewTool("execute",
		mcp.WithDescription("Run code on a Spark session. The session is created and bootstrapped on first use."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("code", mcp.Required(), mcp.Description("Cell source, optionally prefixed with %sql, %%sql or %hive")),
		mcp.WithBoolean("silent", mcp.Description("Suppress output on the remote kernel")),
		mcp.WithOutputSchema[ExecuteResponse](),
	)
	s.mcpServer.AddTool(executeTool, mcp.NewStructuredToolHandler(s.handleExecute))

	// TOOL: shutdown
	shutdownTool := mcp.NewTool("shutdown",
		mcp.WithDescription("Clean up the remote session and reset it to fresh."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithBoolean("restart", mcp.Description("Keep the session registered for reuse")),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(shutdownTool, mcp.NewStructuredToolHandler(s.handleShutdown))

	// TOOL: state
	stateTool := mcp.NewTool("state",
		mcp.WithDescription("Inspect the lifecycle state of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(stateTool, mcp.NewStructuredToolHandler(s.handleState))

	// TOOL: translate
	s.mcpServer.AddTool(mcp.NewTool("translate",
		mcp.WithDescription("Show the directive a cell would be sent as, without running it."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Cell source")),
	), s.handleTranslate)
}

func (s *Server) handleExecute(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ExecuteResponse, error) {
	sessionID, _ := args["session_id"].(string)
	code, _ := args["code"].(string)
	silent, _ := args["silent"].(bool)

	if sessionID == "" {
		return ExecuteResponse{}, errors.New("session_id is required")
	}

	clean, err := magic.SanitizeCode(code)
	if err != nil {
		s.logger.Warn("MCP execute: code rejected", "err", err, "size", len(code))
		return ExecuteResponse{}, fmt.Errorf("code rejected: %w", err)
	}

	if _, err := s.sessions.Create(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionExists) {
		return ExecuteResponse{}, fmt.Errorf("create session failed: %w", err)
	}

	result, err := s.sessions.Execute(ctx, sessionID, clean, silent)
	if err != nil && !errors.Is(err, domain.ErrDirectiveFailed) {
		return ExecuteResponse{}, err
	}

	resp := ExecuteResponse{SessionID: sessionID, Result: result}
	if snap, serr := s.sessions.Inspect(ctx, sessionID); serr == nil {
		resp.State = snap.State
	}
	return resp, nil
}

func (s *Server) handleShutdown(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	sessionID, _ := args["session_id"].(string)
	restart, _ := args["restart"].(bool)

	if err := s.sessions.Shutdown(ctx, sessionID, restart); err != nil {
		return StateResponse{}, fmt.Errorf("shutdown failed: %w", err)
	}
	return StateResponse{SessionID: sessionID, State: domain.NewSessionState()}, nil
}

func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	sessionID, _ := args["session_id"].(string)

	snap, err := s.sessions.Inspect(ctx, sessionID)
	if err != nil {
		return StateResponse{}, fmt.Errorf("inspect failed: %w", err)
	}
	return StateResponse{SessionID: sessionID, State: snap.State}, nil
}

func (s *Server) handleTranslate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.translator.Translate(code)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: sparkbridge://sessions
	s.mcpServer.AddResource(mcp.NewResource("sparkbridge://sessions", "Known Spark sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "sparkbridge://sessions",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
