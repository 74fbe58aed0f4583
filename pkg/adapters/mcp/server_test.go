package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/sparkbridge"
	"github.com/aretw0/sparkbridge/pkg/adapters/memory"
	"github.com/aretw0/sparkbridge/pkg/config"
	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/aretw0/sparkbridge/pkg/magic"
	"github.com/aretw0/sparkbridge/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *memory.Executor) {
	t.Helper()
	exec := memory.NewExecutor()
	source := memory.NewSource(map[string]string{
		config.DefaultIdentityKey: "u",
		config.DefaultSecretKey:   "p",
		config.DefaultEndpointKey: "http://livy:8998",
	})
	factory := session.NewFactory(config.DefaultSettings(), exec, nil, sparkbridge.WithConfigSource(source))
	return NewServer(session.NewManager(memory.NewStore(), factory)), exec
}

func TestExecuteTool_CreatesAndBootstraps(t *testing.T) {
	s, exec := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleExecute(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "nb",
		"code":       "%sql SELECT 1",
	})
	require.NoError(t, err)
	assert.Equal(t, "nb", resp.SessionID)
	assert.Equal(t, domain.PhaseActive, resp.State.Phase)

	codes := exec.Codes()
	require.Len(t, codes, 3)
	assert.Equal(t, "%%spark -c sql\nSELECT 1", codes[2])

	// Second call reuses the session.
	_, err = s.handleExecute(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "nb",
		"code":       "x = 1",
	})
	require.NoError(t, err)
	assert.Len(t, exec.Codes(), 4)
}

func TestExecuteTool_DirectiveFailureIsResult(t *testing.T) {
	s, exec := newTestServer(t)
	exec.ReplyTo("%%spark\nboom()", memory.Reply{Result: domain.ErrorResult("NameError")})
	ctx := context.Background()

	resp, err := s.handleExecute(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "nb",
		"code":       "boom()",
	})
	require.NoError(t, err)
	assert.True(t, resp.Result.Failed())
	assert.Equal(t, domain.PhaseFaulted, resp.State.Phase)

	_, err = s.handleExecute(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "nb",
		"code":       "1",
	})
	assert.ErrorIs(t, err, domain.ErrSessionFaulted)
}

func TestExecuteTool_RejectsInput(t *testing.T) {
	s, exec := newTestServer(t)

	_, err := s.handleExecute(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"code": "1"})
	assert.ErrorContains(t, err, "session_id")

	t.Setenv(magic.EnvMaxCodeSize, "2")
	_, err = s.handleExecute(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "nb",
		"code":       "too long",
	})
	assert.ErrorIs(t, err, magic.ErrCodeTooLarge)
	assert.Empty(t, exec.Dispatched())
}

func TestShutdownAndStateTools(t *testing.T) {
	s, exec := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleExecute(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "nb", "code": "1"})
	require.NoError(t, err)

	state, err := s.handleState(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "nb"})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseActive, state.State.Phase)

	resp, err := s.handleShutdown(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "nb", "restart": true})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseFresh, resp.State.Phase)
	assert.Equal(t, "%spark cleanup", exec.Codes()[3])

	state, err = s.handleState(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "nb"})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseFresh, state.State.Phase)

	_, err = s.handleState(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestTranslateTool(t *testing.T) {
	s, exec := newTestServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Name = "translate"
	req.Params.Arguments = map[string]any{"code": "%%sql\nSELECT 1"}

	res, err := s.handleTranslate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "%%spark -c sql\nSELECT 1", text.Text)
	assert.Empty(t, exec.Dispatched())
}
