package process_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/sparkbridge/pkg/adapters/process"
	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shell(t *testing.T, script string) *process.Executor {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	exec, err := process.NewExecutor(process.Config{Command: "sh", Args: []string{"-c", script}})
	require.NoError(t, err)
	return exec
}

func TestExecutor_OK(t *testing.T) {
	// Echo the directive and the silent flag back.
	exec := shell(t, `code=$(cat); printf '{"status":"ok","execution_count":2,"data":{"text/plain":"%s|%s"}}' "$code" "$SPARKBRIDGE_SILENT"`)

	res, err := exec.Dispatch(context.Background(), domain.Directive{
		Code:   "%load_ext remotespark",
		Params: domain.DispatchParams{Silent: true},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, res.Status)
	assert.Equal(t, 2, res.ExecutionCount)
	assert.Equal(t, "%load_ext remotespark|true", res.Data["text/plain"])
}

func TestExecutor_ErrorReply(t *testing.T) {
	exec := shell(t, `cat >/dev/null; echo '{"status":"error","ename":"SyntaxError","evalue":"bad syntax"}'`)

	res, err := exec.Dispatch(context.Background(), domain.Directive{Code: "%%spark\nx"})
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Equal(t, "SyntaxError", res.ErrorName)
	assert.Equal(t, "bad syntax", res.ErrorValue)
}

func TestExecutor_TransportErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"Non-zero exit", `cat >/dev/null; echo "no cluster" >&2; exit 3`, "no cluster"},
		{"Not JSON", `cat >/dev/null; echo hello`, "invalid executor reply"},
		{"Unknown status", `cat >/dev/null; echo '{"status":"maybe"}'`, "unknown status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := shell(t, tt.script)
			_, err := exec.Dispatch(context.Background(), domain.Directive{Code: "x"})
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestExecutor_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	exec, err := process.NewExecutor(process.Config{
		Command: "sh",
		Args:    []string{"-c", "exec sleep 5"},
		Timeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	start := time.Now()
	_, err = exec.Dispatch(context.Background(), domain.Directive{Code: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "executor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
executor:
  command: ./bridge
  args: ["--livy"]
  env:
    LIVY_PROXY: "on"
  timeout: 30s
`), 0644))

	cfg, err := process.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, process.Config{
		Command:     "./bridge",
		Args:        []string{"--livy"},
		Environment: map[string]string{"LIVY_PROXY": "on"},
		Timeout:     30 * time.Second,
	}, cfg)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("executor: {}\n"), 0644))
	_, err = process.LoadConfig(empty)
	assert.Error(t, err)

	_, err = process.NewExecutor(process.Config{})
	assert.Error(t, err)
}
