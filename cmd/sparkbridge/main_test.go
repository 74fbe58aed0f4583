package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/sparkbridge"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores flag defaults; cobra keeps values between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "sparkbridge version "+sparkbridge.Version+"\n", out)
}

func TestTranslate(t *testing.T) {
	out, err := run(t, "", "translate", "%sql", "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, "%%spark -c sql\nSELECT 1\n", out)

	out, err = run(t, "%%hive\nSHOW TABLES\n", "translate")
	require.NoError(t, err)
	assert.Equal(t, "%%spark -c hive\nSHOW TABLES\n", out)
}

func TestConnstr(t *testing.T) {
	t.Setenv("CS_SPARK_USERNAME", "alice")
	t.Setenv("CS_SPARK_PASSWORD", "s3cret")
	t.Setenv("CS_SPARK_URL", "http://livy:8998")

	out, err := run(t, "", "connstr", "build", "--env-prefix", "CS_")
	require.NoError(t, err)
	assert.Equal(t, "url=http://livy:8998;username=alice;password=s3cret\n", out)

	out, err = run(t, "", "connstr", "parse", "url=http://livy:8998;username=alice;password=s3cret")
	require.NoError(t, err)
	assert.Contains(t, out, `"endpoint": "http://livy:8998"`)
	assert.NotContains(t, out, "s3cret")

	_, err = run(t, "", "connstr", "parse", "url=x")
	assert.Error(t, err)
}

func TestSessionCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "", "session", "ls", "--store-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found.")

	t.Setenv("SPARK_USERNAME", "alice")
	t.Setenv("SPARK_PASSWORD", "s3cret")
	t.Setenv("SPARK_URL", "http://livy:8998")
	_, err = run(t, "1\n\nexit\n", "run", "--dry-run", "--headless", "--store", "file", "--store-dir", dir, "--session", "nb")
	require.NoError(t, err)

	out, err = run(t, "", "session", "ls", "--store-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "- nb")

	out, err = run(t, "", "session", "inspect", "nb", "--store-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"session_id": "nb"`)

	out, err = run(t, "", "session", "rm", "nb", "--store-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed session 'nb'")
}
