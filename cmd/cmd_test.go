package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/prosemark/internal/testutils"
	"github.com/conneroisu/prosemark/internal/types"
	"github.com/conneroisu/prosemark/internal/version"
)

// syncBuffer lets a test read output while a watching command writes it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

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

func prepare(t *testing.T, stdout, stderr *syncBuffer, args ...string) {
	t.Helper()

	viper.Reset()
	cfgFile = ""
	resetFlags(rootCmd)
	// Cobra only propagates the root context to subcommands whose context is
	// nil, so clear what a previous Execute left behind.
	rootCmd.SetContext(nil) //nolint:staticcheck // intentional reset between tests
	for _, c := range rootCmd.Commands() {
		c.SetContext(nil) //nolint:staticcheck // intentional reset between tests
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		viper.Reset()
	})
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr syncBuffer
	prepare(t, &stdout, &stderr, args...)
	err := rootCmd.Execute()

	return stdout.String(), stderr.String(), err
}

// manuscript holds "One two three." with a child "Four five." and a
// second root "Six."
func manuscript(t *testing.T) (*testutils.Project, types.NodeID, types.NodeID) {
	p := testutils.CreateTempProject(t)
	part := p.AddNode(nil, "Part One", "One two three.")
	chapter := p.AddNode(part, "Chapter", "Four five.")
	p.AddNode(nil, "Part Two", "Six.")
	return p, part.NodeID, chapter.NodeID
}

func TestWordCountCommand(t *testing.T) {
	p, part, chapter := manuscript(t)

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"all roots", []string{"wc", "--path", p.Dir}, "6\n"},
		{"subtree", []string{"wc", part.String(), "-p", p.Dir}, "5\n"},
		{"leaf", []string{"wc", chapter.String(), "-p", p.Dir}, "2\n"},
		{"uppercase id", []string{"wc", strings.ToUpper(chapter.String()), "-p", p.Dir}, "2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stdout)
			assert.Empty(t, stderr)
		})
	}
}

func TestWordCountCommandRelativePath(t *testing.T) {
	p, part, _ := manuscript(t)

	sub := filepath.Join(p.Dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	t.Chdir(sub)

	stdout, stderr, err := execute(t, "wc", "--path", "..")
	require.NoError(t, err)
	assert.Equal(t, "6\n", stdout)
	assert.Empty(t, stderr)

	stdout, _, err = execute(t, "wc", part.String(), "-p", "../sub/..")
	require.NoError(t, err)
	assert.Equal(t, "5\n", stdout)
}

func TestWordCountCommandJSON(t *testing.T) {
	p, part, _ := manuscript(t)
	p.AddNode(nil, "Empty", "")

	stdout, _, err := execute(t, "wc", part.String(), "--path", p.Dir, "--format", "json")
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, float64(5), out["count"])
	assert.Equal(t, part.String(), out["node_id"])
	assert.Equal(t, float64(2), out["node_count"])

	stdout, _, err = execute(t, "wc", "--path", p.Dir, "--format", "JSON")
	require.NoError(t, err)

	var all wordCountOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &all))
	assert.Equal(t, wordCountOutput{Count: 6, NodeCount: 3, TotalNodes: 4, SkippedEmpty: 1}, all)
}

func TestWordCountCommandFailures(t *testing.T) {
	p, _, _ := manuscript(t)
	missing, err := types.NewNodeID()
	require.NoError(t, err)

	tests := []struct {
		name   string
		args   []string
		stderr string
	}{
		{
			name:   "invalid node id",
			args:   []string{"wc", "not-a-uuid", "--path", p.Dir},
			stderr: "Error: Invalid node ID format: not-a-uuid",
		},
		{
			name:   "uuid that is not v7",
			args:   []string{"wc", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "--path", p.Dir},
			stderr: "Error: Invalid node ID format: 6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		},
		{
			name:   "unknown node",
			args:   []string{"wc", missing.String(), "--path", p.Dir},
			stderr: "Error: Node not found: " + missing.String(),
		},
		{
			name:   "no binder",
			args:   []string{"wc", "--path", t.TempDir()},
			stderr: "Error: Compilation failed",
		},
		{
			name:   "too many arguments",
			args:   []string{"wc", missing.String(), missing.String(), "--path", p.Dir},
			stderr: "Error: accepts at most 1 arg(s), received 2",
		},
		{
			name:   "bad format",
			args:   []string{"wc", "--path", p.Dir, "--format", "xml"},
			stderr: "must be one of: text, json",
		},
		{
			name:   "bad log level",
			args:   []string{"wc", "--path", p.Dir, "--log-level", "loud"},
			stderr: "Error: Invalid configuration:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, 1, ExitCode(err))
			assert.Equal(t, "0\n", stdout)
			assert.Contains(t, stderr, tt.stderr)
		})
	}
}

func TestWordCountCommandBrokenNodeFile(t *testing.T) {
	p, part, chapter := manuscript(t)
	p.RemoveNodeFile(chapter)

	stdout, stderr, err := execute(t, "wc", part.String(), "--path", p.Dir)
	require.Error(t, err)
	assert.Equal(t, "0\n", stdout)
	assert.Contains(t, stderr, "Error: Node not found: "+part.String())

	other, _, leaf := manuscript(t)
	other.WriteBody(leaf, "---\n[unclosed\n---\nbody")
	_, stderr, err = execute(t, "wc", leaf.String(), "--path", other.Dir)
	require.Error(t, err)
	assert.Contains(t, stderr, "Error: Word count failed:")
}

func TestWordCountCommandConfigSources(t *testing.T) {
	p, _, _ := manuscript(t)
	p.AddNode(nil, "Empty", "")

	cfgPath := filepath.Join(t.TempDir(), "pmk.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"project:\n  path: "+p.Dir+"\nwordcount:\n  include_empty: true\n  format: json\n"), 0o644))

	t.Run("config file", func(t *testing.T) {
		stdout, _, err := execute(t, "wc", "--config", cfgPath)
		require.NoError(t, err)

		var out wordCountOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))
		assert.Equal(t, 4, out.NodeCount, "empty node included")
		assert.Zero(t, out.SkippedEmpty)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("PMK_WORDCOUNT_FORMAT", "text")

		stdout, _, err := execute(t, "wc", "--config", cfgPath)
		require.NoError(t, err)
		assert.Equal(t, "6\n", stdout)
	})

	t.Run("flag overrides environment", func(t *testing.T) {
		t.Setenv("PMK_WORDCOUNT_FORMAT", "text")

		stdout, _, err := execute(t, "wc", "--config", cfgPath, "--format", "json")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(stdout, "{"))
	})

	t.Run("config file from environment", func(t *testing.T) {
		t.Setenv("PMK_CONFIG_FILE", cfgPath)

		stdout, _, err := execute(t, "wc")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(stdout, "{"))
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		stdout, stderr, err := execute(t, "wc", "--config", filepath.Join(t.TempDir(), "nope.yml"))
		require.Error(t, err)
		assert.Equal(t, "0\n", stdout)
		assert.Contains(t, stderr, "Error: Invalid configuration:")
	})
}

func TestWordCountCommandMetricsFile(t *testing.T) {
	p, _, _ := manuscript(t)
	metricsPath := filepath.Join(t.TempDir(), "pmk.prom")

	_, _, err := execute(t, "wc", "--path", p.Dir, "--metrics-file", metricsPath)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pmk_wordcount_words 6")
	assert.Contains(t, string(data), `pmk_wordcount_runs_total{outcome="success"} 1`)
	assert.Contains(t, string(data), "pmk_wordcount_cache_misses_total 1")

	_, _, err = execute(t, "wc", "bogus", "--path", p.Dir, "--metrics-file", metricsPath)
	require.Error(t, err)

	data, err = os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pmk_wordcount_runs_total{outcome="invalid_id"} 1`)
}

func TestWordCountCommandWatch(t *testing.T) {
	p, part, _ := manuscript(t)
	t.Setenv("PMK_WATCH_DEBOUNCE", "50ms")

	var stdout, stderr syncBuffer
	prepare(t, &stdout, &stderr, "wc", "--path", p.Dir, "--watch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- rootCmd.ExecuteContext(ctx)
	}()

	require.Eventually(t, func() bool {
		return stdout.String() == "6\n"
	}, 5*time.Second, 20*time.Millisecond, "initial count")

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)
	p.WriteBody(part, "One two three four.")

	require.Eventually(t, func() bool {
		return strings.HasSuffix(stdout.String(), "7\n")
	}, 5*time.Second, 20*time.Millisecond, "recount after change")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 1, ExitCode(&exitError{code: 1, msg: "reported"}))
}

func TestVersionCommand(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		stdout, _, err := execute(t, "version", "--short")
		require.NoError(t, err)
		assert.Equal(t, version.GetShortVersion()+"\n", stdout)
	})

	t.Run("default", func(t *testing.T) {
		stdout, _, err := execute(t, "version")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(stdout, "pmk "))
		assert.Contains(t, stdout, "Platform: ")
	})

	t.Run("detailed", func(t *testing.T) {
		stdout, _, err := execute(t, "version", "--detailed")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Build type: ")
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, err := execute(t, "version", "--format", "json")
		require.NoError(t, err)

		var info version.BuildInfo
		require.NoError(t, json.Unmarshal([]byte(stdout), &info))
		assert.Equal(t, version.GetVersion(), info.Version)
	})

	t.Run("bad format", func(t *testing.T) {
		_, _, err := execute(t, "version", "--format", "yaml")
		assert.Error(t, err)
	})
}

func TestEnumValue(t *testing.T) {
	v := newEnumValue(formatText, formatText, formatJSON)
	assert.Equal(t, "text", v.String())
	assert.Equal(t, "text|json", v.Type())

	require.NoError(t, v.Set(" JSON "))
	assert.Equal(t, "json", v.String())

	err := v.Set("yaml")
	assert.EqualError(t, err, "must be one of: text, json")
	assert.Equal(t, "json", v.String(), "rejected values leave the flag unchanged")
}

func TestConfigShow(t *testing.T) {
	t.Setenv("PMK_WORDCOUNT_CACHE_SIZE", "12")

	stdout, _, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cache_size: 12")
	assert.Contains(t, stdout, "debounce: 300ms")
	assert.Contains(t, stdout, "level: warn")
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yml")
	require.NoError(t, os.WriteFile(good, []byte("wordcount:\n  cache_size: 0\n"), 0o644))

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte(
		"wordcount:\n  cache_size: -3\n  format: xml\nmetrics:\n  file: out.txt\n"), 0o644))

	t.Run("valid file", func(t *testing.T) {
		stdout, _, err := execute(t, "config", "validate", "--file", good)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Validating configuration: "+good)
		assert.Contains(t, stdout, "Configuration is valid.")
	})

	t.Run("invalid file", func(t *testing.T) {
		stdout, _, err := execute(t, "config", "validate", "-f", bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "3 errors")
		assert.Contains(t, stdout, "wordcount.cache_size: cache size -3 is negative")
		assert.Contains(t, stdout, `wordcount.format: unknown output format "xml"`)
		assert.Contains(t, stdout, "metrics.file: metrics file must end in .prom")
		assert.Contains(t, stdout, "hint: Use 0 to disable caching")
	})

	t.Run("resolved configuration", func(t *testing.T) {
		t.Setenv("PMK_LOG_LEVEL", "chatty")

		stdout, _, err := execute(t, "config", "validate")
		require.Error(t, err)
		assert.Contains(t, stdout, "Validating configuration: defaults and environment")
		assert.Contains(t, stdout, "log.level:")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, "config", "validate", "--file", filepath.Join(dir, "nope.yml"))
		assert.Error(t, err)
	})
}
