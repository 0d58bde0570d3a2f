package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l3aro/tscfg/pkg/cfg"
	"github.com/l3aro/tscfg/pkg/unit"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `function count(a: number): number {
  while (a) {
    a--;
  }
  return a;
}

function pick(x: number) {
  switch (x) {
    case 1:
      return "one";
    default:
      return "many";
  }
}
`

// resetFlags puts every flag back to its default; cobra keeps values
// between Execute calls on the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the CLI with a quiet config file and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(RootCmd)

	conf := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("log_level: error\n"), 0644))

	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetArgs(append([]string{"--config", conf}, args...))
	err := RootCmd.Execute()
	return out.String(), err
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.ts")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))
	return path
}

func TestCfgCommand_Text(t *testing.T) {
	out, err := run(t, "cfg", writeSample(t), "count")
	require.NoError(t, err)
	assert.Contains(t, out, "=== CFG for function: count ===")
	assert.Contains(t, out, "Cyclomatic Complexity: 2")
	assert.Contains(t, out, "bb1 --true--> bb3")
	assert.Contains(t, out, "bb3 --back_edge--> bb1")
	assert.NotContains(t, out, "pick")
}

func TestCfgCommand_AllJSON(t *testing.T) {
	out, err := run(t, "cfg", "--json", writeSample(t))
	require.NoError(t, err)

	var infos []cfg.Info
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "count", infos[0].FunctionName)
	assert.Equal(t, "pick", infos[1].FunctionName)

	var cases int
	for _, e := range infos[1].Edges {
		if e.EdgeType == cfg.EdgeTypeCase {
			cases++
		}
	}
	assert.Equal(t, 1, cases)
}

func TestCfgCommand_NotFound(t *testing.T) {
	_, err := run(t, "cfg", writeSample(t), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "function not found")
	assert.Contains(t, err.Error(), "available: count, pick")
}

func TestOrderCommand(t *testing.T) {
	path := writeSample(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"forward", nil, "bb0 bb1 bb2 bb3\n"},
		{"close loop", []string{"--close-loop"}, "bb0 bb1 bb2 bb3 bb1\n"},
		{"backward", []string{"--backward"}, "bb2 bb1 bb3 bb0\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := run(t, append([]string{"order", path, "count"}, tc.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestDotCommand(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "g.dot")
	_, err := run(t, "dot", writeSample(t), "-o", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "digraph cfg {"))

	out, err := run(t, "dot", writeSample(t))
	require.NoError(t, err)
	assert.Contains(t, out, "bb0 -> bb1")
}

func TestStatsCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ts"), []byte(sample), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.ts"), []byte("function (a { return"), 0644))
	snap := filepath.Join(t.TempDir(), "stats.msgpack")

	out, err := run(t, "stats", dir, "--workers", "2", "--snapshot", snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, out, "count")
	assert.Contains(t, out, "pick")
	assert.Contains(t, out, "2 files, 2 functions")

	s, err := unit.ReadSnapshot(snap)
	require.NoError(t, err)
	require.Len(t, s.Files, 1)
	assert.Len(t, s.Files[0].Functions, 2)
}

func TestDotPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "view.dot"), dotPath("out", filepath.Join("src", "view.tsx")))
}

func TestInitAnswers(t *testing.T) {
	a := initAnswers{direction: "backward", format: "json", logLevel: "warn", workers: "3", merge: true}
	cfg, err := a.config()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "warn", cfg.LogLevel)

	a.workers = "lots"
	_, err = a.config()
	assert.Error(t, err)

	a.workers = "1"
	a.format = "svg"
	_, err = a.config()
	assert.Error(t, err)
}
