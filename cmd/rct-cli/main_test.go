package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go-call-tracker/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(config.Default())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestList(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	require.Contains(t, out, "fib")
	require.Contains(t, out, "(m, n)")
}

func TestTrace(t *testing.T) {
	out, err := execute(t, "trace", "fib", "3", "--indent", "2")
	require.NoError(t, err)
	require.Contains(t, out, "goroutine 0: 2")
	require.Contains(t, out, "RecursiveCall\n  result=2\n  args=(3,)\n  kwargs={}\n  callees=[\n")
	require.Equal(t, 5, strings.Count(out, "RecursiveCall"))

	out, err = execute(t, "trace", "parity", "4", "-g", "2")
	require.NoError(t, err)
	require.Contains(t, out, "2 root(s), 6 call(s)")

	_, err = execute(t, "trace", "fib", "3", "--indent", "100000")
	require.ErrorContains(t, err, "indent must be between 0 and 16")
	_, err = execute(t, "trace", "fib", "3", "--indent", "-1")
	require.ErrorContains(t, err, "indent must be between")

	_, err = execute(t, "trace", "fib", "x")
	require.ErrorContains(t, err, "invalid argument")
	_, err = execute(t, "trace")
	require.Error(t, err)
}

func TestTraceJSONToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "trace.json")
	out, err := execute(t, "trace", "hanoi", "2", "--json", "-o", file)
	require.NoError(t, err)
	require.Contains(t, out, "Results written to "+file)

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, "hanoi", decoded["algorithm"])
	require.Len(t, decoded["calls"], 7)
}
