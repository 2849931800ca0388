package runner

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"go-call-tracker/internal/algos"
	"go-call-tracker/internal/tracer"
)

func TestParseArgs(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want []int
	}{
		{in: "", want: []int{}},
		{in: "3", want: []int{3}},
		{in: "2,3", want: []int{2, 3}},
		{in: " 2 , 3 ", want: []int{2, 3}},
		{in: "4 -1", want: []int{4, -1}},
		{in: "010", want: []int{10}},
		{in: "+7", want: []int{7}},
	} {
		got, err := ParseArgs(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
	for _, in := range []string{"1,x", "0x10", "0b11", "1.0", "1e3"} {
		_, err := ParseArgs(in)
		require.ErrorContains(t, err, "invalid argument", in)
	}
}

func TestRunSingleGoroutine(t *testing.T) {
	trace, err := Run(context.Background(), "fib", []int{3}, 1)
	require.NoError(t, err)
	require.Equal(t, "fib", trace.Algorithm)
	require.Equal(t, []Outcome{{Value: 2}}, trace.Outcomes)
	require.Len(t, trace.Tracker.Roots(), 1)

	text := trace.Text(2)
	require.Contains(t, text, "fib(3)")
	require.Contains(t, text, "goroutine 0: 2")
	require.Contains(t, text, "1 root(s), 5 call(s)")
	require.Contains(t, text, "--- root 0 (max depth 2) ---")
	require.Equal(t, 5, strings.Count(text, "RecursiveCall"))
}

func TestRunManyGoroutines(t *testing.T) {
	m := tracer.NewMetrics("runner_test")
	trace, err := Run(context.Background(), "binomial", []int{4, 2}, 5, tracer.WithMetrics(m))
	require.NoError(t, err)
	roots := trace.Tracker.Roots()
	require.Len(t, roots, 5)
	for _, root := range roots {
		require.Nil(t, root.Caller())
		v, ok := root.Result().Value()
		require.True(t, ok)
		require.Equal(t, 6, v)
	}
	require.Equal(t, 55, trace.Tracker.Count())
	require.Equal(t, float64(55), testutil.ToFloat64(m.Calls))
}

func TestRunFailures(t *testing.T) {
	_, err := Run(context.Background(), "nope", nil, 1)
	require.True(t, errors.Is(err, algos.ErrUnknown))

	_, err = Run(context.Background(), "fib", []int{1}, 0)
	require.ErrorContains(t, err, "goroutines must be between")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, "fib", []int{1}, 2)
	require.ErrorIs(t, err, context.Canceled)

	trace, err := Run(context.Background(), "factorial", []int{-1}, 2)
	require.NoError(t, err)
	for _, o := range trace.Outcomes {
		require.Error(t, o.Err)
		require.Contains(t, o.String(), "error: factorial of negative number -1")
	}
}

func TestJSON(t *testing.T) {
	trace, err := Run(context.Background(), "hanoi", []int{1}, 1)
	require.NoError(t, err)
	b, err := trace.JSON()
	require.NoError(t, err)

	var decoded struct {
		ID        string   `json:"id"`
		Algorithm string   `json:"algorithm"`
		Outcomes  []string `json:"outcomes"`
		Calls     []struct {
			ID       uint64            `json:"id"`
			ParentID uint64            `json:"parent_id"`
			Depth    int               `json:"depth"`
			Args     []string          `json:"args"`
			Kwargs   map[string]string `json:"kwargs"`
			Result   string            `json:"result"`
		} `json:"calls"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, trace.ID.String(), decoded.ID)
	require.Equal(t, "hanoi", decoded.Algorithm)
	require.Equal(t, []string{"1"}, decoded.Outcomes)
	require.Len(t, decoded.Calls, 3)
	require.Equal(t, "1", decoded.Calls[0].Result)
	require.Equal(t, `"A"`, decoded.Calls[0].Kwargs["src"])
	require.Equal(t, decoded.Calls[0].ID, decoded.Calls[1].ParentID)
	require.Equal(t, 1, decoded.Calls[2].Depth)
	// Keys keep insertion order in the encoded form.
	require.Less(t, strings.Index(string(b), `"src"`), strings.Index(string(b), `"via"`))
}
