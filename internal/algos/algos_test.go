package algos

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"go-call-tracker/internal/tracer"
)

func run(t *testing.T, name string, args ...int) (*tracer.CallTracker, any, error) {
	t.Helper()
	a, err := Lookup(name)
	require.NoError(t, err)
	tr := tracer.New(tracer.WithName(name))
	v, err := a.Run(tr, args)
	return tr, v, err
}

func TestAll(t *testing.T) {
	var names []string
	for _, a := range All() {
		names = append(names, a.Name)
		require.NotEmpty(t, a.Summary)
		require.NotEmpty(t, a.Params)
		require.NotNil(t, a.Impl)
	}
	require.Equal(t, []string{"ackermann", "binomial", "factorial", "fib", "hanoi", "parity"}, names)

	_, err := Lookup("quicksort")
	require.True(t, errors.Is(err, ErrUnknown))
}

func TestResultsAndTreeSizes(t *testing.T) {
	for _, tc := range []struct {
		name     string
		args     []int
		want     any
		count    int
		maxDepth int
	}{
		{name: "fib", args: []int{3}, want: 2, count: 5, maxDepth: 2},
		{name: "fib", args: []int{10}, want: 55, count: 177, maxDepth: 9},
		{name: "factorial", args: []int{5}, want: 120, count: 6, maxDepth: 5},
		{name: "ackermann", args: []int{1, 1}, want: 3, count: 4, maxDepth: 2},
		{name: "binomial", args: []int{4, 2}, want: 6, count: 11, maxDepth: 3},
		{name: "hanoi", args: []int{3}, want: 7, count: 15, maxDepth: 3},
		{name: "parity", args: []int{7}, want: false, count: 4, maxDepth: 3},
		{name: "parity", args: []int{8}, want: true, count: 5, maxDepth: 4},
	} {
		tr, v, err := run(t, tc.name, tc.args...)
		require.NoError(t, err, "%s%v", tc.name, tc.args)
		require.Equal(t, tc.want, v, "%s%v", tc.name, tc.args)
		require.Len(t, tr.Roots(), 1)
		require.Equal(t, tc.count, tr.Count(), "%s%v", tc.name, tc.args)
		require.Equal(t, tc.maxDepth, tracer.MaxDepth(tr.Roots()[0]), "%s%v", tc.name, tc.args)
	}
}

func TestHanoiKwargs(t *testing.T) {
	tr, _, err := run(t, "hanoi", 2)
	require.NoError(t, err)
	root := tr.Roots()[0]
	require.Equal(t, `{src="A", dst="C", via="B"}`, tracer.FormatKwargs(root.Kwargs))
	require.Equal(t, `{src="A", dst="B", via="C"}`, tracer.FormatKwargs(root.Callees()[0].Kwargs))
	require.Equal(t, `{src="B", dst="C", via="A"}`, tracer.FormatKwargs(root.Callees()[1].Kwargs))
}

func TestFactorialFailureInsideTrace(t *testing.T) {
	tr, _, err := run(t, "factorial", -2)
	require.Error(t, err)
	require.Contains(t, err.Error(), "negative number -2")
	root := tr.Roots()[0]
	require.Equal(t, err, root.Result().Err())
	require.Equal(t, 0, tr.Depth())
}

func TestArgumentValidation(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []int
		msg  string
	}{
		{name: "fib", args: nil, msg: "takes 1 argument(s)"},
		{name: "fib", args: []int{21}, msg: "between 0 and 20"},
		{name: "ackermann", args: []int{4, 1}, msg: "m must be between 0 and 3"},
		{name: "binomial", args: []int{1}, msg: "takes 2 argument(s)"},
		{name: "factorial", args: []int{1, 2}, msg: "takes 1 argument(s)"},
		{name: "factorial", args: []int{21}, msg: "at most 20"},
		{name: "parity", args: []int{-1}, msg: "between 0 and 1000"},
	} {
		tr, _, err := run(t, tc.name, tc.args...)
		require.ErrorContains(t, err, tc.msg)
		require.Empty(t, tr.Roots())
	}
}
