package tracer

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestAttachChild(t *testing.T) {
	parent, child := NewRecord(Args{1}, nil), NewRecord(Args{2}, nil)
	AttachChild(parent, child)
	require.Same(t, parent, child.Caller())
	require.Equal(t, []*Record{child}, parent.Callees())
	require.Equal(t, 1, child.Depth())

	other := NewRecord(nil, nil)
	require.Panics(t, func() { AttachChild(other, child) })
	require.Empty(t, other.Callees())

	loner := NewRecord(nil, nil)
	require.Panics(t, func() { AttachChild(loner, loner) })
}

func TestFinalizeOnce(t *testing.T) {
	r := NewRecord(nil, nil)
	require.True(t, r.Result().Pending())
	_, ok := r.Result().Value()
	require.False(t, ok)
	require.Equal(t, "<pending>", r.Result().String())

	r.Finalize("done", nil)
	v, ok := r.Result().Value()
	require.True(t, ok)
	require.Equal(t, "done", v)
	require.Equal(t, `"done"`, r.Result().String())
	require.Panics(t, func() { r.Finalize("again", nil) })

	failed := NewRecord(nil, nil)
	failed.Finalize(nil, errors.New("bad input"))
	require.Equal(t, "<error: bad input>", failed.Result().String())
	require.Equal(t, "finalized", failed.Result().State().String())
}

func TestArgsString(t *testing.T) {
	require.Equal(t, "()", Args(nil).String())
	require.Equal(t, "(3,)", Args{3}.String())
	require.Equal(t, "(1, 2)", Args{1, 2}.String())
	require.Equal(t, `("a", true)`, Args{"a", true}.String())
}

func TestKwargs(t *testing.T) {
	var empty *Kwargs
	require.Equal(t, 0, empty.Len())
	require.Nil(t, empty.Pairs())
	require.Equal(t, "{}", FormatKwargs(empty))
	_, ok := empty.Get("x")
	require.False(t, ok)

	k := NewKwargs(KV{"z", 1}, KV{"a", "s"}, KV{"m", 2})
	k.Set("z", 9)
	k.Set("b", false)
	require.Equal(t, 4, k.Len())
	require.Equal(t, `{z=9, a="s", m=2, b=false}`, FormatKwargs(k))
	v, ok := k.Get("a")
	require.True(t, ok)
	require.Equal(t, "s", v)

	var zero Kwargs
	zero.Set("x", 3)
	require.Equal(t, "{x=3}", FormatKwargs(&zero))

	// Reads tolerate a nil *Kwargs; writes do not.
	require.Panics(t, func() { empty.Set("x", 1) })
}

func TestFlatten(t *testing.T) {
	tr := newTestTracker(t)
	var sum func(int) int
	sum = Wrap1(tr, func(n int) int {
		if n == 0 {
			return 0
		}
		return sum(n-1) + n
	})
	sum(2)
	f := tr.Instrument(func(Args, *Kwargs) (any, error) { return nil, errors.New("nope") })
	_, _ = f(nil, NewKwargs(KV{"k", "v"}))

	nodes := Flatten(tr.Roots()...)
	require.Len(t, nodes, 4)
	require.Equal(t, uint64(1), nodes[0].ID)
	require.Equal(t, uint64(0), nodes[0].ParentID)
	require.Equal(t, []string{"2"}, nodes[0].Args)
	require.Equal(t, "3", nodes[0].Result)
	require.Equal(t, uint64(1), nodes[1].ParentID)
	require.Equal(t, 1, nodes[1].Depth)
	require.Equal(t, uint64(2), nodes[2].ParentID)
	require.Equal(t, 2, nodes[2].Depth)

	last := nodes[3]
	require.Equal(t, "nope", last.Error)
	require.Empty(t, last.Result)
	v, ok := last.Kwargs.Get("k")
	require.True(t, ok)
	require.Equal(t, `"v"`, v)

	var skipped []uint64
	Walk(tr.Roots()[0], func(r *Record, depth int) bool {
		skipped = append(skipped, r.ID)
		return depth < 1
	})
	require.Equal(t, []uint64{1, 2}, skipped)
}
