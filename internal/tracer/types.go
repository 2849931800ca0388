// internal/tracer/types.go
package tracer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kr/pretty"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Args holds the positional arguments of a tracked call.
type Args []any

// String renders the arguments as a tuple: (), (3,) or (1, 2).
func (a Args) String() string {
	switch len(a) {
	case 0:
		return "()"
	case 1:
		return "(" + repr(a[0]) + ",)"
	}
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = repr(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Kwargs holds the named arguments of a tracked call in insertion order.
// A nil *Kwargs reads as empty; Set needs a non-nil Kwargs.
type Kwargs struct {
	m *orderedmap.OrderedMap[string, any]
}

// KV is a single named argument.
type KV struct {
	Key   string
	Value any
}

// NewKwargs builds a Kwargs from pairs. A repeated key keeps its first position
// and takes the last value.
func NewKwargs(pairs ...KV) *Kwargs {
	k := &Kwargs{m: orderedmap.New[string, any]()}
	for _, p := range pairs {
		k.m.Set(p.Key, p.Value)
	}
	return k
}

// Set adds or replaces a named argument. The zero Kwargs is ready to use.
func (k *Kwargs) Set(key string, value any) {
	if k.m == nil {
		k.m = orderedmap.New[string, any]()
	}
	k.m.Set(key, value)
}

// Get returns the value stored under key.
func (k *Kwargs) Get(key string) (any, bool) {
	if k == nil || k.m == nil {
		return nil, false
	}
	return k.m.Get(key)
}

// Len returns the number of named arguments.
func (k *Kwargs) Len() int {
	if k == nil || k.m == nil {
		return 0
	}
	return k.m.Len()
}

// Pairs returns the named arguments in insertion order.
func (k *Kwargs) Pairs() []KV {
	if k.Len() == 0 {
		return nil
	}
	pairs := make([]KV, 0, k.m.Len())
	for p := k.m.Oldest(); p != nil; p = p.Next() {
		pairs = append(pairs, KV{Key: p.Key, Value: p.Value})
	}
	return pairs
}

// FormatKwargs renders named arguments as {key=value, key=value}.
func FormatKwargs(k *Kwargs) string {
	pairs := k.Pairs()
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.Key + "=" + repr(p.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// State is the lifecycle state of a call result.
type State int

const (
	// Pending means the call has not returned yet.
	Pending State = iota
	// Finalized means the call returned and its result is fixed.
	Finalized
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is the outcome of a tracked call. The zero value is Pending.
type Result struct {
	state State
	value any
	err   error
}

// State returns the lifecycle state of the result.
func (r Result) State() State { return r.state }

// Pending is shorthand for r.State() == Pending.
func (r Result) Pending() bool { return r.state == Pending }

// Value returns the value returned by the call. ok is false while pending.
func (r Result) Value() (v any, ok bool) {
	return r.value, r.state == Finalized
}

// Err returns the error returned by the call, if any.
func (r Result) Err() error { return r.err }

func (r Result) String() string {
	switch {
	case r.state == Pending:
		return "<pending>"
	case r.err != nil:
		return "<error: " + r.err.Error() + ">"
	default:
		return repr(r.value)
	}
}

// Record is one invocation of a tracked function and the subtree of calls
// made while it was active.
type Record struct {
	// ID is unique within the tracker that created the record, starting at 1.
	// Records built with NewRecord have ID 0.
	ID     uint64
	Args   Args
	Kwargs *Kwargs

	caller  *Record
	callees []*Record
	result  Result
}

// NewRecord returns a pending, unattached record.
func NewRecord(args Args, kwargs *Kwargs) *Record {
	return &Record{Args: args, Kwargs: kwargs}
}

// Caller returns the enclosing call, or nil for a root.
func (r *Record) Caller() *Record { return r.caller }

// Callees returns the calls made while r was active, in call order.
// The returned slice must not be modified.
func (r *Record) Callees() []*Record { return r.callees }

// Result returns the outcome of the call.
func (r *Record) Result() Result { return r.result }

// Depth returns the number of ancestors of r.
func (r *Record) Depth() int {
	d := 0
	for c := r.caller; c != nil; c = c.caller {
		d++
	}
	return d
}

// Finalize fixes the result of r. It panics if r was already finalized.
func (r *Record) Finalize(value any, err error) {
	if r.result.state != Pending {
		panic(errors.AssertionFailedf("record %d finalized twice", r.ID))
	}
	r.result = Result{state: Finalized, value: value, err: err}
}

// AttachChild appends child to parent's callees and sets parent as its caller.
// It panics if child is already attached or would become its own parent.
func AttachChild(parent, child *Record) {
	if child.caller != nil {
		panic(errors.AssertionFailedf("record %d is already attached to record %d", child.ID, child.caller.ID))
	}
	if parent == child {
		panic(errors.AssertionFailedf("record %d cannot be attached to itself", child.ID))
	}
	parent.callees = append(parent.callees, child)
	child.caller = parent
}

// repr renders scalars the way Go source would spell them and leaves
// composite values to kr/pretty.
func repr(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr, float32, float64, complex64, complex128:
		return fmt.Sprint(x)
	case error:
		return "error(" + strconv.Quote(x.Error()) + ")"
	}
	return fmt.Sprintf("%# v", pretty.Formatter(v))
}
