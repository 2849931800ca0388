// internal/tracer/tracer.go
package tracer

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/petermattis/goid"
)

// Func is the shape of a function the tracker can instrument.
type Func func(args Args, kwargs *Kwargs) (any, error)

// CallTracker records every call of the functions it instruments as a forest
// of Records. Calls nest by goroutine: a call made while another tracked call is
// active on the same goroutine becomes its child, otherwise it becomes a root.
type CallTracker struct {
	name    string
	logger  Logger
	metrics *Metrics
	nextID  atomic.Uint64

	mu struct {
		sync.Mutex
		// stacks holds the active calls of each goroutine. An entry is removed
		// when the goroutine's outermost call returns.
		stacks map[int64]*callStack
		roots  []*Record
	}
}

// callStack is only touched by the goroutine that owns it.
type callStack struct {
	records []*Record
	// unwinding is set once a panic has been logged for this stack and cleared
	// when a call is pushed or returns normally.
	unwinding bool
}

// Option configures a CallTracker.
type Option func(*CallTracker)

// WithName labels the tracker in log messages.
func WithName(name string) Option {
	return func(t *CallTracker) { t.name = name }
}

// WithLogger replaces DefaultLogger.
func WithLogger(l Logger) Option {
	return func(t *CallTracker) { t.logger = l }
}

// WithMetrics reports call counts and depths to m.
func WithMetrics(m *Metrics) Option {
	return func(t *CallTracker) { t.metrics = m }
}

// New creates an empty tracker.
func New(opts ...Option) *CallTracker {
	t := &CallTracker{name: "tracker", logger: DefaultLogger}
	for _, opt := range opts {
		opt(t)
	}
	t.mu.stacks = make(map[int64]*callStack)
	return t
}

// Name returns the label given with WithName.
func (t *CallTracker) Name() string { return t.name }

// Instrument returns a function equivalent to fn that records each of its
// calls. Errors and panics from fn reach the caller unchanged.
func (t *CallTracker) Instrument(fn Func) Func {
	return func(args Args, kwargs *Kwargs) (any, error) {
		return t.invoke(args, kwargs, func() (any, error) {
			return fn(args, kwargs)
		})
	}
}

// invoke records one call of call. The record is popped on every exit path; it
// is finalized only when call returns.
func (t *CallTracker) invoke(args Args, kwargs *Kwargs, call func() (any, error)) (result any, err error) {
	rec := NewRecord(args, kwargs)
	rec.ID = t.nextID.Add(1)

	gid := goid.Get()
	stack := t.push(gid, rec)

	returned := false
	defer func() {
		t.pop(gid, stack, rec)
		if !returned {
			t.metrics.failed()
			if !stack.unwinding {
				stack.unwinding = true
				t.logger.Errorf("%s: call %d args=%s panicked on goroutine %d", t.name, rec.ID, rec.Args, gid)
			}
			return
		}
		stack.unwinding = false
		rec.Finalize(result, err)
		if err != nil {
			t.metrics.failed()
		}
	}()

	result, err = call()
	returned = true
	return result, err
}

func (t *CallTracker) push(gid int64, rec *Record) *callStack {
	t.mu.Lock()
	stack, ok := t.mu.stacks[gid]
	if !ok {
		stack = &callStack{}
		t.mu.stacks[gid] = stack
	}
	if len(stack.records) == 0 {
		t.mu.roots = append(t.mu.roots, rec)
	}
	t.mu.Unlock()

	if n := len(stack.records); n > 0 {
		AttachChild(stack.records[n-1], rec)
	}
	stack.records = append(stack.records, rec)
	stack.unwinding = false
	t.metrics.called(len(stack.records))
	return stack
}

func (t *CallTracker) pop(gid int64, stack *callStack, rec *Record) {
	n := len(stack.records)
	if n == 0 || stack.records[n-1] != rec {
		err := errors.AssertionFailedf("%s: call %d is not on top of the call stack of goroutine %d", t.name, rec.ID, gid)
		t.logger.Errorf("%v", err)
		panic(err)
	}
	stack.records[n-1] = nil
	stack.records = stack.records[:n-1]
	if n == 1 {
		t.mu.Lock()
		delete(t.mu.stacks, gid)
		t.mu.Unlock()
	}
}

// activeStack returns the calling goroutine's stack, or nil if it has no
// active tracked call.
func (t *CallTracker) activeStack() *callStack {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mu.stacks[goid.Get()]
}

// Current returns the innermost active call on the calling goroutine, or nil.
func (t *CallTracker) Current() *Record {
	stack := t.activeStack()
	if stack == nil || len(stack.records) == 0 {
		return nil
	}
	return stack.records[len(stack.records)-1]
}

// Depth returns the number of active tracked calls on the calling goroutine.
func (t *CallTracker) Depth() int {
	stack := t.activeStack()
	if stack == nil {
		return 0
	}
	return len(stack.records)
}

// Roots returns the outermost call of every call chain, in the order the
// chains began.
func (t *CallTracker) Roots() []*Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	roots := make([]*Record, len(t.mu.roots))
	copy(roots, t.mu.roots)
	return roots
}

// Count returns the number of records in the forest. It should not race with
// active calls.
func (t *CallTracker) Count() int {
	n := 0
	for _, root := range t.Roots() {
		Walk(root, func(*Record, int) bool {
			n++
			return true
		})
	}
	return n
}
