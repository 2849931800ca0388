// Package runner executes registered algorithms under a fresh CallTracker and
// renders the resulting call forests.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"

	"go-call-tracker/internal/algos"
	"go-call-tracker/internal/tracer"
)

// MaxGoroutines bounds the fan-out of a single run.
const MaxGoroutines = 64

// Outcome is what one goroutine's call returned.
type Outcome struct {
	Value any
	Err   error
}

func (o Outcome) String() string {
	if o.Err != nil {
		return "error: " + o.Err.Error()
	}
	return fmt.Sprint(o.Value)
}

// Trace is the result of running an algorithm.
type Trace struct {
	ID        uuid.UUID
	Algorithm string
	Args      []int
	Tracker   *tracer.CallTracker
	// Outcomes holds one entry per goroutine, in goroutine order.
	Outcomes []Outcome
}

// Run calls algorithm with args from the given number of goroutines, all
// sharing one tracker. Each goroutine produces its own root. Failures of the
// algorithm itself are recorded in Outcomes, not returned.
func Run(ctx context.Context, algorithm string, args []int, goroutines int, opts ...tracer.Option) (*Trace, error) {
	a, err := algos.Lookup(algorithm)
	if err != nil {
		return nil, err
	}
	if goroutines < 1 || goroutines > MaxGoroutines {
		return nil, errors.Newf("goroutines must be between 1 and %d, got %d", MaxGoroutines, goroutines)
	}

	tr := tracer.New(append([]tracer.Option{tracer.WithName(a.Name)}, opts...)...)
	trace := &Trace{
		ID:        uuid.New(),
		Algorithm: a.Name,
		Args:      args,
		Tracker:   tr,
		Outcomes:  make([]Outcome, goroutines),
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < goroutines; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := a.Run(tr, args)
			trace.Outcomes[i] = Outcome{Value: v, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trace, nil
}

// Text renders a summary line per root followed by its pretty-printed tree.
func (t *Trace) Text(indent int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "trace %s: %s%s\n", t.ID, t.Algorithm, formatArgs(t.Args))
	for i, o := range t.Outcomes {
		fmt.Fprintf(&b, "goroutine %d: %s\n", i, o)
	}
	roots := t.Tracker.Roots()
	fmt.Fprintf(&b, "%d root(s), %d call(s)\n", len(roots), t.Tracker.Count())
	for i, root := range roots {
		fmt.Fprintf(&b, "\n--- root %d (max depth %d) ---\n", i, tracer.MaxDepth(root))
		_ = tracer.Fprint(&b, root, indent)
	}
	return b.String()
}

// Export is the JSON form of a Trace.
type Export struct {
	ID        string        `json:"id"`
	Algorithm string        `json:"algorithm"`
	Args      []int         `json:"args"`
	Outcomes  []string      `json:"outcomes"`
	Calls     []tracer.Node `json:"calls"`
}

// Export flattens the trace.
func (t *Trace) Export() Export {
	e := Export{
		ID:        t.ID.String(),
		Algorithm: t.Algorithm,
		Args:      t.Args,
		Calls:     tracer.Flatten(t.Tracker.Roots()...),
	}
	for _, o := range t.Outcomes {
		e.Outcomes = append(e.Outcomes, o.String())
	}
	return e
}

// JSON returns the indented JSON encoding of Export.
func (t *Trace) JSON() ([]byte, error) {
	return json.MarshalIndent(t.Export(), "", "  ")
}

// ParseArgs parses base-10 integers separated by commas and/or whitespace.
// Leading zeros do not switch the base: "010" is 10.
func ParseArgs(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	args := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid argument %q", f)
		}
		args = append(args, v)
	}
	return args, nil
}

func formatArgs(args []int) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = cast.ToString(a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
