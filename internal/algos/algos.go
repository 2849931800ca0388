// Package algos holds small recursive algorithms that can be run under a
// tracer.CallTracker to inspect their call trees.
package algos

import (
	"sort"

	"github.com/cockroachdb/errors"

	"go-call-tracker/internal/tracer"
)

// ErrUnknown is returned by Lookup for a name that is not registered.
var ErrUnknown = errors.New("unknown algorithm")

// Algorithm describes a traceable recursive algorithm.
type Algorithm struct {
	Name    string
	Summary string
	// Params names the integer arguments Run expects, in order.
	Params []string
	// Impl is the plain implementation, used to locate its source.
	Impl any
	// Run instruments the algorithm on t and calls it once with args.
	Run func(t *tracer.CallTracker, args []int) (any, error)
}

var registry = map[string]*Algorithm{}

func register(a *Algorithm) {
	if _, ok := registry[a.Name]; ok {
		panic(errors.AssertionFailedf("algorithm %q registered twice", a.Name))
	}
	registry[a.Name] = a
}

// Lookup returns the algorithm registered under name.
func Lookup(name string) (*Algorithm, error) {
	a, ok := registry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknown, "%q", name)
	}
	return a, nil
}

// All returns every registered algorithm sorted by name.
func All() []*Algorithm {
	all := make([]*Algorithm, 0, len(registry))
	for _, a := range registry {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// checkArgs verifies the argument count and that each argument lies in
// [0, limits[i]].
func checkArgs(a *Algorithm, args []int, limits ...int) error {
	if len(args) != len(a.Params) {
		return errors.Newf("%s takes %d argument(s) (%v), got %d", a.Name, len(a.Params), a.Params, len(args))
	}
	for i, v := range args {
		if v < 0 || v > limits[i] {
			return errors.Newf("%s: %s must be between 0 and %d, got %d", a.Name, a.Params[i], limits[i], v)
		}
	}
	return nil
}
