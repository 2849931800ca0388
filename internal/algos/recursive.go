package algos

import (
	"github.com/cockroachdb/errors"

	"go-call-tracker/internal/tracer"
)

func init() {
	register(&Algorithm{
		Name:    "fib",
		Summary: "Naive Fibonacci: fib(n) = fib(n-1) + fib(n-2).",
		Params:  []string{"n"},
		Impl:    fibonacci,
		Run: func(t *tracer.CallTracker, args []int) (any, error) {
			if err := checkArgs(registry["fib"], args, 20); err != nil {
				return nil, err
			}
			var fib func(int) int
			fib = tracer.Wrap1(t, func(n int) int { return fibonacci(fib, n) })
			return fib(args[0]), nil
		},
	})
	register(&Algorithm{
		Name:    "factorial",
		Summary: "n! computed recursively; fails from inside the traced call for negative n.",
		Params:  []string{"n"},
		Impl:    factorial,
		Run: func(t *tracer.CallTracker, args []int) (any, error) {
			if len(args) != 1 {
				return nil, checkArgs(registry["factorial"], args)
			}
			if args[0] > 20 {
				return nil, errors.Newf("factorial: n must be at most 20, got %d", args[0])
			}
			var fact func(int) (int, error)
			fact = tracer.Wrap1E(t, func(n int) (int, error) { return factorial(fact, n) })
			return fact(args[0])
		},
	})
	register(&Algorithm{
		Name:    "ackermann",
		Summary: "The Ackermann function A(m, n); grows very deep very quickly.",
		Params:  []string{"m", "n"},
		Impl:    ackermann,
		Run: func(t *tracer.CallTracker, args []int) (any, error) {
			if err := checkArgs(registry["ackermann"], args, 3, 3); err != nil {
				return nil, err
			}
			var ack func(int, int) int
			ack = tracer.Wrap2(t, func(m, n int) int { return ackermann(ack, m, n) })
			return ack(args[0], args[1]), nil
		},
	})
	register(&Algorithm{
		Name:    "binomial",
		Summary: "Binomial coefficient C(n, k) via Pascal's rule.",
		Params:  []string{"n", "k"},
		Impl:    binomial,
		Run: func(t *tracer.CallTracker, args []int) (any, error) {
			if err := checkArgs(registry["binomial"], args, 16, 16); err != nil {
				return nil, err
			}
			var c func(int, int) int
			c = tracer.Wrap2(t, func(n, k int) int { return binomial(c, n, k) })
			return c(args[0], args[1]), nil
		},
	})
	register(&Algorithm{
		Name:    "hanoi",
		Summary: "Towers of Hanoi move count; pegs are passed as named arguments.",
		Params:  []string{"n"},
		Impl:    hanoi,
		Run: func(t *tracer.CallTracker, args []int) (any, error) {
			if err := checkArgs(registry["hanoi"], args, 10); err != nil {
				return nil, err
			}
			var move tracer.Func
			move = t.Instrument(func(args tracer.Args, kwargs *tracer.Kwargs) (any, error) {
				return hanoi(move, args, kwargs)
			})
			return move(tracer.Args{args[0]}, pegs("A", "C", "B"))
		},
	})
	register(&Algorithm{
		Name:    "parity",
		Summary: "isEven(n) recursing through an untraced isOdd helper.",
		Params:  []string{"n"},
		Impl:    isEven,
		Run: func(t *tracer.CallTracker, args []int) (any, error) {
			if err := checkArgs(registry["parity"], args, 1000); err != nil {
				return nil, err
			}
			var even func(int) bool
			even = tracer.Wrap1(t, func(n int) bool { return isEven(even, n) })
			return even(args[0]), nil
		},
	})
}

func fibonacci(fib func(int) int, n int) int {
	if n < 2 {
		return n
	}
	return fib(n-1) + fib(n-2)
}

func factorial(fact func(int) (int, error), n int) (int, error) {
	if n < 0 {
		return 0, errors.Newf("factorial of negative number %d", n)
	}
	if n == 0 {
		return 1, nil
	}
	v, err := fact(n - 1)
	if err != nil {
		return 0, err
	}
	return n * v, nil
}

func ackermann(ack func(int, int) int, m, n int) int {
	switch {
	case m == 0:
		return n + 1
	case n == 0:
		return ack(m-1, 1)
	default:
		return ack(m-1, ack(m, n-1))
	}
}

func binomial(c func(int, int) int, n, k int) int {
	if k > n {
		return 0
	}
	if k == 0 || k == n {
		return 1
	}
	return c(n-1, k-1) + c(n-1, k)
}

func pegs(src, dst, via string) *tracer.Kwargs {
	return tracer.NewKwargs(
		tracer.KV{Key: "src", Value: src},
		tracer.KV{Key: "dst", Value: dst},
		tracer.KV{Key: "via", Value: via},
	)
}

// hanoi returns the number of moves needed to shift args[0] discs from src to
// dst.
func hanoi(move tracer.Func, args tracer.Args, kwargs *tracer.Kwargs) (any, error) {
	n := args[0].(int)
	if n == 0 {
		return 0, nil
	}
	src, _ := kwargs.Get("src")
	dst, _ := kwargs.Get("dst")
	via, _ := kwargs.Get("via")
	before, err := move(tracer.Args{n - 1}, pegs(src.(string), via.(string), dst.(string)))
	if err != nil {
		return nil, err
	}
	after, err := move(tracer.Args{n - 1}, pegs(via.(string), dst.(string), src.(string)))
	if err != nil {
		return nil, err
	}
	return before.(int) + 1 + after.(int), nil
}

func isEven(even func(int) bool, n int) bool {
	if n == 0 {
		return true
	}
	return isOdd(even, n-1)
}

// isOdd is deliberately not traced.
func isOdd(even func(int) bool, n int) bool {
	if n == 0 {
		return false
	}
	return even(n - 1)
}
