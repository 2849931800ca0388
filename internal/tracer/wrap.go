package tracer

// The WrapN helpers instrument ordinary Go functions. Positional parameters
// are recorded as Args in order; no Kwargs are recorded.
//
// A recursive function must call the wrapped version to be traced:
//
//	var fib func(int) int
//	fib = tracer.Wrap1(t, func(n int) int {
//		if n < 2 {
//			return n
//		}
//		return fib(n-1) + fib(n-2)
//	})

// Wrap1 instruments a one-argument function.
func Wrap1[T, R any](t *CallTracker, fn func(T) R) func(T) R {
	return func(a T) R {
		res, _ := t.invoke(Args{a}, nil, func() (any, error) {
			return fn(a), nil
		})
		return as[R](res)
	}
}

// Wrap2 instruments a two-argument function.
func Wrap2[T1, T2, R any](t *CallTracker, fn func(T1, T2) R) func(T1, T2) R {
	return func(a T1, b T2) R {
		res, _ := t.invoke(Args{a, b}, nil, func() (any, error) {
			return fn(a, b), nil
		})
		return as[R](res)
	}
}

// Wrap1E instruments a one-argument function that can fail.
func Wrap1E[T, R any](t *CallTracker, fn func(T) (R, error)) func(T) (R, error) {
	return func(a T) (R, error) {
		res, err := t.invoke(Args{a}, nil, func() (any, error) {
			return fn(a)
		})
		return as[R](res), err
	}
}

// Wrap2E instruments a two-argument function that can fail.
func Wrap2E[T1, T2, R any](t *CallTracker, fn func(T1, T2) (R, error)) func(T1, T2) (R, error) {
	return func(a T1, b T2) (R, error) {
		res, err := t.invoke(Args{a, b}, nil, func() (any, error) {
			return fn(a, b)
		})
		return as[R](res), err
	}
}

// as converts a recorded result back to R. The only value that fails the
// assertion is a nil interface, whose R is the zero value.
func as[R any](v any) R {
	r, _ := v.(R)
	return r
}
