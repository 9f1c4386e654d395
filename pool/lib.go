package pool

// Map applies fn to every element of data on a fresh pool and returns the
// results in input order. Slot i holds fn(data[i]) unless that call panicked.
//
// The pool is sized for one worker per element, capped by the configured
// maximum (DefaultMaxWorkers by default), and is fully shut down before Map
// returns. An empty data slice returns ErrEmptyBatch without starting any
// worker.
//
// Example:
//
//	out, err := Map([]string{"a", "b"}, strings.ToUpper, WithMaxWorkers(4))
//	// out: [Some(A) Some(B)]
func Map[T, R any](data []T, fn func(T) R, opts ...WorkerPoolOption) ([]Slot[R], error) {
	if len(data) == 0 {
		return nil, ErrEmptyBatch
	}

	wp, err := NewWorkerPool[R](len(data), opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = wp.Close() }()

	for pos, item := range data {
		if err := wp.Execute(pos, func() R { return fn(item) }); err != nil {
			return nil, err
		}
	}

	out := make([]Slot[R], len(data))
	err = wp.Result(out)
	return out, err
}

// Values unwraps a result collection, substituting the zero value for empty
// slots. The boolean is false if any slot was empty.
func Values[R any](slots []Slot[R]) ([]R, bool) {
	values := make([]R, len(slots))
	complete := true
	for i, s := range slots {
		v, ok := s.Get()
		if !ok {
			complete = false
		}
		values[i] = v
	}
	return values, complete
}
