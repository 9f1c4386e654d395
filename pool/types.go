package pool

import "fmt"

// Job is a deferred, single-use computation producing a value of type R.
// It should capture everything it needs (typically one input value) and is
// invoked exactly once, on a worker thread.
type Job[R any] func() R

// Slot holds the outcome for one position of a batch: either a value (Some)
// or nothing yet (None). A result collection starts as all None and is filled
// by position, never by arrival order.
type Slot[R any] struct {
	value R
	ok    bool
}

// Some returns a slot holding v.
func Some[R any](v R) Slot[R] {
	return Slot[R]{value: v, ok: true}
}

// None returns an empty slot.
func None[R any]() Slot[R] {
	return Slot[R]{}
}

// Get returns the held value and whether the slot is filled.
func (s Slot[R]) Get() (R, bool) {
	return s.value, s.ok
}

// IsSome reports whether the slot holds a value.
func (s Slot[R]) IsSome() bool {
	return s.ok
}

// ValueOr returns the held value, or fallback for an empty slot.
func (s Slot[R]) ValueOr(fallback R) R {
	if !s.ok {
		return fallback
	}
	return s.value
}

func (s Slot[R]) String() string {
	if !s.ok {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", s.value)
}
