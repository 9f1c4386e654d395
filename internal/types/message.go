package types

import "fmt"

// Kind tags which variant a Message carries.
type Kind uint8

const (
	// KindWork carries a positioned job from the caller to a worker.
	KindWork Kind = iota + 1
	// KindResult carries a positioned value from a worker back to the pool.
	KindResult
	// KindTerminate tells exactly one worker to stop. It has no payload.
	KindTerminate
)

func (k Kind) String() string {
	switch k {
	case KindWork:
		return "work"
	case KindResult:
		return "result"
	case KindTerminate:
		return "terminate"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Message is the single value type that travels through the pool's queues.
// Only the fields relevant to Kind are populated:
//   - Work: Pos, Job
//   - Result: Pos, Value, Err
//   - Terminate: nothing
//
// Messages are passed by value and never modified after construction.
type Message[R any] struct {
	Kind  Kind
	Pos   int
	Job   func() R
	Value R
	Err   error
}

// Work builds a message asking a worker to run job for position pos.
func Work[R any](pos int, job func() R) Message[R] {
	return Message[R]{Kind: KindWork, Pos: pos, Job: job}
}

// Result builds a message publishing the outcome of the job at pos.
func Result[R any](pos int, value R, err error) Message[R] {
	return Message[R]{Kind: KindResult, Pos: pos, Value: value, Err: err}
}

// Terminate builds the sentinel that stops one worker.
func Terminate[R any]() Message[R] {
	return Message[R]{Kind: KindTerminate}
}

func (m Message[R]) String() string {
	switch m.Kind {
	case KindWork:
		return fmt.Sprintf("work{pos: %d}", m.Pos)
	case KindResult:
		if m.Err != nil {
			return fmt.Sprintf("result{pos: %d, err: %v}", m.Pos, m.Err)
		}
		return fmt.Sprintf("result{pos: %d, value: %v}", m.Pos, m.Value)
	default:
		return m.Kind.String()
	}
}
