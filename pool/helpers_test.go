package pool

import "fmt"

// numberedInputs returns "test 1" ... "test n".
func numberedInputs(n int) []string {
	inputs := make([]string, n)
	for i := range inputs {
		inputs[i] = fmt.Sprintf("test %d", i+1)
	}
	return inputs
}
