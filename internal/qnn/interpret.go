package qnn

// InterpretFunc maps a measured basis-state index to an output index.
type InterpretFunc func(outcome int) int

// Modulo returns the interpreter outcome -> outcome mod n. Outcomes n, 2n, ...
// alias to 0, n+1, 2n+1, ... alias to 1, and so on.
func Modulo(n int) InterpretFunc {
	return func(outcome int) int {
		return outcome % n
	}
}

// Identity keeps outcomes unchanged.
func Identity(outcome int) int {
	return outcome
}
