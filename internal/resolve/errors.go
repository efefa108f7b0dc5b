package resolve

import "strings"

// CyclicReferenceError reports a linked group that references itself,
// directly or through other groups. Cycle starts and ends with the same
// group name.
type CyclicReferenceError struct {
	Cycle []string
}

func (e *CyclicReferenceError) Error() string {
	return "cyclic reference: " + strings.Join(e.Cycle, " -> ")
}
