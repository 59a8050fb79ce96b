// Package utils holds small shared primitives with no domain ties.
package utils

import "fmt"

// Range is a window with optional ends. A nil end means unbounded on
// that side; transcript queries use negative Min to count from the tail.
type Range[T any] struct {
	Min *T
	Max *T
}

// XError carries a short reason plus whatever context the caller had.
type XError struct {
	Reason string
	Meta   any
}

func (xe XError) ToError() error {
	return fmt.Errorf("xerror: %s: %v", xe.Reason, xe.Meta)
}
