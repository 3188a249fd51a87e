package models

import (
	"fmt"
	"strings"
)

// AmbiguousIndexError reports duplicate index keys in a parsed or pivoted
// table. It signals inconsistent upstream data, not a caller mistake.
type AmbiguousIndexError struct {
	Key string
}

func (e *AmbiguousIndexError) Error() string {
	return fmt.Sprintf("ambiguous index: duplicate key %q", e.Key)
}

// UnknownColumnError reports a requested column that is absent from the
// result.
type UnknownColumnError struct {
	Column    string
	Available []string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q (available: %s)",
		e.Column, strings.Join(e.Available, ", "))
}
