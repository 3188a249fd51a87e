package models

import "time"

// SeriesRow is one observation: index timestamps and a single value.
type SeriesRow struct {
	Index []time.Time
	Value Value
}

// Series is the flattened single-column form of a table. Any request whose
// result ends up with exactly one value column is squeezed into a Series.
type Series struct {
	Name       string
	IndexNames []string
	Rows       []SeriesRow
}

func (s *Series) isResult() {}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.Rows) }

// Result is the outcome of a dataset request: either a *Table or a *Series.
type Result interface {
	Len() int
	isResult()
}
