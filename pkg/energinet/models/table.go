// Package models defines the tabular data structures returned by the client:
// time-indexed tables, flat series, and the column selector resolved at the
// pipeline boundary.
package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ColumnSep joins column levels into a flat display name, e.g.
// "SpotPriceDKK|DK1".
const ColumnSep = "|"

// Value is a single cell: int64, float64, string, bool, or nil.
type Value = any

// Column is one column of a table. After a pivot the column carries more than
// one level: the value column name followed by the pivot-axis values.
type Column struct {
	Levels []string
}

// Col builds a column from its levels.
func Col(levels ...string) Column {
	return Column{Levels: levels}
}

// Name returns the flat display name of the column.
func (c Column) Name() string {
	return strings.Join(c.Levels, ColumnSep)
}

// Row is one table row: index timestamps (one per index level) and cell
// values parallel to the table's columns.
type Row struct {
	Index []time.Time
	Cells []Value
}

// Table is a time-indexed table. The index has one or more levels of
// timestamps; rows are kept sorted ascending by index.
type Table struct {
	IndexNames []string
	Columns    []Column
	Rows       []Row
}

func (t *Table) isResult() {}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// ColumnNames returns the flat names of all columns in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name()
	}
	return names
}

// columnIndex returns the position of the named column, or -1.
func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name() == name {
			return i
		}
	}
	return -1
}

// indexLess orders two index keys lexicographically across levels.
func indexLess(a, b []time.Time) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if !a[i].Equal(b[i]) {
			return a[i].Before(b[i])
		}
	}
	return false
}

// SortByIndex sorts rows ascending by index. The sort is stable so records
// that differ only in discriminator columns keep their response order.
func (t *Table) SortByIndex() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return indexLess(t.Rows[i].Index, t.Rows[j].Index)
	})
}

// CheckUnique verifies that every (index, discriminator-columns) key occurs
// at most once. Datasets carrying a discriminator such as PriceArea
// legitimately repeat timestamps, so uniqueness is checked per combination.
func (t *Table) CheckUnique(discriminators []string) error {
	cols := make([]int, 0, len(discriminators))
	for _, d := range discriminators {
		if i := t.columnIndex(d); i >= 0 {
			cols = append(cols, i)
		}
	}
	seen := make(map[string]struct{}, len(t.Rows))
	for _, r := range t.Rows {
		var b strings.Builder
		for _, ts := range r.Index {
			b.WriteString(ts.UTC().Format(time.RFC3339Nano))
			b.WriteByte('\x00')
		}
		for _, ci := range cols {
			b.WriteString(FormatValue(r.Cells[ci]))
			b.WriteByte('\x00')
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			return &AmbiguousIndexError{Key: strings.ReplaceAll(key, "\x00", " ")}
		}
		seen[key] = struct{}{}
	}
	return nil
}

// DropColumns removes the named columns if present.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	var keep []int
	for i, c := range t.Columns {
		if !drop[c.Name()] {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(t.Columns) {
		return
	}
	t.project(keep)
}

// project rebuilds the table keeping only the columns at the given positions,
// in the given order.
func (t *Table) project(keep []int) {
	cols := make([]Column, len(keep))
	for i, ki := range keep {
		cols[i] = t.Columns[ki]
	}
	for ri := range t.Rows {
		cells := make([]Value, len(keep))
		for i, ki := range keep {
			cells[i] = t.Rows[ri].Cells[ki]
		}
		t.Rows[ri].Cells = cells
	}
	t.Columns = cols
}

// ConvertZone converts the first index level to the given zone. Deeper
// levels keep their zone, matching how multi-level time indices are
// displayed relative to the primary timestamp.
func (t *Table) ConvertZone(loc *time.Location) {
	for ri := range t.Rows {
		if len(t.Rows[ri].Index) > 0 {
			t.Rows[ri].Index[0] = t.Rows[ri].Index[0].In(loc)
		}
	}
}

// Truncate drops rows whose first index level falls outside [start, end].
// Both bounds are inclusive: the API may return edge rows slightly outside
// the requested range and truncation enforces the exact contract.
func (t *Table) Truncate(start, end time.Time) {
	rows := t.Rows[:0]
	for _, r := range t.Rows {
		ts := r.Index[0]
		if ts.Before(start) || ts.After(end) {
			continue
		}
		rows = append(rows, r)
	}
	t.Rows = rows
}

// matchColumns returns the positions of columns matching the name: an exact
// flat-name match wins, otherwise every column whose top level equals the
// name matches.
func (t *Table) matchColumns(name string) (positions []int, topLevel bool) {
	if i := t.columnIndex(name); i >= 0 {
		return []int{i}, false
	}
	for i, c := range t.Columns {
		if len(c.Levels) > 1 && c.Levels[0] == name {
			positions = append(positions, i)
		}
	}
	return positions, true
}

// Select subsets the table to the named columns, preserving the order given.
// A single-name selection matching the top column level strips that level,
// mirroring scalar column access on a pivoted table; multi-name selections
// keep the full column structure.
func (t *Table) Select(sel Selector) error {
	if sel.All() {
		return nil
	}
	var keep []int
	stripTop := false
	for _, name := range sel.names {
		positions, topLevel := t.matchColumns(name)
		if len(positions) == 0 {
			return &UnknownColumnError{Column: name, Available: t.ColumnNames()}
		}
		keep = append(keep, positions...)
		stripTop = sel.One() && topLevel
	}
	t.project(keep)
	if stripTop {
		for i, c := range t.Columns {
			t.Columns[i].Levels = c.Levels[1:]
		}
	}
	return nil
}

// FilterLike keeps only columns whose flat name contains the substring.
func (t *Table) FilterLike(substr string) {
	var keep []int
	for i, c := range t.Columns {
		if strings.Contains(c.Name(), substr) {
			keep = append(keep, i)
		}
	}
	t.project(keep)
}

// Squeeze returns the table itself, or its flattened series form when
// exactly one value column remains.
func (t *Table) Squeeze() Result {
	if len(t.Columns) != 1 {
		return t
	}
	s := &Series{
		Name:       t.Columns[0].Name(),
		IndexNames: t.IndexNames,
		Rows:       make([]SeriesRow, len(t.Rows)),
	}
	for i, r := range t.Rows {
		s.Rows[i] = SeriesRow{Index: r.Index, Value: r.Cells[0]}
	}
	return s
}

// FormatValue renders a cell value for use in column names and index keys.
func FormatValue(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprintf("%v", x)
	}
}
