package models

import (
	"sort"
	"strings"
	"time"
)

// Pivot reshapes the table so that each distinct combination of values in the
// named discriminator columns becomes an additional column level over every
// remaining value column. Keys absent from the table are ignored; with no
// matching keys the table is returned unchanged.
func (t *Table) Pivot(keys []string) error {
	var pivotIdx []int
	for _, k := range keys {
		if i := t.columnIndex(k); i >= 0 {
			pivotIdx = append(pivotIdx, i)
		}
	}
	if len(pivotIdx) == 0 {
		return nil
	}
	isPivot := make(map[int]bool, len(pivotIdx))
	for _, i := range pivotIdx {
		isPivot[i] = true
	}
	var valueIdx []int
	for i := range t.Columns {
		if !isPivot[i] {
			valueIdx = append(valueIdx, i)
		}
	}

	// Distinct index keys, in sorted row order.
	var indexKeys [][]time.Time
	rowPos := make(map[string]int)
	indexKeyOf := func(idx []time.Time) string {
		var b strings.Builder
		for _, ts := range idx {
			b.WriteString(ts.UTC().Format(time.RFC3339Nano))
			b.WriteByte('\x00')
		}
		return b.String()
	}
	for _, r := range t.Rows {
		key := indexKeyOf(r.Index)
		if _, ok := rowPos[key]; !ok {
			rowPos[key] = len(indexKeys)
			indexKeys = append(indexKeys, r.Index)
		}
	}

	// Distinct pivot-value combinations, sorted lexicographically.
	comboPos := make(map[string]int)
	var combos [][]string
	for _, r := range t.Rows {
		combo := make([]string, len(pivotIdx))
		for i, ci := range pivotIdx {
			combo[i] = FormatValue(r.Cells[ci])
		}
		key := strings.Join(combo, "\x00")
		if _, ok := comboPos[key]; !ok {
			comboPos[key] = 0
			combos = append(combos, combo)
		}
	}
	sort.Slice(combos, func(i, j int) bool {
		for k := range combos[i] {
			if combos[i][k] != combos[j][k] {
				return combos[i][k] < combos[j][k]
			}
		}
		return false
	})
	for i, c := range combos {
		comboPos[strings.Join(c, "\x00")] = i
	}

	// Composite column axis: value column x pivot combination.
	cols := make([]Column, 0, len(valueIdx)*len(combos))
	for _, vi := range valueIdx {
		for _, combo := range combos {
			levels := append(append([]string{}, t.Columns[vi].Levels...), combo...)
			cols = append(cols, Column{Levels: levels})
		}
	}

	rows := make([]Row, len(indexKeys))
	filled := make([][]bool, len(indexKeys))
	for i, idx := range indexKeys {
		rows[i] = Row{Index: idx, Cells: make([]Value, len(cols))}
		filled[i] = make([]bool, len(cols))
	}
	for _, r := range t.Rows {
		ri := rowPos[indexKeyOf(r.Index)]
		combo := make([]string, len(pivotIdx))
		for i, ci := range pivotIdx {
			combo[i] = FormatValue(r.Cells[ci])
		}
		ci := comboPos[strings.Join(combo, "\x00")]
		for vi, src := range valueIdx {
			dst := vi*len(combos) + ci
			if filled[ri][dst] {
				return &AmbiguousIndexError{
					Key: strings.Join(append([]string{indexKeyOf(r.Index)}, combo...), " "),
				}
			}
			rows[ri].Cells[dst] = r.Cells[src]
			filled[ri][dst] = true
		}
	}

	t.Columns = cols
	t.Rows = rows
	return nil
}

// CollapseSingletonLevels removes every column-axis level that has exactly
// one distinct value across all columns, repeating until no singleton level
// remains. A single-level axis is never collapsed away entirely.
func (t *Table) CollapseSingletonLevels() {
	for {
		depth := 0
		for _, c := range t.Columns {
			if len(c.Levels) > depth {
				depth = len(c.Levels)
			}
		}
		if depth <= 1 {
			return
		}
		dropped := false
		for lvl := 0; lvl < depth && !dropped; lvl++ {
			distinct := make(map[string]struct{})
			for _, c := range t.Columns {
				if lvl < len(c.Levels) {
					distinct[c.Levels[lvl]] = struct{}{}
				}
			}
			if len(distinct) != 1 {
				continue
			}
			for i, c := range t.Columns {
				if lvl < len(c.Levels) {
					t.Columns[i].Levels = append(c.Levels[:lvl:lvl], c.Levels[lvl+1:]...)
				}
			}
			dropped = true
		}
		if !dropped {
			return
		}
	}
}
