package models

// Selector names the columns a request should return, resolved once at the
// pipeline boundary. The zero value selects all columns.
//
// A single-name selector behaves like scalar column access: on a pivoted
// table it matches the top column level and strips it from the result. A
// multi-name selector keeps the full column structure of every match.
type Selector struct {
	names []string
}

// SelectAll returns a selector keeping every column.
func SelectAll() Selector {
	return Selector{}
}

// Select returns a selector keeping the named columns in the order given.
// With no names it is equivalent to SelectAll.
func Select(names ...string) Selector {
	return Selector{names: names}
}

// All reports whether the selector keeps every column.
func (s Selector) All() bool { return len(s.names) == 0 }

// One reports whether the selector names exactly one column.
func (s Selector) One() bool { return len(s.names) == 1 }

// Names returns the selected column names, nil for a select-all.
func (s Selector) Names() []string { return s.names }
