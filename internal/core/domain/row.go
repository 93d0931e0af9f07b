package domain

import (
	"fmt"
	"iter"
	"reflect"
	"strings"
	"time"
)

// Row is one result tuple: an ordered, fixed set of column name and value
// pairs over a single backing list. Rows are read-only; accessors return
// copies so callers cannot change a row after construction.
type Row struct {
	columns []string
	values  []any
	index   map[string]int
}

// NewRow builds a row from ordered column names and one raw value tuple.
// Duplicate column names fail with ErrAmbiguousColumn. String values that
// hold a strict ISO-8601 date or date-time are converted to time.Time.
func NewRow(columns []string, values []any) (Row, error) {
	if len(columns) != len(values) {
		return Row{}, fmt.Errorf("row has %d columns but %d values", len(columns), len(values))
	}

	index, err := indexColumns(columns)
	if err != nil {
		return Row{}, err
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = CoerceValue(v)
	}

	return Row{columns: cols, values: vals, index: index}, nil
}

// CheckColumns fails with ErrAmbiguousColumn if a result has duplicate
// column names.
func CheckColumns(columns []string) error {
	_, err := indexColumns(columns)
	return err
}

func indexColumns(columns []string) (map[string]int, error) {
	index := make(map[string]int, len(columns))
	var dups []string
	for i, name := range columns {
		if _, ok := index[name]; ok {
			dups = append(dups, name)
			continue
		}
		index[name] = i
	}
	if len(dups) > 0 {
		return nil, fmt.Errorf("%w %s, use an alias", ErrAmbiguousColumn, quoteList(dups))
	}
	return index, nil
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.values)
}

// IsEmpty returns true for the zero Row.
func (r Row) IsEmpty() bool {
	return len(r.values) == 0
}

// Columns returns a copy of the column names in order.
func (r Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Values returns a copy of the values in column order.
func (r Row) Values() []any {
	out := make([]any, len(r.values))
	copy(out, r.values)
	return out
}

// At returns the value at zero-based position i.
func (r Row) At(i int) (any, error) {
	if i < 0 || i >= len(r.values) {
		return nil, fmt.Errorf("%w: index %d, row has %d columns", ErrIndexOutOfRange, i, len(r.values))
	}
	return r.values[i], nil
}

// Get returns the value of the named column.
func (r Row) Get(name string) (any, error) {
	i, ok := r.index[name]
	if !ok {
		return nil, fmt.Errorf("%w %q, available: %s", ErrUnknownColumn, name, strings.Join(r.columns, ", "))
	}
	return r.values[i], nil
}

// Has returns true if the row has the named column.
func (r Row) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// All iterates over column names and values in column order.
func (r Row) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for i, v := range r.values {
			if !yield(r.columns[i], v) {
				return
			}
		}
	}
}

// Map returns the row as a name to value map.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for i, v := range r.values {
		m[r.columns[i]] = v
	}
	return m
}

// Equal compares the values of two rows. Column names are ignored.
func (r Row) Equal(other Row) bool {
	if len(r.values) != len(other.values) {
		return false
	}
	for i := range r.values {
		if !valuesEqual(r.values[i], other.values[i]) {
			return false
		}
	}
	return true
}

// String formats the row as name=value pairs.
func (r Row) String() string {
	var b strings.Builder
	b.WriteString("Row(")
	for i, v := range r.values {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", r.columns[i], v)
	}
	b.WriteString(")")
	return b.String()
}

func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}

// RowSet is an ordered sequence of rows.
type RowSet []Row

// Len returns the number of rows.
func (s RowSet) Len() int {
	return len(s)
}

// First returns the first row and false if the set is empty.
func (s RowSet) First() (Row, bool) {
	if len(s) == 0 {
		return Row{}, false
	}
	return s[0], true
}

// Columns returns the column names of the first row, or nil for an empty set.
func (s RowSet) Columns() []string {
	if len(s) == 0 {
		return nil
	}
	return s[0].Columns()
}

// Timestamp layouts accepted by CoerceValue. Fractional seconds are accepted
// after the seconds field of any layout.
var timestampLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z07:00",
}

const (
	minTimestampLen = len("2006-01-02")
	maxTimestampLen = len("2006-01-02T15:04:05.999999999+07:00")
)

// CoerceValue converts strings holding a strict ISO-8601 date or date-time
// into time.Time in UTC. Temporal values from the driver are moved to UTC.
// Every other value is returned unchanged.
func CoerceValue(v any) any {
	switch tv := v.(type) {
	case string:
		if t, ok := ParseTimestamp(tv); ok {
			return t
		}
	case time.Time:
		return tv.UTC()
	}
	return v
}

// ParseTimestamp parses s as a strict ISO-8601 date or date-time. Values
// with an offset are converted to UTC; values without one are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	if len(s) < minTimestampLen || len(s) > maxTimestampLen || s[0] < '0' || s[0] > '9' {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp formats t in UTC without an offset, the form SQLite's
// own CURRENT_TIMESTAMP uses.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.Format("2006-01-02 15:04:05.999999999")
}
