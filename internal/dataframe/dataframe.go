// Package dataframe provides the table type and the grouped, reshape and
// row-selection operations built on it.
//
// A DataFrame is an ordered set of uniquely named, equal-length Arrow
// columns. Operations never mutate their receiver: each returns a new
// DataFrame that owns its arrays and must be released by the caller.
package dataframe

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabula/internal/errors"
	"github.com/paveg/tabula/internal/series"
	"github.com/paveg/tabula/internal/validation"
)

// DataFrame represents a table of data with typed columns
type DataFrame struct {
	columns map[string]ISeries
	order   []string // Maintains column order
}

// New creates a new DataFrame from a slice of ISeries and takes ownership of
// them. It panics on duplicate names or columns of different lengths; use
// NewChecked for input that is not known to be well formed.
func New(series ...ISeries) *DataFrame {
	df, err := NewChecked(series...)
	if err != nil {
		panic(err)
	}
	return df
}

// NewChecked creates a DataFrame, rejecting duplicate column names and
// columns of different lengths. On success the DataFrame owns the series; on
// error ownership stays with the caller.
func NewChecked(series ...ISeries) (*DataFrame, error) {
	columns := make(map[string]ISeries, len(series))
	order := make([]string, 0, len(series))

	for _, s := range series {
		name := s.Name()
		if _, exists := columns[name]; exists {
			return nil, errors.NewValidationError("New", name, "duplicate column name")
		}
		if len(order) > 0 && s.Len() != columns[order[0]].Len() {
			return nil, errors.NewValidationError("New", name,
				fmt.Sprintf("column length %d does not match %d", s.Len(), columns[order[0]].Len()))
		}
		columns[name] = s
		order = append(order, name)
	}

	return &DataFrame{
		columns: columns,
		order:   order,
	}, nil
}

// FromArrays builds a DataFrame from parallel name and array slices. The
// DataFrame retains each array; the caller keeps its own references.
func FromArrays(names []string, arrays []arrow.Array) (*DataFrame, error) {
	if err := validation.ValidateLength(len(names), len(arrays), "FromArrays", "arrays"); err != nil {
		return nil, err
	}
	cols := make([]ISeries, len(arrays))
	for i, arr := range arrays {
		arr.Retain()
		cols[i] = seriesFromArray(names[i], arr)
	}
	df, err := NewChecked(cols...)
	if err != nil {
		releaseAll(cols)
		return nil, err
	}
	return df, nil
}

// Columns returns the names of all columns in order
func (df *DataFrame) Columns() []string {
	if len(df.order) == 0 {
		return []string{}
	}
	return append([]string(nil), df.order...)
}

// Len returns the number of rows
func (df *DataFrame) Len() int {
	if len(df.order) == 0 {
		return 0
	}
	return df.columns[df.order[0]].Len()
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.order)
}

// Column returns the series for the given column name. The series stays
// owned by the DataFrame.
func (df *DataFrame) Column(name string) (ISeries, bool) {
	series, exists := df.columns[name]
	return series, exists
}

// ColumnArray returns the Arrow array backing a column with an extra
// reference the caller must release.
func (df *DataFrame) ColumnArray(name string) (arrow.Array, bool) {
	s, exists := df.columns[name]
	if !exists {
		return nil, false
	}
	return s.Array(), true
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	_, exists := df.columns[name]
	return exists
}

// Select returns a new DataFrame with only the specified columns, in the
// order given. Unknown names are skipped.
func (df *DataFrame) Select(names ...string) *DataFrame {
	cols := make([]ISeries, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		if s, exists := df.columns[name]; exists && !seen[name] {
			seen[name] = true
			cols = append(cols, seriesFromArray(name, s.Array()))
		}
	}

	return New(cols...)
}

// Drop returns a new DataFrame without the specified columns
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool, len(names))
	for _, name := range names {
		dropSet[name] = true
	}

	keep := make([]string, 0, len(df.order))
	for _, name := range df.order {
		if !dropSet[name] {
			keep = append(keep, name)
		}
	}

	return df.Select(keep...)
}

// Rename returns a new DataFrame with columns renamed through mapping.
// Columns absent from mapping keep their names.
func (df *DataFrame) Rename(mapping map[string]string) (*DataFrame, error) {
	for from := range mapping {
		if !df.HasColumn(from) {
			return nil, errors.NewColumnNotFoundError("Rename", from)
		}
	}

	names := make([]string, len(df.order))
	for i, name := range df.order {
		if to, ok := mapping[name]; ok {
			names[i] = to
		} else {
			names[i] = name
		}
	}
	return df.WithColumnNames(names)
}

// WithColumnNames returns a new DataFrame sharing this one's data with every
// column renamed positionally.
func (df *DataFrame) WithColumnNames(names []string) (*DataFrame, error) {
	if len(names) != len(df.order) {
		return nil, errors.NewInvalidInputError("WithColumnNames",
			fmt.Sprintf("%d names for %d columns", len(names), len(df.order)))
	}

	cols := make([]ISeries, len(names))
	for i, name := range df.order {
		cols[i] = seriesFromArray(names[i], df.columns[name].Array())
	}

	out, err := NewChecked(cols...)
	if err != nil {
		releaseAll(cols)
		return nil, err
	}
	return out, nil
}

// Schema returns the Arrow schema of the DataFrame.
func (df *DataFrame) Schema() *arrow.Schema {
	fields := make([]arrow.Field, len(df.order))
	for i, name := range df.order {
		fields[i] = arrow.Field{Name: name, Type: df.columns[name].DataType(), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// String returns a string representation of the DataFrame
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return "DataFrame[empty]"
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}

	for _, name := range df.order {
		series := df.columns[name]
		parts = append(parts, fmt.Sprintf("  %s: %s", name, series.DataType().String()))
	}

	return strings.Join(parts, "\n")
}

// Slice returns rows [start, end) as a zero-copy view. The range is clamped
// to the table; an empty range keeps the schema with zero rows.
func (df *DataFrame) Slice(start, end int) *DataFrame {
	length := df.Len()
	start = clamp(start, 0, length)
	end = clamp(end, start, length)

	cols := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		arr := df.columns[name].Array()
		cols = append(cols, seriesFromArray(name, array.NewSlice(arr, int64(start), int64(end))))
		arr.Release()
	}

	return New(cols...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Concat concatenates DataFrames vertically (row-wise). Every DataFrame must
// have the same column names, order and types.
func (df *DataFrame) Concat(others ...*DataFrame) (*DataFrame, error) {
	for i, other := range others {
		if err := df.sameSchema(other); err != nil {
			return nil, errors.NewSchemaMismatchError("Concat",
				fmt.Sprintf("table %d: %v", i+1, err))
		}
	}

	mem := memory.NewGoAllocator()
	cols := make([]ISeries, 0, len(df.order))

	for _, name := range df.order {
		parts := make([]arrow.Array, 0, len(others)+1)
		parts = append(parts, df.columns[name].Array())
		for _, other := range others {
			parts = append(parts, other.columns[name].Array())
		}

		combined, err := array.Concatenate(parts, mem)
		for _, part := range parts {
			part.Release()
		}
		if err != nil {
			releaseAll(cols)
			return nil, errors.NewConcatError("Concat", fmt.Sprintf("column %s", name), err)
		}
		cols = append(cols, seriesFromArray(name, combined))
	}

	return New(cols...), nil
}

// sameSchema reports why other cannot be stacked under df, or nil.
func (df *DataFrame) sameSchema(other *DataFrame) error {
	if len(df.order) != len(other.order) {
		return fmt.Errorf("expected %d columns, got %d", len(df.order), len(other.order))
	}

	for i, name := range df.order {
		if other.order[i] != name {
			return fmt.Errorf("column %d is %q, expected %q", i, other.order[i], name)
		}
		want, got := df.columns[name].DataType(), other.columns[name].DataType()
		if !arrow.TypeEqual(want, got) {
			return fmt.Errorf("column %q has type %s, expected %s", name, got, want)
		}
	}

	return nil
}

// ConcatColumns joins DataFrames horizontally. A column whose name was
// already used by an earlier table is renamed to <name>_<table index>.
func ConcatColumns(dfs ...*DataFrame) (*DataFrame, error) {
	if len(dfs) == 0 {
		return New(), nil
	}

	rows := dfs[0].Len()
	used := make(map[string]bool)
	var cols []ISeries

	for idx, df := range dfs {
		if df.Width() > 0 && df.Len() != rows {
			releaseAll(cols)
			return nil, errors.NewValidationError("ConcatColumns", "",
				fmt.Sprintf("table %d has %d rows, expected %d", idx, df.Len(), rows))
		}
		for _, name := range df.order {
			newName := name
			if used[name] {
				newName = fmt.Sprintf("%s_%d", name, idx)
			}
			used[newName] = true
			cols = append(cols, seriesFromArray(newName, df.columns[name].Array()))
		}
	}

	out, err := NewChecked(cols...)
	if err != nil {
		releaseAll(cols)
		return nil, err
	}
	return out, nil
}

// Release releases all underlying Arrow memory
func (df *DataFrame) Release() {
	for _, series := range df.columns {
		series.Release()
	}
}

func releaseAll(cols []ISeries) {
	for _, s := range cols {
		s.Release()
	}
}

// seriesFromArray wraps arr as a named series, taking ownership of it.
func seriesFromArray(name string, arr arrow.Array) ISeries {
	switch arr.DataType().ID() {
	case arrow.STRING:
		return series.Wrap[string](name, arr)
	case arrow.INT64:
		return series.Wrap[int64](name, arr)
	case arrow.INT32:
		return series.Wrap[int32](name, arr)
	case arrow.UINT64:
		return series.Wrap[uint64](name, arr)
	case arrow.UINT32:
		return series.Wrap[uint32](name, arr)
	case arrow.FLOAT64:
		return series.Wrap[float64](name, arr)
	case arrow.FLOAT32:
		return series.Wrap[float32](name, arr)
	case arrow.BOOL:
		return series.Wrap[bool](name, arr)
	default:
		return series.Wrap[any](name, arr)
	}
}
