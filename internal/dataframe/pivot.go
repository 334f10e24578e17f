package dataframe

import (
	"fmt"
	"slices"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabula/internal/config"
	"github.com/paveg/tabula/internal/errors"
	"github.com/paveg/tabula/internal/logging"
	"github.com/paveg/tabula/internal/series"
	"github.com/paveg/tabula/internal/validation"
)

// PivotWider reshapes long rows into wide columns. Output rows are the
// distinct id tuples in first-seen order; output columns are the ids followed
// by one column per value column and distinct pivot value, also first-seen.
// When several rows share an id tuple and pivot value only the first is kept.
// Missing cells are null.
//
// With one value column a generated column is named after the pivot value;
// with several it is <value column>_<pivot value>. Names are then made unique
// by ResolvePivotNames. Empty ids or values mean every remaining column.
func (df *DataFrame) PivotWider(ids []string, pivot string, values []string, prefix *string) (*DataFrame, error) {
	const op = "PivotWider"

	if err := validation.ValidateColumns(df, op, append(append([]string{pivot}, ids...), values...)...); err != nil {
		return nil, err
	}
	if slices.Contains(ids, pivot) || slices.Contains(values, pivot) {
		return nil, errors.NewValidationError(op, pivot, "pivot column cannot also be an id or value column")
	}
	seen := make(map[string]bool, len(ids)+len(values))
	for _, name := range append(append([]string(nil), ids...), values...) {
		if seen[name] {
			return nil, errors.NewValidationError(op, name, "column listed more than once among ids and values")
		}
		seen[name] = true
	}

	ids, values = df.pivotDefaults(ids, pivot, values)
	if len(values) == 0 {
		return nil, errors.NewInvalidInputError(op, "no value columns to pivot")
	}

	// Ids move out of the way under a marker so generated names cannot
	// shadow them while the wide table is assembled.
	marker := config.GetGlobalConfig().PivotIDMarker
	renames := make(map[string]string, len(ids))
	markedIDs := make([]string, len(ids))
	for i, id := range ids {
		markedIDs[i] = marker + id
		renames[id] = markedIDs[i]
	}
	work, err := df.Rename(renames)
	if err != nil {
		return nil, err
	}
	defer work.Release()

	rowGroups, err := work.GroupByStable(markedIDs...)
	if err != nil {
		return nil, err
	}
	pivotGroups, err := work.GroupByStable(pivot)
	if err != nil {
		return nil, err
	}

	// first[g][p] is the first row with id group g and pivot value p.
	first := make([][]int, rowGroups.Len())
	for g := range first {
		first[g] = make([]int, pivotGroups.Len())
		for p := range first[g] {
			first[g][p] = -1
		}
	}
	pivotOf := make([]int, work.Len())
	for p, rows := range pivotGroups.Indices {
		for _, row := range rows {
			pivotOf[row] = p
		}
	}
	for g, rows := range rowGroups.Indices {
		for _, row := range rows {
			if p := pivotOf[row]; first[g][p] < 0 {
				first[g][p] = row
			}
		}
	}

	labels := make([]string, pivotGroups.Len())
	pivotArr, _ := work.ColumnArray(pivot)
	for p, rows := range pivotGroups.Indices {
		labels[p] = series.FormatValue(pivotArr, rows[0])
	}
	pivotArr.Release()

	var (
		names []string
		cols  []arrow.Array
	)
	defer func() { releaseArrays(cols) }()

	idRows := make([]int, rowGroups.Len())
	for g, rows := range rowGroups.Indices {
		idRows[g] = rows[0]
	}
	idFrame, err := work.Select(markedIDs...).takeAndRelease(idRows)
	if err != nil {
		return nil, err
	}
	for _, name := range markedIDs {
		arr, _ := idFrame.ColumnArray(name)
		names = append(names, name)
		cols = append(cols, arr)
	}
	idFrame.Release()

	mem := memory.NewGoAllocator()
	for _, value := range values {
		for p, label := range labels {
			builder := array.NewInt64Builder(mem)
			for g := range first {
				if row := first[g][p]; row >= 0 {
					builder.Append(int64(row))
				} else {
					builder.AppendNull()
				}
			}
			indices := builder.NewArray()
			builder.Release()

			cell, err := work.Select(value).takeAndReleaseArray(indices)
			indices.Release()
			if err != nil {
				return nil, err
			}

			if len(values) == 1 {
				names = append(names, label)
			} else {
				names = append(names, value+"_"+label)
			}
			cols = append(cols, cell)
		}
	}

	for i, name := range names {
		names[i] = strings.TrimPrefix(name, marker)
	}
	resolved := ResolvePivotNames(names, ids, prefix)

	logging.Logger().Debug().
		Str("op", op).
		Strs("ids", ids).
		Str("pivot", pivot).
		Int("rows", rowGroups.Len()).
		Strs("columns", resolved).
		Msg("pivoted table")

	return FromArrays(resolved, cols)
}

// pivotDefaults fills empty ids or values with every other column.
func (df *DataFrame) pivotDefaults(ids []string, pivot string, values []string) ([]string, []string) {
	rest := func(exclude []string) []string {
		var out []string
		for _, name := range df.order {
			if name != pivot && !slices.Contains(exclude, name) {
				out = append(out, name)
			}
		}
		return out
	}

	switch {
	case len(ids) == 0 && len(values) > 0:
		ids = rest(values)
	case len(values) == 0:
		values = rest(ids)
	}
	return ids, values
}

// takeAndRelease gathers rows and releases the receiver.
func (df *DataFrame) takeAndRelease(rows []int) (*DataFrame, error) {
	defer df.Release()
	return df.takeRows(rows)
}

// takeAndReleaseArray gathers rows of a single-column frame into one array
// and releases the receiver.
func (df *DataFrame) takeAndReleaseArray(indices arrow.Array) (arrow.Array, error) {
	defer df.Release()
	out, err := df.takeArray(indices)
	if err != nil {
		return nil, err
	}
	defer out.Release()
	arr, _ := out.ColumnArray(out.order[0])
	return arr, nil
}

// ResolvePivotNames makes the column names of a pivoted table unique,
// scanning left to right:
//
//   - a generated column named "null" (from a null pivot value) becomes "nil";
//   - the first occurrence of a name keeps it, with prefix prepended unless
//     the name is one of ids;
//   - a repeated name gets prefix, or "_<n>" when prefix leaves it unchanged,
//     where n counts earlier occurrences of the same name;
//   - if the result is still taken the count advances until it is free.
//
// The result depends only on the input order.
func ResolvePivotNames(names, ids []string, prefix *string) []string {
	counts := make(map[string]int, len(names))
	taken := make(map[string]bool, len(names))
	out := make([]string, len(names))

	for i, name := range names {
		isID := slices.Contains(ids, name)
		base := name
		if !isID && base == "null" {
			base = "nil"
		}

		n, repeated := counts[base]
		if !repeated {
			n = 1
		}

		stem := base
		if prefix != nil && (repeated || !isID) {
			stem = *prefix + base
		}

		final := stem
		if repeated {
			if final == base {
				final = fmt.Sprintf("%s_%d", base, n)
			}
			n++
		}
		for taken[final] {
			final = fmt.Sprintf("%s_%d", stem, n)
			n++
		}

		counts[base] = n
		taken[final] = true
		out[i] = final
	}

	return out
}
