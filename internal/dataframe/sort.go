package dataframe

import (
	"fmt"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabula/internal/errors"
	"github.com/paveg/tabula/internal/expr"
	"github.com/paveg/tabula/internal/validation"
	"golang.org/x/exp/constraints"
)

// SortOptions controls row ordering.
type SortOptions struct {
	// Descending holds one flag per sort key. A single flag applies to every
	// key and an empty slice sorts everything ascending.
	Descending []bool
	// NullsLast moves nulls after every value. Nulls sort first otherwise,
	// whatever the direction.
	NullsLast bool
	// MaintainOrder keeps rows with equal keys in their input order.
	MaintainOrder bool
}

// SortBy orders rows by columns. NaN sorts above every number. With groups
// each group is sorted on its own and groups keep their first-seen order.
func (df *DataFrame) SortBy(columns []string, opts SortOptions, groups ...string) (*DataFrame, error) {
	if len(columns) == 0 {
		return nil, errors.NewInvalidInputError("SortBy", "at least one sort column is required")
	}
	if err := validation.ValidateColumns(df, "SortBy", columns...); err != nil {
		return nil, err
	}
	descending, err := expandDescending("SortBy", opts.Descending, len(columns))
	if err != nil {
		return nil, err
	}

	return Apply(df, groups, func(sub *DataFrame) (*DataFrame, error) {
		keys := make([]arrow.Array, len(columns))
		for i, name := range columns {
			keys[i], _ = sub.ColumnArray(name)
		}
		defer releaseArrays(keys)

		return sub.sortByKeys("SortBy", keys, descending, opts)
	})
}

// SortWith orders rows by computed expressions, evaluated per group.
func (df *DataFrame) SortWith(exprs []expr.Expr, opts SortOptions, groups ...string) (*DataFrame, error) {
	if len(exprs) == 0 {
		return nil, errors.NewInvalidInputError("SortWith", "at least one sort expression is required")
	}
	for _, e := range exprs {
		if e == nil {
			return nil, errors.NewInvalidInputError("SortWith", "nil sort expression")
		}
		if err := validation.ValidateColumns(df, "SortWith", expr.Columns(e)...); err != nil {
			return nil, err
		}
	}
	descending, err := expandDescending("SortWith", opts.Descending, len(exprs))
	if err != nil {
		return nil, err
	}

	return Apply(df, groups, func(sub *DataFrame) (*DataFrame, error) {
		columns := make(map[string]arrow.Array, sub.Width())
		for _, name := range sub.order {
			columns[name] = sub.columns[name].Array()
		}
		defer func() {
			for _, arr := range columns {
				arr.Release()
			}
		}()

		eval := expr.NewEvaluator(memory.NewGoAllocator())
		keys := make([]arrow.Array, 0, len(exprs))
		defer func() { releaseArrays(keys) }()

		for _, e := range exprs {
			key, err := eval.Evaluate(e, columns, sub.Len())
			if err != nil {
				return nil, errors.NewValidationError("SortWith", "", fmt.Sprintf("evaluating %s: %v", e, err))
			}
			keys = append(keys, key)
		}

		return sub.sortByKeys("SortWith", keys, descending, opts)
	})
}

func (df *DataFrame) sortByKeys(op string, keys []arrow.Array, descending []bool, opts SortOptions) (*DataFrame, error) {
	comparators := make([]rowComparator, len(keys))
	for i, key := range keys {
		cmp, err := newRowComparator(key, descending[i], opts.NullsLast)
		if err != nil {
			return nil, errors.NewUnsupportedTypeError(op, key.DataType().String())
		}
		comparators[i] = cmp
	}

	rows := make([]int, df.Len())
	for i := range rows {
		rows[i] = i
	}

	compare := func(a, b int) int {
		for _, cmp := range comparators {
			if c := cmp(a, b); c != 0 {
				return c
			}
		}
		return 0
	}
	if opts.MaintainOrder {
		slices.SortStableFunc(rows, compare)
	} else {
		slices.SortFunc(rows, compare)
	}

	return df.takeRows(rows)
}

func expandDescending(op string, flags []bool, keys int) ([]bool, error) {
	out := make([]bool, keys)
	switch len(flags) {
	case 0:
	case 1:
		for i := range out {
			out[i] = flags[0]
		}
	case keys:
		copy(out, flags)
	default:
		return nil, errors.NewInvalidInputError(op,
			fmt.Sprintf("descending has %d entries for %d sort keys", len(flags), keys))
	}
	return out, nil
}

// rowComparator orders two rows of one key column.
type rowComparator func(a, b int) int

func newRowComparator(arr arrow.Array, descending, nullsLast bool) (rowComparator, error) {
	var values rowComparator

	switch a := arr.(type) {
	case *array.String:
		values = orderedComparator(a.Value)
	case *array.LargeString:
		values = orderedComparator(a.Value)
	case *array.Int64:
		values = orderedComparator(a.Value)
	case *array.Int32:
		values = orderedComparator(a.Value)
	case *array.Int16:
		values = orderedComparator(a.Value)
	case *array.Int8:
		values = orderedComparator(a.Value)
	case *array.Uint64:
		values = orderedComparator(a.Value)
	case *array.Uint32:
		values = orderedComparator(a.Value)
	case *array.Uint16:
		values = orderedComparator(a.Value)
	case *array.Uint8:
		values = orderedComparator(a.Value)
	case *array.Float64:
		values = orderedComparator(a.Value)
	case *array.Float32:
		values = orderedComparator(a.Value)
	case *array.Boolean:
		values = func(i, j int) int {
			x, y := a.Value(i), a.Value(j)
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	default:
		return nil, fmt.Errorf("cannot sort %s", arr.DataType())
	}

	return func(i, j int) int {
		iNull, jNull := arr.IsNull(i), arr.IsNull(j)
		switch {
		case iNull && jNull:
			return 0
		case iNull != jNull:
			if iNull == nullsLast {
				return 1
			}
			return -1
		}
		c := values(i, j)
		if descending {
			return -c
		}
		return c
	}, nil
}

func orderedComparator[T constraints.Ordered](value func(int) T) rowComparator {
	return func(i, j int) int {
		return compareOrdered(value(i), value(j))
	}
}

// compareOrdered is cmp.Compare with NaN above every other value.
func compareOrdered[T constraints.Ordered](a, b T) int {
	aNaN, bNaN := a != a, b != b //nolint:gocritic // NaN check for any ordered type
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func releaseArrays(arrs []arrow.Array) {
	for _, arr := range arrs {
		if arr != nil {
			arr.Release()
		}
	}
}
