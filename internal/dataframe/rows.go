package dataframe

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/paveg/tabula/internal/errors"
)

// Take returns the rows at the given positions, in the given order. With
// groups the positions are relative to each group's own rows. A position
// outside the (group's) table is a validation error.
func (df *DataFrame) Take(indices []int, groups ...string) (*DataFrame, error) {
	return Apply(df, groups, func(sub *DataFrame) (*DataFrame, error) {
		return sub.takeInts(indices, "Take")
	})
}

// TakeSeries is Take with positions held in a series. The series must cast
// strictly to uint32: negative, fractional or unparsable values fail with
// ErrExpectedPositiveIntegers. Null positions yield null rows.
func (df *DataFrame) TakeSeries(idx ISeries, groups ...string) (*DataFrame, error) {
	arr := idx.Array()
	defer arr.Release()

	casted, err := compute.CastArray(context.Background(), arr,
		compute.SafeCastOptions(arrow.PrimitiveTypes.Uint32))
	if err != nil {
		return nil, errors.NewExpectedPositiveIntegersError("TakeSeries", err)
	}
	defer casted.Release()

	positions, ok := casted.(*array.Uint32)
	if !ok {
		return nil, errors.NewInternalError("TakeSeries",
			fmt.Errorf("cast produced %s", casted.DataType()))
	}

	return Apply(df, groups, func(sub *DataFrame) (*DataFrame, error) {
		rows := sub.Len()
		for i := 0; i < positions.Len(); i++ {
			if positions.IsValid(i) && int(positions.Value(i)) >= rows {
				return nil, errors.NewIndexOutOfBoundsError("TakeSeries", int(positions.Value(i)), rows)
			}
		}
		return sub.takeArray(positions)
	})
}

// SliceRows returns length rows starting at offset. A negative offset counts
// back from the end. The window is clamped to the table, so it never fails
// on range. With groups the window applies within each group.
func (df *DataFrame) SliceRows(offset int64, length int, groups ...string) (*DataFrame, error) {
	if length < 0 {
		return nil, errors.NewInvalidInputError("SliceRows", fmt.Sprintf("length must be non-negative, got %d", length))
	}

	return Apply(df, groups, func(sub *DataFrame) (*DataFrame, error) {
		start, end := sliceOffsets(offset, length, sub.Len())
		return sub.Slice(start, end), nil
	})
}

// sliceOffsets resolves an (offset, length) window against rows.
func sliceOffsets(offset int64, length, rows int) (start, end int) {
	n := int64(rows)
	first := offset
	if first < 0 {
		first += n
	}
	if first > n {
		first = n
	}
	last := first + int64(length)
	if first >= 0 && int64(length) > n-first {
		last = n
	}

	return int(clamp64(first, 0, n)), int(clamp64(last, 0, n))
}

func clamp64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
