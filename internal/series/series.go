// Package series provides data structures for column operations
package series

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Series represents a typed data column with Apache Arrow backend
type Series[T any] struct {
	name  string
	array arrow.Array
}

// New creates a new Series from a slice of values
func New[T any](name string, values []T, mem memory.Allocator) *Series[T] {
	return NewWithValidity(name, values, nil, mem)
}

// NewWithValidity creates a Series where valid[i] == false marks row i as null.
// A nil valid slice means every value is present.
func NewWithValidity[T any](name string, values []T, valid []bool, mem memory.Allocator) *Series[T] {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	if valid != nil && len(valid) != len(values) {
		panic(fmt.Sprintf("validity length %d does not match values length %d", len(valid), len(values)))
	}

	var arr arrow.Array

	// Use type switching to create appropriate Arrow array
	switch v := any(values).(type) {
	case []string:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []int32:
		builder := array.NewInt32Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []uint64:
		builder := array.NewUint64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []uint32:
		builder := array.NewUint32Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []float32:
		builder := array.NewFloat32Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	default:
		panic(fmt.Sprintf("unsupported type: %T", values))
	}

	return &Series[T]{
		name:  name,
		array: arr,
	}
}

// Wrap takes ownership of arr without copying it. T should match the array's
// element type for Values and Value to be meaningful.
func Wrap[T any](name string, arr arrow.Array) *Series[T] {
	return &Series[T]{name: name, array: arr}
}

// Name returns the column name
func (s *Series[T]) Name() string {
	return s.name
}

// Len returns the length of the series
func (s *Series[T]) Len() int {
	return s.array.Len()
}

// NullCount returns the number of null rows
func (s *Series[T]) NullCount() int {
	return s.array.NullN()
}

// Rename returns a series with a new name sharing the same Arrow data.
// Both series must be released independently.
func (s *Series[T]) Rename(name string) *Series[T] {
	s.array.Retain()
	return &Series[T]{name: name, array: s.array}
}

// Values returns the data as a Go slice. Null rows hold the zero value.
func (s *Series[T]) Values() []T {
	result := make([]T, s.array.Len())

	switch arr := s.array.(type) {
	case *array.String:
		if values, ok := any(result).([]string); ok {
			for i := 0; i < arr.Len(); i++ {
				if arr.IsValid(i) {
					values[i] = arr.Value(i)
				}
			}
		}
	case *array.Int64:
		copyValues[T, int64](result, arr)
	case *array.Int32:
		copyValues[T, int32](result, arr)
	case *array.Uint64:
		copyValues[T, uint64](result, arr)
	case *array.Uint32:
		copyValues[T, uint32](result, arr)
	case *array.Float64:
		copyValues[T, float64](result, arr)
	case *array.Float32:
		copyValues[T, float32](result, arr)
	case *array.Boolean:
		if values, ok := any(result).([]bool); ok {
			for i := 0; i < arr.Len(); i++ {
				if arr.IsValid(i) {
					values[i] = arr.Value(i)
				}
			}
		}
	default:
		panic(fmt.Sprintf("unsupported array type: %T", arr))
	}

	return result
}

type primitiveArray[E any] interface {
	arrow.Array
	Value(i int) E
}

func copyValues[T, E any](dst []T, arr primitiveArray[E]) {
	values, ok := any(dst).([]E)
	if !ok {
		return
	}
	for i := 0; i < arr.Len(); i++ {
		if arr.IsValid(i) {
			values[i] = arr.Value(i)
		}
	}
}

// Value returns the value at the given index
func (s *Series[T]) Value(index int) T {
	var result T
	if index < 0 || index >= s.array.Len() || s.array.IsNull(index) {
		return result
	}

	switch arr := s.array.(type) {
	case *array.String:
		if v, ok := any(&result).(*string); ok {
			*v = arr.Value(index)
		}
	case *array.Int64:
		if v, ok := any(&result).(*int64); ok {
			*v = arr.Value(index)
		}
	case *array.Int32:
		if v, ok := any(&result).(*int32); ok {
			*v = arr.Value(index)
		}
	case *array.Uint64:
		if v, ok := any(&result).(*uint64); ok {
			*v = arr.Value(index)
		}
	case *array.Uint32:
		if v, ok := any(&result).(*uint32); ok {
			*v = arr.Value(index)
		}
	case *array.Float64:
		if v, ok := any(&result).(*float64); ok {
			*v = arr.Value(index)
		}
	case *array.Float32:
		if v, ok := any(&result).(*float32); ok {
			*v = arr.Value(index)
		}
	case *array.Boolean:
		if v, ok := any(&result).(*bool); ok {
			*v = arr.Value(index)
		}
	}

	return result
}

// DataType returns the Arrow data type
func (s *Series[T]) DataType() arrow.DataType {
	return s.array.DataType()
}

// IsNull checks if the value at index is null
func (s *Series[T]) IsNull(index int) bool {
	return s.array.IsNull(index)
}

// GetAsString renders the value at index; null renders as "null".
func (s *Series[T]) GetAsString(index int) string {
	return FormatValue(s.array, index)
}

// String returns a string representation of the series
func (s *Series[T]) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d)",
		reflect.TypeOf(new(T)).Elem().Name(),
		s.name,
		s.Len())
}

// Array returns the underlying Arrow array (retains a reference)
func (s *Series[T]) Array() arrow.Array {
	if s.array != nil {
		s.array.Retain()
		return s.array
	}
	return nil
}

// Release releases the underlying Arrow memory
func (s *Series[T]) Release() {
	if s.array != nil {
		s.array.Release()
	}
}

// FormatValue renders one cell of arr. Floats that hold whole numbers keep a
// trailing ".0" so 1 and 1.0 never render alike across column types.
func FormatValue(arr arrow.Array, index int) string {
	if arr.IsNull(index) {
		return "null"
	}
	switch a := arr.(type) {
	case *array.String:
		return a.Value(index)
	case *array.Int64:
		return strconv.FormatInt(a.Value(index), 10)
	case *array.Int32:
		return strconv.FormatInt(int64(a.Value(index)), 10)
	case *array.Uint64:
		return strconv.FormatUint(a.Value(index), 10)
	case *array.Uint32:
		return strconv.FormatUint(uint64(a.Value(index)), 10)
	case *array.Float64:
		return formatFloat(a.Value(index), 64)
	case *array.Float32:
		return formatFloat(float64(a.Value(index)), 32)
	case *array.Boolean:
		return strconv.FormatBool(a.Value(index))
	default:
		return a.ValueStr(index)
	}
}

func formatFloat(v float64, bits int) string {
	s := strconv.FormatFloat(v, 'f', -1, bits)
	for _, c := range s {
		if c == '.' || c == 'N' || c == 'I' {
			return s
		}
	}
	return s + ".0"
}
