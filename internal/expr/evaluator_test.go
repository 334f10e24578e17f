package expr

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestColumns(t *testing.T, mem memory.Allocator) map[string]arrow.Array {
	t.Helper()

	intBuilder := array.NewInt64Builder(mem)
	defer intBuilder.Release()
	intBuilder.AppendValues([]int64{10, 20, 30, 40}, []bool{true, true, false, true})
	intArray := intBuilder.NewArray()

	floatBuilder := array.NewFloat64Builder(mem)
	defer floatBuilder.Release()
	floatBuilder.AppendValues([]float64{1.5, 2.5, 3.5, 4.5}, nil)
	floatArray := floatBuilder.NewArray()

	stringBuilder := array.NewStringBuilder(mem)
	defer stringBuilder.Release()
	stringBuilder.AppendValues([]string{"a", "b", "c", "d"}, nil)
	stringArray := stringBuilder.NewArray()

	columns := map[string]arrow.Array{
		"age":   intArray,
		"score": floatArray,
		"name":  stringArray,
	}
	t.Cleanup(func() {
		for _, arr := range columns {
			arr.Release()
		}
	})
	return columns
}

func TestNewEvaluator(t *testing.T) {
	mem := memory.NewGoAllocator()

	eval := NewEvaluator(mem)
	assert.Equal(t, mem, eval.mem)

	eval2 := NewEvaluator(nil)
	assert.NotNil(t, eval2.mem)
}

func TestEvaluateColumn(t *testing.T) {
	mem := memory.NewGoAllocator()
	eval := NewEvaluator(mem)
	columns := createTestColumns(t, mem)

	result, err := eval.Evaluate(Col("name"), columns, 4)
	require.NoError(t, err)
	defer result.Release()

	assert.Equal(t, arrow.BinaryTypes.String, result.DataType())
	assert.Equal(t, "c", result.(*array.String).Value(2))

	_, err = eval.Evaluate(Col("missing"), columns, 4)
	assert.ErrorContains(t, err, "column not found: missing")
}

func TestEvaluateLiteralBroadcasts(t *testing.T) {
	eval := NewEvaluator(nil)

	result, err := eval.Evaluate(Lit(7), nil, 3)
	require.NoError(t, err)
	defer result.Release()

	ints := result.(*array.Int64)
	assert.Equal(t, []int64{7, 7, 7}, ints.Int64Values())

	_, err = eval.Evaluate(Lit([]int{1}), nil, 3)
	assert.Error(t, err)
}

func TestEvaluateArithmetic(t *testing.T) {
	mem := memory.NewGoAllocator()
	eval := NewEvaluator(mem)
	columns := createTestColumns(t, mem)

	t.Run("integer stays integer", func(t *testing.T) {
		result, err := eval.Evaluate(Col("age").Mul(Lit(2)).Sub(Lit(1)), columns, 4)
		require.NoError(t, err)
		defer result.Release()

		ints := result.(*array.Int64)
		assert.Equal(t, int64(19), ints.Value(0))
		assert.Equal(t, int64(39), ints.Value(1))
		assert.True(t, ints.IsNull(2), "nulls propagate")
		assert.Equal(t, int64(79), ints.Value(3))
	})

	t.Run("mixed promotes to float", func(t *testing.T) {
		result, err := eval.Evaluate(Add(Col("age"), Col("score")), columns, 4)
		require.NoError(t, err)
		defer result.Release()

		floats := result.(*array.Float64)
		assert.InDelta(t, 11.5, floats.Value(0), 1e-12)
		assert.True(t, floats.IsNull(2))
	})

	t.Run("division yields float", func(t *testing.T) {
		result, err := eval.Evaluate(Div(Col("age"), Lit(0)), columns, 4)
		require.NoError(t, err)
		defer result.Release()

		floats := result.(*array.Float64)
		assert.True(t, math.IsInf(floats.Value(0), 1))
	})

	t.Run("strings rejected", func(t *testing.T) {
		_, err := eval.Evaluate(Add(Col("name"), Lit(1)), columns, 4)
		assert.ErrorContains(t, err, "needs numeric operands")
	})
}

func TestEvaluateNeg(t *testing.T) {
	mem := memory.NewGoAllocator()
	eval := NewEvaluator(mem)
	columns := createTestColumns(t, mem)

	result, err := eval.Evaluate(Neg(Col("score")), columns, 4)
	require.NoError(t, err)
	defer result.Release()

	assert.Equal(t, []float64{-1.5, -2.5, -3.5, -4.5}, result.(*array.Float64).Float64Values())
}

func TestExprStringAndColumns(t *testing.T) {
	e := Neg(Col("a").Add(Col("b")).Mul(Col("a")))

	assert.Equal(t, "(-((col(a) + col(b)) * col(a)))", e.String())
	assert.Equal(t, []string{"a", "b"}, Columns(e))
	assert.Equal(t, ExprUnary, e.Type())
}
