package expr

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Evaluator evaluates expressions against Arrow arrays
type Evaluator struct {
	mem memory.Allocator
}

// NewEvaluator creates a new expression evaluator
func NewEvaluator(mem memory.Allocator) *Evaluator {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &Evaluator{mem: mem}
}

// Evaluate evaluates expr over columns, all of which hold length rows.
// The caller owns the returned array.
func (e *Evaluator) Evaluate(expr Expr, columns map[string]arrow.Array, length int) (arrow.Array, error) {
	switch ex := expr.(type) {
	case *ColumnExpr:
		return e.evaluateColumn(ex, columns)
	case *LiteralExpr:
		return e.evaluateLiteral(ex, length)
	case *BinaryExpr:
		return e.evaluateBinary(ex, columns, length)
	case *UnaryExpr:
		return e.evaluateUnary(ex, columns, length)
	case nil:
		return nil, fmt.Errorf("nil expression")
	default:
		return nil, fmt.Errorf("unsupported expression type: %T", expr)
	}
}

func (e *Evaluator) evaluateColumn(expr *ColumnExpr, columns map[string]arrow.Array) (arrow.Array, error) {
	arr, exists := columns[expr.name]
	if !exists {
		return nil, fmt.Errorf("column not found: %s", expr.name)
	}
	arr.Retain()
	return arr, nil
}

func (e *Evaluator) evaluateLiteral(expr *LiteralExpr, length int) (arrow.Array, error) {
	switch v := expr.value.(type) {
	case int:
		return broadcast[int64](array.NewInt64Builder(e.mem), int64(v), length), nil
	case int64:
		return broadcast[int64](array.NewInt64Builder(e.mem), v, length), nil
	case float64:
		return broadcast[float64](array.NewFloat64Builder(e.mem), v, length), nil
	case string:
		return broadcast[string](array.NewStringBuilder(e.mem), v, length), nil
	case bool:
		return broadcast[bool](array.NewBooleanBuilder(e.mem), v, length), nil
	default:
		return nil, fmt.Errorf("unsupported literal type: %T", v)
	}
}

type appender[T any] interface {
	array.Builder
	Append(T)
}

func broadcast[T any](builder appender[T], value T, length int) arrow.Array {
	defer builder.Release()
	builder.Reserve(length)
	for i := 0; i < length; i++ {
		builder.Append(value)
	}
	return builder.NewArray()
}

func (e *Evaluator) evaluateBinary(expr *BinaryExpr, columns map[string]arrow.Array, length int) (arrow.Array, error) {
	left, err := e.Evaluate(expr.left, columns, length)
	if err != nil {
		return nil, fmt.Errorf("evaluating left operand: %w", err)
	}
	defer left.Release()

	right, err := e.Evaluate(expr.right, columns, length)
	if err != nil {
		return nil, fmt.Errorf("evaluating right operand: %w", err)
	}
	defer right.Release()

	if left.Len() != right.Len() {
		return nil, fmt.Errorf("operand lengths differ: %d and %d", left.Len(), right.Len())
	}

	return e.evaluateArithmetic(left, right, expr.op)
}

func (e *Evaluator) evaluateArithmetic(left, right arrow.Array, op BinaryOp) (arrow.Array, error) {
	if !isNumeric(left) || !isNumeric(right) {
		return nil, fmt.Errorf("arithmetic %s needs numeric operands, got %s and %s",
			op, left.DataType(), right.DataType())
	}

	if op != OpDiv && isInteger(left) && isInteger(right) {
		return e.evaluateInt64Arithmetic(left, right, op), nil
	}
	return e.evaluateFloat64Arithmetic(left, right, op), nil
}

func (e *Evaluator) evaluateInt64Arithmetic(left, right arrow.Array, op BinaryOp) arrow.Array {
	builder := array.NewInt64Builder(e.mem)
	defer builder.Release()
	builder.Reserve(left.Len())

	for i := 0; i < left.Len(); i++ {
		if left.IsNull(i) || right.IsNull(i) {
			builder.AppendNull()
			continue
		}
		l, r := int64At(left, i), int64At(right, i)
		switch op {
		case OpAdd:
			builder.Append(l + r)
		case OpSub:
			builder.Append(l - r)
		case OpMul:
			builder.Append(l * r)
		default:
			builder.AppendNull()
		}
	}

	return builder.NewArray()
}

func (e *Evaluator) evaluateFloat64Arithmetic(left, right arrow.Array, op BinaryOp) arrow.Array {
	builder := array.NewFloat64Builder(e.mem)
	defer builder.Release()
	builder.Reserve(left.Len())

	for i := 0; i < left.Len(); i++ {
		if left.IsNull(i) || right.IsNull(i) {
			builder.AppendNull()
			continue
		}
		l, r := float64At(left, i), float64At(right, i)
		switch op {
		case OpAdd:
			builder.Append(l + r)
		case OpSub:
			builder.Append(l - r)
		case OpMul:
			builder.Append(l * r)
		case OpDiv:
			builder.Append(l / r)
		}
	}

	return builder.NewArray()
}

func (e *Evaluator) evaluateUnary(expr *UnaryExpr, columns map[string]arrow.Array, length int) (arrow.Array, error) {
	operand, err := e.Evaluate(expr.operand, columns, length)
	if err != nil {
		return nil, err
	}
	defer operand.Release()

	if !isNumeric(operand) {
		return nil, fmt.Errorf("negation needs a numeric operand, got %s", operand.DataType())
	}

	if isInteger(operand) {
		builder := array.NewInt64Builder(e.mem)
		defer builder.Release()
		for i := 0; i < operand.Len(); i++ {
			if operand.IsNull(i) {
				builder.AppendNull()
				continue
			}
			builder.Append(-int64At(operand, i))
		}
		return builder.NewArray(), nil
	}

	builder := array.NewFloat64Builder(e.mem)
	defer builder.Release()
	for i := 0; i < operand.Len(); i++ {
		if operand.IsNull(i) {
			builder.AppendNull()
			continue
		}
		builder.Append(-float64At(operand, i))
	}
	return builder.NewArray(), nil
}

func isNumeric(arr arrow.Array) bool {
	return isInteger(arr) || arrow.IsFloating(arr.DataType().ID())
}

func isInteger(arr arrow.Array) bool {
	return arrow.IsInteger(arr.DataType().ID())
}

func int64At(arr arrow.Array, i int) int64 {
	switch a := arr.(type) {
	case *array.Int64:
		return a.Value(i)
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Uint64:
		return int64(a.Value(i))
	case *array.Uint32:
		return int64(a.Value(i))
	case *array.Uint16:
		return int64(a.Value(i))
	case *array.Uint8:
		return int64(a.Value(i))
	default:
		return 0
	}
}

func float64At(arr arrow.Array, i int) float64 {
	switch a := arr.(type) {
	case *array.Float64:
		return a.Value(i)
	case *array.Float32:
		return float64(a.Value(i))
	default:
		return float64(int64At(arr, i))
	}
}
