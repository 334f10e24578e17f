// Package expr provides computed expressions used as sort keys.
package expr

import (
	"fmt"
)

// ExprType represents the type of expression
type ExprType int

const (
	ExprColumn ExprType = iota
	ExprLiteral
	ExprBinary
	ExprUnary
)

// Expr represents an expression evaluated against the columns of one table
type Expr interface {
	Type() ExprType
	String() string
}

// ColumnExpr represents a column reference
type ColumnExpr struct {
	name string
}

func (c *ColumnExpr) Type() ExprType {
	return ExprColumn
}

func (c *ColumnExpr) String() string {
	return fmt.Sprintf("col(%s)", c.name)
}

func (c *ColumnExpr) Name() string {
	return c.name
}

// LiteralExpr represents a literal value
type LiteralExpr struct {
	value any
}

func (l *LiteralExpr) Type() ExprType {
	return ExprLiteral
}

func (l *LiteralExpr) String() string {
	return fmt.Sprintf("lit(%v)", l.value)
}

func (l *LiteralExpr) Value() any {
	return l.value
}

// BinaryOp represents binary operations
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// BinaryExpr represents a binary operation
type BinaryExpr struct {
	left  Expr
	op    BinaryOp
	right Expr
}

func (b *BinaryExpr) Type() ExprType {
	return ExprBinary
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.left.String(), b.op, b.right.String())
}

func (b *BinaryExpr) Left() Expr {
	return b.left
}

func (b *BinaryExpr) Op() BinaryOp {
	return b.op
}

func (b *BinaryExpr) Right() Expr {
	return b.right
}

// UnaryOp represents unary operations
type UnaryOp int

const (
	OpNeg UnaryOp = iota
)

// UnaryExpr represents a unary operation
type UnaryExpr struct {
	op      UnaryOp
	operand Expr
}

func (u *UnaryExpr) Type() ExprType {
	return ExprUnary
}

func (u *UnaryExpr) String() string {
	return fmt.Sprintf("(-%s)", u.operand.String())
}

func (u *UnaryExpr) Op() UnaryOp {
	return u.op
}

func (u *UnaryExpr) Operand() Expr {
	return u.operand
}

// Col creates a column expression
func Col(name string) *ColumnExpr {
	return &ColumnExpr{name: name}
}

// Lit creates a literal expression. Supported values are int, int64,
// float64, string and bool.
func Lit(value any) *LiteralExpr {
	return &LiteralExpr{value: value}
}

// Add creates an addition expression
func Add(left, right Expr) *BinaryExpr {
	return &BinaryExpr{left: left, op: OpAdd, right: right}
}

// Sub creates a subtraction expression
func Sub(left, right Expr) *BinaryExpr {
	return &BinaryExpr{left: left, op: OpSub, right: right}
}

// Mul creates a multiplication expression
func Mul(left, right Expr) *BinaryExpr {
	return &BinaryExpr{left: left, op: OpMul, right: right}
}

// Div creates a division expression. Division always yields float64.
func Div(left, right Expr) *BinaryExpr {
	return &BinaryExpr{left: left, op: OpDiv, right: right}
}

// Neg creates a negation expression
func Neg(operand Expr) *UnaryExpr {
	return &UnaryExpr{op: OpNeg, operand: operand}
}

// Column expression methods for chaining

// Add creates an addition expression
func (c *ColumnExpr) Add(other Expr) *BinaryExpr {
	return Add(c, other)
}

// Sub creates a subtraction expression
func (c *ColumnExpr) Sub(other Expr) *BinaryExpr {
	return Sub(c, other)
}

// Mul creates a multiplication expression
func (c *ColumnExpr) Mul(other Expr) *BinaryExpr {
	return Mul(c, other)
}

// Div creates a division expression
func (c *ColumnExpr) Div(other Expr) *BinaryExpr {
	return Div(c, other)
}

// Binary expression methods for chaining

func (b *BinaryExpr) Add(other Expr) *BinaryExpr {
	return Add(b, other)
}

func (b *BinaryExpr) Sub(other Expr) *BinaryExpr {
	return Sub(b, other)
}

func (b *BinaryExpr) Mul(other Expr) *BinaryExpr {
	return Mul(b, other)
}

func (b *BinaryExpr) Div(other Expr) *BinaryExpr {
	return Div(b, other)
}

// Columns returns the column names referenced by e in first-seen order.
func Columns(e Expr) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(Expr)
	walk = func(e Expr) {
		switch ex := e.(type) {
		case *ColumnExpr:
			if !seen[ex.name] {
				seen[ex.name] = true
				names = append(names, ex.name)
			}
		case *BinaryExpr:
			walk(ex.left)
			walk(ex.right)
		case *UnaryExpr:
			walk(ex.operand)
		}
	}
	walk(e)
	return names
}
