// Package validation provides input validation utilities for table operations
// and distribution parameters. Validators are small values composed with
// CompoundValidator; the first failure wins.
package validation

import (
	"fmt"
	"math"

	"github.com/paveg/tabula/internal/errors"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// ColumnValidator validates column existence and properties
type ColumnValidator struct {
	df      ColumnProvider
	columns []string
	op      string
}

// ColumnProvider interface for types that provide column information
type ColumnProvider interface {
	HasColumn(name string) bool
	Columns() []string
	Len() int
	Width() int
}

// NewColumnValidator creates a validator for column operations
func NewColumnValidator(df ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{
		df:      df,
		columns: columns,
		op:      op,
	}
}

// Validate checks if all columns exist in the DataFrame
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.df.HasColumn(column) {
			return errors.NewColumnNotFoundError(v.op, column)
		}
	}
	return nil
}

// LengthValidator validates array length consistency
type LengthValidator struct {
	expected int
	actual   int
	op       string
	context  string
}

// NewLengthValidator creates a validator for length consistency
func NewLengthValidator(expected, actual int, op, context string) *LengthValidator {
	return &LengthValidator{
		expected: expected,
		actual:   actual,
		op:       op,
		context:  context,
	}
}

// Validate checks if lengths match
func (v *LengthValidator) Validate() error {
	if v.expected != v.actual {
		message := fmt.Sprintf("%s: expected length %d, got %d", v.context, v.expected, v.actual)
		return errors.NewValidationError(v.op, "", message)
	}
	return nil
}

// IndexValidator validates index bounds
type IndexValidator struct {
	index int
	max   int
	op    string
}

// NewIndexValidator creates a validator for index operations
func NewIndexValidator(index, maxIndex int, op string) *IndexValidator {
	return &IndexValidator{
		index: index,
		max:   maxIndex,
		op:    op,
	}
}

// Validate checks if index is within bounds
func (v *IndexValidator) Validate() error {
	if v.index < 0 || v.index >= v.max {
		return errors.NewIndexOutOfBoundsError(v.op, v.index, v.max)
	}
	return nil
}

// ParameterValidator checks one numeric distribution parameter.
type ParameterValidator struct {
	family string
	name   string
	value  float64
	check  func(float64) bool
	rule   string
}

// Validate reports a parameter error when the check fails.
func (v *ParameterValidator) Validate() error {
	if v.check(v.value) {
		return nil
	}
	return errors.NewParameterError(v.family, v.name, fmt.Sprintf("must be %s, got %v", v.rule, v.value))
}

func newParameter(family, name string, value float64, rule string, check func(float64) bool) *ParameterValidator {
	return &ParameterValidator{family: family, name: name, value: value, check: check, rule: rule}
}

// Finite requires a value that is neither NaN nor infinite.
func Finite(family, name string, value float64) *ParameterValidator {
	return newParameter(family, name, value, "finite", isFinite)
}

// NotNaN requires a value that is not NaN.
func NotNaN(family, name string, value float64) *ParameterValidator {
	return newParameter(family, name, value, "a number", func(x float64) bool { return !math.IsNaN(x) })
}

// Positive requires a finite value strictly greater than zero.
func Positive(family, name string, value float64) *ParameterValidator {
	return newParameter(family, name, value, "finite and positive", func(x float64) bool {
		return isFinite(x) && x > 0
	})
}

// PositiveInteger requires a whole number greater than zero.
func PositiveInteger(family, name string, value float64) *ParameterValidator {
	return newParameter(family, name, value, "a positive integer", func(x float64) bool {
		return isFinite(x) && x > 0 && x == math.Trunc(x)
	})
}

// Probability requires a value in the half-open interval (0, 1].
func Probability(family, name string, value float64) *ParameterValidator {
	return newParameter(family, name, value, "in (0, 1]", func(x float64) bool {
		return x > 0 && x <= 1
	})
}

// Less requires lo < hi, reported against the hi parameter.
func Less(family, loName, hiName string, lo, hi float64) Validator {
	return validatorFunc(func() error {
		if lo < hi {
			return nil
		}
		return errors.NewParameterError(family, hiName, fmt.Sprintf("must be greater than %s (%v), got %v", loName, lo, hi))
	})
}

// Between requires lo <= value <= hi.
func Between(family, name string, value, lo, hi float64) *ParameterValidator {
	return newParameter(family, name, value, fmt.Sprintf("in [%v, %v]", lo, hi), func(x float64) bool {
		return x >= lo && x <= hi
	})
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

type validatorFunc func() error

func (f validatorFunc) Validate() error { return f() }

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Convenience validation functions

// ValidateColumns is a convenience function for column validation
func ValidateColumns(df ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(df, op, columns...).Validate()
}

// ValidateLength is a convenience function for length validation
func ValidateLength(expected, actual int, op, context string) error {
	return NewLengthValidator(expected, actual, op, context).Validate()
}

// ValidateIndex is a convenience function for index validation
func ValidateIndex(index, maxIndex int, op string) error {
	return NewIndexValidator(index, maxIndex, op).Validate()
}

// ValidateAll runs validators in order and returns the first failure.
func ValidateAll(validators ...Validator) error {
	return NewCompoundValidator(validators...).Validate()
}
