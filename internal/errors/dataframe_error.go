// Package errors provides standardized error types for table operations.
// Every error returned across the public API is a *DataFrameError carrying the
// operation name, the column involved (if any) and a Kind that callers can
// branch on with errors.As.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a DataFrameError.
type Kind int

const (
	// KindInternal is an unexpected failure inside the engine.
	KindInternal Kind = iota
	// KindSchema is a reference to a column that does not exist.
	KindSchema
	// KindValidation is an input that fails a structural check.
	KindValidation
	// KindParameter is a distribution parameter outside its domain.
	KindParameter
	// KindConcat is a failure to combine per-group results.
	KindConcat
)

func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema"
	case KindValidation:
		return "validation"
	case KindParameter:
		return "parameter"
	case KindConcat:
		return "concat"
	default:
		return "internal"
	}
}

// DataFrameError represents standardized errors across all table operations
type DataFrameError struct {
	Op      string // Operation name (e.g., "Sort", "PivotWider", "normal")
	Column  string // Column or parameter name if applicable
	Message string // Human-readable error description
	Kind    Kind
	Cause   error // Underlying error cause
}

// Error implements the error interface
func (e *DataFrameError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Column != "" {
		return fmt.Sprintf("%s operation failed on column '%s': %s", e.Op, e.Column, msg)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Op, msg)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *DataFrameError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is().
// An empty Op or Column on the target matches any value, so sentinels such as
// ErrExpectedPositiveIntegers match regardless of which operation raised them.
func (e *DataFrameError) Is(target error) bool {
	df, ok := target.(*DataFrameError)
	if !ok {
		return false
	}
	if df.Op != "" && df.Op != e.Op {
		return false
	}
	if df.Column != "" && df.Column != e.Column {
		return false
	}
	return e.Kind == df.Kind && e.Message == df.Message
}

// Common error constructors for consistent error creation

// NewColumnNotFoundError creates an error for operations on non-existent columns
func NewColumnNotFoundError(op, column string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: msgColumnNotFound,
		Kind:    KindSchema,
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: message,
		Kind:    KindValidation,
	}
}

// NewUnsupportedTypeError creates an error for unsupported data types
func NewUnsupportedTypeError(op, typeName string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: fmt.Sprintf("unsupported type: %s", typeName),
		Kind:    KindValidation,
	}
}

// NewValidationError creates an error for input validation failures
func NewValidationError(op, column, message string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: message,
		Kind:    KindValidation,
	}
}

// NewParameterError creates an error for a distribution parameter outside its domain.
func NewParameterError(family, param, message string) *DataFrameError {
	return &DataFrameError{
		Op:      family,
		Column:  param,
		Message: message,
		Kind:    KindParameter,
	}
}

// NewConcatError wraps the failure of combining one group's result.
func NewConcatError(op, message string, cause error) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: message,
		Kind:    KindConcat,
		Cause:   cause,
	}
}

// NewGroupError wraps the failure of one group's transform. The Kind of a
// wrapped DataFrameError carries over so callers can branch on it directly.
func NewGroupError(op, group string, cause error) *DataFrameError {
	kind := KindInternal
	var dfErr *DataFrameError
	if stderrors.As(cause, &dfErr) {
		kind = dfErr.Kind
	}
	return &DataFrameError{
		Op:      op,
		Message: fmt.Sprintf("group %s failed", group),
		Kind:    kind,
		Cause:   cause,
	}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: "internal error occurred",
		Kind:    KindInternal,
		Cause:   cause,
	}
}

const (
	msgColumnNotFound     = "column does not exist"
	msgPositiveIntegers   = "expects a series of positive integers"
	msgSchemaMismatch     = "schemas cannot be vertically combined"
	msgIndexOutOfBounds   = "index out of bounds"
	msgPopulationTooSmall = "cannot take a larger sample than the total population without replacement"
	msgEmptyPopulation    = "cannot sample with replacement from an empty population"
)

// Predefined error variables for common cases
var (
	// ErrColumnNotFound matches any column-not-found error.
	ErrColumnNotFound = &DataFrameError{Message: msgColumnNotFound, Kind: KindSchema}

	// ErrExpectedPositiveIntegers is returned when an index series cannot be
	// cast to non-negative integers.
	ErrExpectedPositiveIntegers = &DataFrameError{Message: msgPositiveIntegers, Kind: KindValidation}

	// ErrSchemaMismatch indicates tables whose columns differ in name, order or type.
	ErrSchemaMismatch = &DataFrameError{Message: msgSchemaMismatch, Kind: KindConcat}

	// ErrInvalidIndex indicates out-of-bounds index access
	ErrInvalidIndex = &DataFrameError{Message: msgIndexOutOfBounds, Kind: KindValidation}

	// ErrPopulationTooSmall is returned by sampling without replacement when
	// more rows are requested than exist.
	ErrPopulationTooSmall = &DataFrameError{Message: msgPopulationTooSmall, Kind: KindValidation}

	// ErrEmptyPopulation is returned by sampling with replacement from zero rows.
	ErrEmptyPopulation = &DataFrameError{Message: msgEmptyPopulation, Kind: KindValidation}
)

// NewExpectedPositiveIntegersError reports a failed strict index cast for op.
func NewExpectedPositiveIntegersError(op string, cause error) *DataFrameError {
	return &DataFrameError{Op: op, Message: msgPositiveIntegers, Kind: KindValidation, Cause: cause}
}

// NewSchemaMismatchError reports two tables that cannot be stacked.
func NewSchemaMismatchError(op, detail string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: msgSchemaMismatch,
		Kind:    KindConcat,
		Cause:   fmt.Errorf("%s", detail),
	}
}

// NewIndexOutOfBoundsError reports a row index outside [0, rows).
func NewIndexOutOfBoundsError(op string, index, rows int) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: msgIndexOutOfBounds,
		Kind:    KindValidation,
		Cause:   fmt.Errorf("index %d out of bounds [0, %d)", index, rows),
	}
}

// NewPopulationTooSmallError reports a sample larger than its population.
func NewPopulationTooSmallError(op string, n, rows int) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: msgPopulationTooSmall,
		Kind:    KindValidation,
		Cause:   fmt.Errorf("requested %d rows from %d", n, rows),
	}
}

// NewEmptyPopulationError reports a draw with replacement from zero rows.
func NewEmptyPopulationError(op string, n int) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: msgEmptyPopulation,
		Kind:    KindValidation,
		Cause:   fmt.Errorf("requested %d rows from 0", n),
	}
}
