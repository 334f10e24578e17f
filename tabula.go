// Package tabula provides grouped transforms, wide reshaping and seeded
// sampling over Arrow-backed tables.
// This package is the sole public API for the library.
package tabula

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabula/internal/config"
	"github.com/paveg/tabula/internal/dataframe"
	"github.com/paveg/tabula/internal/distribution"
	"github.com/paveg/tabula/internal/errors"
	"github.com/paveg/tabula/internal/expr"
	"github.com/paveg/tabula/internal/logging"
	"github.com/paveg/tabula/internal/series"
)

// ISeries provides a type-erased interface for Series of any type
type ISeries = dataframe.ISeries

// SampleOptions controls row sampling. See DataFrame.SampleN.
type SampleOptions = dataframe.SampleOptions

// SortOptions controls row ordering. See DataFrame.SortBy.
type SortOptions = dataframe.SortOptions

// GroupKey is the tuple of grouping values shared by one group's rows.
type GroupKey = dataframe.GroupKey

// Partition is a stable grouping of row indices.
type Partition = dataframe.Partition

// Distribution is a validated univariate distribution.
type Distribution = distribution.Distribution

// Config holds library-wide settings.
type Config = config.Config

// Error is the error type returned by every operation.
type Error = errors.DataFrameError

// Sentinel errors for use with errors.Is.
var (
	ErrColumnNotFound           = errors.ErrColumnNotFound
	ErrExpectedPositiveIntegers = errors.ErrExpectedPositiveIntegers
	ErrSchemaMismatch           = errors.ErrSchemaMismatch
	ErrInvalidIndex             = errors.ErrInvalidIndex
	ErrPopulationTooSmall       = errors.ErrPopulationTooSmall
	ErrEmptyPopulation          = errors.ErrEmptyPopulation
)

// Error kinds, for branching on Error.Kind.
const (
	KindInternal   = errors.KindInternal
	KindSchema     = errors.KindSchema
	KindValidation = errors.KindValidation
	KindParameter  = errors.KindParameter
	KindConcat     = errors.KindConcat
)

// DataFrame is the public type for a DataFrame.
// It wraps the internal dataframe.DataFrame to hide implementation details.
type DataFrame struct {
	df *dataframe.DataFrame
}

// Transform maps one table to another; see GroupedApply.
type Transform func(*DataFrame) (*DataFrame, error)

// Expression is a computed sort key.
type Expression struct {
	expr expr.Expr
}

// NewDataFrame creates a new DataFrame from ISeries and takes ownership of
// them. It panics on duplicate names or ragged columns.
func NewDataFrame(series ...ISeries) *DataFrame {
	return &DataFrame{df: dataframe.New(series...)}
}

// NewDataFrameChecked is NewDataFrame returning an error instead of
// panicking.
func NewDataFrameChecked(series ...ISeries) (*DataFrame, error) {
	df, err := dataframe.NewChecked(series...)
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: df}, nil
}

// NewSeries creates a new typed Series from values.
func NewSeries[T any](name string, values []T, mem memory.Allocator) ISeries {
	return series.New(name, values, mem)
}

// NewSeriesWithValidity creates a Series where valid[i] == false marks row i
// as null.
func NewSeriesWithValidity[T any](name string, values []T, valid []bool, mem memory.Allocator) ISeries {
	return series.NewWithValidity(name, values, valid, mem)
}

// SetConfig validates cfg and installs it as the library-wide configuration.
func SetConfig(cfg Config) error {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	config.SetGlobalConfig(cfg)
	logging.Configure(cfg.VerboseLogging)
	return nil
}

// GetConfig returns the library-wide configuration.
func GetConfig() Config {
	return config.GetGlobalConfig()
}

// GroupedApply runs fn over df. With no groups it returns fn(df); otherwise
// fn runs once per group and the results are stacked in the order each group
// first appears in df. fn must not retain its argument.
func GroupedApply(df *DataFrame, groups []string, fn Transform) (*DataFrame, error) {
	out, err := dataframe.Apply(df.df, groups, func(sub *dataframe.DataFrame) (*dataframe.DataFrame, error) {
		res, err := fn(&DataFrame{df: sub})
		if res == nil {
			return nil, err
		}
		return res.df, err
	})
	return wrap(out, err)
}

// Sample draws n values from the distribution registered under tag, with a
// fresh stream keyed by seed. The result has a "draw" column (0..n-1) and an
// "x" column.
func Sample(tag string, params []float64, seed, n uint64) (*DataFrame, error) {
	return wrap(distribution.SampleTag(tag, params, seed, n))
}

// SampleDistribution is Sample for an already constructed distribution.
func SampleDistribution(d Distribution, seed, n uint64) (*DataFrame, error) {
	return wrap(distribution.Sample(d, seed, n))
}

// Distributions lists the tags accepted by Sample.
func Distributions() []string {
	return distribution.Tags()
}

// DistributionParams returns the positional parameter names of tag.
func DistributionParams(tag string) ([]string, bool) {
	return distribution.Params(tag)
}

// ResolvePivotNames applies the column naming pass of PivotWider to names.
func ResolvePivotNames(names, ids []string, prefix *string) []string {
	return dataframe.ResolvePivotNames(names, ids, prefix)
}

// ConcatColumns joins DataFrames side by side, renaming a repeated column
// to <name>_<table index>.
func ConcatColumns(dfs ...*DataFrame) (*DataFrame, error) {
	internal := make([]*dataframe.DataFrame, len(dfs))
	for i, d := range dfs {
		internal[i] = d.df
	}
	return wrap(dataframe.ConcatColumns(internal...))
}

func wrap(df *dataframe.DataFrame, err error) (*DataFrame, error) {
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: df}, nil
}

// DataFrame methods

// Columns returns the column names in order.
func (d *DataFrame) Columns() []string {
	return d.df.Columns()
}

// Len returns the number of rows.
func (d *DataFrame) Len() int {
	return d.df.Len()
}

// Width returns the number of columns.
func (d *DataFrame) Width() int {
	return d.df.Width()
}

// Column returns the column with the given name.
func (d *DataFrame) Column(name string) (ISeries, bool) {
	return d.df.Column(name)
}

// HasColumn returns true if the DataFrame has the given column.
func (d *DataFrame) HasColumn(name string) bool {
	return d.df.HasColumn(name)
}

// Select returns a new DataFrame with only the specified columns.
func (d *DataFrame) Select(names ...string) *DataFrame {
	return &DataFrame{df: d.df.Select(names...)}
}

// Drop returns a new DataFrame without the specified columns.
func (d *DataFrame) Drop(names ...string) *DataFrame {
	return &DataFrame{df: d.df.Drop(names...)}
}

// Rename returns a new DataFrame with columns renamed through mapping.
func (d *DataFrame) Rename(mapping map[string]string) (*DataFrame, error) {
	return wrap(d.df.Rename(mapping))
}

// String returns a string representation of the DataFrame.
func (d *DataFrame) String() string {
	return d.df.String()
}

// Slice returns a new DataFrame with rows from start to end (exclusive).
func (d *DataFrame) Slice(start, end int) *DataFrame {
	return &DataFrame{df: d.df.Slice(start, end)}
}

// Concat stacks others under this DataFrame. Every table must have the same
// column names, order and types.
func (d *DataFrame) Concat(others ...*DataFrame) (*DataFrame, error) {
	internal := make([]*dataframe.DataFrame, len(others))
	for i, other := range others {
		internal[i] = other.df
	}
	return wrap(d.df.Concat(internal...))
}

// GroupBy returns the stable partition of rows by columns.
func (d *DataFrame) GroupBy(columns ...string) (*Partition, error) {
	return d.df.GroupByStable(columns...)
}

// GroupIndices returns the stable partition as one int64 index series per
// group.
func (d *DataFrame) GroupIndices(columns ...string) ([]ISeries, error) {
	return d.df.GroupIndices(columns...)
}

// Take returns the rows at positions, per group when groups are given.
func (d *DataFrame) Take(positions []int, groups ...string) (*DataFrame, error) {
	return wrap(d.df.Take(positions, groups...))
}

// TakeSeries is Take with positions held in a series of non-negative
// integers. Null positions yield null rows.
func (d *DataFrame) TakeSeries(positions ISeries, groups ...string) (*DataFrame, error) {
	return wrap(d.df.TakeSeries(positions, groups...))
}

// SampleN draws n rows, n from each group when groups are given. Every group
// draws with the same seed.
func (d *DataFrame) SampleN(n int, opts SampleOptions, groups ...string) (*DataFrame, error) {
	return wrap(d.df.SampleN(n, opts, groups...))
}

// SampleFrac draws floor(frac * rows) rows from the table or each group.
func (d *DataFrame) SampleFrac(frac float64, opts SampleOptions, groups ...string) (*DataFrame, error) {
	return wrap(d.df.SampleFrac(frac, opts, groups...))
}

// SortBy orders rows by columns, within each group when groups are given.
func (d *DataFrame) SortBy(columns []string, opts SortOptions, groups ...string) (*DataFrame, error) {
	return wrap(d.df.SortBy(columns, opts, groups...))
}

// SortWith orders rows by computed expressions.
func (d *DataFrame) SortWith(keys []Expression, opts SortOptions, groups ...string) (*DataFrame, error) {
	exprs := make([]expr.Expr, len(keys))
	for i, k := range keys {
		exprs[i] = k.expr
	}
	return wrap(d.df.SortWith(exprs, opts, groups...))
}

// SliceRows returns length rows from offset, counted from the end when
// negative, within each group when groups are given.
func (d *DataFrame) SliceRows(offset int64, length int, groups ...string) (*DataFrame, error) {
	return wrap(d.df.SliceRows(offset, length, groups...))
}

// PivotWider turns long rows into wide columns. See ResolvePivotNames for
// how generated columns are named.
func (d *DataFrame) PivotWider(ids []string, pivot string, values []string, prefix *string) (*DataFrame, error) {
	return wrap(d.df.PivotWider(ids, pivot, values, prefix))
}

// Render writes the table as an aligned text grid.
func (d *DataFrame) Render(w io.Writer) {
	d.df.Render(w)
}

// WriteCSV writes the table as CSV with a header row.
func (d *DataFrame) WriteCSV(w io.Writer) error {
	return d.df.WriteCSV(w)
}

// Release frees the memory used by the DataFrame.
func (d *DataFrame) Release() {
	d.df.Release()
}

// Expressions

// Col creates a column reference expression.
func Col(name string) Expression {
	return Expression{expr: expr.Col(name)}
}

// Lit creates a literal value expression.
func Lit(value any) Expression {
	return Expression{expr: expr.Lit(value)}
}

// Add adds other to the expression.
func (e Expression) Add(other Expression) Expression {
	return Expression{expr: expr.Add(e.expr, other.expr)}
}

// Sub subtracts other from the expression.
func (e Expression) Sub(other Expression) Expression {
	return Expression{expr: expr.Sub(e.expr, other.expr)}
}

// Mul multiplies the expression by other.
func (e Expression) Mul(other Expression) Expression {
	return Expression{expr: expr.Mul(e.expr, other.expr)}
}

// Div divides the expression by other. The result is always float64.
func (e Expression) Div(other Expression) Expression {
	return Expression{expr: expr.Div(e.expr, other.expr)}
}

// Neg negates the expression.
func (e Expression) Neg() Expression {
	return Expression{expr: expr.Neg(e.expr)}
}

// String returns a string representation of the expression.
func (e Expression) String() string {
	return e.expr.String()
}
