// Package testutil provides shared helpers for building and inspecting
// tables in tests.
//
// It covers the patterns every test package repeats:
// - allocator setup
// - standard and hand-written test tables
// - reading a column back as rendered strings
// - table equality assertions
package testutil

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabula/internal/dataframe"
	"github.com/paveg/tabula/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// defaultRowCount is the default number of rows in test DataFrames.
	defaultRowCount = 4
)

// TestMemoryContext provides memory allocator with automatic cleanup.
type TestMemoryContext struct {
	Allocator memory.Allocator
	cleanup   func()
}

// Release performs cleanup of the memory context.
func (tmc *TestMemoryContext) Release() {
	if tmc.cleanup != nil {
		tmc.cleanup()
	}
}

// SetupMemoryTest creates a memory allocator for tests.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	return &TestMemoryContext{Allocator: memory.NewGoAllocator()}
}

// SetupCheckedMemoryTest is SetupMemoryTest with leak detection: Release
// fails the test if any buffer allocated through it is still live.
func SetupCheckedMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	allocator := memory.NewCheckedAllocator(memory.NewGoAllocator())

	return &TestMemoryContext{
		Allocator: allocator,
		cleanup: func() {
			allocator.AssertSize(tb, 0)
		},
	}
}

// TestDataFrameOption configures test DataFrame creation.
type TestDataFrameOption func(*testDataFrameConfig)

type testDataFrameConfig struct {
	includeNulls bool
	rowCount     int
	withActive   bool
}

// WithNulls makes every third department null.
func WithNulls() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.includeNulls = true
	}
}

// WithRowCount sets the number of rows in test data.
func WithRowCount(count int) TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.rowCount = count
	}
}

// WithActiveColumn includes an 'active' boolean column.
func WithActiveColumn() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.withActive = true
	}
}

// CreateTestDataFrame creates a standard test DataFrame with employee data.
//
// Default DataFrame includes:
// - name (string): ["Alice", "Bob", "Charlie", "David"]
// - age (int64): [25, 30, 35, 28]
// - department (string): ["Engineering", "Sales", "Engineering", "Marketing"]
// - salary (int64): [100000, 80000, 120000, 75000]
func CreateTestDataFrame(allocator memory.Allocator, opts ...TestDataFrameOption) *dataframe.DataFrame {
	cfg := &testDataFrameConfig{
		rowCount: defaultRowCount,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	var valid []bool
	if cfg.includeNulls {
		valid = make([]bool, cfg.rowCount)
		for i := range valid {
			valid[i] = i%3 != 2
		}
	}

	seriesList := []dataframe.ISeries{
		series.New("name", generate(cfg.rowCount, "Alice", "Bob", "Charlie", "David", "Eve", "Frank", "Grace", "Henry"), allocator),
		series.New("age", generate[int64](cfg.rowCount, 25, 30, 35, 28, 32, 45, 29, 38), allocator),
		series.NewWithValidity("department", generate(cfg.rowCount,
			"Engineering", "Sales", "Engineering", "Marketing", "HR", "Finance", "Engineering", "Sales"), valid, allocator),
		series.New("salary", generate[int64](cfg.rowCount, 100000, 80000, 120000, 75000, 90000, 110000, 95000, 85000), allocator),
	}

	if cfg.withActive {
		seriesList = append(seriesList,
			series.New("active", generate(cfg.rowCount, true, true, false, true, true, false, true, false), allocator))
	}

	return dataframe.New(seriesList...)
}

// CreateSimpleTestDataFrame creates a simple 2-column DataFrame for basic testing.
func CreateSimpleTestDataFrame(allocator memory.Allocator) *dataframe.DataFrame {
	names := series.New("name", []string{"Alice", "Bob"}, allocator)
	ages := series.New("age", []int64{25, 30}, allocator)

	return dataframe.New(names, ages)
}

// NewFrame builds a DataFrame from series, failing the test on a malformed
// column set.
func NewFrame(tb testing.TB, cols ...dataframe.ISeries) *dataframe.DataFrame {
	tb.Helper()
	df, err := dataframe.NewChecked(cols...)
	require.NoError(tb, err)
	return df
}

// Strings renders every cell of a column, with "null" for nulls.
func Strings(tb testing.TB, df *dataframe.DataFrame, column string) []string {
	tb.Helper()

	col, exists := df.Column(column)
	require.True(tb, exists, "column %s should exist", column)

	arr := col.Array()
	defer arr.Release()

	out := make([]string, arr.Len())
	for i := range out {
		out[i] = series.FormatValue(arr, i)
	}
	return out
}

// AssertDataFrameEqual compares names, types and rendered cells.
func AssertDataFrameEqual(t *testing.T, expected, actual *dataframe.DataFrame) {
	t.Helper()

	require.NotNil(t, expected, "expected DataFrame should not be nil")
	require.NotNil(t, actual, "actual DataFrame should not be nil")

	assert.Equal(t, expected.Len(), actual.Len(), "DataFrame lengths should match")
	assert.Equal(t, expected.Columns(), actual.Columns(), "DataFrame columns should match")

	for _, colName := range expected.Columns() {
		expectedCol, _ := expected.Column(colName)
		actualCol, exists := actual.Column(colName)
		require.True(t, exists, "actual column %s should exist", colName)

		assert.Equal(t, expectedCol.DataType(), actualCol.DataType(), "column %s type should match", colName)
		assert.Equal(t, Strings(t, expected, colName), Strings(t, actual, colName),
			"column %s data should match", colName)
	}
}

// AssertDataFrameHasColumns verifies that a DataFrame has exactly the
// expected columns, in order.
func AssertDataFrameHasColumns(t *testing.T, df *dataframe.DataFrame, expectedColumns []string) {
	t.Helper()

	require.NotNil(t, df, "DataFrame should not be nil")
	assert.Equal(t, expectedColumns, df.Columns())
}

// AssertDataFrameNotEmpty verifies that a DataFrame is not empty.
func AssertDataFrameNotEmpty(t *testing.T, df *dataframe.DataFrame) {
	t.Helper()

	require.NotNil(t, df, "DataFrame should not be nil")
	assert.Positive(t, df.Len(), "DataFrame should not be empty")
	assert.Positive(t, df.Width(), "DataFrame should have columns")
}

// generate repeats base to count values.
func generate[T any](count int, base ...T) []T {
	out := make([]T, count)
	for i := range count {
		out[i] = base[i%len(base)]
	}
	return out
}
