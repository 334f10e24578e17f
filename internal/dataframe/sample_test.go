package dataframe_test

import (
	"math"
	"slices"
	"strconv"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabula/internal/config"
	"github.com/paveg/tabula/internal/dataframe"
	"github.com/paveg/tabula/internal/errors"
	"github.com/paveg/tabula/internal/series"
	"github.com/paveg/tabula/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPtr(seed uint64) *uint64 { return &seed }

// blockFrame has groups a and b of size rows each, with v counting 0..2*rows-1.
func blockFrame(t *testing.T, rows int) *dataframe.DataFrame {
	t.Helper()
	mem := memory.NewGoAllocator()

	groups := make([]string, 2*rows)
	values := make([]int64, 2*rows)
	for i := range groups {
		groups[i] = "a"
		if i >= rows {
			groups[i] = "b"
		}
		values[i] = int64(i)
	}
	return testutil.NewFrame(t, series.New("g", groups, mem), series.New("v", values, mem))
}

func ints(t *testing.T, df *dataframe.DataFrame, column string) []int {
	t.Helper()
	var out []int
	for _, s := range testutil.Strings(t, df, column) {
		v, err := strconv.Atoi(s)
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func TestSampleN_SameSeedEveryGroup(t *testing.T) {
	const rows = 20
	df := blockFrame(t, rows)
	defer df.Release()

	for _, opts := range []dataframe.SampleOptions{
		{Seed: seedPtr(7), Shuffle: true},
		{Seed: seedPtr(7)},
		{Seed: seedPtr(99), Replace: true},
	} {
		out, err := df.SampleN(5, opts, "g")
		require.NoError(t, err)

		v := ints(t, out, "v")
		require.Len(t, v, 10)
		for i := range 5 {
			assert.Less(t, v[i], rows)
			assert.Equal(t, v[i]+rows, v[i+5], "position %d", i)
		}
		out.Release()
	}
}

func TestSampleN_Deterministic(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.CreateTestDataFrame(mem.Allocator, testutil.WithRowCount(50))
	defer df.Release()

	opts := dataframe.SampleOptions{Seed: seedPtr(42), Shuffle: true}
	first, err := df.SampleN(10, opts)
	require.NoError(t, err)
	defer first.Release()
	second, err := df.SampleN(10, opts)
	require.NoError(t, err)
	defer second.Release()

	testutil.AssertDataFrameEqual(t, first, second)
}

func TestSampleN_WithoutReplacement(t *testing.T) {
	df := blockFrame(t, 10)
	defer df.Release()

	t.Run("keeps source order", func(t *testing.T) {
		out, err := df.SampleN(8, dataframe.SampleOptions{Seed: seedPtr(3)})
		require.NoError(t, err)
		defer out.Release()

		v := ints(t, out, "v")
		assert.True(t, slices.IsSorted(v))
		assert.Len(t, slices.Compact(slices.Clone(v)), 8, "no row drawn twice")
	})

	t.Run("whole table is a permutation", func(t *testing.T) {
		out, err := df.SampleN(20, dataframe.SampleOptions{Seed: seedPtr(3), Shuffle: true})
		require.NoError(t, err)
		defer out.Release()

		v := ints(t, out, "v")
		slices.Sort(v)
		for i, x := range v {
			assert.Equal(t, i, x)
		}
	})

	t.Run("too many rows", func(t *testing.T) {
		_, err := df.SampleN(21, dataframe.SampleOptions{Seed: seedPtr(3)})
		assert.ErrorIs(t, err, errors.ErrPopulationTooSmall)

		_, err = df.SampleN(11, dataframe.SampleOptions{Seed: seedPtr(3)}, "g")
		assert.ErrorIs(t, err, errors.ErrPopulationTooSmall)
	})
}

func TestSampleN_WithReplacement(t *testing.T) {
	df := blockFrame(t, 2)
	defer df.Release()

	out, err := df.SampleN(50, dataframe.SampleOptions{Seed: seedPtr(1), Replace: true})
	require.NoError(t, err)
	defer out.Release()

	v := ints(t, out, "v")
	require.Len(t, v, 50)
	for _, x := range v {
		assert.GreaterOrEqual(t, x, 0)
		assert.Less(t, x, 4)
	}
}

func TestSampleN_Boundaries(t *testing.T) {
	df := blockFrame(t, 3)
	defer df.Release()

	out, err := df.SampleN(0, dataframe.SampleOptions{})
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, df.Columns(), out.Columns())

	_, err = df.SampleN(-1, dataframe.SampleOptions{})
	assert.Error(t, err)
}

func TestSampleN_DefaultSeedFromConfig(t *testing.T) {
	original := config.GetGlobalConfig()
	defer config.SetGlobalConfig(original)

	cfg := config.NewConfig()
	cfg.DefaultSeed = seedPtr(11)
	config.SetGlobalConfig(cfg)

	df := blockFrame(t, 30)
	defer df.Release()

	withDefault, err := df.SampleN(6, dataframe.SampleOptions{Shuffle: true})
	require.NoError(t, err)
	defer withDefault.Release()
	explicit, err := df.SampleN(6, dataframe.SampleOptions{Shuffle: true, Seed: seedPtr(11)})
	require.NoError(t, err)
	defer explicit.Release()

	assert.Equal(t, ints(t, explicit, "v"), ints(t, withDefault, "v"))
}

func TestSampleFrac(t *testing.T) {
	df := blockFrame(t, 5)
	defer df.Release()

	out, err := df.SampleFrac(0.5, dataframe.SampleOptions{Seed: seedPtr(5)})
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, 5, out.Len())

	grouped, err := df.SampleFrac(0.5, dataframe.SampleOptions{Seed: seedPtr(5)}, "g")
	require.NoError(t, err)
	defer grouped.Release()
	assert.Equal(t, []string{"a", "a", "b", "b"}, testutil.Strings(t, grouped, "g"))

	for _, bad := range []float64{-0.1, math.NaN(), math.Inf(1)} {
		_, err := df.SampleFrac(bad, dataframe.SampleOptions{})
		assert.Error(t, err, "frac %v", bad)
	}

	_, err = df.SampleFrac(1.5, dataframe.SampleOptions{Seed: seedPtr(5)})
	assert.ErrorIs(t, err, errors.ErrPopulationTooSmall)
}

func TestSampleFrac_HugeFraction(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := testutil.NewFrame(t, series.New("v", []int64{1, 2, 3}, mem))
	defer df.Release()

	var err error
	assert.NotPanics(t, func() {
		_, err = df.SampleFrac(1e19, dataframe.SampleOptions{Seed: seedPtr(5)})
	})
	assert.ErrorIs(t, err, errors.ErrPopulationTooSmall)

	assert.NotPanics(t, func() {
		_, err = df.SampleFrac(1e19, dataframe.SampleOptions{Seed: seedPtr(5), Replace: true})
	})
	var dfErr *errors.DataFrameError
	require.ErrorAs(t, err, &dfErr)
	assert.Equal(t, errors.KindValidation, dfErr.Kind)
	assert.Contains(t, err.Error(), "exceeds the largest sample size")
}

func TestSampleN_ReplaceFromEmptyGroup(t *testing.T) {
	df := blockFrame(t, 1)
	defer df.Release()
	empty, err := df.SliceRows(0, 0)
	require.NoError(t, err)
	defer empty.Release()

	_, err = empty.SampleN(2, dataframe.SampleOptions{Seed: seedPtr(1), Replace: true})
	assert.ErrorIs(t, err, errors.ErrEmptyPopulation)
	assert.NotErrorIs(t, err, errors.ErrPopulationTooSmall)
}
