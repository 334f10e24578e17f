// Package distribution draws reproducible samples from parametric univariate
// distributions and packages them as a two-column table.
//
// Every family is built by a constructor that validates its parameters up
// front, so a Distribution that exists can always be drawn from. Draws come
// from one rng.Stream in strict sequence: the i-th value depends on the seed
// and on i alone.
package distribution

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabula/internal/dataframe"
	"github.com/paveg/tabula/internal/errors"
	"github.com/paveg/tabula/internal/logging"
	"github.com/paveg/tabula/internal/rng"
	"github.com/paveg/tabula/internal/series"
)

// Column names of a draw result.
const (
	DrawColumn  = "draw"
	ValueColumn = "x"
)

// Distribution is a validated univariate distribution.
type Distribution interface {
	// Name returns the family tag, e.g. "normal".
	Name() string
	// Draw returns the next value, consuming state from src.
	Draw(src *rng.Stream) float64
}

// Sample draws n values from d with a fresh stream keyed by seed. The result
// has a uint64 "draw" column counting 0..n-1 and a float64 "x" column with
// the values in draw order. n == 0 yields an empty two-column table.
func Sample(d Distribution, seed, n uint64) (*dataframe.DataFrame, error) {
	if d == nil {
		return nil, errors.NewInvalidInputError("Sample", "nil distribution")
	}

	stream := rng.New(seed)
	draws := make([]uint64, n)
	values := make([]float64, n)
	for i := range draws {
		draws[i] = uint64(i)
		values[i] = d.Draw(stream)
	}

	logging.Logger().Debug().
		Str("family", d.Name()).
		Uint64("seed", seed).
		Uint64("draws", n).
		Msg("sampled distribution")

	mem := memory.NewGoAllocator()
	return dataframe.New(
		series.New(DrawColumn, draws, mem),
		series.New(ValueColumn, values, mem),
	), nil
}

// SampleTag builds the family registered under tag from params and samples
// it. Parameter errors are reported before anything is drawn.
func SampleTag(tag string, params []float64, seed, n uint64) (*dataframe.DataFrame, error) {
	d, err := Build(tag, params)
	if err != nil {
		return nil, err
	}
	return Sample(d, seed, n)
}

// ValueColumnNames returns the value column names of a k-dimensional draw
// result: "x" for k == 1, otherwise x1..xk.
func ValueColumnNames(k int) []string {
	if k == 1 {
		return []string{ValueColumn}
	}
	names := make([]string, k)
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", ValueColumn, i+1)
	}
	return names
}
