package dataframe

import (
	"fmt"
	"math"
	"slices"

	"github.com/paveg/tabula/internal/config"
	"github.com/paveg/tabula/internal/errors"
	"github.com/paveg/tabula/internal/logging"
	"github.com/paveg/tabula/internal/rng"
)

// SampleOptions controls row sampling.
type SampleOptions struct {
	// Replace draws with replacement, so a row may appear more than once.
	Replace bool
	// Shuffle keeps rows in draw order. Without it, rows sampled without
	// replacement come back in their original order. Draws with
	// replacement are always in draw order.
	Shuffle bool
	// Seed fixes the random stream. Nil falls back to Config.DefaultSeed and
	// then to a random seed.
	Seed *uint64
}

// SampleN draws n rows. With groups, n rows are drawn from every group and
// each group's draw starts from the same seed, so equal-sized groups pick
// the same relative positions.
func (df *DataFrame) SampleN(n int, opts SampleOptions, groups ...string) (*DataFrame, error) {
	if n < 0 {
		return nil, errors.NewInvalidInputError("SampleN", fmt.Sprintf("n must be non-negative, got %d", n))
	}

	seed := resolveSeed(opts.Seed)
	logging.Logger().Debug().Str("op", "SampleN").Int("n", n).Uint64("seed", seed).Msg("sampling rows")

	return Apply(df, groups, func(sub *DataFrame) (*DataFrame, error) {
		return sub.sampleRows("SampleN", n, opts, seed)
	})
}

// SampleFrac draws floor(frac * rows) rows from the table or from each group.
func (df *DataFrame) SampleFrac(frac float64, opts SampleOptions, groups ...string) (*DataFrame, error) {
	if math.IsNaN(frac) || math.IsInf(frac, 0) || frac < 0 {
		return nil, errors.NewInvalidInputError("SampleFrac", fmt.Sprintf("frac must be a non-negative number, got %v", frac))
	}

	seed := resolveSeed(opts.Seed)
	logging.Logger().Debug().Str("op", "SampleFrac").Float64("frac", frac).Uint64("seed", seed).Msg("sampling rows")

	return Apply(df, groups, func(sub *DataFrame) (*DataFrame, error) {
		want := math.Floor(frac * float64(sub.Len()))
		if !opts.Replace && want > float64(sub.Len()) {
			return nil, errors.NewPopulationTooSmallError("SampleFrac", saturatingInt(want), sub.Len())
		}
		if want >= math.MaxInt {
			return nil, errors.NewInvalidInputError("SampleFrac",
				fmt.Sprintf("frac %v of %d rows exceeds the largest sample size", frac, sub.Len()))
		}
		return sub.sampleRows("SampleFrac", int(want), opts, seed)
	})
}

func (df *DataFrame) sampleRows(op string, n int, opts SampleOptions, seed uint64) (*DataFrame, error) {
	rows, err := sampleIndices(op, df.Len(), n, opts.Replace, opts.Shuffle, seed)
	if err != nil {
		return nil, err
	}
	return df.takeRows(rows)
}

// sampleIndices picks n positions from [0, population) with a fresh stream.
func sampleIndices(op string, population, n int, replace, shuffle bool, seed uint64) ([]int, error) {
	if n == 0 {
		return []int{}, nil
	}

	stream := rng.New(seed)

	if replace {
		if population == 0 {
			return nil, errors.NewEmptyPopulationError(op, n)
		}
		out := make([]int, n)
		for i := range out {
			out[i] = stream.IntN(population)
		}
		return out, nil
	}

	if n > population {
		return nil, errors.NewPopulationTooSmallError(op, n, population)
	}

	// Partial Fisher-Yates: the first n slots end up a uniform sample.
	perm := make([]int, population)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + stream.IntN(population-i)
		perm[i], perm[j] = perm[j], perm[i]
	}

	out := perm[:n]
	if !shuffle {
		slices.Sort(out)
	}
	return out, nil
}

// saturatingInt converts a non-negative whole float, clamping at math.MaxInt.
func saturatingInt(f float64) int {
	if f >= math.MaxInt {
		return math.MaxInt
	}
	return int(f)
}

func resolveSeed(seed *uint64) uint64 {
	if seed != nil {
		return *seed
	}
	if def := config.GetGlobalConfig().DefaultSeed; def != nil {
		return *def
	}
	return rng.Random()
}
