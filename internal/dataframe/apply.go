package dataframe

import (
	"context"
	stderrors "errors"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabula/internal/config"
	"github.com/paveg/tabula/internal/errors"
	"github.com/paveg/tabula/internal/logging"
	"github.com/paveg/tabula/internal/parallel"
	"github.com/paveg/tabula/internal/validation"
)

// Transform maps one table to another. Grouped operations call it once per
// group with that group's rows; it must not retain its argument.
type Transform func(*DataFrame) (*DataFrame, error)

// Apply runs fn over df. With no groups it returns fn(df) unchanged.
// Otherwise fn runs once per stable group and the results are stacked in the
// order each group first appears in df.
func Apply(df *DataFrame, groups []string, fn Transform) (*DataFrame, error) {
	return ApplyWithConfig(df, groups, fn, config.OperationConfig{})
}

// ApplyWithConfig is Apply with per-call parallelism overrides.
func ApplyWithConfig(df *DataFrame, groups []string, fn Transform, opConfig config.OperationConfig) (*DataFrame, error) {
	if len(groups) == 0 {
		return fn(df)
	}

	partition, err := df.GroupByStable(groups...)
	if err != nil {
		return nil, err
	}

	// No rows means no groups; run once so the result carries fn's schema.
	if partition.Len() == 0 {
		return fn(df)
	}

	cfg := config.GetGlobalConfig()
	runParallel := cfg.ShouldParallelize(partition.Len(), opConfig)

	logging.Logger().Debug().
		Str("op", "Apply").
		Strs("groups", groups).
		Int("group_count", partition.Len()).
		Int("rows", df.Len()).
		Bool("parallel", runParallel).
		Msg("grouped apply")

	var results []*DataFrame
	if runParallel {
		results, err = applyParallel(df, partition, fn, cfg.Workers())
	} else {
		results, err = applySequential(df, partition, fn)
	}
	if err != nil {
		return nil, err
	}

	if len(results) == 1 {
		return results[0], nil
	}
	defer func() {
		for _, r := range results {
			r.Release()
		}
	}()

	return results[0].Concat(results[1:]...)
}

func applySequential(df *DataFrame, p *Partition, fn Transform) ([]*DataFrame, error) {
	results := make([]*DataFrame, 0, p.Len())
	for g, rows := range p.Indices {
		out, err := runGroup(df, rows, fn)
		if err != nil {
			for _, r := range results {
				r.Release()
			}
			return nil, errors.NewGroupError("Apply", p.Keys[g].String(), err)
		}
		results = append(results, out)
	}
	return results, nil
}

func applyParallel(df *DataFrame, p *Partition, fn Transform, workers int) ([]*DataFrame, error) {
	pool := parallel.NewWorkerPool(workers)
	defer pool.Close()

	// done keeps every successful group so a failure elsewhere can release
	// them. Each slot is written by one worker and read after the pool drains.
	done := make([]*DataFrame, p.Len())
	results, err := parallel.ProcessOrdered(pool, p.Indices, func(g int, rows []int) (*DataFrame, error) {
		out, err := runGroup(df, rows, fn)
		if err == nil {
			done[g] = out
		}
		return out, err
	})
	if err != nil {
		for _, r := range done {
			if r != nil {
				r.Release()
			}
		}
		var itemErr *parallel.ItemError
		if stderrors.As(err, &itemErr) {
			return nil, errors.NewGroupError("Apply", p.Keys[itemErr.Index].String(), itemErr.Err)
		}
		return nil, errors.NewInternalError("Apply", err)
	}
	return results, nil
}

// runGroup materialises one group's rows and applies fn to them.
func runGroup(df *DataFrame, rows []int, fn Transform) (*DataFrame, error) {
	sub, err := df.takeRows(rows)
	if err != nil {
		return nil, err
	}

	out, err := fn(sub)
	if err != nil {
		sub.Release()
		if out != nil && out != sub {
			out.Release()
		}
		return nil, err
	}
	if out != sub {
		sub.Release()
	}
	if out == nil {
		return nil, errors.NewInvalidInputError("Apply", "transform returned no table")
	}
	return out, nil
}

// takeRows gathers rows by position without bounds checking; callers
// validate first.
func (df *DataFrame) takeRows(rows []int) (*DataFrame, error) {
	builder := array.NewInt64Builder(memory.NewGoAllocator())
	defer builder.Release()
	builder.Reserve(len(rows))
	for _, row := range rows {
		builder.Append(int64(row))
	}
	indices := builder.NewArray()
	defer indices.Release()

	return df.takeArray(indices)
}

// takeArray gathers rows with the Arrow take kernel. Null indices produce
// null rows.
func (df *DataFrame) takeArray(indices arrow.Array) (*DataFrame, error) {
	ctx := context.Background()
	cols := make([]ISeries, 0, len(df.order))

	for _, name := range df.order {
		arr := df.columns[name].Array()
		taken, err := compute.TakeArray(ctx, arr, indices)
		arr.Release()
		if err != nil {
			releaseAll(cols)
			return nil, errors.NewInternalError("Take", err)
		}
		cols = append(cols, seriesFromArray(name, taken))
	}

	return New(cols...), nil
}

// takeInts validates positions against the table and gathers them.
func (df *DataFrame) takeInts(rows []int, op string) (*DataFrame, error) {
	for _, row := range rows {
		if err := validation.ValidateIndex(row, df.Len(), op); err != nil {
			return nil, err
		}
	}
	return df.takeRows(rows)
}
