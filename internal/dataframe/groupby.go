package dataframe

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	xxhash "github.com/cespare/xxhash/v2"
	"github.com/paveg/tabula/internal/series"
	"github.com/paveg/tabula/internal/validation"
)

// GroupKey is the tuple of grouping values shared by one group's rows.
// A nil element stands for null.
type GroupKey []any

func (k GroupKey) String() string {
	parts := make([]string, len(k))
	for i, v := range k {
		if v == nil {
			parts[i] = "null"
		} else {
			parts[i] = fmt.Sprint(v)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Partition is an ordered grouping of row indices. Keys appear in the order
// their first row occurs in the source table, and each Indices entry is
// ascending. Together the Indices cover every row exactly once.
type Partition struct {
	Columns []string
	Keys    []GroupKey
	Indices [][]int
}

// Len returns the number of groups.
func (p *Partition) Len() int {
	return len(p.Keys)
}

// GroupByStable partitions rows by the values of columns. Null equals null
// and NaN equals NaN, so every row lands in exactly one group. With no
// columns the whole table is one group.
func (df *DataFrame) GroupByStable(columns ...string) (*Partition, error) {
	if err := validation.ValidateColumns(df, "GroupBy", columns...); err != nil {
		return nil, err
	}

	keyCols := make([]keyColumn, len(columns))
	for i, name := range columns {
		keyCols[i] = newKeyColumn(df.columns[name].Array())
	}
	defer func() {
		for _, c := range keyCols {
			c.arr.Release()
		}
	}()

	p := &Partition{Columns: append([]string(nil), columns...)}

	// Hash buckets hold candidate group ids; the encoded key settles equality.
	buckets := make(map[uint64][]int)
	var encoded [][]byte
	buf := make([]byte, 0, 64)

	for row := 0; row < df.Len(); row++ {
		buf = buf[:0]
		for _, c := range keyCols {
			buf = c.encode(buf, row)
		}
		hash := xxhash.Sum64(buf)

		group := -1
		for _, candidate := range buckets[hash] {
			if bytes.Equal(encoded[candidate], buf) {
				group = candidate
				break
			}
		}

		if group < 0 {
			group = len(encoded)
			encoded = append(encoded, bytes.Clone(buf))
			buckets[hash] = append(buckets[hash], group)

			key := make(GroupKey, len(keyCols))
			for i, c := range keyCols {
				key[i] = keyValue(c.arr, row)
			}
			p.Keys = append(p.Keys, key)
			p.Indices = append(p.Indices, nil)
		}
		p.Indices[group] = append(p.Indices[group], row)
	}

	return p, nil
}

// GroupIndices returns the stable partition as one int64 series of row
// indices per group.
func (df *DataFrame) GroupIndices(columns ...string) ([]ISeries, error) {
	p, err := df.GroupByStable(columns...)
	if err != nil {
		return nil, err
	}

	mem := memory.NewGoAllocator()
	out := make([]ISeries, p.Len())
	for g, rows := range p.Indices {
		values := make([]int64, len(rows))
		for i, row := range rows {
			values[i] = int64(row)
		}
		out[g] = series.New("indices", values, mem)
	}
	return out, nil
}

// keyColumn encodes the cells of one grouping column into a canonical byte
// form: equal cells encode identically and different cells never do.
type keyColumn struct {
	arr    arrow.Array
	encode func(buf []byte, row int) []byte
}

const (
	nullTag  = 0
	validTag = 1
)

// canonicalNaN replaces every NaN payload so all NaNs group together.
const canonicalNaN = 0x7ff8000000000001

func newKeyColumn(arr arrow.Array) keyColumn {
	var value func(buf []byte, row int) []byte

	switch a := arr.(type) {
	case *array.String:
		value = func(buf []byte, row int) []byte { return appendString(buf, a.Value(row)) }
	case *array.LargeString:
		value = func(buf []byte, row int) []byte { return appendString(buf, a.Value(row)) }
	case *array.Int64:
		value = func(buf []byte, row int) []byte { return binary.LittleEndian.AppendUint64(buf, uint64(a.Value(row))) }
	case *array.Int32:
		value = func(buf []byte, row int) []byte { return binary.LittleEndian.AppendUint64(buf, uint64(a.Value(row))) }
	case *array.Int16:
		value = func(buf []byte, row int) []byte { return binary.LittleEndian.AppendUint64(buf, uint64(a.Value(row))) }
	case *array.Int8:
		value = func(buf []byte, row int) []byte { return binary.LittleEndian.AppendUint64(buf, uint64(a.Value(row))) }
	case *array.Uint64:
		value = func(buf []byte, row int) []byte { return binary.LittleEndian.AppendUint64(buf, a.Value(row)) }
	case *array.Uint32:
		value = func(buf []byte, row int) []byte { return binary.LittleEndian.AppendUint64(buf, uint64(a.Value(row))) }
	case *array.Uint16:
		value = func(buf []byte, row int) []byte { return binary.LittleEndian.AppendUint64(buf, uint64(a.Value(row))) }
	case *array.Uint8:
		value = func(buf []byte, row int) []byte { return binary.LittleEndian.AppendUint64(buf, uint64(a.Value(row))) }
	case *array.Float64:
		value = func(buf []byte, row int) []byte { return appendFloat(buf, a.Value(row)) }
	case *array.Float32:
		value = func(buf []byte, row int) []byte { return appendFloat(buf, float64(a.Value(row))) }
	case *array.Boolean:
		value = func(buf []byte, row int) []byte {
			if a.Value(row) {
				return append(buf, 1)
			}
			return append(buf, 0)
		}
	default:
		value = func(buf []byte, row int) []byte { return appendString(buf, arr.ValueStr(row)) }
	}

	return keyColumn{
		arr: arr,
		encode: func(buf []byte, row int) []byte {
			if arr.IsNull(row) {
				return append(buf, nullTag)
			}
			return value(append(buf, validTag), row)
		},
	}
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendFloat(buf []byte, f float64) []byte {
	bits := math.Float64bits(f)
	switch {
	case math.IsNaN(f):
		bits = canonicalNaN
	case f == 0:
		bits = 0 // -0 groups with 0
	}
	return binary.LittleEndian.AppendUint64(buf, bits)
}

// keyValue returns the Go value of one cell for a GroupKey.
func keyValue(arr arrow.Array, row int) any {
	if arr.IsNull(row) {
		return nil
	}
	switch a := arr.(type) {
	case *array.String:
		return a.Value(row)
	case *array.Int64:
		return a.Value(row)
	case *array.Int32:
		return a.Value(row)
	case *array.Uint64:
		return a.Value(row)
	case *array.Uint32:
		return a.Value(row)
	case *array.Float64:
		return a.Value(row)
	case *array.Float32:
		return a.Value(row)
	case *array.Boolean:
		return a.Value(row)
	default:
		return series.FormatValue(arr, row)
	}
}
