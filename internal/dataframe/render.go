package dataframe

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/olekukonko/tablewriter"
	"github.com/paveg/tabula/internal/series"
)

// Render writes the table as an aligned text grid. Nulls print as "null".
func (df *DataFrame) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeader(df.Columns())

	arrays := make([]arrow.Array, len(df.order))
	for i, name := range df.order {
		arrays[i] = df.columns[name].Array()
	}
	defer releaseArrays(arrays)

	for row := 0; row < df.Len(); row++ {
		cells := make([]string, len(arrays))
		for i, arr := range arrays {
			cells[i] = series.FormatValue(arr, row)
		}
		table.Append(cells)
	}

	table.Render()
}

// WriteCSV writes the table as CSV with a header row. Nulls are written as
// empty fields.
func (df *DataFrame) WriteCSV(w io.Writer) error {
	schema := df.Schema()

	arrays := make([]arrow.Array, len(df.order))
	for i, name := range df.order {
		arrays[i] = df.columns[name].Array()
	}
	defer releaseArrays(arrays)

	record := array.NewRecord(schema, arrays, int64(df.Len()))
	defer record.Release()

	writer := csv.NewWriter(w, schema, csv.WithHeader(true))
	if err := writer.Write(record); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
