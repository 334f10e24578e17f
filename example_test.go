package tabula_test

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabula"
)

func ExampleDataFrame_PivotWider() {
	mem := memory.NewGoAllocator()
	df := tabula.NewDataFrame(
		tabula.NewSeries("id", []int64{1, 1, 2}, mem),
		tabula.NewSeries("key", []string{"a", "b", "a"}, mem),
		tabula.NewSeries("val", []int64{10, 20, 30}, mem),
	)
	defer df.Release()

	wide, err := df.PivotWider([]string{"id"}, "key", []string{"val"}, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer wide.Release()

	if err := wide.WriteCSV(os.Stdout); err != nil {
		fmt.Println(err)
	}
	// Output:
	// id,a,b
	// 1,10,20
	// 2,30,
}

func ExampleGroupedApply() {
	mem := memory.NewGoAllocator()
	df := tabula.NewDataFrame(
		tabula.NewSeries("g", []string{"y", "x", "y"}, mem),
		tabula.NewSeries("v", []int64{1, 2, 3}, mem),
	)
	defer df.Release()

	firstPerGroup, err := tabula.GroupedApply(df, []string{"g"}, func(sub *tabula.DataFrame) (*tabula.DataFrame, error) {
		return sub.SliceRows(0, 1)
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer firstPerGroup.Release()

	if err := firstPerGroup.WriteCSV(os.Stdout); err != nil {
		fmt.Println(err)
	}
	// Output:
	// g,v
	// y,1
	// x,2
}

func ExampleResolvePivotNames() {
	prefix := "p_"
	fmt.Println(tabula.ResolvePivotNames([]string{"id", "null", "id", "a"}, []string{"id"}, &prefix))
	// Output: [id p_nil p_id p_a]
}
