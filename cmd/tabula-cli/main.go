package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabula"
	"github.com/paveg/tabula/internal/config"
	"github.com/paveg/tabula/internal/logging"
	"github.com/paveg/tabula/internal/monitoring"
	"github.com/paveg/tabula/internal/version"
)

const defaultDraws = 10

func customUsage(fs *flag.FlagSet) func() {
	return func() {
		w := fs.Output()
		fmt.Fprintf(w, "tabula CLI (version %s)\n\n", version.Version)
		fmt.Fprintf(w, "Usage: tabula-cli [options]\n\n")
		fmt.Fprintf(w, "Options:\n")
		fmt.Fprintf(w, "  -sample TAG\n\t\tDraw from the distribution TAG (one of: %s)\n", strings.Join(tabula.Distributions(), ", "))
		fmt.Fprintf(w, "  -params A,B,...\n\t\tPositional distribution parameters\n")
		fmt.Fprintf(w, "  -seed N\n\t\tRandom seed (default: 0)\n")
		fmt.Fprintf(w, "  -draws N\n\t\tNumber of draws (default: %d)\n", defaultDraws)
		fmt.Fprintf(w, "  -format table|csv\n\t\tOutput format (default: table)\n")
		fmt.Fprintf(w, "  -demo\n\t\tRun the grouped apply and pivot demo\n")
		fmt.Fprintf(w, "  -stats\n\t\tPrint per-operation timings to stderr\n")
		fmt.Fprintf(w, "  -config FILE\n\t\tLoad configuration from a JSON or YAML file\n")
		fmt.Fprintf(w, "  -v, -version\n\t\tPrint version information and exit\n")
		fmt.Fprintf(w, "  -h, -help\n\t\tShow this help message and exit\n")
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tabula-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)

	versionFlag := fs.Bool("v", false, "Print version and exit")
	fs.BoolVar(versionFlag, "version", false, "Print version and exit")
	sampleFlag := fs.String("sample", "", "Distribution tag to draw from")
	paramsFlag := fs.String("params", "", "Comma separated distribution parameters")
	seedFlag := fs.Uint64("seed", 0, "Random seed")
	drawsFlag := fs.Uint64("draws", defaultDraws, "Number of draws")
	formatFlag := fs.String("format", "table", "Output format: table or csv")
	demoFlag := fs.Bool("demo", false, "Run the demo")
	configFlag := fs.String("config", "", "Configuration file")
	statsFlag := fs.Bool("stats", false, "Print per-operation timings")
	fs.Usage = customUsage(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logging.SetLogger(logging.NewLogger(stderr))
	log := logging.Logger()

	if *versionFlag {
		fmt.Fprint(stdout, version.Info().String())
		return 0
	}

	if err := applyConfig(*configFlag); err != nil {
		log.Error().Err(err).Str("path", *configFlag).Msg("loading configuration")
		return 1
	}

	if *formatFlag != "table" && *formatFlag != "csv" {
		log.Error().Str("format", *formatFlag).Msg("unknown output format")
		return 2
	}

	collector := monitoring.NewMetricsCollector(*statsFlag)

	var err error
	switch {
	case *sampleFlag != "":
		err = runSample(stdout, collector, *sampleFlag, *paramsFlag, *seedFlag, *drawsFlag, *formatFlag)
	case *demoFlag:
		err = runDemo(stdout, collector, *formatFlag)
	default:
		fs.Usage()
		return 1
	}

	if collector.IsEnabled() {
		collector.Render(stderr)
	}

	if err != nil {
		log.Error().Err(err).Msg("command failed")
		return 1
	}
	return 0
}

// applyConfig installs the configuration from path, or from TABULA_*
// environment variables when path is empty.
func applyConfig(path string) error {
	cfg := config.LoadFromEnv()
	if path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return err
		}
		logging.Logger().Info().Str("path", path).Msg("loaded configuration")
	}
	return tabula.SetConfig(cfg)
}

func parseParams(raw string) ([]float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	params := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		params[i] = v
	}
	return params, nil
}

func runSample(w io.Writer, mc *monitoring.MetricsCollector, tag, rawParams string, seed, draws uint64, format string) error {
	params, err := parseParams(rawParams)
	if err != nil {
		return err
	}

	logging.Logger().Info().
		Str("distribution", tag).
		Floats64("params", params).
		Uint64("seed", seed).
		Uint64("draws", draws).
		Msg("sampling")

	var df *tabula.DataFrame
	err = mc.RecordOperation("Sample", 0, func() (int, error) {
		var err error
		df, err = tabula.Sample(tag, params, seed, draws)
		if err != nil {
			return 0, err
		}
		return df.Len(), nil
	})
	if err != nil {
		return err
	}
	defer df.Release()

	return write(w, df, format)
}

func runDemo(w io.Writer, mc *monitoring.MetricsCollector, format string) error {
	mem := memory.NewGoAllocator()

	df := tabula.NewDataFrame(
		tabula.NewSeries("store", []string{"north", "north", "south", "north", "south", "south"}, mem),
		tabula.NewSeries("month", []string{"jan", "feb", "jan", "mar", "feb", "feb"}, mem),
		tabula.NewSeries("sales", []int64{120, 95, 80, 130, 70, 75}, mem),
	)
	defer df.Release()

	fmt.Fprintln(w, "Input:")
	if err := write(w, df, format); err != nil {
		return err
	}

	var best *tabula.DataFrame
	err := mc.RecordOperation("GroupedApply", df.Len(), func() (int, error) {
		var err error
		best, err = tabula.GroupedApply(df, []string{"store"}, func(sub *tabula.DataFrame) (*tabula.DataFrame, error) {
			sorted, err := sub.SortBy([]string{"sales"}, tabula.SortOptions{Descending: []bool{true}})
			if err != nil {
				return nil, err
			}
			defer sorted.Release()
			return sorted.SliceRows(0, 1)
		})
		if err != nil {
			return 0, err
		}
		return best.Len(), nil
	})
	if err != nil {
		return err
	}
	defer best.Release()

	fmt.Fprintln(w, "\nBest month per store:")
	if err := write(w, best, format); err != nil {
		return err
	}

	var wide *tabula.DataFrame
	err = mc.RecordOperation("PivotWider", df.Len(), func() (int, error) {
		var err error
		wide, err = df.PivotWider([]string{"store"}, "month", []string{"sales"}, nil)
		if err != nil {
			return 0, err
		}
		return wide.Len(), nil
	})
	if err != nil {
		return err
	}
	defer wide.Release()

	fmt.Fprintln(w, "\nSales by month:")
	return write(w, wide, format)
}

func write(w io.Writer, df *tabula.DataFrame, format string) error {
	if format == "csv" {
		return df.WriteCSV(w)
	}
	df.Render(w)
	return nil
}
