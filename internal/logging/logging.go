// Package logging configures the zerolog logger shared by tabula packages.
//
// Library code only emits debug events, so the default logger is silent
// unless DEBUG=1 is set or Configure is called with verbose enabled.
package logging

import (
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = NewLogger(os.Stderr)
)

func init() {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		function := ""
		fun := runtime.FuncForPC(pc)
		if fun != nil {
			funName := fun.Name()
			slash := strings.LastIndex(funName, "/")
			if slash > 0 {
				funName = funName[slash+1:]
			}
			function = " " + funName + "()"
		}
		return file + ":" + strconv.Itoa(line) + function
	}
}

// NewLogger builds a logger writing JSON lines to w, each tagged with the
// calling file, line and function. PRETTY=1 switches to the console writer
// and DEBUG=1 lowers the level to debug.
func NewLogger(w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "time"

	l := zerolog.New(w).With().Timestamp().Caller().Logger().Level(zerolog.InfoLevel)

	if os.Getenv("PRETTY") == "1" {
		l = l.Output(zerolog.ConsoleWriter{Out: w})
	}
	if os.Getenv("DEBUG") == "1" {
		l = l.Level(zerolog.DebugLevel)
	}

	return l
}

// Logger returns the package-wide logger.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

// SetLogger replaces the package-wide logger.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Configure adjusts the package-wide logger level from the verbose flag.
func Configure(verbose bool) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		logger = logger.Level(zerolog.DebugLevel)
		return
	}
	if os.Getenv("DEBUG") != "1" {
		logger = logger.Level(zerolog.InfoLevel)
	}
}
