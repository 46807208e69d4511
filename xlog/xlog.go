// Package xlog initializes the process-wide zerolog logger exactly once, in
// the same spirit as the teacher's single package-level flag/state: no
// other module in this repository is allowed to hold mutable global state.
package xlog

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.Mutex
	global zerolog.Logger
	inited bool
)

// envLevel is the environment variable that overrides the default INFO
// level.
const envLevel = "DATATOOL_LOG_LEVEL"

// Init sets up the process-wide logger. Calling it a second time is a hard
// error — the rest of the core treats the logger as immutable once live.
func Init() error {
	mu.Lock()
	defer mu.Unlock()
	if inited {
		return fmt.Errorf("xlog: logger already initialized")
	}

	level := zerolog.InfoLevel
	if raw := os.Getenv(envLevel); raw != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	global = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
	inited = true
	return nil
}

// L returns the process-wide logger. Panics if Init was never called, since
// every entry point is expected to call it before doing real work.
func L() *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !inited {
		panic("xlog: logger used before Init")
	}
	return &global
}
