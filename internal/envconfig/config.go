// Package envconfig reads quanv defaults from QUANV_* environment variables.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// LogLevel returns the log level selected by QUANV_DEBUG.
// 0/false = INFO (default), 1/true = DEBUG, other integers step down by 4.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("QUANV_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

var (
	// Shots is the number of measurement shots per circuit. 0 means exact
	// probabilities. Configurable via QUANV_SHOTS.
	Shots = Uint("QUANV_SHOTS", 0)
	// Seed seeds shot sampling and weight initialisation.
	// Configurable via QUANV_SEED.
	Seed = Uint64("QUANV_SEED", 42)
)

// NumParallel returns the maximum number of circuits simulated concurrently.
// Configurable via QUANV_NUM_PARALLEL, defaults to the number of CPUs.
func NumParallel() int {
	if n := Uint("QUANV_NUM_PARALLEL", 0)(); n > 0 {
		return int(n)
	}
	return runtime.NumCPU()
}

// Bool returns a reader for a boolean variable. Unparseable non-empty
// values count as true.
func Bool(k string) func() bool {
	return func() bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return false
	}
}

// Uint returns a reader for an unsigned variable with a default.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// Uint64 returns a reader for a uint64 variable with a default.
func Uint64(key string, defaultValue uint64) func() uint64 {
	return func() uint64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

// Int64 returns a reader for a signed variable with a default.
func Int64(key string, defaultValue int64) func() int64 {
	return func() int64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseInt(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

// EnvVar describes one configuration variable.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every variable with its current value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"QUANV_DEBUG":        {"QUANV_DEBUG", LogLevel(), "Show additional debug information (e.g. QUANV_DEBUG=1)"},
		"QUANV_SHOTS":        {"QUANV_SHOTS", Shots(), "Measurement shots per circuit, 0 for exact probabilities (default: 0)"},
		"QUANV_SEED":         {"QUANV_SEED", Seed(), "Seed for shot sampling and weight initialisation (default: 42)"},
		"QUANV_NUM_PARALLEL": {"QUANV_NUM_PARALLEL", NumParallel(), "Maximum number of circuits simulated concurrently (default: number of CPUs)"},
	}
}

// Values returns the current value of every variable formatted as a string.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Var returns an environment variable stripped of whitespace and quotes.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
