// Package config holds runtime configuration: defaults, YAML/env overlays,
// and validation. A single Config value is built once at startup and passed
// explicitly to the packages that need it.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// ConversionMode controls whether a static GIF may be retargeted to PNG.
type ConversionMode string

const (
	ModeAll     ConversionMode = "ALL"     // Convert GIF→PNG whenever it is smaller (default).
	ModeNone    ConversionMode = "NONE"    // Never change the file type.
	ModeIE6Safe ConversionMode = "IE6SAFE" // Convert only GIFs without any transparency.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// ParseConversionMode accepts "all", "none" and "ie6safe" in any case.
func ParseConversionMode(s string) (ConversionMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(ModeAll):
		return ModeAll, nil
	case string(ModeNone):
		return ModeNone, nil
	case string(ModeIE6Safe), "IE6_SAFE", "IE6-SAFE":
		return ModeIE6Safe, nil
	}
	return "", fmt.Errorf("invalid conversion mode %q (use 'all', 'none' or 'ie6safe')", s)
}

// Valid reports whether m is one of the known modes.
func (m ConversionMode) Valid() bool {
	switch m {
	case ModeAll, ModeNone, ModeIE6Safe:
		return true
	}
	return false
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then overlaid by [LoadFile], [ApplyEnv] and CLI flags, in that order.
type Config struct {
	// Workspace (construction arguments of the optimizer).
	RootDir  string // Root working directory; must exist.
	ToolsDir string // Directory holding the external optimizer executables.

	// Batch behaviour.
	Mode ConversionMode // Default: ALL.
	WebP bool           // Produce browser-specific WebP siblings.

	// Resource limits.
	ToolTimeout  time.Duration // Default: 60s per external process.
	Workers      int           // Default: runtime.NumCPU(). Concurrent jobs.
	MaxProcesses int           // Default: 2*NumCPU. Concurrent external processes.

	// Visual parity advisory check.
	VisualTolerance float64 // Default: 0.01 (mean abs RGBA difference, 0..1).

	// Display and logging.
	Verbose    bool
	ColorMode  ColorMode // Default: "auto".
	LogFile    string    // Optional log file path.
	ReportFile string    // Optional JSON report path.

	// Ref is an opaque caller reference (change list, ticket) copied into
	// every result. The engine never reads it.
	Ref string
}

// DefaultConfig returns a Config with defaults applied to every field that
// has one. RootDir and ToolsDir are left empty.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Mode:            ModeAll,
		WebP:            false,
		ToolTimeout:     60 * time.Second,
		Workers:         n,
		MaxProcesses:    2 * n,
		VisualTolerance: 0.01,
		Verbose:         false,
		ColorMode:       ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and numeric limits. It does not touch the
// filesystem; directory validation belongs to the workspace package.
func (c *Config) Validate() error {
	if !c.Mode.Valid() {
		return errors.New("invalid mode (use 'all', 'none' or 'ie6safe')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.ToolTimeout <= 0 {
		return fmt.Errorf("tool timeout must be positive (got %s)", c.ToolTimeout)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1 (got %d)", c.Workers)
	}
	if c.MaxProcesses < 1 {
		return fmt.Errorf("max processes must be at least 1 (got %d)", c.MaxProcesses)
	}
	if c.VisualTolerance < 0 || c.VisualTolerance > 1 {
		return fmt.Errorf("visual tolerance must be between 0 and 1 (got %g)", c.VisualTolerance)
	}
	return nil
}
