package tools

import (
	"fmt"
	"strings"
	"time"
)

// stderrTailLines bounds the stderr excerpt kept on execution errors.
const stderrTailLines = 20

// ToolNotFoundError means the executable is missing from the tools
// directory, is a directory, or is not executable.
type ToolNotFoundError struct {
	Tool ID
	Path string
	Err  error
}

func (e *ToolNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tool %s not found at %s: %v", e.Tool, e.Path, e.Err)
	}
	return fmt.Sprintf("tool %s not found at %s", e.Tool, e.Path)
}

func (e *ToolNotFoundError) Unwrap() error { return e.Err }

// ToolExecutionError reports a tool that exited non-zero or exited zero
// without producing its output file. The message names only the source
// file; Detail carries the diagnostics.
type ToolExecutionError struct {
	Tool     ID
	File     string // Canonical path of the source being optimized.
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolExecutionError) Error() string {
	return `Error while optimizing the file "` + e.File + `"`
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// Detail expands the error with tool name, exit code and the tail of the
// tool's stderr.
func (e *ToolExecutionError) Detail() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s exited with code %d", e.Error(), e.Tool, e.ExitCode)
	if e.Err != nil && e.ExitCode == 0 {
		fmt.Fprintf(&b, " (%v)", e.Err)
	}
	if tail := tailLines(e.Stderr, stderrTailLines); tail != "" {
		b.WriteString(": ")
		b.WriteString(tail)
	}
	return b.String()
}

// ToolTimeoutError reports a tool killed after exceeding its deadline.
type ToolTimeoutError struct {
	Tool    ID
	File    string
	Timeout time.Duration
}

func (e *ToolTimeoutError) Error() string {
	return fmt.Sprintf(`%s timed out after %s while optimizing the file "%s"`, e.Tool, e.Timeout, e.File)
}

func tailLines(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
