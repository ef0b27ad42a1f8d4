// Package workspace owns the root working directory of an optimizer
// instance: the shared "final" results directory and the job-scoped
// directories holding private working copies of source files.
package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const (
	finalSubdir = "final"
	jobsSubdir  = "jobs"
)

// ConfigurationError reports invalid construction arguments. It is fatal:
// no job runs when a Workspace cannot be built.
type ConfigurationError struct {
	Field  string // "root" or "tools".
	Path   string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid %s directory: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s directory %q: %s", e.Field, e.Path, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Workspace is safe for concurrent use by multiple jobs.
type Workspace struct {
	root     string
	toolsDir string

	finalOnce sync.Once
	finalErr  error
}

// New validates root and records toolsDir. The tools directory is only
// checked for presence of a reference; missing executables surface when a
// tool is invoked.
func New(root, toolsDir string) (*Workspace, error) {
	if root == "" {
		return nil, &ConfigurationError{Field: "root", Reason: "no directory given"}
	}
	fi, err := os.Stat(root)
	if err != nil {
		return nil, &ConfigurationError{Field: "root", Path: root, Reason: "does not exist", Err: err}
	}
	if !fi.IsDir() {
		return nil, &ConfigurationError{Field: "root", Path: root, Reason: "not a directory"}
	}
	canonical, err := Canonical(root)
	if err != nil {
		return nil, &ConfigurationError{Field: "root", Path: root, Reason: "cannot resolve path", Err: err}
	}
	if toolsDir == "" {
		return nil, &ConfigurationError{Field: "tools", Reason: "no directory given"}
	}
	tools, err := filepath.Abs(toolsDir)
	if err != nil {
		return nil, &ConfigurationError{Field: "tools", Path: toolsDir, Reason: "cannot resolve path", Err: err}
	}
	return &Workspace{root: canonical, toolsDir: tools}, nil
}

// Root returns the canonical root directory.
func (w *Workspace) Root() string { return w.root }

// ToolsDir returns the absolute tools directory.
func (w *Workspace) ToolsDir() string { return w.toolsDir }

// FinalDirPath returns <root>/final without creating it.
func (w *Workspace) FinalDirPath() string {
	return filepath.Join(w.root, finalSubdir)
}

// FinalDir returns <root>/final, creating it on first use.
func (w *Workspace) FinalDir() (string, error) {
	dir := w.FinalDirPath()
	w.finalOnce.Do(func() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			w.finalErr = fmt.Errorf("create final directory: %w", err)
		}
	})
	return dir, w.finalErr
}

// JobDir is the private scratch area of one job.
type JobDir struct {
	ID   string
	Path string

	once sync.Once
	err  error
}

// NewJob creates <root>/jobs/<uuid>. The caller must Release it.
func (w *Workspace) NewJob() (*JobDir, error) {
	id := uuid.New().String()
	path := filepath.Join(w.root, jobsSubdir, id)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create job directory %s: %w", path, err)
	}
	return &JobDir{ID: id, Path: path}, nil
}

// Dir returns a job-scoped subdirectory, creating it if needed.
func (j *JobDir) Dir(name string) (string, error) {
	path := filepath.Join(j.Path, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	return path, nil
}

// Stage copies src into <job>/src/<basename> and returns the copy's path.
// Every later step operates on the copy; src is only ever opened read-only.
func (j *JobDir) Stage(src string) (string, error) {
	dir, err := j.Dir("src")
	if err != nil {
		return "", err
	}
	dst := filepath.Join(dir, filepath.Base(src))
	if err := CopyFile(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Release removes the job directory. Safe to call more than once.
func (j *JobDir) Release() error {
	j.once.Do(func() {
		j.err = os.RemoveAll(j.Path)
	})
	return j.err
}

// Canonical returns the absolute, symlink-resolved form of path.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// CopyFile copies src to dst, truncating dst. The copy is synced before
// returning so a subsequent external process sees the full content.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("sync %s: %w", dst, err)
	}
	return out.Close()
}

// MoveFile renames src to dst, falling back to copy+remove when the two
// paths are on different filesystems.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
