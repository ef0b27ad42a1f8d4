package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/backmassage/pixmaster/internal/workspace"
)

// waitDelay is how long a killed tool may keep its pipes open before Wait
// gives up on it.
const waitDelay = 2 * time.Second

// Options bound tool execution.
type Options struct {
	Timeout      time.Duration // Per invocation. Zero means no deadline.
	MaxProcesses int           // Concurrent processes across all jobs. Zero means 1.
}

// Runner invokes external optimizers from a single tools directory. It is
// safe for concurrent use; the process limit is shared by all callers.
type Runner struct {
	dir     string
	timeout time.Duration
	procs   *semaphore.Weighted
}

// NewRunner returns a Runner resolving executables under toolsDir.
func NewRunner(toolsDir string, opts Options) *Runner {
	n := opts.MaxProcesses
	if n < 1 {
		n = 1
	}
	return &Runner{
		dir:     toolsDir,
		timeout: opts.Timeout,
		procs:   semaphore.NewWeighted(int64(n)),
	}
}

// Dir returns the tools directory.
func (r *Runner) Dir() string { return r.dir }

// Path returns the expected location of id's executable.
func (r *Runner) Path(id ID) string { return filepath.Join(r.dir, string(id)) }

// Lookup checks that id's executable exists, is a regular file and has an
// execute bit set.
func (r *Runner) Lookup(id ID) error {
	path := r.Path(id)
	if !Known(id) {
		return &ToolNotFoundError{Tool: id, Path: path, Err: errors.New("unknown tool")}
	}
	fi, err := os.Stat(path)
	if err != nil {
		return &ToolNotFoundError{Tool: id, Path: path, Err: err}
	}
	if fi.IsDir() {
		return &ToolNotFoundError{Tool: id, Path: path, Err: errors.New("is a directory")}
	}
	if fi.Mode().Perm()&0o111 == 0 {
		return &ToolNotFoundError{Tool: id, Path: path, Err: errors.New("not executable")}
	}
	return nil
}

// Run optimizes working with id and returns the output path (see
// [OutputPath]). working must be a job-private copy; canonical is the
// master's canonical path, used only in error messages.
//
// An output larger than or equal to the input is still a success.
func (r *Runner) Run(ctx context.Context, id ID, working, canonical string) (string, error) {
	if err := r.Lookup(id); err != nil {
		return "", err
	}
	out := OutputPath(id, working)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("prepare %s output: %w", id, err)
	}
	// Stale output from an earlier attempt must not count as success.
	_ = os.Remove(out)

	if err := r.procs.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%s: waiting for process slot: %w", id, err)
	}
	defer r.procs.Release(1)

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if r.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	defer cancel()

	stderr, err := r.execRetry(runCtx, id, working, out)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return "", fmt.Errorf("%s: %w", id, ctx.Err())
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			return "", &ToolTimeoutError{Tool: id, File: canonical, Timeout: r.timeout}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ToolExecutionError{Tool: id, File: canonical, ExitCode: exitErr.ExitCode(), Stderr: stderr, Err: err}
		}
		return "", &ToolExecutionError{Tool: id, File: canonical, ExitCode: -1, Stderr: stderr, Err: err}
	}

	fi, err := os.Stat(out)
	if err != nil || fi.Size() == 0 {
		if err == nil {
			err = errors.New("empty output")
		}
		return "", &ToolExecutionError{Tool: id, File: canonical, Stderr: stderr, Err: fmt.Errorf("no output: %w", err)}
	}
	return out, nil
}

// exec runs the process for one invocation and returns its stderr.
func (r *Runner) exec(ctx context.Context, id ID, in, out string) (string, error) {
	s := specs[id]
	cmd := exec.CommandContext(ctx, r.Path(id), s.args(in, out)...)
	cmd.WaitDelay = waitDelay

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	switch s.mode {
	case modeInPlace:
		if err := workspace.CopyFile(in, out); err != nil {
			return "", err
		}
	case modeStdio:
		src, err := os.Open(in)
		if err != nil {
			return "", err
		}
		defer src.Close()
		dst, err := os.Create(out)
		if err != nil {
			return "", err
		}
		defer dst.Close()
		cmd.Stdin, cmd.Stdout = src, dst
	}

	err := cmd.Run()
	if err != nil && s.mode != modeInOut {
		_ = os.Remove(out)
	}
	return stderrBuf.String(), err
}

// Advpng recompresses a PNG copy in place with advpng.
func (r *Runner) Advpng(ctx context.Context, working, canonical string) (string, error) {
	return r.Run(ctx, Advpng, working, canonical)
}

// Pngout re-encodes a PNG with pngout.
func (r *Runner) Pngout(ctx context.Context, working, canonical string) (string, error) {
	return r.Run(ctx, Pngout, working, canonical)
}

// Optipng optimizes a PNG copy in place with optipng.
func (r *Runner) Optipng(ctx context.Context, working, canonical string) (string, error) {
	return r.Run(ctx, Optipng, working, canonical)
}

// Gifsicle optimizes a GIF with gifsicle.
func (r *Runner) Gifsicle(ctx context.Context, working, canonical string) (string, error) {
	return r.Run(ctx, Gifsicle, working, canonical)
}

// Jpegtran losslessly optimizes a JPEG with jpegtran.
func (r *Runner) Jpegtran(ctx context.Context, working, canonical string) (string, error) {
	return r.Run(ctx, Jpegtran, working, canonical)
}

// Jfifremove strips the JFIF segment of a JPEG.
func (r *Runner) Jfifremove(ctx context.Context, working, canonical string) (string, error) {
	return r.Run(ctx, Jfifremove, working, canonical)
}

// Cwebp encodes a lossless WebP from a PNG or JPEG.
func (r *Runner) Cwebp(ctx context.Context, working, canonical string) (string, error) {
	return r.Run(ctx, Cwebp, working, canonical)
}

// Gif2webp encodes a WebP from a GIF.
func (r *Runner) Gif2webp(ctx context.Context, working, canonical string) (string, error) {
	return r.Run(ctx, Gif2webp, working, canonical)
}
