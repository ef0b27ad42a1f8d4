package optimizer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/naming"
	"github.com/backmassage/pixmaster/internal/tools"
	"github.com/backmassage/pixmaster/internal/workspace"
)

// Logger is the logging surface the optimizer needs. *logging.Logger
// satisfies it.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// MetaFunc builds the caller metadata attached to every result of source.
type MetaFunc[T any] func(source string) T

// Option configures a Service.
type Option[T any] func(*Service[T])

// WithMeta sets the function that fills Result.Meta.
func WithMeta[T any](fn MetaFunc[T]) Option[T] {
	return func(s *Service[T]) { s.meta = fn }
}

// Service optimizes batches of images inside one workspace. Methods are
// safe for concurrent use; concurrent batches share the process limit.
type Service[T any] struct {
	cfg      config.Config
	log      Logger
	ws       *workspace.Workspace
	runner   *tools.Runner
	resolver *naming.CollisionResolver
	meta     MetaFunc[T]
}

// New builds a Service from cfg. Workspace validation errors are returned
// as *workspace.ConfigurationError.
func New[T any](cfg config.Config, log Logger, opts ...Option[T]) (*Service[T], error) {
	ws, err := workspace.New(cfg.RootDir, cfg.ToolsDir)
	if err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	s := &Service[T]{
		cfg: cfg,
		log: log,
		ws:  ws,
		runner: tools.NewRunner(ws.ToolsDir(), tools.Options{
			Timeout:      cfg.ToolTimeout,
			MaxProcesses: cfg.MaxProcesses,
		}),
		resolver: naming.NewCollisionResolver(),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// FinalResultsDirectory returns <root>/final. It does not create it.
func (s *Service[T]) FinalResultsDirectory() string { return s.ws.FinalDirPath() }

// Tools exposes the per-tool API. Its methods return errors instead of
// folding them into results.
func (s *Service[T]) Tools() *tools.Runner { return s.runner }

// OptimizeAll optimizes every file and returns the results in input
// order, the primary result of a source before its WebP sibling. Nil or
// empty input yields an empty slice. Failures inside one job only reduce
// that job's results; they are logged, not returned. The error is
// non-nil only for an invalid mode or a cancelled ctx, in which case the
// results of jobs that finished are still returned.
func (s *Service[T]) OptimizeAll(ctx context.Context, mode config.ConversionMode, webp bool, files []string) ([]Result[T], error) {
	if !mode.Valid() {
		return []Result[T]{}, fmt.Errorf("invalid conversion mode %q", mode)
	}
	if len(files) == 0 {
		return []Result[T]{}, nil
	}

	s.log.Info("Optimizing %d files (mode %s, webp %t)", len(files), mode, webp)

	perJob := make([][]Result[T], len(files))
	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i, f := range files {
		i, f := i, f
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			perJob[i] = s.process(ctx, i, len(files), f, mode, webp)
			return nil
		})
	}
	_ = g.Wait()

	out := []Result[T]{}
	for _, rs := range perJob {
		out = append(out, rs...)
	}
	return out, ctx.Err()
}
