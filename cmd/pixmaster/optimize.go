package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/backmassage/pixmaster/internal/check"
	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/display"
	"github.com/backmassage/pixmaster/internal/optimizer"
)

// resultMeta is the caller metadata the CLI attaches to every result.
type resultMeta struct {
	Source string `json:"source"`
	Ref    string `json:"ref,omitempty"`
}

// report is the JSON document written by --report.
type report struct {
	Version        string                         `json:"version"`
	GeneratedAt    time.Time                      `json:"generated_at"`
	Mode           config.ConversionMode          `json:"mode"`
	WebP           bool                           `json:"webp"`
	FinalDirectory string                         `json:"final_directory"`
	Interrupted    bool                           `json:"interrupted"`
	Stats          optimizer.Stats                `json:"stats"`
	Results        []optimizer.Result[resultMeta] `json:"results"`
}

func newOptimizeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize [flags] <file-or-dir>...",
		Short: "Optimize images into <root>/final",
		Long: `Race the external optimizers against every image and copy the smallest
result into <root>/final. Sources are never modified.

Directories are searched recursively for .png, .jpg, .jpeg and .gif files.
Files named explicitly are always processed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOptimize(cmd, args)
		},
	}
	a.batchFlags(cmd)
	f := cmd.Flags()
	f.DurationVar(&a.flags.ToolTimeout, "timeout", a.flags.ToolTimeout, "timeout per external tool run")
	f.IntVar(&a.flags.Workers, "workers", a.flags.Workers, "images processed concurrently")
	f.IntVar(&a.flags.MaxProcesses, "max-procs", a.flags.MaxProcesses, "external processes running concurrently")
	f.Float64Var(&a.flags.VisualTolerance, "tolerance", a.flags.VisualTolerance, "visual check tolerance (0..1)")
	f.StringVar(&a.flags.ReportFile, "report", "", "write a JSON report of the results")
	f.StringVar(&a.flags.Ref, "ref", "", "opaque reference stored in every result")
	return cmd
}

func (a *app) runOptimize(cmd *cobra.Command, args []string) error {
	cfg, log, err := a.setup(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	display.PrintBanner(a.out)

	if cfg.RootDir == "" {
		return errors.New("--root is required")
	}
	if cfg.ToolsDir == "" {
		return errors.New("--tools is required")
	}

	missing, err := check.CheckTools(cfg.ToolsDir)
	if err != nil {
		log.Error("%v", err)
		return err
	}
	for _, id := range missing {
		log.Warn("Tool not available, skipping: %s", id)
	}

	files, err := optimizer.Discover(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Warn("No images found")
		return nil
	}

	svc, err := optimizer.New[resultMeta](cfg, log, optimizer.WithMeta(func(src string) resultMeta {
		return resultMeta{Source: src, Ref: cfg.Ref}
	}))
	if err != nil {
		return err
	}

	log.Info("=== Pixmaster v%s (%s) ===", version, commit)
	log.Info("Root:  %s", cfg.RootDir)
	log.Info("Tools: %s", cfg.ToolsDir)
	log.Info("")

	// Cancel on SIGINT/SIGTERM; running tools are killed and jobs wind down.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, stopping…")
			cancel()
		case <-ctx.Done():
		}
	}()

	results, runErr := svc.OptimizeAll(ctx, cfg.Mode, cfg.WebP, files)

	if len(results) > 0 {
		fmt.Fprintln(a.out)
		if err := display.WriteResults(a.out, results); err != nil {
			return err
		}
	}
	stats := optimizer.Summarize(results)
	display.LogSummary(log, stats, len(files))
	log.Info("Final directory: %s", svc.FinalResultsDirectory())

	if cfg.ReportFile != "" {
		rep := report{
			Version:        version,
			GeneratedAt:    time.Now().UTC(),
			Mode:           cfg.Mode,
			WebP:           cfg.WebP,
			FinalDirectory: svc.FinalResultsDirectory(),
			Interrupted:    runErr != nil,
			Stats:          stats,
			Results:        results,
		}
		if err := writeReport(cfg.ReportFile, rep); err != nil {
			return err
		}
		log.Info("Report written to %s", cfg.ReportFile)
	}
	return runErr
}

func writeReport(path string, rep report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
