package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/display"
	"github.com/backmassage/pixmaster/internal/format"
	"github.com/backmassage/pixmaster/internal/optimizer"
	"github.com/backmassage/pixmaster/internal/policy"
	"github.com/backmassage/pixmaster/internal/tools"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [flags] <file-or-dir>...",
		Short: "Show what optimize would do with each image",
		Long: `Detect the format, animation and transparency of every image and print
the tools optimize would race, whether a GIF would be retargeted to PNG and
which WebP encoder would run. Nothing is written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd, args)
		},
	}
	a.batchFlags(cmd)
	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, log, err := a.setup(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	files, err := optimizer.Discover(args)
	if err != nil {
		return err
	}

	rows := make([]display.AnalysisRow, 0, len(files))
	for _, f := range files {
		fi, err := os.Stat(f)
		if err != nil {
			log.Error("Cannot read %s: %v", f, err)
			continue
		}
		an, err := format.Analyze(f)
		if err != nil {
			if errors.Is(err, format.ErrUnsupportedFormat) {
				log.Warn("Skip (unsupported format): %s", f)
			} else {
				log.Error("Cannot analyze %s: %v", f, err)
			}
			continue
		}
		rows = append(rows, display.AnalysisRow{
			Path:     f,
			Size:     fi.Size(),
			Analysis: an,
			Plan:     planFor(an, cfg.Mode, cfg.WebP),
		})
	}

	if len(rows) == 0 {
		log.Warn("No images found")
		return nil
	}
	if err := display.WriteAnalysis(a.out, rows); err != nil {
		return err
	}
	log.Info("Analyzed %d files (mode %s, webp %t)", len(rows), cfg.Mode, cfg.WebP)
	return nil
}

// planFor describes the tools and conversions optimize would apply.
func planFor(an *format.Analysis, mode config.ConversionMode, webp bool) string {
	d := policy.Decide(an.Format, an.Animated, an.Transparency, mode, webp)
	ids := tools.ForFormat(an.Format)
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	parts := []string{strings.Join(names, ",")}
	if d.Retarget {
		parts = append(parts, "try png")
	}
	if d.ProduceWebP() {
		parts = append(parts, fmt.Sprintf("webp via %s", d.WebP.Tool()))
	}
	return strings.Join(parts, "; ")
}
