package display

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/backmassage/pixmaster/internal/format"
	"github.com/backmassage/pixmaster/internal/optimizer"
)

var (
	flagWarn = color.New(color.FgHiYellow)
	flagNote = color.New(color.FgHiCyan)
)

// Logger is the subset of *logging.Logger used for summaries.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
}

// WriteResults prints one row per result. Flags go in the last column so
// color escapes do not disturb tabwriter alignment.
func WriteResults[T any](w io.Writer, results []optimizer.Result[T]) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tOUTPUT\tTOOL\tSIZE\tCHANGE\tRATIO\tFLAGS")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			filepath.Base(r.OriginalFile),
			filepath.Base(r.OptimizedFile),
			r.Tool,
			FormatBytes(r.OptimizedSize),
			FormatBytesWithSign(-r.Saved()),
			FormatPercent(r.OptimizedSize, r.OriginalSize),
			resultFlags(r.FileTypeChanged, r.BrowserSpecific, r.FailedAutomatedTest),
		)
	}
	return tw.Flush()
}

func resultFlags(typeChanged, browserSpecific, failedVisual bool) string {
	var parts []string
	if typeChanged && !browserSpecific {
		parts = append(parts, flagNote.Sprint("retargeted"))
	}
	if browserSpecific {
		parts = append(parts, flagNote.Sprint("webp"))
	}
	if failedVisual {
		parts = append(parts, flagWarn.Sprint("[visual check failed]"))
	}
	return strings.Join(parts, " ")
}

// AnalysisRow is one analyzed source. Plan is a preformatted description
// of what the optimizer would do with it.
type AnalysisRow struct {
	Path     string
	Size     int64
	Analysis *format.Analysis
	Plan     string
}

// WriteAnalysis prints the analyze command's table.
func WriteAnalysis(w io.Writer, rows []AnalysisRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tFORMAT\tSIZE\tDIMENSIONS\tFRAMES\tTRANSPARENCY\tPLAN")
	for _, r := range rows {
		a := r.Analysis
		frames := "-"
		if a.Format == format.FormatGIF {
			frames = fmt.Sprintf("%d", a.Frames)
			if a.Animated {
				frames += " (animated)"
			}
		}
		transparency := "-"
		if a.Transparency != format.TransparencyUnknown && a.Transparency != "" {
			transparency = string(a.Transparency)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d\t%s\t%s\t%s\n",
			filepath.Base(r.Path), a.Format, FormatBytes(r.Size), a.Width, a.Height,
			frames, transparency, r.Plan)
	}
	return tw.Flush()
}

// LogSummary logs the batch totals.
func LogSummary(log Logger, s optimizer.Stats, inputs int) {
	log.Info("==============================")
	log.Info("Done: %d of %d files optimized, %d WebP siblings", s.Sources, inputs, s.WebP)
	log.Info("Summary report:")
	log.Info("  Primary results: %d (%d retargeted to PNG)", s.Primary, s.Retargeted)
	if s.FailedVisual > 0 {
		log.Warn("  %d result(s) failed the visual check", s.FailedVisual)
	}
	saved := s.SpaceSaved()
	if s.Primary == 0 {
		log.Info("  Total space saved: 0 B")
		return
	}
	log.Success("  Total space saved: %s (input %s -> output %s, %s)",
		FormatBytes(saved),
		FormatBytes(s.TotalInputBytes),
		FormatBytes(s.TotalOutputBytes),
		FormatPercent(s.TotalOutputBytes, s.TotalInputBytes))
}
