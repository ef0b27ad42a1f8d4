package display

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/pixmaster/internal/format"
	"github.com/backmassage/pixmaster/internal/optimizer"
)

func noColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestWriteResults(t *testing.T) {
	noColor(t)
	rs := []optimizer.Result[struct{}]{
		{OriginalFile: "/m/logo.gif", OptimizedFile: "/r/final/logo.png", OriginalSize: 2000, OptimizedSize: 1000, Optimized: true, FileTypeChanged: true, Tool: "optipng"},
		{OriginalFile: "/m/logo.gif", OptimizedFile: "/r/final/logo.webp", OriginalSize: 2000, OptimizedSize: 500, Optimized: true, FileTypeChanged: true, BrowserSpecific: true, FailedAutomatedTest: true, Tool: "gif2webp"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, rs))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "SOURCE"))
	assert.Contains(t, lines[1], "logo.png")
	assert.Contains(t, lines[1], "50%")
	assert.Contains(t, lines[1], "- 1000 B")
	assert.Contains(t, lines[2], "- 1.5 KiB")
	assert.Contains(t, lines[1], "retargeted")
	assert.Contains(t, lines[2], "webp [visual check failed]")
	assert.NotContains(t, lines[2], "retargeted")
}

func TestWriteAnalysis(t *testing.T) {
	noColor(t)
	rows := []AnalysisRow{
		{Path: "/m/spin.gif", Size: 4096, Plan: "keep", Analysis: &format.Analysis{
			Format: format.FormatGIF, Animated: true, Frames: 3, Transparency: format.TransparencyBinary, Width: 16, Height: 8,
		}},
		{Path: "/m/photo.jpg", Size: 100, Plan: "jpegtran", Analysis: &format.Analysis{
			Format: format.FormatJPEG, Frames: 1, Transparency: format.TransparencyUnknown, Width: 4, Height: 4,
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteAnalysis(&buf, rows))
	out := buf.String()
	assert.Contains(t, out, "3 (animated)")
	assert.Contains(t, out, "binary")
	assert.Contains(t, out, "16x8")
	assert.Contains(t, out, "4.0 KiB")
}

type recLogger struct{ lines []string }

func (r *recLogger) rec(level, f string, a ...interface{}) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(f, a...))
}
func (r *recLogger) Info(f string, a ...interface{})    { r.rec("INFO", f, a...) }
func (r *recLogger) Success(f string, a ...interface{}) { r.rec("SUCCESS", f, a...) }
func (r *recLogger) Warn(f string, a ...interface{})    { r.rec("WARN", f, a...) }

func TestLogSummary(t *testing.T) {
	log := &recLogger{}
	LogSummary(log, optimizer.Stats{Sources: 2, Primary: 2, WebP: 1, FailedVisual: 1, TotalInputBytes: 2048, TotalOutputBytes: 1024}, 3)
	all := strings.Join(log.lines, "\n")
	assert.Contains(t, all, "Done: 2 of 3 files optimized, 1 WebP siblings")
	assert.Contains(t, all, "WARN   1 result(s) failed the visual check")
	assert.Contains(t, all, "SUCCESS   Total space saved: 1.0 KiB (input 2.0 KiB -> output 1.0 KiB, 50%)")

	log = &recLogger{}
	LogSummary(log, optimizer.Stats{}, 0)
	assert.Contains(t, strings.Join(log.lines, "\n"), "Total space saved: 0 B")
}

func TestPrintBanner(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_|   |_/_/")
}
