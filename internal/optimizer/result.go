package optimizer

import (
	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/format"
)

// Result describes one file written to the final directory. A source
// yields at most one primary result and at most one browser-specific
// (WebP) result.
type Result[T any] struct {
	OriginalFile        string `json:"original_file"` // Canonical path of the untouched master.
	OptimizedFile       string `json:"optimized_file"`
	OriginalSize        int64  `json:"original_size"`
	OptimizedSize       int64  `json:"optimized_size"` // Length of OptimizedFile on disk.
	Optimized           bool   `json:"optimized"`
	FileTypeChanged     bool   `json:"file_type_changed"`
	BrowserSpecific     bool   `json:"browser_specific"`
	FailedAutomatedTest bool   `json:"failed_automated_test"`

	// Tool that produced the winning encoding. Informational.
	Tool string `json:"tool"`

	// Meta is caller-owned and never read by the optimizer.
	Meta T `json:"meta"`
}

// Saved returns OriginalSize - OptimizedSize.
func (r Result[T]) Saved() int64 { return r.OriginalSize - r.OptimizedSize }

// Job is the immutable description of one source in a batch.
type Job struct {
	ID        string
	Index     int
	Source    string // As given by the caller.
	Canonical string
	Size      int64
	Analysis  *format.Analysis
	Mode      config.ConversionMode
	WebP      bool
}
