package naming

import (
	"path/filepath"
	"strings"
)

// WebPExt is the extension of browser-specific siblings.
const WebPExt = ".webp"

// FinalName returns the basename a result of source takes in the final
// directory. An empty newExt keeps the source's extension; otherwise the
// extension is replaced (".png" for a retargeted GIF, [WebPExt] for a
// sibling).
func FinalName(source, newExt string) string {
	base := filepath.Base(source)
	if newExt == "" {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + newExt
}

// FinalPath joins FinalName onto finalDir.
func FinalPath(finalDir, source, newExt string) string {
	return filepath.Join(finalDir, FinalName(source, newExt))
}
