// Package fixture generates image files and fake optimizer executables for
// tests. Fakes are POSIX shell scripts; callers skip on Windows via
// RequireShell.
package fixture

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// Padding appended after an image's end marker by WriteOriginal. Decoders
// stop at the marker, so the padded file decodes identically but is
// larger than its compact encoding.
const Padding = 4096

// Gradient returns a w×h RGBA image with a deterministic colour ramp.
func Gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(w, 1)), G: uint8(y * 255 / max(h, 1)), B: 128, A: 255})
		}
	}
	return img
}

// PNG encodes a gradient with best compression.
func PNG(tb testing.TB, w, h int) []byte {
	tb.Helper()
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	require.NoError(tb, enc.Encode(&buf, Gradient(w, h)))
	return buf.Bytes()
}

// JPEG encodes a gradient at quality 90.
func JPEG(tb testing.TB, w, h int) []byte {
	tb.Helper()
	var buf bytes.Buffer
	require.NoError(tb, jpeg.Encode(&buf, Gradient(w, h), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// GIFOptions shapes a generated GIF.
type GIFOptions struct {
	Frames      int  // Default 1.
	Transparent bool // Reference a fully transparent palette entry.
	Width       int  // Default 32.
	Height      int  // Default 32.
}

// GIF encodes a paletted image, optionally animated and transparent.
func GIF(tb testing.TB, opts GIFOptions) []byte {
	tb.Helper()
	if opts.Frames < 1 {
		opts.Frames = 1
	}
	if opts.Width == 0 {
		opts.Width = 32
	}
	if opts.Height == 0 {
		opts.Height = 32
	}
	palette := color.Palette{
		color.RGBA{R: 255, A: 255},
		color.RGBA{G: 255, A: 255},
		color.RGBA{B: 255, A: 255},
	}
	if opts.Transparent {
		palette = append(palette, color.RGBA{})
	}

	g := &gif.GIF{}
	for f := 0; f < opts.Frames; f++ {
		img := image.NewPaletted(image.Rect(0, 0, opts.Width, opts.Height), palette)
		for y := 0; y < opts.Height; y++ {
			for x := 0; x < opts.Width; x++ {
				idx := uint8((x/4 + y/4 + f) % 3)
				if opts.Transparent && x < opts.Width/4 {
					idx = 3
				}
				img.SetColorIndex(x, y, idx)
			}
		}
		g.Image = append(g.Image, img)
		g.Delay = append(g.Delay, 10)
	}
	var buf bytes.Buffer
	require.NoError(tb, gif.EncodeAll(&buf, g))
	return buf.Bytes()
}

// Write stores data at path, creating parent directories.
func Write(tb testing.TB, path string, data []byte) string {
	tb.Helper()
	require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(tb, os.WriteFile(path, data, 0o644))
	return path
}

// WriteOriginal stores data followed by Padding zero bytes, producing a
// source file that a fake tool can shrink by copying the compact form.
func WriteOriginal(tb testing.TB, path string, data []byte) string {
	tb.Helper()
	padded := append(append([]byte{}, data...), make([]byte, Padding)...)
	return Write(tb, path, padded)
}

// Checksum returns the hex SHA-256 of the file at path.
func Checksum(tb testing.TB, path string) string {
	tb.Helper()
	b, err := os.ReadFile(path)
	require.NoError(tb, err)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// RequireShell skips tb on platforms without /bin/sh.
func RequireShell(tb testing.TB) {
	tb.Helper()
	if runtime.GOOS == "windows" {
		tb.Skip("fake tools are shell scripts")
	}
}
