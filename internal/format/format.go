// Package format identifies raster image types by their magic bytes and
// inspects GIF structure: frame count (animation) and palette transparency.
package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrUnsupportedFormat is returned when a file is not PNG, JPEG or GIF.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format is a detected image type.
type Format string

const (
	FormatUnknown Format = ""
	FormatPNG     Format = "png"
	FormatJPEG    Format = "jpeg"
	FormatGIF     Format = "gif"
)

func (f Format) String() string {
	if f == FormatUnknown {
		return "unknown"
	}
	return string(f)
}

// Extension returns the canonical file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatPNG:
		return ".png"
	case FormatJPEG:
		return ".jpg"
	case FormatGIF:
		return ".gif"
	}
	return ""
}

var (
	magicPNG   = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	magicJPEG  = []byte{0xFF, 0xD8, 0xFF}
	magicGIF87 = []byte("GIF87a")
	magicGIF89 = []byte("GIF89a")
)

// sniffLen is the longest magic sequence we compare against.
const sniffLen = 8

// DetectBytes classifies the leading bytes of a file.
func DetectBytes(head []byte) Format {
	switch {
	case bytes.HasPrefix(head, magicPNG):
		return FormatPNG
	case bytes.HasPrefix(head, magicJPEG):
		return FormatJPEG
	case bytes.HasPrefix(head, magicGIF87), bytes.HasPrefix(head, magicGIF89):
		return FormatGIF
	}
	return FormatUnknown
}

// Detect reads the head of path and classifies it. The file extension is
// never consulted.
func Detect(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FormatUnknown, fmt.Errorf("read %s: %w", path, err)
	}
	if ft := DetectBytes(head[:n]); ft != FormatUnknown {
		return ft, nil
	}
	return FormatUnknown, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}
