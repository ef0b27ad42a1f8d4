package tools

import (
	"path/filepath"
	"strings"

	"github.com/backmassage/pixmaster/internal/format"
)

// ID names an external optimizer executable. The value is also the file
// name looked up in the tools directory.
type ID string

const (
	Advpng     ID = "advpng"
	Pngout     ID = "pngout"
	Optipng    ID = "optipng"
	Gifsicle   ID = "gifsicle"
	Jpegtran   ID = "jpegtran"
	Jfifremove ID = "jfifremove"
	Cwebp      ID = "cwebp"
	Gif2webp   ID = "gif2webp"
)

// All lists every known tool in a stable order.
var All = []ID{Advpng, Pngout, Optipng, Gifsicle, Jpegtran, Jfifremove, Cwebp, Gif2webp}

// ioMode describes how a tool consumes its input and produces its output.
type ioMode int

const (
	// modeInPlace tools rewrite the file named by their last argument. The
	// runner hands them a copy so the working copy is never touched.
	modeInPlace ioMode = iota
	// modeInOut tools read one path and write another.
	modeInOut
	// modeStdio tools filter stdin to stdout.
	modeStdio
)

type spec struct {
	mode ioMode
	ext  string // Output extension override; empty keeps the input's.
	args func(in, out string) []string
}

var specs = map[ID]spec{
	Advpng: {mode: modeInPlace, args: func(_, out string) []string {
		return []string{"-z", "-4", "-q", out}
	}},
	Pngout: {mode: modeInOut, args: func(in, out string) []string {
		return []string{"-y", "-q", in, out}
	}},
	Optipng: {mode: modeInPlace, args: func(_, out string) []string {
		return []string{"-o7", "-quiet", out}
	}},
	Gifsicle: {mode: modeInOut, args: func(in, out string) []string {
		return []string{"-O3", "--careful", "-o", out, in}
	}},
	Jpegtran: {mode: modeInOut, args: func(in, out string) []string {
		return []string{"-copy", "none", "-optimize", "-outfile", out, in}
	}},
	Jfifremove: {mode: modeStdio, args: func(_, _ string) []string { return nil }},
	Cwebp: {mode: modeInOut, ext: ".webp", args: func(in, out string) []string {
		return []string{"-quiet", "-lossless", "-m", "6", in, "-o", out}
	}},
	Gif2webp: {mode: modeInOut, ext: ".webp", args: func(in, out string) []string {
		return []string{"-quiet", "-m", "6", in, "-o", out}
	}},
}

// Known reports whether id names a registered tool.
func Known(id ID) bool {
	_, ok := specs[id]
	return ok
}

// ForFormat returns the primary-channel tools for f in priority order.
// Priority decides ties between equally small candidates.
func ForFormat(f format.Format) []ID {
	switch f {
	case format.FormatPNG:
		return []ID{Advpng, Pngout, Optipng}
	case format.FormatJPEG:
		return []ID{Jpegtran, Jfifremove}
	case format.FormatGIF:
		return []ID{Gifsicle}
	}
	return nil
}

// OutputPath returns where id writes its result for working: a directory
// named after the tool next to the working file, keeping the basename
// (with .webp for the WebP encoders).
func OutputPath(id ID, working string) string {
	base := filepath.Base(working)
	if ext := specs[id].ext; ext != "" {
		base = strings.TrimSuffix(base, filepath.Ext(base)) + ext
	}
	return filepath.Join(filepath.Dir(working), string(id), base)
}

// Args returns the argument vector id is invoked with, excluding argv[0].
func Args(id ID, in, out string) []string {
	s, ok := specs[id]
	if !ok {
		return nil
	}
	return s.args(in, out)
}
