// Package policy decides, per file, whether a GIF may be retargeted to PNG
// and which encoder (if any) produces its WebP sibling.
package policy

import (
	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/format"
	"github.com/backmassage/pixmaster/internal/tools"
)

// WebPEncoder selects the WebP channel for a job.
type WebPEncoder int

const (
	WebPNone    WebPEncoder = iota // No WebP sibling.
	WebPGeneral                    // cwebp, for PNG jobs.
	WebPFromGIF                    // gif2webp, for every GIF job.
)

// Tool returns the encoder's tool ID, or "" for WebPNone.
func (w WebPEncoder) Tool() tools.ID {
	switch w {
	case WebPGeneral:
		return tools.Cwebp
	case WebPFromGIF:
		return tools.Gif2webp
	}
	return ""
}

// Decision is the per-job outcome of the conversion rules.
type Decision struct {
	Retarget bool        // Try a PNG encoding of a static GIF.
	WebP     WebPEncoder // Which WebP encoder to run.
	reason   string
}

// ProduceWebP reports whether a WebP sibling should be attempted.
func (d Decision) ProduceWebP() bool { return d.WebP != WebPNone }

// PreferPNG reports whether the PNG path wins over the GIF path. Only a
// strictly smaller PNG changes the file type.
func (d Decision) PreferPNG(pngSize, gifSize int64) bool {
	return d.Retarget && pngSize < gifSize
}

// Reason is a short description of the rule that applied.
func (d Decision) Reason() string { return d.reason }

// Decide applies the rules in order:
//
//  1. JPEG is never retargeted and never gets a WebP sibling.
//  2. An animated GIF is never retargeted and never gets a WebP sibling.
//  3. A static GIF is retargeted under ALL, under IE6SAFE only when it is
//     opaque, and never under NONE.
//  4. Every remaining job gets a WebP sibling when requested: gif2webp for
//     GIF jobs (retargeted or not), cwebp otherwise.
func Decide(f format.Format, animated bool, t format.Transparency, mode config.ConversionMode, webp bool) Decision {
	switch {
	case f == format.FormatJPEG:
		return Decision{reason: "jpeg is never converted"}
	case f == format.FormatGIF && animated:
		return Decision{reason: "animated gif is never converted"}
	}

	d := Decision{}
	if f == format.FormatGIF {
		switch mode {
		case config.ModeAll:
			d.Retarget = true
			d.reason = "static gif, mode ALL"
		case config.ModeIE6Safe:
			d.Retarget = t == format.TransparencyOpaque
			if d.Retarget {
				d.reason = "opaque static gif, mode IE6SAFE"
			} else {
				d.reason = "gif with transparency is kept under IE6SAFE"
			}
		default:
			d.reason = "mode NONE keeps the file type"
		}
	} else {
		d.reason = "file type is kept"
	}

	if webp {
		d.WebP = WebPGeneral
		if f == format.FormatGIF {
			d.WebP = WebPFromGIF
		}
	}
	return d
}
