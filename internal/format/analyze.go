package format

import (
	"image"
	_ "image/gif" // register decoders for image.DecodeConfig
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// Analysis is everything the optimizer needs to know about a source file
// before choosing tools.
type Analysis struct {
	Format       Format
	Animated     bool
	Frames       int
	Transparency Transparency
	Width        int
	Height       int
}

// Analyze detects the format of path and, for GIFs, counts frames and
// classifies transparency. Only an unreadable or unsupported file is an
// error; a GIF whose pixels cannot be decoded gets TransparencyUnknown.
func Analyze(path string) (*Analysis, error) {
	ft, err := Detect(path)
	if err != nil {
		return nil, err
	}
	a := &Analysis{Format: ft, Transparency: TransparencyUnknown}

	if f, err := os.Open(path); err == nil {
		if cfg, _, err := image.DecodeConfig(f); err == nil {
			a.Width, a.Height = cfg.Width, cfg.Height
		}
		f.Close()
	}

	if ft != FormatGIF {
		return a, nil
	}
	if f, err := os.Open(path); err == nil {
		n, err := CountFrames(f)
		f.Close()
		if err == nil {
			a.Frames = n
			a.Animated = n > 1
		}
	}
	if t, err := TransparencyOf(path); err == nil {
		a.Transparency = t
	}
	return a, nil
}
