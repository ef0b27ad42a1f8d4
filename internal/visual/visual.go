// Package visual runs the advisory "did the optimizer change how it looks"
// check. Both images are decoded, shrunk to a thumbnail, softened and
// compared by mean absolute RGBA difference.
package visual

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // decoders registered for image.Decode
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/disintegration/gift"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

const (
	thumbSize = 128
	blurSigma = 0.8
)

// Report is the outcome of one comparison.
type Report struct {
	Difference float64 // Mean absolute RGBA difference, 0 (identical) to 1.
	Failed     bool
	Reason     string // Set when Failed.
}

// Compare checks optimized against original. Animated GIFs compare their
// first frames only. A file that cannot be decoded, or dimensions that
// differ, fail the check.
func Compare(original, optimized string, tolerance float64) Report {
	a, err := decode(original)
	if err != nil {
		return Report{Failed: true, Reason: fmt.Sprintf("original: %v", err)}
	}
	b, err := decode(optimized)
	if err != nil {
		return Report{Failed: true, Reason: fmt.Sprintf("optimized: %v", err)}
	}
	if a.Bounds().Size() != b.Bounds().Size() {
		return Report{Failed: true, Reason: fmt.Sprintf("dimensions changed from %v to %v", a.Bounds().Size(), b.Bounds().Size())}
	}

	diff := Difference(a, b)
	r := Report{Difference: diff}
	if diff > tolerance {
		r.Failed = true
		r.Reason = fmt.Sprintf("difference %.4f exceeds tolerance %.4f", diff, tolerance)
	}
	return r
}

// Difference returns the mean absolute difference of the premultiplied
// RGBA channels of a and b after both are reduced to the same thumbnail.
// Images must have equal dimensions.
func Difference(a, b image.Image) float64 {
	pa, pb := prepare(a), prepare(b)
	if len(pa.Pix) != len(pb.Pix) || len(pa.Pix) == 0 {
		return 1
	}
	var sum float64
	for i := range pa.Pix {
		sum += math.Abs(float64(pa.Pix[i]) - float64(pb.Pix[i]))
	}
	return sum / (float64(len(pa.Pix)) * 255)
}

func prepare(img image.Image) *image.RGBA {
	thumb := resize.Thumbnail(thumbSize, thumbSize, img, resize.Bilinear)
	g := gift.New(gift.GaussianBlur(blurSigma))
	out := image.NewRGBA(g.Bounds(thumb.Bounds()))
	g.Draw(out, thumb)
	return out
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return toRGBA(img), nil
}

// toRGBA normalises bounds to the origin so sub-images and offset frames
// compare pixel for pixel.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
