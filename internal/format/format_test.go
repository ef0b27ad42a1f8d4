package format

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/pixmaster/internal/fixture"
)

func TestDetectBytes(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want Format
	}{
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0}, FormatPNG},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, FormatJPEG},
		{"gif87", []byte("GIF87a...."), FormatGIF},
		{"gif89", []byte("GIF89a...."), FormatGIF},
		{"truncated png", []byte{0x89, 'P', 'N'}, FormatUnknown},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBP"), FormatUnknown},
		{"empty", nil, FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectBytes(tt.head))
		})
	}
}

func TestDetect_IgnoresExtension(t *testing.T) {
	dir := t.TempDir()
	// A PNG named .gif is still a PNG.
	p := fixture.Write(t, filepath.Join(dir, "mislabelled.gif"), fixture.PNG(t, 4, 4))
	ft, err := Detect(p)
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, ft)

	txt := fixture.Write(t, filepath.Join(dir, "notes.png"), []byte("hello"))
	ft, err = Detect(txt)
	assert.Equal(t, FormatUnknown, ft)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Detect(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestFormatExtension(t *testing.T) {
	assert.Equal(t, ".png", FormatPNG.Extension())
	assert.Equal(t, ".jpg", FormatJPEG.Extension())
	assert.Equal(t, ".gif", FormatGIF.Extension())
	assert.Equal(t, "", FormatUnknown.Extension())
	assert.Equal(t, "unknown", FormatUnknown.String())
}

func TestCountFrames(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		frames int
	}{
		{"static", fixture.GIF(t, fixture.GIFOptions{}), 1},
		{"static transparent", fixture.GIF(t, fixture.GIFOptions{Transparent: true}), 1},
		{"two frames", fixture.GIF(t, fixture.GIFOptions{Frames: 2}), 2},
		{"five frames", fixture.GIF(t, fixture.GIFOptions{Frames: 5, Transparent: true}), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := CountFrames(bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.frames, n)
		})
	}
}

func TestCountFrames_Malformed(t *testing.T) {
	anim := fixture.GIF(t, fixture.GIFOptions{Frames: 3})

	_, err := CountFrames(bytes.NewReader(anim[:len(anim)-20]))
	assert.Error(t, err, "truncated before trailer")

	_, err = CountFrames(bytes.NewReader([]byte("GIF89a")))
	assert.Error(t, err)

	_, err = CountFrames(bytes.NewReader(fixture.PNG(t, 2, 2)))
	assert.Error(t, err)
}

func TestIsAnimated(t *testing.T) {
	dir := t.TempDir()
	static := fixture.Write(t, filepath.Join(dir, "static.gif"), fixture.GIF(t, fixture.GIFOptions{}))
	anim := fixture.Write(t, filepath.Join(dir, "anim.gif"), fixture.GIF(t, fixture.GIFOptions{Frames: 2}))
	data := fixture.GIF(t, fixture.GIFOptions{Frames: 4})
	broken := fixture.Write(t, filepath.Join(dir, "broken.gif"), data[:len(data)/2])

	assert.False(t, IsAnimated(static))
	assert.True(t, IsAnimated(anim))
	assert.False(t, IsAnimated(broken), "structure errors are not animation")
	assert.False(t, IsAnimated(filepath.Join(dir, "missing.gif")))
}

func TestClassify(t *testing.T) {
	palette := color.Palette{
		color.RGBA{R: 255, A: 255},
		color.RGBA{},                        // fully transparent
		color.NRGBA{R: 255, G: 255, A: 128}, // partially transparent
	}
	frame := func(indices ...uint8) *image.Paletted {
		img := image.NewPaletted(image.Rect(0, 0, len(indices), 1), palette)
		copy(img.Pix, indices)
		return img
	}

	tests := []struct {
		name   string
		frames []*image.Paletted
		want   Transparency
	}{
		{"opaque", []*image.Paletted{frame(0, 0, 0)}, TransparencyOpaque},
		{"unreferenced transparent entries", []*image.Paletted{frame(0)}, TransparencyOpaque},
		{"binary", []*image.Paletted{frame(0, 1)}, TransparencyBinary},
		{"alpha", []*image.Paletted{frame(0, 2)}, TransparencyAlpha},
		{"alpha wins over binary", []*image.Paletted{frame(1), frame(2)}, TransparencyAlpha},
		{"no frames", nil, TransparencyOpaque},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.frames))
		})
	}
}

func TestClassify_SubImage(t *testing.T) {
	palette := color.Palette{color.RGBA{A: 255}, color.RGBA{}}
	img := image.NewPaletted(image.Rect(0, 0, 4, 1), palette)
	img.Pix[3] = 1 // transparent pixel outside the sub-image
	sub := img.SubImage(image.Rect(0, 0, 2, 1)).(*image.Paletted)
	assert.Equal(t, TransparencyOpaque, Classify([]*image.Paletted{sub}))
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		data []byte
		want Analysis
	}{
		{"png", fixture.PNG(t, 10, 7), Analysis{Format: FormatPNG, Transparency: TransparencyUnknown, Width: 10, Height: 7}},
		{"jpeg", fixture.JPEG(t, 8, 8), Analysis{Format: FormatJPEG, Transparency: TransparencyUnknown, Width: 8, Height: 8}},
		{"opaque gif", fixture.GIF(t, fixture.GIFOptions{}),
			Analysis{Format: FormatGIF, Frames: 1, Transparency: TransparencyOpaque, Width: 32, Height: 32}},
		{"transparent gif", fixture.GIF(t, fixture.GIFOptions{Transparent: true}),
			Analysis{Format: FormatGIF, Frames: 1, Transparency: TransparencyBinary, Width: 32, Height: 32}},
		{"animated gif", fixture.GIF(t, fixture.GIFOptions{Frames: 3}),
			Analysis{Format: FormatGIF, Frames: 3, Animated: true, Transparency: TransparencyOpaque, Width: 32, Height: 32}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fixture.Write(t, filepath.Join(dir, tt.name), tt.data)
			a, err := Analyze(p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *a)
		})
	}

	_, err := Analyze(fixture.Write(t, filepath.Join(dir, "x.bmp"), []byte("BM......")))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestGIFToPNG(t *testing.T) {
	dir := t.TempDir()
	src := fixture.Write(t, filepath.Join(dir, "in.gif"), fixture.GIF(t, fixture.GIFOptions{Transparent: true, Width: 16, Height: 12}))
	dst := filepath.Join(dir, "in.png")
	require.NoError(t, GIFToPNG(src, dst))

	ft, err := Detect(dst)
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, ft)

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 12), img.Bounds())
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "transparent pixels survive conversion")
	_, _, _, a = img.At(15, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestGIFToPNG_NotAGIF(t *testing.T) {
	dir := t.TempDir()
	src := fixture.Write(t, filepath.Join(dir, "in.gif"), fixture.PNG(t, 2, 2))
	assert.Error(t, GIFToPNG(src, filepath.Join(dir, "out.png")))
}
