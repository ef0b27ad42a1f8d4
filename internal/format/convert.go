package format

import (
	"bufio"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
)

// GIFToPNG renders the first frame of the GIF at src onto its logical
// screen and writes it to dst as a best-compression PNG. The palette is
// kept so the PNG stays indexed.
func GIFToPNG(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	g, err := gif.DecodeAll(bufio.NewReader(in))
	in.Close()
	if err != nil {
		return fmt.Errorf("decode gif %s: %w", src, err)
	}
	if len(g.Image) == 0 {
		return fmt.Errorf("decode gif %s: no frames", src)
	}

	img := flatten(g)

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("encode png %s: %w", dst, err)
	}
	return out.Close()
}

// flatten places the first frame on a canvas the size of the logical
// screen. Uncovered pixels take the palette's transparent entry if there
// is one.
func flatten(g *gif.GIF) *image.Paletted {
	frame := g.Image[0]
	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() || frame.Bounds() == screen {
		return frame
	}

	canvas := image.NewPaletted(screen, frame.Palette)
	fill := uint8(0)
	for i, c := range frame.Palette {
		if _, _, _, a := c.RGBA(); a == 0 {
			fill = uint8(i)
			break
		}
	}
	if fill != 0 {
		for i := range canvas.Pix {
			canvas.Pix[i] = fill
		}
	}
	draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Src)
	return canvas
}
