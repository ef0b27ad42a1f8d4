package format

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"io"
	"os"
)

// Transparency classifies how a GIF uses its palette's alpha.
type Transparency string

const (
	TransparencyUnknown Transparency = "unknown" // Not examined (non-GIF or undecodable).
	TransparencyOpaque  Transparency = "opaque"  // No pixel references a transparent entry.
	TransparencyBinary  Transparency = "binary"  // Only fully transparent entries are referenced.
	TransparencyAlpha   Transparency = "alpha"   // Some referenced entry is partially transparent.
)

// GIF block introducers.
const (
	blockExtension = 0x21
	blockImage     = 0x2C
	blockTrailer   = 0x3B
)

var errGIFStructure = errors.New("malformed gif")

// CountFrames walks the GIF block structure and counts image descriptors.
// Pixel data is skipped, never decoded.
func CountFrames(r io.Reader) (int, error) {
	br := bufio.NewReader(r)

	var hdr [13]byte // 6-byte signature + 7-byte logical screen descriptor.
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if DetectBytes(hdr[:6]) != FormatGIF {
		return 0, fmt.Errorf("%w: bad signature", errGIFStructure)
	}
	if err := skipColorTable(br, hdr[10]); err != nil {
		return 0, err
	}

	frames := 0
	for {
		b, err := br.ReadByte()
		if err != nil {
			return frames, fmt.Errorf("read block: %w", err)
		}
		switch b {
		case blockExtension:
			if _, err := br.ReadByte(); err != nil { // label
				return frames, fmt.Errorf("read extension label: %w", err)
			}
			if err := skipSubBlocks(br); err != nil {
				return frames, err
			}
		case blockImage:
			var desc [9]byte
			if _, err := io.ReadFull(br, desc[:]); err != nil {
				return frames, fmt.Errorf("read image descriptor: %w", err)
			}
			if err := skipColorTable(br, desc[8]); err != nil {
				return frames, err
			}
			if _, err := br.ReadByte(); err != nil { // LZW minimum code size
				return frames, fmt.Errorf("read lzw code size: %w", err)
			}
			if err := skipSubBlocks(br); err != nil {
				return frames, err
			}
			frames++
		case blockTrailer:
			return frames, nil
		default:
			return frames, fmt.Errorf("%w: unexpected block 0x%02x", errGIFStructure, b)
		}
	}
}

// skipColorTable discards a global or local colour table when the packed
// flags byte announces one.
func skipColorTable(br *bufio.Reader, packed byte) error {
	if packed&0x80 == 0 {
		return nil
	}
	size := int64(3) << ((packed & 0x07) + 1)
	if _, err := br.Discard(int(size)); err != nil {
		return fmt.Errorf("skip color table: %w", err)
	}
	return nil
}

func skipSubBlocks(br *bufio.Reader) error {
	for {
		n, err := br.ReadByte()
		if err != nil {
			return fmt.Errorf("read sub-block: %w", err)
		}
		if n == 0 {
			return nil
		}
		if _, err := br.Discard(int(n)); err != nil {
			return fmt.Errorf("skip sub-block: %w", err)
		}
	}
}

// IsAnimated reports whether path is a GIF with more than one frame. Any
// read or structure error yields false.
func IsAnimated(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	n, err := CountFrames(f)
	return err == nil && n > 1
}

// Classify inspects the palette entries actually referenced by the frames'
// pixels. Unreferenced transparent entries do not count.
func Classify(frames []*image.Paletted) Transparency {
	result := TransparencyOpaque
	for _, fr := range frames {
		if fr == nil {
			continue
		}
		used := make([]bool, len(fr.Palette))
		b := fr.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := fr.Pix[fr.PixOffset(b.Min.X, y):fr.PixOffset(b.Max.X, y)]
			for _, idx := range row {
				if int(idx) < len(used) {
					used[idx] = true
				}
			}
		}
		for i, c := range fr.Palette {
			if !used[i] || c == nil {
				continue
			}
			_, _, _, a := c.RGBA()
			switch {
			case a == 0:
				result = TransparencyBinary
			case a < 0xffff:
				return TransparencyAlpha
			}
		}
	}
	return result
}

// TransparencyOf decodes every frame of a GIF and classifies it.
func TransparencyOf(path string) (Transparency, error) {
	f, err := os.Open(path)
	if err != nil {
		return TransparencyUnknown, err
	}
	defer f.Close()
	g, err := gif.DecodeAll(bufio.NewReader(f))
	if err != nil {
		return TransparencyUnknown, fmt.Errorf("decode gif %s: %w", path, err)
	}
	return Classify(g.Image), nil
}
