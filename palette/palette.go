/*
Package palette implements the indexed color handling used when cutting
animated GIFs: a typed, read-only palette of at most 256 RGB colors, a
nearest color index over it and conversion of pixel buffers between
indexed and RGBA form.

Palette order is significant. It fixes the color id of every entry and
breaks ties when two entries are equally close to a color.
*/
package palette

import (
	"errors"
	"fmt"
	"image/color"
)

// MaxColors is the largest palette a GIF color table can hold
const MaxColors = 256

// ErrMalformed is returned when raw palette data cannot be parsed
var ErrMalformed = errors.New("palette: malformed palette")

// Color is a single palette entry
type Color struct {
	R, G, B uint8
}

// RGBA implements color.Color. Palette entries are always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{c.R, c.G, c.B, 0xff}.RGBA()
}

// Palette is an ordered list of colors where the position of a color is
// its index. A Palette is never modified after construction so it can be
// shared between goroutines.
type Palette []Color

// Parse reads packed RGB triples
func Parse(b []byte) (Palette, error) {
	if len(b)%3 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of RGB triples", ErrMalformed, len(b))
	}
	if len(b)/3 > MaxColors {
		return nil, fmt.Errorf("%w: %d colors exceeds %d", ErrMalformed, len(b)/3, MaxColors)
	}

	p := make(Palette, len(b)/3)
	for i := range p {
		p[i] = Color{b[i*3], b[i*3+1], b[i*3+2]}
	}
	return p, nil
}

// FromColorPalette converts a standard library palette, dropping alpha
func FromColorPalette(cp color.Palette) (Palette, error) {
	if len(cp) > MaxColors {
		return nil, fmt.Errorf("%w: %d colors exceeds %d", ErrMalformed, len(cp), MaxColors)
	}

	p := make(Palette, len(cp))
	for i, c := range cp {
		if c == nil {
			return nil, fmt.Errorf("%w: nil color at index %d", ErrMalformed, i)
		}
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		p[i] = Color{n.R, n.G, n.B}
	}
	return p, nil
}

// Bytes returns the palette as packed RGB triples
func (p Palette) Bytes() []byte {
	b := make([]byte, 0, len(p)*3)
	for _, c := range p {
		b = append(b, c.R, c.G, c.B)
	}
	return b
}

// ColorPalette returns the palette for use with image.Paletted. If
// transparent is a valid index that entry is made fully transparent, which
// is how image/gif learns the transparent index of a frame.
func (p Palette) ColorPalette(transparent int) color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		if i == transparent {
			cp[i] = color.NRGBA{c.R, c.G, c.B, 0x00}
			continue
		}
		cp[i] = color.RGBA{c.R, c.G, c.B, 0xff}
	}
	return cp
}

var baseColors = [...]Color{
	{0xff, 0x00, 0x00},
	{0x00, 0xff, 0x00},
	{0x00, 0x00, 0xff},
	{0xff, 0xff, 0x00},
	{0xff, 0x00, 0xff},
	{0x00, 0xff, 0xff},
	{0xff, 0xff, 0xff},
	{0x00, 0x00, 0x00},
}

const (
	grayLevels = 31
	grayStep   = 8
)

// Default returns the fallback palette used when a source carries no color
// table: the eight primary and secondary colors, a 31 step gray ramp and
// black for every remaining entry.
func Default() Palette {
	p := make(Palette, MaxColors)
	n := copy(p, baseColors[:])
	for i := 0; i < grayLevels; i++ {
		v := uint8(i * grayStep)
		p[n+i] = Color{v, v, v}
	}
	return p
}
