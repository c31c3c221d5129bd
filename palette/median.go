package palette

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
)

// MedianCut derives a palette of at most n colors from m using median cut
// quantization.
func MedianCut(m image.Image, n int) (Palette, error) {
	if n <= 0 || n > MaxColors {
		return nil, fmt.Errorf("%w: cannot build a palette of %d colors", ErrMalformed, n)
	}

	q := quantize.MedianCutQuantizer{}
	return FromColorPalette(q.Quantize(make(color.Palette, 0, n), m))
}
