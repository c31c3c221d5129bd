package gridist

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"runtime"
	"sync"

	"github.com/gridist/gridist/layout"
	"github.com/gridist/gridist/palette"
	"golang.org/x/sync/errgroup"
)

// frame is one animation frame covering the whole logical screen
type frame struct {
	pix         []uint8
	transparent int
}

func transparentIndex(p color.Palette) int {
	for i, c := range p {
		if c == nil {
			continue
		}
		if _, _, _, a := c.RGBA(); a == 0 {
			return i
		}
	}
	return -1
}

func disposalAt(g *gif.GIF, i int) byte {
	if i < len(g.Disposal) {
		return g.Disposal[i]
	}
	return gif.DisposalNone
}

func screenBounds(g *gif.GIF) image.Rectangle {
	if g.Config.Width > 0 && g.Config.Height > 0 {
		return image.Rect(0, 0, g.Config.Width, g.Config.Height)
	}
	var r image.Rectangle
	for _, m := range g.Image {
		if m != nil {
			r = r.Union(m.Bounds())
		}
	}
	return image.Rect(0, 0, r.Max.X, r.Max.Y)
}

func copyPix(dst []uint8, m *image.Paletted, screen image.Rectangle) {
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		src := m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)]
		copy(dst[y*screen.Dx()+b.Min.X:], src)
	}
}

// screenFrames returns every frame as a full screen of indices. Frames
// that already cover the screen are copied as is. If any frame covers
// only part of the screen the whole animation is composited instead,
// applying each frame's disposal before drawing the next.
func screenFrames(g *gif.GIF, screen image.Rectangle) ([]frame, error) {
	full := true
	for i, m := range g.Image {
		if m == nil {
			return nil, fmt.Errorf("%w: frame %d is missing", ErrDecode, i)
		}
		if !m.Bounds().In(screen) {
			return nil, fmt.Errorf("%w: frame %d bounds %v outside screen %v", ErrDecode, i, m.Bounds(), screen)
		}
		if m.Bounds() != screen {
			full = false
		}
	}

	frames := make([]frame, len(g.Image))
	size := screen.Dx() * screen.Dy()

	if full {
		for i, m := range g.Image {
			frames[i].pix = make([]uint8, size)
			frames[i].transparent = transparentIndex(m.Palette)
			copyPix(frames[i].pix, m, screen)
		}
		return frames, nil
	}

	// Start from a clear screen where the animation can express one
	fill := uint8(g.BackgroundIndex)
	if t := transparentIndex(g.Image[0].Palette); t >= 0 {
		fill = uint8(t)
	}

	canvas := make([]uint8, size)
	for i := range canvas {
		canvas[i] = fill
	}

	for i, m := range g.Image {
		t := transparentIndex(m.Palette)
		b := m.Bounds()

		var saved []uint8
		if disposalAt(g, i) == gif.DisposalPrevious {
			saved = append([]uint8(nil), canvas...)
		}

		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				v := m.ColorIndexAt(x, y)
				if int(v) == t {
					continue
				}
				canvas[y*screen.Dx()+x] = v
			}
		}

		frames[i] = frame{
			pix:         append([]uint8(nil), canvas...),
			transparent: t,
		}

		switch disposalAt(g, i) {
		case gif.DisposalBackground:
			blank := fill
			if t >= 0 {
				blank = uint8(t)
			}
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					canvas[y*screen.Dx()+x] = blank
				}
			}
		case gif.DisposalPrevious:
			canvas = saved
		}
	}

	return frames, nil
}

// sourcePalette picks the palette frame indices are expanded against: the
// global color table, then the first frame's table, then the default.
func sourcePalette(g *gif.GIF) (palette.Palette, error) {
	if cp, ok := g.Config.ColorModel.(color.Palette); ok && len(cp) > 0 {
		return palette.FromColorPalette(cp)
	}
	if len(g.Image) > 0 && g.Image[0] != nil && len(g.Image[0].Palette) > 0 {
		return palette.FromColorPalette(g.Image[0].Palette)
	}
	return palette.Default(), nil
}

func expand(p palette.Palette, f frame, screen image.Rectangle) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, screen.Dx(), screen.Dy()))
	p.Expand(m.Pix, f.pix, f.transparent)
	return m
}

type encoding struct {
	source  palette.Palette
	palette palette.Palette
	index   *palette.Index
	// transparent overrides every frame's transparent index when not nil
	transparent *int
}

func newEncoding(g *gif.GIF, frames []frame, screen image.Rectangle, strategy PaletteStrategy) (*encoding, error) {
	src, err := sourcePalette(g)
	if err != nil {
		return nil, err
	}

	e := &encoding{
		source:  src,
		palette: src,
	}

	if len(e.source) == 0 {
		e.source, e.palette = palette.Default(), palette.Default()
	}

	if strategy == PaletteMedian {
		p, err := palette.MedianCut(expand(e.source, frames[0], screen), palette.MaxColors-1)
		if err != nil {
			return nil, err
		}
		if len(p) == 0 {
			p = palette.Default()[:palette.MaxColors-1]
		}
		// The reserved last entry is only reachable through alpha
		e.index = palette.NewIndex(p)
		t := len(p)
		e.palette = append(p, palette.Color{})
		e.transparent = &t
		return e, nil
	}

	e.index = palette.NewIndex(e.palette)
	return e, nil
}

// frameTransparent returns the transparent index to use for output and the
// index written for transparent pixels.
func (e *encoding) frameTransparent(f frame) (int, uint8) {
	t := f.transparent
	if e.transparent != nil && t >= 0 {
		t = *e.transparent
	}
	if t < 0 || t >= len(e.palette) {
		return -1, 0
	}
	return t, uint8(t)
}

// cropFrame expands, resamples and cuts one frame into every cell,
// quantizing the cells in parallel.
func (e *encoding) cropFrame(f frame, screen image.Rectangle, canvas layout.Canvas, rects [layout.Slots]image.Rectangle, cut image.Point) ([layout.Slots]*image.Paletted, error) {
	var cells [layout.Slots]*image.Paletted
	if len(f.pix) != screen.Dx()*screen.Dy() {
		return cells, fmt.Errorf("%w: frame holds %d pixels, screen is %v", ErrDecode, len(f.pix), screen.Size())
	}

	resized := resample(expand(e.source, f, screen), canvas.Size)

	t, fill := e.frameTransparent(f)
	cp := e.palette.ColorPalette(t)

	var wg sync.WaitGroup
	for i, r := range rects {
		wg.Add(1)
		go func(i int, r image.Rectangle) {
			defer wg.Done()

			rgba := make([]uint8, 0, cut.X*cut.Y*4)
			for y := r.Min.Y; y < r.Max.Y; y++ {
				rgba = append(rgba, resized.Pix[resized.PixOffset(r.Min.X, y):resized.PixOffset(r.Max.X, y)]...)
			}

			pm := image.NewPaletted(image.Rectangle{Max: cut}, cp)
			e.index.Quantize(pm.Pix, rgba, fill)
			cells[i] = pm
		}(i, r)
	}
	wg.Wait()

	return cells, nil
}

// CropAnimation cuts every frame of g into the six grid cells and returns
// one infinitely looping animation per cell, in slot order. Frames keep
// their order, delay and disposal.
func CropAnimation(g *gif.GIF, c layout.Config, opts Options) ([layout.Slots]*gif.GIF, error) {
	var out [layout.Slots]*gif.GIF

	if err := c.Validate(); err != nil {
		return out, err
	}
	if g == nil || len(g.Image) == 0 {
		return out, fmt.Errorf("%w: animation has no frames", ErrDecode)
	}

	screen := screenBounds(g)
	canvas, err := c.Canvas(screen.Dx(), screen.Dy())
	if err != nil {
		return out, err
	}

	rects, err := slotRects(c, canvas)
	if err != nil {
		return out, err
	}

	frames, err := screenFrames(g, screen)
	if err != nil {
		return out, err
	}

	e, err := newEncoding(g, frames, screen, opts.Palette)
	if err != nil {
		return out, err
	}

	cut := image.Pt(c.CutWidth, c.CutHeight)
	cells := make([][layout.Slots]*image.Paletted, len(frames))

	eg, ctx := errgroup.WithContext(context.Background())
	eg.SetLimit(opts.workers())
	for i := range frames {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cropped, err := e.cropFrame(frames[i], screen, canvas, rects, cut)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			cells[i] = cropped
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return out, err
	}

	for s := range out {
		a := &gif.GIF{
			Image:     make([]*image.Paletted, len(frames)),
			Delay:     make([]int, len(frames)),
			Disposal:  make([]byte, len(frames)),
			LoopCount: 0,
			Config: image.Config{
				ColorModel: e.palette.ColorPalette(-1),
				Width:      cut.X,
				Height:     cut.Y,
			},
		}
		for i := range frames {
			a.Image[i] = cells[i][s]
			if i < len(g.Delay) {
				a.Delay[i] = g.Delay[i]
			}
			a.Disposal[i] = disposalAt(g, i)
		}
		out[s] = a
	}

	return out, nil
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}
