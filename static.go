package gridist

import (
	"fmt"
	"image"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
	"github.com/gridist/gridist/layout"
)

// resample scales src to exactly size using a Lanczos filter with a
// support radius of 3.
func resample(src image.Image, size image.Point) *image.NRGBA {
	g := gift.New(gift.Resize(size.X, size.Y, gift.LanczosResampling))
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

// slotRects returns the cut rectangle of every slot on canvas, failing if
// any of them falls outside it.
func slotRects(c layout.Config, canvas layout.Canvas) ([layout.Slots]image.Rectangle, error) {
	var rects [layout.Slots]image.Rectangle
	bounds := image.Rectangle{Max: canvas.Size}
	for i := range rects {
		r, err := c.SlotRect(i, canvas.Offset)
		if err != nil {
			return rects, err
		}
		if !r.In(bounds) {
			return rects, fmt.Errorf("%w: slot %d at %v does not fit in %v", ErrBounds, i, r, bounds)
		}
		rects[i] = r
	}
	return rects, nil
}

// cropCanvas cuts every slot from an already resampled canvas. All six
// slots are attempted before the first failure is reported.
func cropCanvas(m image.Image, c layout.Config, offset image.Point) ([layout.Slots]*image.NRGBA, error) {
	var tiles [layout.Slots]*image.NRGBA
	bounds := m.Bounds()

	errs := make([]<-chan error, 0, layout.Slots)
	for i := 0; i < layout.Slots; i++ {
		errs = append(errs, slotWorker(i, func(i int) error {
			r, err := c.SlotRect(i, offset.Add(bounds.Min))
			if err != nil {
				return err
			}
			if !r.In(bounds) {
				return fmt.Errorf("%w: slot %d at %v does not fit in %v", ErrBounds, i, r, bounds)
			}
			tiles[i] = imaging.Crop(m, r)
			return nil
		}))
	}

	if err := waitAll(errs...); err != nil {
		return [layout.Slots]*image.NRGBA{}, err
	}
	return tiles, nil
}

// CropImage resamples img so that it covers the grid and cuts it into one
// tile per slot, in slot order.
func CropImage(img image.Image, c layout.Config) ([layout.Slots]*image.NRGBA, error) {
	if err := c.Validate(); err != nil {
		return [layout.Slots]*image.NRGBA{}, err
	}

	b := img.Bounds()
	canvas, err := c.Canvas(b.Dx(), b.Dy())
	if err != nil {
		return [layout.Slots]*image.NRGBA{}, err
	}

	return cropCanvas(resample(img, canvas.Size), c, canvas.Offset)
}
