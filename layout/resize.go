package layout

import (
	"fmt"
	"image"
	"math"
)

// Canvas is the resampled source and where the container sits inside it
type Canvas struct {
	Size   image.Point
	Offset image.Point
}

// TargetSize computes the size a source image is resampled to so that it
// covers a containerWidth by minHeight area.
//
// A source at least as wide as the target aspect ratio is scaled until it
// covers both dimensions. A narrower source is scaled to exactly
// containerWidth and its height is left to fall where it may; a short
// result is caught when the slots are cut.
func TargetSize(srcW, srcH, containerWidth, minHeight int) (image.Point, error) {
	if srcW <= 0 || srcH <= 0 {
		return image.Point{}, fmt.Errorf("%w: source dimensions %dx%d", ErrInvalidConfig, srcW, srcH)
	}
	if containerWidth <= 0 || minHeight <= 0 {
		return image.Point{}, fmt.Errorf("%w: target dimensions %dx%d", ErrInvalidConfig, containerWidth, minHeight)
	}

	aspect := float64(srcW) / float64(srcH)
	targetAspect := float64(containerWidth) / float64(minHeight)

	if aspect >= targetAspect {
		scale := math.Max(float64(containerWidth)/float64(srcW), float64(minHeight)/float64(srcH))
		w := int(float64(srcW) * scale)
		h := int(float64(srcH) * scale)
		// Truncation can land one pixel short of the scale factor that
		// produced it
		if w < containerWidth {
			w = containerWidth
		}
		if h < minHeight {
			h = minHeight
		}
		return image.Pt(w, h), nil
	}

	scale := float64(containerWidth) / float64(srcW)
	return image.Pt(containerWidth, int(float64(srcH)*scale)), nil
}

// Offsets centers the container area on a canvas of the given size
func Offsets(size image.Point, containerWidth, minHeight int) image.Point {
	x := (size.X - containerWidth) / 2
	if x < 0 {
		x = 0
	}
	y := (size.Y - minHeight) / 2
	if y < 0 {
		y = 0
	}
	return image.Pt(x, y)
}

// Canvas computes the resampled size and container offset for a source of
// srcW by srcH pixels.
func (c Config) Canvas(srcW, srcH int) (Canvas, error) {
	size, err := TargetSize(srcW, srcH, c.ContainerWidth, c.MinimumHeight())
	if err != nil {
		return Canvas{}, err
	}
	return Canvas{
		Size:   size,
		Offset: Offsets(size, c.ContainerWidth, c.MinimumHeight()),
	}, nil
}
