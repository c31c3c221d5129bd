/*
Package layout implements the geometry of the six card grid.

The grid is always two columns by three rows. Each card reserves
PaddingTop above and PaddingBottom below a CutWidth by CutHeight window
and cards are separated vertically by MarginBottom. The left column is
inset by PaddingHorizontal from the left edge of the container and the
right column by the same amount from the right edge.
*/
package layout

import (
	"errors"
	"fmt"
	"image"
)

const (
	// Slots is the number of cards in the grid
	Slots   = columns * rows
	columns = 2
	rows    = 3
)

var (
	// ErrInvalidConfig is returned for any geometry that cannot produce a grid
	ErrInvalidConfig = errors.New("layout: invalid configuration")
	// ErrInvalidSlot is returned for a slot index outside [0, Slots)
	ErrInvalidSlot = fmt.Errorf("%w: slot index out of range", ErrInvalidConfig)
)

// Config describes the card grid. It is immutable once validated.
type Config struct {
	ContainerWidth    int
	CutWidth          int
	CutHeight         int
	PaddingTop        int
	PaddingHorizontal int
	PaddingBottom     int
	MarginBottom      int
}

// Default returns the layout of a GitHub profile pinned items section
func Default() Config {
	return Config{
		ContainerWidth:    928,
		CutWidth:          422,
		CutHeight:         100,
		PaddingTop:        37,
		PaddingHorizontal: 16,
		PaddingBottom:     16,
		MarginBottom:      16,
	}
}

// Validate checks every field is positive and both columns fit inside the
// container.
func (c Config) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"container width", c.ContainerWidth},
		{"cut width", c.CutWidth},
		{"cut height", c.CutHeight},
		{"padding top", c.PaddingTop},
		{"padding horizontal", c.PaddingHorizontal},
		{"padding bottom", c.PaddingBottom},
		{"margin bottom", c.MarginBottom},
	}
	for _, f := range fields {
		if f.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, f.name, f.value)
		}
	}

	if c.CutWidth+2*c.PaddingHorizontal > c.ContainerWidth {
		return fmt.Errorf("%w: cut width %d plus padding %d exceeds container width %d", ErrInvalidConfig, c.CutWidth, 2*c.PaddingHorizontal, c.ContainerWidth)
	}

	return nil
}

// CardHeight is the height of one card including its padding
func (c Config) CardHeight() int {
	return c.PaddingTop + c.CutHeight + c.PaddingBottom
}

// YOffset is the vertical distance between the tops of two rows
func (c Config) YOffset() int {
	return c.CardHeight() + c.MarginBottom
}

// MinimumHeight is the canvas height needed to hold all three rows
func (c Config) MinimumHeight() int {
	return rows*c.CardHeight() + (rows-1)*c.MarginBottom
}

// SlotOrigin returns the top-left corner of the cut window for slot index
// relative to the container.
func (c Config) SlotOrigin(index int) (image.Point, error) {
	if index < 0 || index >= Slots {
		return image.Point{}, fmt.Errorf("%w: %d", ErrInvalidSlot, index)
	}

	x := c.PaddingHorizontal
	if index%columns != 0 {
		x = c.ContainerWidth - c.CutWidth - c.PaddingHorizontal
	}

	return image.Pt(x, c.PaddingTop+(index/columns)*c.YOffset()), nil
}

// SlotRect returns the absolute cut rectangle of slot index on a canvas
// whose container area starts at offset.
func (c Config) SlotRect(index int, offset image.Point) (image.Rectangle, error) {
	p, err := c.SlotOrigin(index)
	if err != nil {
		return image.Rectangle{}, err
	}
	p = p.Add(offset)
	return image.Rect(p.X, p.Y, p.X+c.CutWidth, p.Y+c.CutHeight), nil
}
