package layout

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetSizeCover(t *testing.T) {
	c := Default()
	cw, mh := c.ContainerWidth, c.MinimumHeight()

	tables := []struct {
		w, h int
	}{
		{400, 100},
		{1900, 1000},
		{1000, 529},
		{4000, 100},
		{2, 1},
		{7, 3},
		{928, 491},
		{933, 491},
	}

	for _, table := range tables {
		size, err := TargetSize(table.w, table.h, cw, mh)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, size.X, cw, "%dx%d", table.w, table.h)
		assert.GreaterOrEqual(t, size.Y, mh, "%dx%d", table.w, table.h)
	}

	size, err := TargetSize(1000, 491, cw, mh)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(1000, 491), size)

	size, err = TargetSize(464, 123, 928, 246)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(928, 246), size)
}

func TestTargetSizeFit(t *testing.T) {
	c := Default()
	cw, mh := c.ContainerWidth, c.MinimumHeight()

	for _, table := range []struct {
		w, h int
	}{
		{100, 1000},
		{100, 80},
		{1920, 1080},
		{1, 3},
		{928, 1200},
	} {
		size, err := TargetSize(table.w, table.h, cw, mh)
		require.NoError(t, err)
		assert.Equal(t, cw, size.X)
	}

	size, err := TargetSize(464, 1000, cw, mh)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(928, 2000), size)
}

func TestTargetSizeInvalid(t *testing.T) {
	_, err := TargetSize(0, 10, 928, 491)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = TargetSize(10, -1, 928, 491)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = TargetSize(10, 10, 0, 491)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestOffsets(t *testing.T) {
	assert.Equal(t, image.Pt(34, 0), Offsets(image.Pt(996, 797), 928, 797))
	assert.Equal(t, image.Pt(0, 754), Offsets(image.Pt(928, 2000), 928, 491))
	assert.Equal(t, image.Point{}, Offsets(image.Pt(900, 400), 928, 491))
	assert.Equal(t, image.Pt(0, 1), Offsets(image.Pt(929, 494), 928, 491))
}

func TestCanvas(t *testing.T) {
	canvas, err := Default().Canvas(1000, 491)
	require.NoError(t, err)
	assert.Equal(t, Canvas{Size: image.Pt(1000, 491), Offset: image.Pt(36, 0)}, canvas)

	canvas, err = Default().Canvas(464, 1000)
	require.NoError(t, err)
	assert.Equal(t, Canvas{Size: image.Pt(928, 2000), Offset: image.Pt(0, 754)}, canvas)
}
