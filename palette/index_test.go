package palette

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func distinctPalette(n int) Palette {
	r := rand.New(rand.NewSource(1))
	seen := make(map[Color]struct{})
	p := make(Palette, 0, n)
	for len(p) < n {
		c := Color{uint8(r.Intn(256)), uint8(r.Intn(256)), uint8(r.Intn(256))}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		p = append(p, c)
	}
	return p
}

func TestNearestExact(t *testing.T) {
	p := distinctPalette(MaxColors)
	ix := NewIndex(p)
	require.Equal(t, MaxColors, ix.Len())

	for i, c := range p {
		assert.Equal(t, uint8(i), ix.Nearest(c))
	}
}

func TestNearestTieBreak(t *testing.T) {
	ix := NewIndex(Palette{{10, 0, 0}, {0, 0, 0}, {20, 0, 0}, {0, 0, 0}})

	// Equidistant from entries 0 and 2
	assert.Equal(t, uint8(0), ix.Nearest(Color{15, 0, 0}))
	// Duplicate entries resolve to the first
	assert.Equal(t, uint8(1), ix.Nearest(Color{0, 0, 0}))
	assert.Equal(t, uint8(1), ix.Nearest(Color{2, 1, 1}))
	assert.Equal(t, uint8(2), ix.Nearest(Color{255, 0, 0}))
}

func TestNearestEmpty(t *testing.T) {
	assert.Equal(t, uint8(0), NewIndex(nil).Nearest(Color{1, 2, 3}))
}

func TestNearestDefault(t *testing.T) {
	ix := NewIndex(Default())
	assert.Equal(t, uint8(0), ix.Nearest(Color{250, 10, 10}))
	assert.Equal(t, uint8(6), ix.Nearest(Color{255, 255, 255}))
	assert.Equal(t, uint8(7), ix.Nearest(Color{0, 0, 0}))
	assert.Equal(t, uint8(8+16), ix.Nearest(Color{129, 128, 127}))
}

func TestIndexSnapshot(t *testing.T) {
	p := Palette{{1, 1, 1}, {200, 200, 200}}
	ix := NewIndex(p)
	p[1] = Color{0, 0, 0}
	assert.Equal(t, uint8(1), ix.Nearest(Color{200, 200, 200}))
}

func TestExpand(t *testing.T) {
	p := Palette{{1, 2, 3}, {4, 5, 6}}
	dst := make([]uint8, 4*4)
	p.Expand(dst, []uint8{0, 1, 7, 1}, 1)

	assert.Equal(t, []uint8{
		1, 2, 3, 0xff,
		4, 5, 6, 0x00,
		0, 0, 0, 0xff,
		4, 5, 6, 0x00,
	}, dst)

	p.Expand(dst, []uint8{0, 1, 7, 1}, -1)
	assert.Equal(t, uint8(0xff), dst[7])
	assert.Equal(t, uint8(0xff), dst[15])

	// A transparent index beyond the palette still clears alpha
	p.Expand(dst[:4], []uint8{9}, 9)
	assert.Equal(t, []uint8{0, 0, 0, 0}, dst[:4])
}

func TestQuantize(t *testing.T) {
	ix := NewIndex(Palette{{0, 0, 0}, {255, 255, 255}, {255, 0, 0}})

	rgba := []uint8{
		10, 10, 10, 255,
		250, 240, 245, 200,
		200, 30, 20, 128,
		255, 255, 255, 127,
		255, 0, 0, 0,
	}
	dst := make([]uint8, 5)
	ix.Quantize(dst, rgba, 9)
	assert.Equal(t, []uint8{0, 1, 2, 9, 9}, dst)
}

func TestQuantizeParallel(t *testing.T) {
	p := distinctPalette(64)
	ix := NewIndex(p)

	n := chunkPixels*5 + 123
	indices := make([]uint8, n)
	r := rand.New(rand.NewSource(2))
	for i := range indices {
		indices[i] = uint8(r.Intn(len(p)))
	}
	indices[0] = 3

	rgba := make([]uint8, n*4)
	p.Expand(rgba, indices, 3)

	dst := make([]uint8, n)
	ix.Quantize(dst, rgba, 3)
	assert.Equal(t, indices, dst)
}

func TestRoundTrip(t *testing.T) {
	for _, p := range []Palette{distinctPalette(MaxColors), distinctPalette(17), {{0, 0, 0}, {255, 255, 255}}} {
		ix := NewIndex(p)
		transparent := len(p) - 1

		for i := 0; i < len(p); i++ {
			if i == transparent {
				continue
			}
			first := make([]uint8, 4)
			p.Expand(first, []uint8{uint8(i)}, transparent)

			q := make([]uint8, 1)
			ix.Quantize(q, first, uint8(transparent))

			second := make([]uint8, 4)
			p.Expand(second, q, transparent)
			assert.Equal(t, first, second, "index %d", i)
		}
	}
}
