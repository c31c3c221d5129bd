package palette

import (
	"runtime"
	"sync"
)

const (
	// Pixels with alpha below this are treated as transparent
	alphaThreshold = 128

	// Pixels per unit of work when quantizing in parallel
	chunkPixels = 4096
)

// Index finds the nearest palette entry to a color. Palettes are at most
// 256 entries so a flat scan is used; it is deterministic and needs no
// rebalancing. An Index is read-only after NewIndex returns.
type Index struct {
	colors []Color
}

// NewIndex builds an index over a snapshot of p
func NewIndex(p Palette) *Index {
	return &Index{
		colors: append([]Color(nil), p...),
	}
}

// Len returns the number of colors in the index
func (ix *Index) Len() int {
	return len(ix.colors)
}

func sqDiff(x, y uint8) uint32 {
	d := int32(x) - int32(y)
	return uint32(d * d)
}

// Nearest returns the index of the closest palette color by squared
// Euclidean distance. Ties resolve to the lowest index. An empty palette
// always yields 0.
func (ix *Index) Nearest(c Color) uint8 {
	best, bestSum := 0, uint32(1<<32-1)
	for i, p := range ix.colors {
		sum := sqDiff(c.R, p.R) + sqDiff(c.G, p.G) + sqDiff(c.B, p.B)
		if sum < bestSum {
			best, bestSum = i, sum
			if sum == 0 {
				break
			}
		}
	}
	return uint8(best)
}

func (ix *Index) quantize(dst, rgba []uint8, transparent uint8) {
	for i := range dst {
		px := rgba[i*4 : i*4+4 : i*4+4]
		if px[3] < alphaThreshold {
			dst[i] = transparent
			continue
		}
		dst[i] = ix.Nearest(Color{px[0], px[1], px[2]})
	}
}

// Quantize maps non-premultiplied RGBA pixels in rgba to palette indices in
// dst, which must hold len(rgba)/4 entries. Pixels with alpha below 128
// become transparent without a color search. The work is split into
// disjoint ranges of dst so the goroutines share nothing but the index.
func (ix *Index) Quantize(dst, rgba []uint8, transparent uint8) {
	n := len(rgba) / 4
	if len(dst) < n {
		panic("palette: destination too small")
	}
	dst = dst[:n]

	if n <= chunkPixels {
		ix.quantize(dst, rgba, transparent)
		return
	}

	chunks := make(chan int)
	var wg sync.WaitGroup
	for w := runtime.GOMAXPROCS(0); w > 0; w-- {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for start := range chunks {
				end := start + chunkPixels
				if end > n {
					end = n
				}
				ix.quantize(dst[start:end], rgba[start*4:end*4], transparent)
			}
		}()
	}
	for start := 0; start < n; start += chunkPixels {
		chunks <- start
	}
	close(chunks)
	wg.Wait()
}

// Expand writes the RGBA form of indices into dst, which must hold
// 4*len(indices) bytes. Indices beyond the palette expand to black. The
// transparent index, if not negative, gets alpha 0 and everything else is
// opaque; GIF has no partial transparency.
func (p Palette) Expand(dst, indices []uint8, transparent int) {
	if len(dst) < len(indices)*4 {
		panic("palette: destination too small")
	}

	for i, v := range indices {
		var c Color
		if int(v) < len(p) {
			c = p[v]
		}
		a := uint8(0xff)
		if int(v) == transparent {
			a = 0x00
		}
		dst[i*4+0] = c.R
		dst[i*4+1] = c.G
		dst[i*4+2] = c.B
		dst[i*4+3] = a
	}
}
