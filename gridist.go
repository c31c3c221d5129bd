/*
Package gridist cuts a single image into the six tiles of a two column,
three row card grid.

Static images are resampled to cover the grid and cut directly. Animated
GIFs are cut frame by frame; every frame is expanded to RGBA, resampled,
cut and quantized back against a single palette so each tile is a
standalone looping animation with the original timing.
*/
package gridist

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"image/gif"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gridist/gridist/layout"
	"github.com/gridist/gridist/palette"
	"golang.org/x/sync/errgroup"
)

// PaletteStrategy selects the palette animated tiles are encoded with
type PaletteStrategy int

const (
	// PaletteAuto reuses the palette of the source animation
	PaletteAuto PaletteStrategy = iota
	// PaletteMedian derives a palette from the first frame by median cut
	PaletteMedian
)

func (s PaletteStrategy) String() string {
	switch s {
	case PaletteAuto:
		return "auto"
	case PaletteMedian:
		return "median"
	default:
		return fmt.Sprintf("PaletteStrategy(%d)", int(s))
	}
}

// ParsePaletteStrategy parses the name of a palette strategy
func ParsePaletteStrategy(s string) (PaletteStrategy, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return PaletteAuto, nil
	case "median":
		return PaletteMedian, nil
	}
	return PaletteAuto, fmt.Errorf("%w: unknown palette strategy %q", ErrConfig, s)
}

// Options tunes how tiles are produced and where they are written
type Options struct {
	// Workers bounds the number of frames processed at once. Zero means
	// GOMAXPROCS.
	Workers int
	Palette PaletteStrategy
	// OutputDir is where tiles are written, the working directory if empty
	OutputDir string
	// DB caches encoded tiles between runs when not nil
	DB *TileDB
}

// Cropper writes the tiles for source files
type Cropper struct {
	config layout.Config
	opts   Options
	logger *log.Logger
}

// New returns a Cropper for the given grid
func New(c layout.Config, opts Options, logger *log.Logger) (*Cropper, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must not be negative", ErrConfig)
	}
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Cropper{
		config: c,
		opts:   opts,
		logger: logger,
	}, nil
}

func isAnimated(ext string) bool {
	return strings.EqualFold(ext, "gif")
}

func splitName(path string) (string, string, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	switch {
	case len(ext) < 2:
		return "", "", fmt.Errorf("%w: %q has no file extension", ErrConfig, path)
	case stem == "":
		return "", "", fmt.Errorf("%w: %q has no file stem", ErrConfig, path)
	}
	return stem, ext[1:], nil
}

// OutputPaths returns the tile paths CropFile writes for path, in slot
// order.
func (c *Cropper) OutputPaths(path string) ([]string, error) {
	stem, ext, err := splitName(path)
	if err != nil {
		return nil, err
	}
	if isAnimated(ext) {
		ext = "gif"
	}

	paths := make([]string, layout.Slots)
	for i := range paths {
		paths[i] = filepath.Join(c.opts.OutputDir, fmt.Sprintf("%s.%d.%s", stem, i, ext))
	}
	return paths, nil
}

func (c *Cropper) cacheKey(format string) string {
	l := c.config
	return fmt.Sprintf("%d:%d:%d:%d:%d:%d:%d:%s:%s", l.ContainerWidth, l.CutWidth, l.CutHeight, l.PaddingTop, l.PaddingHorizontal, l.PaddingBottom, l.MarginBottom, c.opts.Palette, strings.ToLower(format))
}

func readSource(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer f.Close()

	h := sha1.New()
	b, err := ioutil.ReadAll(io.TeeReader(f, h))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return b, fmt.Sprintf("%X", h.Sum(nil)), nil
}

// CropFile cuts the image at path into tiles named <stem>.<slot>.<ext> and
// returns their paths in slot order. GIF sources always produce animated
// GIF tiles; any other source keeps its own format. If the run fails some
// tiles may already have been written and the whole set should be
// discarded.
func (c *Cropper) CropFile(path string) ([]string, error) {
	paths, err := c.OutputPaths(path)
	if err != nil {
		return nil, err
	}
	_, ext, _ := splitName(path)

	b, sha, err := readSource(path)
	if err != nil {
		return nil, err
	}
	c.logger.Printf("Read %d bytes from \"%s\", SHA-1 %s\n", len(b), path, sha)

	key := c.cacheKey(ext)
	if c.opts.DB != nil {
		tiles, err := c.opts.DB.FindTiles(sha, key)
		if err != nil {
			return nil, err
		}
		if tiles != nil {
			c.logger.Printf("Using cached tiles for \"%s\"\n", path)
			if err := writeTiles(paths, tiles); err != nil {
				return nil, err
			}
			return paths, nil
		}
	}

	var tiles [][]byte
	if isAnimated(ext) {
		tiles, err = c.cropGIF(b)
	} else {
		tiles, err = c.cropStatic(b, ext)
	}
	if err != nil {
		return nil, err
	}

	if err := writeTiles(paths, tiles); err != nil {
		return nil, err
	}
	c.logger.Printf("Wrote %d tiles for \"%s\"\n", len(paths), path)

	if c.opts.DB != nil {
		if err := c.opts.DB.AddTiles(sha, key, tiles); err != nil {
			return nil, err
		}
	}

	return paths, nil
}

func (c *Cropper) cropStatic(b []byte, ext string) ([][]byte, error) {
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	m, err := imaging.Decode(bytes.NewReader(b), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	c.logger.Printf("Decoded %dx%d image\n", m.Bounds().Dx(), m.Bounds().Dy())

	cropped, err := CropImage(m, c.config)
	if err != nil {
		return nil, err
	}

	tiles := make([][]byte, layout.Slots)
	errs := make([]<-chan error, 0, layout.Slots)
	for i := range cropped {
		errs = append(errs, slotWorker(i, func(i int) error {
			buf := new(bytes.Buffer)
			if err := imaging.Encode(buf, cropped[i], format); err != nil {
				return fmt.Errorf("%w: slot %d: %v", ErrEncode, i, err)
			}
			tiles[i] = buf.Bytes()
			return nil
		}))
	}
	if err := waitAll(errs...); err != nil {
		return nil, err
	}

	return tiles, nil
}

func decodeGIF(b []byte) (*gif.GIF, error) {
	g, err := gif.DecodeAll(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return g, nil
}

func (c *Cropper) cropGIF(b []byte) ([][]byte, error) {
	g, err := decodeGIF(b)
	if err != nil {
		return nil, err
	}
	c.logger.Printf("Decoded %d frames on a %dx%d screen\n", len(g.Image), g.Config.Width, g.Config.Height)

	cells, err := CropAnimation(g, c.config, c.opts)
	if err != nil {
		return nil, err
	}

	// Any cell failing to encode fails the run
	tiles := make([][]byte, layout.Slots)
	var eg errgroup.Group
	for i := range cells {
		i := i
		eg.Go(func() error {
			buf := new(bytes.Buffer)
			if err := gif.EncodeAll(buf, cells[i]); err != nil {
				return fmt.Errorf("%w: cell %d: %v", ErrEncode, i, err)
			}
			tiles[i] = buf.Bytes()
			c.logger.Printf("Encoded cell %d, %d frames, %d bytes\n", i, len(cells[i].Image), buf.Len())
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return tiles, nil
}

// Palette returns the palette animated tiles cut from the GIF at path would
// be encoded with.
func (c *Cropper) Palette(path string) (palette.Palette, error) {
	b, _, err := readSource(path)
	if err != nil {
		return nil, err
	}
	g, err := decodeGIF(b)
	if err != nil {
		return nil, err
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("%w: animation has no frames", ErrDecode)
	}

	screen := screenBounds(g)
	frames, err := screenFrames(g, screen)
	if err != nil {
		return nil, err
	}
	e, err := newEncoding(g, frames, screen, c.opts.Palette)
	if err != nil {
		return nil, err
	}
	return e.palette, nil
}
