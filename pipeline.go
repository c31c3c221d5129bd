package gridist

import (
	"fmt"
	"os"
)

// slotWorker runs fn for slot i in its own goroutine and reports the result
// on the returned channel, which is closed once fn returns.
func slotWorker(i int, fn func(int) error) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		if err := fn(i); err != nil {
			errc <- err
		}
	}()
	return errc
}

// tileWriter writes each tile to the matching path. Files are only
// created once the tile bytes are complete.
func tileWriter(paths []string, tiles [][]byte) []<-chan error {
	errs := make([]<-chan error, 0, len(paths))
	for i := range paths {
		errs = append(errs, slotWorker(i, func(i int) error {
			f, err := os.Create(paths[i])
			if err != nil {
				return err
			}
			defer f.Close()

			if _, err = f.Write(tiles[i]); err != nil {
				return err
			}
			return f.Close()
		}))
	}
	return errs
}

// waitAll drains every channel in slot order and returns the error of the
// lowest failing slot. Every worker has already been started, so a failure
// never stops the remaining slots.
func waitAll(errs ...<-chan error) error {
	var first error
	for _, errc := range errs {
		for err := range errc {
			if err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

func writeTiles(paths []string, tiles [][]byte) error {
	if len(paths) != len(tiles) {
		return fmt.Errorf("%w: %d tiles for %d paths", ErrEncode, len(tiles), len(paths))
	}
	return waitAll(tileWriter(paths, tiles)...)
}
