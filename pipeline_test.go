package gridist

import (
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitAllRunsEverything(t *testing.T) {
	var ran int32
	boom := errors.New("boom")

	var errs []<-chan error
	for i := 0; i < 6; i++ {
		errs = append(errs, slotWorker(i, func(i int) error {
			atomic.AddInt32(&ran, 1)
			if i%2 == 1 {
				return boom
			}
			return nil
		}))
	}

	assert.ErrorIs(t, waitAll(errs...), boom)
	assert.Equal(t, int32(6), atomic.LoadInt32(&ran))
}

func TestWaitAllLowestSlot(t *testing.T) {
	errs := make([]<-chan error, 0, 6)
	for i := 0; i < 6; i++ {
		errs = append(errs, slotWorker(i, func(i int) error {
			switch i {
			case 1:
				// Finish well after the later slots have failed
				time.Sleep(50 * time.Millisecond)
				return fmt.Errorf("slot %d", i)
			case 4, 5:
				return fmt.Errorf("slot %d", i)
			}
			return nil
		}))
	}

	assert.EqualError(t, waitAll(errs...), "slot 1")
}

func TestWaitAllNoErrors(t *testing.T) {
	assert.NoError(t, waitAll())
	assert.NoError(t, waitAll(slotWorker(0, func(int) error { return nil })))
}

func TestWriteTiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "a"), filepath.Join(dir, "b")}

	require.NoError(t, writeTiles(paths, [][]byte{[]byte("first"), []byte("second")}))

	b, err := ioutil.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))

	assert.ErrorIs(t, writeTiles(paths, [][]byte{nil}), ErrEncode)
	assert.Error(t, writeTiles([]string{filepath.Join(dir, "missing", "c")}, [][]byte{nil}))
}
