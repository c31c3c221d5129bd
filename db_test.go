package gridist

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/gridist/gridist/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *TileDB {
	db, err := OpenTileDB(filepath.Join(t.TempDir(), "tiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testTiles(prefix string) [][]byte {
	tiles := make([][]byte, layout.Slots)
	for i := range tiles {
		tiles[i] = []byte(fmt.Sprintf("%s-%d", prefix, i))
	}
	return tiles
}

func TestTileDB(t *testing.T) {
	db := openTestDB(t)

	tiles, err := db.FindTiles("ABC", "key")
	require.NoError(t, err)
	assert.Nil(t, tiles)

	require.NoError(t, db.AddTiles("ABC", "key", testTiles("one")))

	tiles, err = db.FindTiles("ABC", "key")
	require.NoError(t, err)
	assert.Equal(t, testTiles("one"), tiles)

	tiles, err = db.FindTiles("ABC", "other")
	require.NoError(t, err)
	assert.Nil(t, tiles)

	require.NoError(t, db.AddTiles("ABC", "key", testTiles("two")))
	tiles, err = db.FindTiles("ABC", "key")
	require.NoError(t, err)
	assert.Equal(t, testTiles("two"), tiles)
}

func TestTileDBIncomplete(t *testing.T) {
	db := openTestDB(t)

	assert.ErrorIs(t, db.AddTiles("ABC", "key", testTiles("x")[:3]), ErrEncode)

	_, err := db.db.Exec("INSERT INTO source (sha1, layout) VALUES ('DEF', 'key')")
	require.NoError(t, err)

	tiles, err := db.FindTiles("DEF", "key")
	require.NoError(t, err)
	assert.Nil(t, tiles)
}
