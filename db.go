package gridist

import (
	"database/sql"
	"fmt"

	"github.com/gridist/gridist/layout"
	_ "github.com/mattn/go-sqlite3"
)

// TileDB stores the encoded tiles of previous runs keyed by the SHA-1 of
// the source and the grid they were cut for.
type TileDB struct {
	db *sql.DB
}

// OpenTileDB opens or creates the tile cache in file
func OpenTileDB(file string) (*TileDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS source (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL, layout TEXT NOT NULL, UNIQUE(sha1, layout))"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS tile (source_id INTEGER NOT NULL, slot INTEGER NOT NULL, data BLOB NOT NULL, PRIMARY KEY(source_id, slot), FOREIGN KEY(source_id) REFERENCES source(id) ON DELETE CASCADE)"); err != nil {
		db.Close()
		return nil, err
	}

	return &TileDB{
		db: db,
	}, nil
}

// Close closes the underlying database
func (db *TileDB) Close() error {
	return db.db.Close()
}

// FindTiles returns the cached tiles in slot order, or nil if there is no
// complete set for the source and layout.
func (db *TileDB) FindTiles(sha, key string) ([][]byte, error) {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM source WHERE sha1 = ? AND layout = ?", sha, key).Scan(&id); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
	default:
		return nil, err
	}

	rows, err := db.db.Query("SELECT slot, data FROM tile WHERE source_id = ? ORDER BY slot", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiles := make([][]byte, layout.Slots)
	found := 0
	for rows.Next() {
		var slot int
		var data []byte
		if err := rows.Scan(&slot, &data); err != nil {
			return nil, err
		}
		if slot < 0 || slot >= layout.Slots {
			continue
		}
		tiles[slot] = data
		found++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if found != layout.Slots {
		return nil, nil
	}
	return tiles, nil
}

// AddTiles stores a complete set of tiles, replacing any previous set for
// the same source and layout.
func (db *TileDB) AddTiles(sha, key string, tiles [][]byte) error {
	if len(tiles) != layout.Slots {
		return fmt.Errorf("%w: expected %d tiles, got %d", ErrEncode, layout.Slots, len(tiles))
	}

	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.Exec("INSERT OR IGNORE INTO source (sha1, layout) VALUES (?, ?)", sha, key); err != nil {
		return err
	}

	var id int64
	if err = tx.QueryRow("SELECT id FROM source WHERE sha1 = ? AND layout = ?", sha, key).Scan(&id); err != nil {
		return err
	}

	for i, t := range tiles {
		if _, err = tx.Exec("INSERT OR REPLACE INTO tile (source_id, slot, data) VALUES (?, ?, ?)", id, i, t); err != nil {
			return err
		}
	}

	return tx.Commit()
}
