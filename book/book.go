// Package book stores solved positions in a sqlite database, so that
// the solver can cut its search short at a fixed depth.
package book

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3" // we assume sqlite

	"github.com/nelhage/fourstones/bitboard"
)

var ErrClosed = errors.New("book is closed")

// FileName returns the default book file for a board.
func FileName(cfg bitboard.Config) string {
	return fmt.Sprintf("book%d%d%d", cfg.Width, cfg.Height, depth(cfg))
}

func depth(cfg bitboard.Config) int {
	if cfg.Shape == bitboard.Cube {
		return cfg.Depth
	}
	return 1
}

// Book is the set of positions stored for one board. It satisfies
// ai.Book.
type Book struct {
	db  *sqlx.DB
	cfg bitboard.Config
}

// Open opens or creates the book at path. Only entries for cfg are
// visible through the returned Book.
func Open(path string, cfg bitboard.Config) (*Book, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(createPositionsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Book{db: db, cfg: cfg}, nil
}

func (b *Book) Close() error {
	if b.db == nil {
		return ErrClosed
	}
	err := b.db.Close()
	b.db = nil
	return err
}

func (b *Book) Config() bitboard.Config {
	return b.cfg
}

// NewEntry fills in the board dimensions of an Entry.
func (b *Book) NewEntry(code string, plies, value int, moves string) Entry {
	return Entry{
		Code:   code,
		Width:  b.cfg.Width,
		Height: b.cfg.Height,
		Depth:  depth(b.cfg),
		Plies:  plies,
		Value:  value,
		Moves:  moves,
	}
}

func (b *Book) Lookup(code string) (int, bool, error) {
	if b.db == nil {
		return 0, false, ErrClosed
	}
	var vs []int
	err := b.db.Select(&vs, selectValue, code, b.cfg.Width, b.cfg.Height, depth(b.cfg))
	if err != nil {
		return 0, false, fmt.Errorf("lookup %s: %w", code, err)
	}
	if len(vs) == 0 {
		return 0, false, nil
	}
	return vs[0], true, nil
}

func (b *Book) Store(e Entry) error {
	if b.db == nil {
		return ErrClosed
	}
	if _, err := b.db.NamedExec(insertPosition, &e); err != nil {
		return fmt.Errorf("store %s: %w", e.Code, err)
	}
	return nil
}

// StoreAll stores every entry in a single transaction.
func (b *Book) StoreAll(es []Entry) error {
	if b.db == nil {
		return ErrClosed
	}
	tx, err := b.db.Beginx()
	if err != nil {
		return err
	}
	for i := range es {
		if _, err := tx.NamedExec(insertPosition, &es[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("store %s: %w", es[i].Code, err)
		}
	}
	return tx.Commit()
}

// Plies returns the largest ply count stored for the board, or -1 if
// the book has no entries for it.
func (b *Book) Plies() (int, error) {
	if b.db == nil {
		return 0, ErrClosed
	}
	var n int
	err := b.db.Get(&n, selectMaxPlies, b.cfg.Width, b.cfg.Height, depth(b.cfg))
	return n, err
}

type Count struct {
	Plies int `db:"plies"`
	Value int `db:"value"`
	Count int `db:"count"`
}

// Counts returns the number of entries for the board, per ply count
// and value.
func (b *Book) Counts() ([]Count, error) {
	if b.db == nil {
		return nil, ErrClosed
	}
	var out []Count
	err := b.db.Select(&out, selectCounts, b.cfg.Width, b.cfg.Height, depth(b.cfg))
	return out, err
}
