// Package logs records solved positions in a sqlite database.
package logs

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3" // repository assumes sqlite

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
)

type Repository struct {
	db *sqlx.DB

	insert *sqlx.NamedStmt
}

type Solve struct {
	Time    time.Time `db:"time"`
	Width   int       `db:"width"`
	Height  int       `db:"height"`
	Depth   int       `db:"depth"`
	Moves   string    `db:"moves"`
	Value   int       `db:"value"`
	Best    int       `db:"best"`
	Nodes   uint64    `db:"nodes"`
	Elapsed int64     `db:"elapsed_ms"`
	// Source names the front end that ran the solve.
	Source string `db:"source"`
}

// Position is the solved position as NewSolve needs it.
type Position interface {
	Config() bitboard.Config
	// Notation is the move list in the form notation.Replay reads.
	Notation() string
	// Logical numbers a physical column the way Notation does.
	Logical(col int) int
}

// NewSolve describes a solve of p. Moves and Best use logical column
// numbers, so cube logs replay directly.
func NewSolve(p Position, r ai.Result, source string) *Solve {
	cfg := p.Config()
	best := -1
	if r.Move >= 0 {
		best = p.Logical(r.Move)
	}
	depth := 1
	if cfg.Shape == bitboard.Cube {
		depth = cfg.Depth
	}
	return &Solve{
		Time:    time.Now(),
		Width:   cfg.Width,
		Height:  cfg.Height,
		Depth:   depth,
		Moves:   p.Notation(),
		Value:   r.Value,
		Best:    best,
		Nodes:   r.Stats.Visited,
		Elapsed: r.Stats.Elapsed.Milliseconds(),
		Source:  source,
	}
}

type Summary struct {
	Width   int    `db:"width"`
	Height  int    `db:"height"`
	Depth   int    `db:"depth"`
	Value   string `db:"value"`
	Solves  int    `db:"solves"`
	Nodes   int64  `db:"nodes"`
	Elapsed int64  `db:"elapsed_ms"`
}

func Open(db string) (*Repository, error) {
	sql, err := sqlx.Open("sqlite3", db)
	if err != nil {
		return nil, err
	}
	_, err = sql.Exec(createSolveTable)
	if err != nil {
		sql.Close()
		return nil, fmt.Errorf("create solves table: %w", err)
	}
	_, err = sql.Exec(createSummaryView)
	if err != nil {
		sql.Close()
		return nil, fmt.Errorf("create solve_summary view: %w", err)
	}

	repo := &Repository{db: sql}
	repo.insert, err = sql.PrepareNamed(insertStmt)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("prepare: %w", err)
	}
	return repo, nil
}

func (r *Repository) InsertSolve(s *Solve) error {
	_, err := r.insert.Exec(s)
	return err
}

func (r *Repository) InsertSolves(ss []*Solve) error {
	txn, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer txn.Rollback()
	stmt := txn.NamedStmt(r.insert)
	for _, s := range ss {
		if _, e := stmt.Exec(s); e != nil {
			return e
		}
	}
	return txn.Commit()
}

func (r *Repository) Summary() ([]Summary, error) {
	var out []Summary
	err := r.db.Select(&out, selectSummary)
	return out, err
}

func (r *Repository) Close() {
	if r.insert != nil {
		r.insert.Close()
	}
	r.db.Close()
}
