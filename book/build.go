package book

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/board"
	"github.com/nelhage/fourstones/notation"
)

const reportInterval = 1000

// Positions returns one representative of every position, up to
// symmetry, that is reached after exactly plies moves and in which
// the game is not yet over.
func Positions[W bitboard.Word[W]](c *bitboard.Constants[W], plies int) []*board.Position[W] {
	keys := ai.NewSolver(c, ai.SolverConfig{NoTable: true, TableBits: 10})
	seen := make(map[string]bool)
	var out []*board.Position[W]
	p := board.New(c)
	var walk func()
	walk = func() {
		if over, _, _ := p.GameOver(); over {
			return
		}
		key := keys.BookKey(p)
		if seen[key] {
			return
		}
		seen[key] = true
		if p.Plies() == plies {
			out = append(out, p.Clone())
			return
		}
		for col := 0; col < c.Columns; col++ {
			if p.IsPlayable(col) {
				p.MakeMove(col)
				walk()
				p.BackMove()
			}
		}
	}
	walk()
	return out
}

func sameBoard(a, b bitboard.Config) bool {
	return a.Shape == b.Shape && a.Width == b.Width && a.Height == b.Height && depth(a) == depth(b)
}

// positionEntry records p's moves in logical columns, so that entries
// for cube boards replay with notation.Replay.
func positionEntry[W bitboard.Word[W]](b *Book, s *ai.Solver[W], p *board.Position[W], value int) Entry {
	return b.NewEntry(s.BookKey(p), p.Plies(), value, notation.Format(p))
}

// Build solves every position Positions returns for plies and stores
// the values in b. cfg configures the solver each worker uses; its
// Book is ignored.
func Build[W bitboard.Word[W]](ctx context.Context, b *Book, c *bitboard.Constants[W], plies, threads int, cfg ai.SolverConfig) (int, error) {
	if !sameBoard(c.Config, b.cfg) {
		return 0, fmt.Errorf("book is for %s, not %s", b.cfg, c.Config)
	}
	if threads < 1 {
		threads = 1
	}
	cfg.Book = nil
	positions := Positions(c, plies)
	log.Info().Int("plies", plies).Int("positions", len(positions)).Msg("building book")

	start := time.Now()
	input := make(chan *board.Position[W])
	results := make(chan Entry)
	var done int64

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		defer close(input)
		for _, p := range positions {
			select {
			case input <- p:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	workers, wctx := errgroup.WithContext(ctx)
	for i := 0; i < threads; i++ {
		workers.Go(func() error {
			s := ai.NewSolver(c, cfg)
			for p := range input {
				r, err := s.Solve(wctx, p)
				if err != nil {
					return err
				}
				e := positionEntry(b, s, p, r.Value)
				select {
				case results <- e:
				case <-wctx.Done():
					return wctx.Err()
				}
				if n := atomic.AddInt64(&done, 1); n%reportInterval == 0 {
					log.Info().Int64("solved", n).Dur("elapsed", time.Since(start)).Msg("building book")
				}
			}
			return nil
		})
	}
	grp.Go(func() error {
		defer close(results)
		return workers.Wait()
	})

	var entries []Entry
	for e := range results {
		entries = append(entries, e)
	}
	if err := grp.Wait(); err != nil {
		return 0, err
	}
	if err := b.StoreAll(entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
