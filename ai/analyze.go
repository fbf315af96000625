package ai

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nelhage/fourstones/board"
)

// Analyze returns the value of every playable move at p, from the
// point of view of the side to move, in column order. Each move is
// searched by its own solver on its own copy of p. The returned Stats
// sum over all of them.
func (s *Solver[W]) Analyze(ctx context.Context, p *board.Position[W]) ([]MoveValue, Stats, error) {
	start := time.Now()
	if over, _, _ := p.GameOver(); over {
		return nil, Stats{}, nil
	}

	var out []MoveValue
	for col := 0; col < s.c.Columns; col++ {
		if p.IsPlayable(col) {
			out = append(out, MoveValue{Move: col})
		}
	}

	threads := s.cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	cfg := s.cfg
	cfg.Shuffle = false

	var mu sync.Mutex
	var st Stats
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(threads)
	for i := range out {
		i := i
		if p.IsWinningMove(out[i].Move) {
			out[i].Value = Win
			continue
		}
		child := p.Clone()
		child.MakeMove(out[i].Move)
		grp.Go(func() error {
			r, err := NewSolver(s.c, cfg).Solve(ctx, child)
			if err != nil {
				return err
			}
			out[i].Value = -r.Value
			mu.Lock()
			st.add(&r.Stats)
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, Stats{}, err
	}
	st.Elapsed = time.Since(start)
	if s.cfg.Debug > 0 {
		s.log.Debug().
			Int("moves", len(out)).
			Int("threads", threads).
			Uint64("visited", st.Visited).
			Dur("time", st.Elapsed).
			Msg("analyzed")
	}
	return out, st, nil
}

// Best returns the first move with the highest value.
func Best(mvs []MoveValue) MoveValue {
	best := MoveValue{Move: -1, Value: Loss - 1}
	for _, mv := range mvs {
		if mv.Value > best.Value {
			best = mv
		}
	}
	return best
}
