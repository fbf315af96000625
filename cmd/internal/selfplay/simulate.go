package selfplay

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/board"
	"github.com/nelhage/fourstones/cli"
	"github.com/nelhage/fourstones/cmd/internal/opt"
	"github.com/nelhage/fourstones/notation"
)

type Config struct {
	Games   int
	Verbose bool

	// Openings are move strings to start games from; empty means
	// the empty board.
	Openings []string

	P1, P2 string

	Swap    bool
	Threads int
	Limit   time.Duration
}

type Stats struct {
	Players [2]struct {
		Wins       int
		FirstWins  int
		SecondWins int
	}
	First, Second int
	Ties          int
	Resigned      int

	Games []Result `json:"-"`
}

func (s *Stats) Count() int {
	return s.First + s.Second + s.Ties + s.Resigned
}

type gameSpec struct {
	opening string
	oi      int
	i       int
	p1First bool
}

type Result struct {
	spec   gameSpec
	Moves  string
	Over   bool
	Winner board.Color
	Draw   bool
}

func (s *Stats) add(r Result) {
	switch {
	case !r.Over:
		s.Resigned++
		return
	case r.Draw:
		s.Ties++
		return
	case r.Winner == board.First:
		s.First++
	default:
		s.Second++
	}
	pst := &s.Players[0]
	if (r.Winner == board.First) != r.spec.p1First {
		pst = &s.Players[1]
	}
	if r.Winner == board.First {
		pst.FirstWins++
	} else {
		pst.SecondWins++
	}
	pst.Wins++
}

type seat[W bitboard.Word[W]] struct {
	p1, p2 ai.Player[W]
}

// Simulate plays c.Games games per opening (twice that with c.Swap)
// between c.P1 and c.P2, c.Threads at a time.
func Simulate[W bitboard.Word[W]](ctx context.Context, o *opt.Solver, k *bitboard.Constants[W], c *Config) (Stats, error) {
	var st Stats
	if c.P1 == "human" || c.P2 == "human" {
		return st, errors.New("selfplay needs two computer players")
	}
	openings := c.Openings
	if len(openings) == 0 {
		openings = []string{""}
	}
	for _, op := range openings {
		if err := notation.Replay(board.New(k), op); err != nil {
			return st, err
		}
	}
	if c.Threads < 1 {
		c.Threads = 1
	}

	// players are built before any game starts; each worker owns
	// one pair
	seats := make([]seat[W], c.Threads)
	var release []func()
	defer func() {
		for _, f := range release {
			f()
		}
	}()
	for i := range seats {
		p1, done, err := opt.ParsePlayer(o, k, c.P1, c.Limit, nil, io.Discard)
		if err != nil {
			return st, err
		}
		release = append(release, done)
		p2, done, err := opt.ParsePlayer(o, k, c.P2, c.Limit, nil, io.Discard)
		if err != nil {
			return st, err
		}
		release = append(release, done)
		seats[i] = seat[W]{p1, p2}
	}

	grp, ctx := errgroup.WithContext(ctx)
	specs := make(chan gameSpec)
	results := make(chan Result)
	grp.Go(func() error {
		defer close(specs)
		n := c.Games
		if c.Swap {
			n *= 2
		}
		for oi, op := range openings {
			for g := 0; g < n; g++ {
				spec := gameSpec{
					opening: op,
					oi:      oi,
					i:       g,
					p1First: g%2 == 0 || !c.Swap,
				}
				select {
				case specs <- spec:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		return nil
	})
	workers, wctx := errgroup.WithContext(ctx)
	for _, s := range seats {
		s := s
		workers.Go(func() error {
			for spec := range specs {
				r, err := playGame(wctx, k, s, spec)
				if err != nil {
					return err
				}
				select {
				case results <- r:
				case <-wctx.Done():
					return wctx.Err()
				}
			}
			return nil
		})
	}
	grp.Go(func() error {
		defer close(results)
		return workers.Wait()
	})

	for r := range results {
		if c.Verbose {
			log.Info().
				Int("opening", r.spec.oi).
				Int("game", r.spec.i).
				Bool("p1first", r.spec.p1First).
				Str("moves", r.Moves).
				Bool("draw", r.Draw).
				Stringer("winner", r.Winner).
				Msg("game")
		}
		st.add(r)
		st.Games = append(st.Games, r)
	}
	return st, grp.Wait()
}

func playGame[W bitboard.Word[W]](ctx context.Context, k *bitboard.Constants[W], s seat[W], spec gameSpec) (Result, error) {
	p := board.New(k)
	if err := notation.Replay(p, spec.opening); err != nil {
		return Result{}, err
	}
	g := &cli.Game[W]{Out: io.Discard, First: s.p1, Second: s.p2}
	if !spec.p1First {
		g.First, g.Second = s.p2, s.p1
	}
	g.Play(ctx, p)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	r := Result{spec: spec, Moves: notation.Format(p)}
	r.Over, r.Winner, r.Draw = p.GameOver()
	return r, nil
}
