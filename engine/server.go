// Package engine speaks c4i, a line protocol for driving a solver from
// another program:
//
//	c4i                            -> id lines, then c4iok
//	newgame <width> <height> [<depth>]
//	position startpos [moves <digits>]
//	go [movetime <ms>]             -> info line, then bestmove <digit>
//	analyze                        -> one info line per move, then analyzeok
//	isready                        -> readyok
//	quit
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/game"
)

var ErrNoPosition = errors.New("no position provided")

var DefaultConfig = bitboard.Config{Width: 7, Height: 6}

type Engine struct {
	// ConfigFactory returns the solver configuration for a new game.
	ConfigFactory func(cfg bitboard.Config) ai.SolverConfig

	in  *bufio.Reader
	out io.Writer

	cfg  bitboard.Config
	sess game.Session
	pos  bool
}

func NewEngine(in io.Reader, out io.Writer) *Engine {
	return &Engine{
		in:  bufio.NewReader(in),
		out: out,
		cfg: DefaultConfig,
	}
}

func (e *Engine) Run(ctx context.Context) error {
	for {
		line, err := e.in.ReadString('\n')
		if errors.Is(err, io.EOF) && line == "" {
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		switch words[0] {
		case "c4i":
			fmt.Fprintln(e.out, "id name fourstones")
			fmt.Fprintln(e.out, "id author Nelson Elhage")
			fmt.Fprintln(e.out, "c4iok")
		case "quit":
			return nil
		case "newgame":
			if err := e.newGame(words[1:]); err != nil {
				return err
			}
		case "position":
			if err := e.position(words[1:]); err != nil {
				return fmt.Errorf("error parsing position: %w", err)
			}
		case "go":
			if err := e.think(ctx, words[1:]); err != nil {
				log.Error().Err(err).Msg("error in go")
			}
		case "analyze":
			if err := e.analyze(ctx); err != nil {
				log.Error().Err(err).Msg("error in analyze")
			}
		case "stop":
		case "isready":
			fmt.Fprintln(e.out, "readyok")
		default:
			return fmt.Errorf("unknown command: %q", strings.TrimSpace(line))
		}
	}
}

func (e *Engine) newGame(args []string) error {
	e.sess = nil
	e.pos = false
	e.cfg = DefaultConfig
	if len(args) == 0 {
		return nil
	}
	if len(args) != 2 && len(args) != 3 {
		return fmt.Errorf("newgame: expected <width> <height> [<depth>], got %q", args)
	}
	dims := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 1 {
			return fmt.Errorf("newgame: bad dimension %q", a)
		}
		dims[i] = n
	}
	e.cfg = bitboard.Config{Width: dims[0], Height: dims[1]}
	if len(dims) == 3 {
		e.cfg.Depth = dims[2]
		e.cfg.Shape = bitboard.Cube
	}
	return nil
}

func (e *Engine) session() (game.Session, error) {
	if e.sess != nil {
		return e.sess, nil
	}
	var scfg ai.SolverConfig
	if e.ConfigFactory != nil {
		scfg = e.ConfigFactory(e.cfg)
	}
	sess, err := game.New(e.cfg, scfg)
	if err != nil {
		return nil, err
	}
	e.sess = sess
	return sess, nil
}

func (e *Engine) position(words []string) error {
	sess, err := e.session()
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return errors.New("not enough arguments")
	}
	if words[0] != "startpos" {
		return fmt.Errorf("unknown initial position: %q", words[0])
	}
	sess.Reset()
	e.pos = false
	words = words[1:]
	if len(words) > 0 {
		if words[0] != "moves" {
			return errors.New("position: expected `moves'")
		}
		if err := sess.Replay(strings.Join(words[1:], "")); err != nil {
			return err
		}
	}
	e.pos = true
	return nil
}

func parseMoveTime(words []string) (time.Duration, error) {
	if len(words) == 0 {
		return 0, nil
	}
	i := lo.IndexOf(words, "movetime")
	if i < 0 || i+1 >= len(words) {
		return 0, errors.New("expected movetime <ms>")
	}
	ms, err := strconv.ParseUint(words[i+1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad ms: %v", words[i+1])
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func (e *Engine) think(ctx context.Context, words []string) error {
	if !e.pos {
		return ErrNoPosition
	}
	limit, err := parseMoveTime(words)
	if err != nil {
		return err
	}
	if limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	start := time.Now()
	r, err := e.sess.Solve(ctx)
	switch {
	case err != nil && ctx.Err() != nil:
		fmt.Fprintf(e.out, "info time %d score unknown\n", time.Since(start)/time.Millisecond)
		r.Move = e.sess.QuickMove()
	case err != nil:
		return err
	default:
		fmt.Fprintf(e.out, "info time %d nodes %d score %s\n",
			r.Stats.Elapsed/time.Millisecond, r.Stats.Visited, ai.ValueString(r.Value))
	}
	if r.Move < 0 {
		fmt.Fprintln(e.out, "bestmove none")
		return nil
	}
	fmt.Fprintf(e.out, "bestmove %s\n", e.sess.Format(r.Move))
	return nil
}

func (e *Engine) analyze(ctx context.Context) error {
	if !e.pos {
		return ErrNoPosition
	}
	mvs, st, err := e.sess.Analyze(ctx)
	if err != nil {
		return err
	}
	lines := lo.Map(mvs, func(mv ai.MoveValue, _ int) string {
		return fmt.Sprintf("info move %s score %s", e.sess.Format(mv.Move), ai.ValueString(mv.Value))
	})
	for _, l := range lines {
		fmt.Fprintln(e.out, l)
	}
	fmt.Fprintf(e.out, "info time %d nodes %d\n", st.Elapsed/time.Millisecond, st.Visited)
	fmt.Fprintln(e.out, "analyzeok")
	return nil
}
