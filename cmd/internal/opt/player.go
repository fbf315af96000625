package opt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/board"
	"github.com/nelhage/fourstones/cli"
	"github.com/nelhage/fourstones/engine"
)

const PlayerUsage = `  human           read moves from the terminal
  rand            play randomly, but take immediate wins
  solver          play perfectly (within -limit)
  engine:CMD      run CMD as a c4i engine
`

type timedSolver[W bitboard.Word[W]] struct {
	limit time.Duration
	s     *ai.Solver[W]
}

func (t *timedSolver[W]) GetMove(ctx context.Context, p *board.Position[W]) int {
	if t.limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.limit)
		defer cancel()
	}
	r, err := t.s.Solve(ctx, p)
	if err != nil {
		log.Info().Err(err).Msg("solve interrupted, playing the quick move")
		return t.s.QuickMove(p)
	}
	return r.Move
}

// ParsePlayer builds the player a -first, -second or -opponent flag
// names. The returned func releases it.
func ParsePlayer[W bitboard.Word[W]](o *Solver, k *bitboard.Constants[W], spec string, limit time.Duration, in *bufio.Reader, out io.Writer) (ai.Player[W], func(), error) {
	nothing := func() {}
	switch {
	case spec == "human":
		return cli.NewCLIPlayer[W](out, in), nothing, nil
	case spec == "rand":
		return ai.NewRandom[W](), nothing, nil
	case spec == "solver":
		return &timedSolver[W]{limit, ai.NewSolver(k, o.BuildConfig(k.Config))}, nothing, nil
	case strings.HasPrefix(spec, "engine:"):
		cl, err := engine.NewClient(strings.Fields(spec[len("engine:"):]))
		if err != nil {
			return nil, nil, err
		}
		pl, err := engine.NewPlayer(cl, k)
		if err != nil {
			cl.Close()
			return nil, nil, err
		}
		return pl, cl.Close, nil
	}
	return nil, nil, fmt.Errorf("unparseable player: %s", spec)
}
