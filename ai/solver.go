package ai

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/board"
	"github.com/nelhage/fourstones/symmetry"
)

// Book is a store of precomputed values, keyed by the hex form of a
// canonical position code.
type Book interface {
	Lookup(code string) (value int, ok bool, err error)
}

type SolverConfig struct {
	Debug int

	// TableBits is log2 of the number of transposition table
	// entries.
	TableBits int

	NoTable    bool
	NoEvens    bool
	NoSymmetry bool
	NoSort     bool
	// Shuffle randomizes the order of root moves that the history
	// heuristic cannot tell apart.
	Shuffle bool

	// Threads bounds the number of concurrent searches Analyze runs.
	// Zero means one per CPU.
	Threads int

	Book Book
	// BookPlies is the ply count at which Book is consulted.
	BookPlies int
}

type Solver[W bitboard.Word[W]] struct {
	cfg SolverConfig
	c   *bitboard.Constants[W]
	sym *symmetry.Table[W]

	table     []tableEntry[W]
	tableMask uint64

	// history scores each square for each side; better moves are
	// tried first
	history [2][]int
	evens   bool

	st     Stats
	cancel *int32
	log    zerolog.Logger
}

func NewSolver[W bitboard.Word[W]](c *bitboard.Constants[W], cfg SolverConfig) *Solver[W] {
	if cfg.TableBits == 0 {
		cfg.TableBits = defaultTableBits
	}
	checkTableBits(cfg.TableBits)
	s := &Solver[W]{
		cfg: cfg,
		c:   c,
		log: log.With().Str("board", c.Config.String()).Logger(),
	}
	s.sym = symmetry.New(c)
	if !cfg.NoTable {
		s.table = make([]tableEntry[W], 1<<cfg.TableBits)
		s.tableMask = uint64(len(s.table) - 1)
	}
	s.evens = !cfg.NoEvens && c.Shape == bitboard.Planar && c.Height%2 == 0
	lines := lineCounts(c)
	for side := range s.history {
		s.history[side] = make([]int, len(lines))
		copy(s.history[side], lines)
	}
	var cancel int32
	s.cancel = &cancel
	return s
}

// lineCounts returns, for every square, the number of lines of four
// that pass through it.
func lineCounts[W bitboard.Word[W]](c *bitboard.Constants[W]) []int {
	out := make([]int, c.Size1)
	for _, d := range c.Directions {
		for b := uint(0); b+3*d < c.Size1; b++ {
			ok := true
			for j := uint(0); j < 4; j++ {
				if !c.Playable.Bit(b + j*d) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			for j := uint(0); j < 4; j++ {
				out[b+j*d]++
			}
		}
	}
	return out
}

func (s *Solver[W]) Constants() *bitboard.Constants[W] {
	return s.c
}

func (s *Solver[W]) GetMove(ctx context.Context, p *board.Position[W]) int {
	r, err := s.Solve(ctx, p)
	if err != nil {
		return -1
	}
	return r.Move
}

// Solve computes the game-theoretic value of p for the side to move,
// and a move achieving it. p is not modified.
func (s *Solver[W]) Solve(ctx context.Context, p *board.Position[W]) (Result, error) {
	if p.Constants() != s.c {
		panic("Solve: position has a different board")
	}
	start := time.Now()
	if over, winner, draw := p.GameOver(); over {
		v := Loss
		if draw {
			v = Draw
		} else if winner == p.ToMove() {
			v = Win
		}
		return Result{Value: v, Move: -1}, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var cancel int32
	s.cancel = &cancel
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			atomic.StoreInt32(&cancel, 1)
		case <-done:
		}
	}()

	for side := range s.history {
		for i, v := range s.history[side] {
			s.history[side][i] = v / 2
		}
	}
	s.st = Stats{}
	v, m := s.negamax(p.Clone(), 0, Loss-1, Win+1)
	s.st.Elapsed = time.Since(start)
	if atomic.LoadInt32(&cancel) != 0 {
		return Result{}, ctx.Err()
	}
	if s.cfg.Debug > 0 {
		s.log.Debug().
			Str("value", ValueString(v)).
			Int("move", m).
			Uint64("visited", s.st.Visited).
			Uint64("terminal", s.st.Terminal).
			Uint64("tt", s.st.TTHits).
			Uint64("evens", s.st.EvensCuts).
			Float64("cut0", float64(s.st.Cut0)/float64(s.st.CutNodes+1)).
			Dur("time", s.st.Elapsed).
			Msg("solved")
	}
	return Result{Value: v, Move: m, Stats: s.st}, nil
}

func (s *Solver[W]) key(p *board.Position[W]) W {
	code := p.PositionCode()
	if s.cfg.NoSymmetry {
		return code
	}
	return s.sym.Canonical(code)
}

func (s *Solver[W]) square(p *board.Position[W], col int) uint {
	return p.MoveBit(col).TrailingZeros()
}

// negamax returns the value of p for the side to move, searched with
// the window (α, β), and a move that achieves it. p is restored before
// it returns.
func (s *Solver[W]) negamax(p *board.Position[W], ply int, α, β int) (int, int) {
	s.st.Visited++
	c := s.c

	var buf [64]int
	all := buf[:0]
	for col := 0; col < c.Columns; col++ {
		if !p.IsPlayable(col) {
			continue
		}
		if p.IsWinningMove(col) {
			s.st.Terminal++
			return Win, col
		}
		all = append(all, col)
	}
	if p.Plies() == c.Size-1 {
		s.st.Terminal++
		return Draw, all[0]
	}

	// squares on which the opponent would complete a line
	other := p.Color(p.ToMove().Flip())
	threat := -1
	moves := all[len(all):]
	for _, col := range all {
		bit := p.MoveBit(col)
		if c.IsLegalWinningBoard(other.Or(bit)) {
			if threat >= 0 {
				s.st.Terminal++
				return Loss, threat
			}
			threat = col
		}
		if c.IsLegalWinningBoard(other.Or(bit.Lsh(1))) {
			// playing here lets the opponent win on top
			continue
		}
		moves = append(moves, col)
	}
	if threat >= 0 {
		if len(moves) == 0 || !containsMove(moves, threat) {
			s.st.Terminal++
			return Loss, threat
		}
		moves = append(moves[:0], threat)
	}
	if len(moves) == 0 {
		s.st.Terminal++
		return Loss, all[0]
	}

	var code W
	if ply > 0 {
		code = s.key(p)
		if te := s.ttGet(code); te != nil {
			s.st.TTHits++
			v := int(te.value)
			switch te.bound {
			case exactBound:
				return v, moves[0]
			case lowerBound:
				if v > α {
					α = v
				}
			case upperBound:
				if v < β {
					β = v
				}
			}
			if α >= β {
				return v, moves[0]
			}
		}
		if s.cfg.Book != nil && p.Plies() == s.cfg.BookPlies {
			if v, ok := s.probeBook(p); ok {
				return v, moves[0]
			}
		}
		if s.evens && p.ToMove() == board.First && p.EvenFills() && p.Evens() == board.EvensDraw {
			s.st.EvensCuts++
			if Draw < β {
				β = Draw
			}
			if α >= β {
				return Draw, moves[0]
			}
		}
	}

	side := p.ToMove()
	if ply == 0 && s.cfg.Shuffle {
		frand.Shuffle(len(moves), func(i, j int) {
			moves[i], moves[j] = moves[j], moves[i]
		})
	}
	if !s.cfg.NoSort && len(moves) > 1 {
		s.sortMoves(p, side, moves)
	}

	α0 := α
	best, bestMove := Loss-1, moves[0]
	for i, col := range moves {
		p.MakeMove(col)
		v, _ := s.negamax(p, ply+1, -β, -α)
		v = -v
		p.BackMove()
		if atomic.LoadInt32(s.cancel) != 0 {
			return 0, bestMove
		}
		if v > best {
			best, bestMove = v, col
		}
		if v > α {
			α = v
		}
		if α >= β {
			s.st.CutNodes++
			if i == 0 {
				s.st.Cut0++
			}
			s.reward(p, side, moves[:i], col)
			break
		}
	}

	if ply > 0 {
		if te := s.ttPut(code); te != nil {
			te.code = code
			te.used = true
			te.value = int8(best)
			if best <= α0 {
				te.bound = upperBound
			} else if best >= β {
				te.bound = lowerBound
			} else {
				te.bound = exactBound
			}
		}
	}
	return best, bestMove
}

func containsMove(ms []int, m int) bool {
	for _, o := range ms {
		if o == m {
			return true
		}
	}
	return false
}

// BookKey returns the key p is stored under in a Book. Books are
// always keyed by canonical codes, whatever NoSymmetry says.
func (s *Solver[W]) BookKey(p *board.Position[W]) string {
	return bitboard.Hex(s.sym.Canonical(p.PositionCode()))
}

func (s *Solver[W]) probeBook(p *board.Position[W]) (int, bool) {
	v, ok, err := s.cfg.Book.Lookup(s.BookKey(p))
	if err != nil {
		s.log.Warn().Err(err).Msg("book lookup failed")
		return 0, false
	}
	return v, ok
}

// sortMoves orders moves by descending history score. The lists are
// short, so an insertion sort does.
func (s *Solver[W]) sortMoves(p *board.Position[W], side board.Color, moves []int) {
	h := s.history[side]
	var scores [64]int
	for i, m := range moves {
		scores[i] = h[s.square(p, m)]
	}
	for i := 1; i < len(moves); i++ {
		m, sc := moves[i], scores[i]
		j := i
		for ; j > 0 && scores[j-1] < sc; j-- {
			moves[j], scores[j] = moves[j-1], scores[j-1]
		}
		moves[j], scores[j] = m, sc
	}
}

// reward credits col with a cutoff, at the expense of the moves that
// were tried before it and failed.
func (s *Solver[W]) reward(p *board.Position[W], side board.Color, tried []int, col int) {
	h := s.history[side]
	for _, m := range tried {
		h[s.square(p, m)]--
	}
	h[s.square(p, col)] += len(tried)
}

// QuickMove picks a move without searching: a winning move if there
// is one, else a forced block, else the move the history heuristic
// likes best among those that do not hand the opponent a win on top.
// It returns -1 if the game is over.
func (s *Solver[W]) QuickMove(p *board.Position[W]) int {
	if over, _, _ := p.GameOver(); over {
		return -1
	}
	c := s.c
	other := p.Color(p.ToMove().Flip())
	var safe, all []int
	for col := 0; col < c.Columns; col++ {
		if !p.IsPlayable(col) {
			continue
		}
		if p.IsWinningMove(col) {
			return col
		}
		all = append(all, col)
	}
	for _, col := range all {
		bit := p.MoveBit(col)
		if c.IsLegalWinningBoard(other.Or(bit)) {
			return col
		}
		if !c.IsLegalWinningBoard(other.Or(bit.Lsh(1))) {
			safe = append(safe, col)
		}
	}
	if len(safe) == 0 {
		return all[0]
	}
	s.sortMoves(p, p.ToMove(), safe)
	return safe[0]
}
