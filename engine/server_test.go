package engine

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/board"
	"github.com/nelhage/fourstones/notation"
)

func smallTables(bitboard.Config) ai.SolverConfig {
	return ai.SolverConfig{TableBits: 12}
}

func runScript(t *testing.T, script string) ([]string, error) {
	var out bytes.Buffer
	e := NewEngine(strings.NewReader(script), &out)
	e.ConfigFactory = smallTables
	err := e.Run(context.Background())
	return strings.Split(strings.TrimSpace(out.String()), "\n"), err
}

func TestHandshake(t *testing.T) {
	lines, err := runScript(t, "c4i\nisready\nquit\nisready\n")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"id name fourstones",
		"id author Nelson Elhage",
		"c4iok",
		"readyok",
	}, lines)
}

func TestGo(t *testing.T) {
	lines, err := runScript(t, `newgame 4 4
position startpos moves 010101
go
position startpos moves 01010
go movetime 10000
`)
	require.NoError(t, err)
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "score win")
	assert.Equal(t, "bestmove 0", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "info time "))
	assert.Equal(t, "bestmove 0", lines[3])
}

func TestGoTimeout(t *testing.T) {
	lines, err := runScript(t, "newgame 7 6\nposition startpos\ngo movetime 10\n")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "score unknown")
	require.True(t, strings.HasPrefix(lines[1], "bestmove "))
	col, err := notation.ParseMove([]rune(lines[1])[9])
	require.NoError(t, err)
	assert.Less(t, col, 7)
}

func TestGameOver(t *testing.T) {
	lines, err := runScript(t, "newgame 4 4\nposition startpos moves 0101010\ngo\n")
	require.NoError(t, err)
	assert.Equal(t, "bestmove none", lines[len(lines)-1])
}

func TestAnalyze(t *testing.T) {
	lines, err := runScript(t, "newgame 4 4\nposition startpos moves 010101\nanalyze\n")
	require.NoError(t, err)
	require.Len(t, lines, 6)
	assert.Equal(t, "info move 0 score win", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "info move 1 score "))
	assert.Equal(t, "analyzeok", lines[5])
}

func TestCube(t *testing.T) {
	// X holds three squares of a diagonal that crosses every layer
	lines, err := runScript(t, "newgame 4 4 4\nposition startpos moves 0152a3\ngo\n")
	require.NoError(t, err)
	assert.Equal(t, "bestmove f", lines[len(lines)-1])
}

func TestErrors(t *testing.T) {
	lines, err := runScript(t, "go\nisready\n")
	require.NoError(t, err, "go without a position is logged, not fatal")
	assert.Equal(t, []string{"readyok"}, lines)

	_, err = runScript(t, "frobnicate\n")
	assert.Error(t, err)

	_, err = runScript(t, "position startpos moves 0000000\n")
	assert.ErrorIs(t, err, board.ErrIllegalMove)

	_, err = runScript(t, "newgame 7\n")
	assert.Error(t, err)

	_, err = runScript(t, "newgame 40 40\nposition startpos\n")
	assert.ErrorIs(t, err, bitboard.ErrBadConfig)
}

func TestParseMoveTime(t *testing.T) {
	d, err := parseMoveTime(nil)
	require.NoError(t, err)
	assert.Zero(t, d)
	d, err = parseMoveTime([]string{"movetime", "250"})
	require.NoError(t, err)
	assert.Equal(t, int64(250), d.Milliseconds())
	_, err = parseMoveTime([]string{"movetime"})
	assert.Error(t, err)
	_, err = parseMoveTime([]string{"movetime", "soon"})
	assert.Error(t, err)
}

func TestClient(t *testing.T) {
	toEngine, fromClient := io.Pipe()
	toClient, fromEngine := io.Pipe()
	e := NewEngine(toEngine, fromEngine)
	e.ConfigFactory = smallTables
	done := make(chan error, 1)
	go func() {
		err := e.Run(context.Background())
		fromEngine.Close()
		done <- err
	}()

	cl, err := newPipeClient(toClient, fromClient)
	require.NoError(t, err)

	c := bitboard.MustPrecompute[bitboard.Bits64](bitboard.Config{Width: 4, Height: 4})
	pl, err := NewPlayer(cl, c)
	require.NoError(t, err)
	p := board.New(c)
	require.NoError(t, notation.Replay(p, "010101"))
	assert.Equal(t, 0, pl.GetMove(context.Background(), p))

	next, err := NewPlayer(cl, c)
	require.NoError(t, err)
	assert.Panics(t, func() { pl.GetMove(context.Background(), p) })
	assert.Equal(t, 0, next.GetMove(context.Background(), p))

	cl.Close()
	assert.NoError(t, <-done)
}
