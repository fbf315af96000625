package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/board"
	"github.com/nelhage/fourstones/notation"
)

var c4x4 = bitboard.MustPrecompute[bitboard.Bits64](bitboard.Config{Width: 4, Height: 4})

func trimLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}

func TestRenderBoard(t *testing.T) {
	p := board.New(c4x4)
	require.NoError(t, notation.Replay(p, "01"))
	var out bytes.Buffer
	RenderBoard(nil, &out, p)
	assert.Equal(t, []string{
		"",
		"[X to play]",
		". . . .",
		". . . .",
		". . . .",
		"X O . .",
		"0 1 2 3",
		"moves: 12",
		"",
	}, trimLines(out.String()))
}

func TestRenderCube(t *testing.T) {
	c := bitboard.MustPrecompute[bitboard.Bits128](bitboard.Config{
		Width: 4, Height: 2, Depth: 2, Shape: bitboard.Cube,
	})
	p := board.New(c)
	require.NoError(t, notation.Replay(p, "5"))
	var out bytes.Buffer
	RenderBoard(&UnicodeGlyphs, &out, p)
	lines := trimLines(out.String())
	assert.Equal(t, "· · · · | · · · ·", lines[2])
	assert.Equal(t, "· · · · | · ● · ·", lines[3])
	assert.Equal(t, "0 1 2 3   4 5 6 7", lines[4])
	assert.Equal(t, "moves: 6", lines[5])
}

func TestShell(t *testing.T) {
	var out bytes.Buffer
	sh := NewShell(ai.NewSolver(c4x4, ai.SolverConfig{TableBits: 12}), &out)
	err := sh.Run(context.Background(), strings.NewReader("00000\n12\nq3"))
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, bell, "the fifth stone in column 0 rings the bell")
	assert.Contains(t, s, "moves: 1111\n")
	assert.Contains(t, s, "moves: 23\n")
	assert.Equal(t, 2, strings.Count(s, "best move"))
	assert.True(t, strings.HasSuffix(s, "Be seeing you...\n"))
	assert.Equal(t, 0, sh.Position().Plies(), "the newline resets the game and q stops reading")
}

func TestShellGameOver(t *testing.T) {
	var out bytes.Buffer
	sh := NewShell(ai.NewSolver(c4x4, ai.SolverConfig{TableBits: 12}), &out)
	require.NoError(t, sh.Run(context.Background(), strings.NewReader("0101010\n")))
	assert.Contains(t, out.String(), "Game over: X wins")
	assert.NotContains(t, out.String(), "best move")
}

func TestShellOpponent(t *testing.T) {
	var out bytes.Buffer
	sh := NewShell(ai.NewSolver(c4x4, ai.SolverConfig{TableBits: 12}), &out)
	sh.Opponent = ai.NewSolver(c4x4, ai.SolverConfig{TableBits: 12})
	require.NoError(t, sh.Run(context.Background(), strings.NewReader("0")))
	assert.Equal(t, 2, sh.Position().Plies())
	assert.Contains(t, out.String(), "O plays")
}

func TestCLIPlayer(t *testing.T) {
	var out bytes.Buffer
	p := board.New(c4x4)
	pl := NewCLIPlayer[bitboard.Bits64](&out, bufio.NewReader(strings.NewReader("x\n9\n2\n")))
	assert.Equal(t, 2, pl.GetMove(context.Background(), p))
	assert.Contains(t, out.String(), "expected one column")
	assert.Contains(t, out.String(), "column 9 is not playable")

	assert.Equal(t, -1, pl.GetMove(context.Background(), p))
}

func TestGame(t *testing.T) {
	var out bytes.Buffer
	g := &Game[bitboard.Bits64]{
		Out:    &out,
		First:  ai.NewRandom[bitboard.Bits64](),
		Second: ai.NewSolver(c4x4, ai.SolverConfig{TableBits: 12}),
	}
	p := g.Play(context.Background(), board.New(c4x4))
	over, _, _ := p.GameOver()
	assert.True(t, over)
	assert.Contains(t, out.String(), "Game Over!")
}

func TestPrintResult(t *testing.T) {
	var out bytes.Buffer
	p := board.New(c4x4)
	PrintResult(&out, p, ai.Result{Value: ai.Win, Move: 10, Stats: ai.Stats{Visited: 1234567}})
	assert.Contains(t, out.String(), "X win: best move a\n")
	assert.Contains(t, out.String(), "work = 1,234,567 nodes")
}
