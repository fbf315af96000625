package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/board"
	"github.com/nelhage/fourstones/notation"
)

// NewCLIPlayer returns a player that reads one column per line from
// in. It returns -1 once in is exhausted.
func NewCLIPlayer[W bitboard.Word[W]](out io.Writer, in *bufio.Reader) ai.Player[W] {
	return &cliPlayer[W]{out, in}
}

type cliPlayer[W bitboard.Word[W]] struct {
	out io.Writer
	in  *bufio.Reader
}

func (c *cliPlayer[W]) GetMove(_ context.Context, p *board.Position[W]) int {
	for {
		fmt.Fprintf(c.out, "%s> ", p.ToMove())
		line, err := c.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" && err != nil {
			return -1
		}
		ms, perr := notation.ParseMoves(line)
		if perr != nil || len(ms) != 1 {
			fmt.Fprintln(c.out, "expected one column, 0-9 or a-f")
			if err != nil {
				return -1
			}
			continue
		}
		col := p.Constants().Physical(ms[0])
		if !p.IsPlayable(col) {
			fmt.Fprintf(c.out, "column %s is not playable\n", notation.FormatMove(ms[0]))
			if err != nil {
				return -1
			}
			continue
		}
		return col
	}
}
