// Package notation reads and writes move lists. Columns are written
// as single hexadecimal digits, so boards of up to 16 columns can be
// described.
package notation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/board"
)

const MaxColumns = 16

var ErrBadColumn = errors.New("bad column")

// ParseMove parses a single 0-based column digit, 0-9 or a-f.
func ParseMove(r rune) (int, error) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), nil
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10, nil
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrBadColumn, r)
	}
}

// ParseMoves parses a string of column digits. Whitespace is ignored.
func ParseMoves(s string) ([]int, error) {
	var out []int
	for i, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		m, err := ParseMove(r)
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// FormatMoves writes a move list with 1-based column numbers, for
// display.
func FormatMoves(ms []int) string {
	var b strings.Builder
	for _, m := range ms {
		fmt.Fprintf(&b, "%d", m+1)
	}
	return b.String()
}

// FormatMove formats a single column in the form ParseMove reads.
func FormatMove(m int) string {
	return fmt.Sprintf("%x", m)
}

// FormatHex writes a move list that ParseMoves reads back.
func FormatHex(ms []int) string {
	var b strings.Builder
	for _, m := range ms {
		b.WriteString(FormatMove(m))
	}
	return b.String()
}

// Column parses a column digit and maps it to c's bit layout. Digits
// number the columns players see, so on a cube they skip the gap
// columns. A digit past the edge of the board maps to -1.
func Column[W bitboard.Word[W]](c *bitboard.Constants[W], r rune) (int, error) {
	n, err := ParseMove(r)
	if err != nil {
		return 0, err
	}
	return c.Physical(n), nil
}

// FormatColumn is the inverse of Column.
func FormatColumn[W bitboard.Word[W]](c *bitboard.Constants[W], col int) string {
	return FormatMove(c.Logical(col))
}

// Logical maps a list of columns of c's bit layout to the numbers
// players see.
func Logical[W bitboard.Word[W]](c *bitboard.Constants[W], ms []int) []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = c.Logical(m)
	}
	return out
}

// Format writes p's moves in the form Replay reads.
func Format[W bitboard.Word[W]](p *board.Position[W]) string {
	return FormatHex(Logical(p.Constants(), p.Moves()))
}

// Replay plays the moves in s on p, stopping at the first illegal
// one.
func Replay[W bitboard.Word[W]](p *board.Position[W], s string) error {
	ms, err := ParseMoves(s)
	if err != nil {
		return err
	}
	for i, m := range ms {
		if err := p.Play(p.Constants().Physical(m)); err != nil {
			return fmt.Errorf("move %d: %w", i+1, err)
		}
	}
	return nil
}
