package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/board"
	"github.com/nelhage/fourstones/notation"
)

// Client drives an engine that speaks c4i, usually in a child
// process.
type Client struct {
	cmd *exec.Cmd

	stdinPipe  io.WriteCloser
	stdoutPipe io.ReadCloser

	read  *bufio.Reader
	write io.Writer

	gameid int
}

func NewClient(cmdline []string) (*Client, error) {
	if len(cmdline) == 0 {
		return nil, errors.New("empty command line")
	}
	cmd := &exec.Cmd{
		Args: cmdline,
	}
	if path, err := exec.LookPath(cmdline[0]); err != nil {
		return nil, err
	} else {
		cmd.Path = path
	}

	cl := &Client{
		cmd: cmd,
	}

	if stdin, err := cmd.StdinPipe(); err != nil {
		cl.Close()
		return nil, err
	} else {
		cl.stdinPipe = stdin
		cl.write = stdin
	}

	if stdout, err := cmd.StdoutPipe(); err != nil {
		cl.Close()
		return nil, err
	} else {
		cl.stdoutPipe = stdout
		cl.read = bufio.NewReader(stdout)
	}

	if err := cl.cmd.Start(); err != nil {
		cl.Close()
		return nil, err
	}
	if err := cl.handshake(); err != nil {
		cl.Close()
		return nil, err
	}
	return cl, nil
}

// newPipeClient talks to an engine over an existing pair of streams.
func newPipeClient(r io.ReadCloser, w io.WriteCloser) (*Client, error) {
	cl := &Client{
		stdinPipe:  w,
		stdoutPipe: r,
		read:       bufio.NewReader(r),
		write:      w,
	}
	if err := cl.handshake(); err != nil {
		cl.Close()
		return nil, err
	}
	return cl, nil
}

func (c *Client) handshake() error {
	_, err := c.sendCommand("c4i", "c4iok")
	return err
}

// NewPlayer starts a new game of c's size on the engine and returns a
// player that asks the engine for its moves. Players of earlier games
// on the same client stop working.
func NewPlayer[W bitboard.Word[W]](cl *Client, c *bitboard.Constants[W]) (ai.Player[W], error) {
	cl.gameid++
	cmd := fmt.Sprintf("newgame %d %d", c.Width, c.Height)
	if c.Shape == bitboard.Cube {
		cmd = fmt.Sprintf("%s %d", cmd, c.Depth)
	}
	if _, err := cl.sendCommand(cmd, ""); err != nil {
		return nil, err
	}
	return &player[W]{
		client: cl,
		gameid: cl.gameid,
	}, nil
}

func (c *Client) Close() {
	if c.write != nil {
		c.sendCommand("quit", "")
	}
	if c.stdinPipe != nil {
		c.stdinPipe.Close()
	}
	if c.stdoutPipe != nil {
		c.stdoutPipe.Close()
	}
	if c.cmd != nil && c.cmd.Process != nil {
		c.cmd.Wait()
	}
}

func (c *Client) sendCommand(cmd string, expect string) ([]string, error) {
	if _, err := fmt.Fprintln(c.write, cmd); err != nil {
		return nil, err
	}
	if expect == "" {
		return nil, nil
	}

	for {
		line, err := c.read.ReadString('\n')
		if err != nil {
			return nil, err
		}
		words := strings.Fields(line)
		if len(words) > 0 && words[0] == expect {
			return words, nil
		}
	}
}

type player[W bitboard.Word[W]] struct {
	client *Client
	gameid int
}

// GetMove returns -1 if the engine fails or has no move.
func (p *player[W]) GetMove(ctx context.Context, pos *board.Position[W]) int {
	if p.gameid != p.client.gameid {
		panic("bad gameid: calling GetMove on a dead player")
	}
	cmd := "position startpos"
	if pos.Plies() > 0 {
		cmd = fmt.Sprintf("%s moves %s", cmd, notation.Format(pos))
	}
	if _, err := p.client.sendCommand(cmd, ""); err != nil {
		return -1
	}
	goCmd := "go"
	if deadline, ok := ctx.Deadline(); ok {
		timeoutMS := time.Until(deadline) / time.Millisecond
		if timeoutMS < 1 {
			timeoutMS = 1
		}
		goCmd = fmt.Sprintf("%s movetime %d", goCmd, timeoutMS)
	}
	bestmove, err := p.client.sendCommand(goCmd, "bestmove")
	if err != nil || len(bestmove) != 2 {
		return -1
	}
	col, err := notation.Column(pos.Constants(), []rune(bestmove[1])[0])
	if err != nil {
		return -1
	}
	return col
}
