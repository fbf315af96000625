package rpc

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/game"
	"github.com/nelhage/fourstones/logs"
)

// Server answers solve requests for boards of any size. Requests are
// served one at a time; each board size gets one cached session.
type Server struct {
	// ConfigFactory returns the solver configuration for a board
	// the server has not seen before.
	ConfigFactory func(cfg bitboard.Config) ai.SolverConfig
	// Log, if set, records every solve.
	Log *logs.Repository

	mu       sync.Mutex
	sessions map[bitboard.Config]game.Session
}

func NewServer() *Server {
	return &Server{sessions: make(map[bitboard.Config]game.Session)}
}

func parseConfig(f map[string]*structpb.Value) (bitboard.Config, error) {
	cfg := bitboard.Config{Width: 7, Height: 6}
	dim := func(name string, into *int) error {
		v, ok := f[name]
		if !ok {
			return nil
		}
		n := v.GetNumberValue()
		if n < 1 || n != float64(int(n)) {
			return status.Errorf(codes.InvalidArgument, "bad %s: %v", name, v.AsInterface())
		}
		*into = int(n)
		return nil
	}
	if err := dim("width", &cfg.Width); err != nil {
		return cfg, err
	}
	if err := dim("height", &cfg.Height); err != nil {
		return cfg, err
	}
	if _, ok := f["depth"]; ok {
		cfg.Shape = bitboard.Cube
		if err := dim("depth", &cfg.Depth); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// position returns the cached session for the request's board, set
// up at the requested position. s.mu must be held.
func (s *Server) position(req *structpb.Struct) (game.Session, error) {
	f := req.GetFields()
	cfg, err := parseConfig(f)
	if err != nil {
		return nil, err
	}
	sess, ok := s.sessions[cfg]
	if !ok {
		var scfg ai.SolverConfig
		if s.ConfigFactory != nil {
			scfg = s.ConfigFactory(cfg)
		}
		sess, err = game.New(cfg, scfg)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		s.sessions[cfg] = sess
	}
	sess.Reset()
	if err := sess.Replay(f["moves"].GetStringValue()); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return sess, nil
}

func solveError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Internal, err.Error())
}

func (s *Server) Solve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.position(req)
	if err != nil {
		return nil, err
	}
	r, err := sess.Solve(ctx)
	if err != nil {
		return nil, solveError(err)
	}
	s.record(sess, r)
	best := ""
	if r.Move >= 0 {
		best = sess.Format(r.Move)
	}
	return structpb.NewStruct(map[string]interface{}{
		"value":      ai.ValueString(r.Value),
		"score":      r.Value,
		"best":       best,
		"code":       sess.Code(),
		"key":        sess.Key(),
		"nodes":      r.Stats.Visited,
		"elapsed_ms": r.Stats.Elapsed.Milliseconds(),
	})
}

func (s *Server) Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.position(req)
	if err != nil {
		return nil, err
	}
	mvs, st, err := sess.Analyze(ctx)
	if err != nil {
		return nil, solveError(err)
	}
	moves := make([]interface{}, 0, len(mvs))
	for _, mv := range mvs {
		moves = append(moves, map[string]interface{}{
			"move":  sess.Format(mv.Move),
			"value": ai.ValueString(mv.Value),
			"score": mv.Value,
		})
	}
	return structpb.NewStruct(map[string]interface{}{
		"moves":      moves,
		"nodes":      st.Visited,
		"elapsed_ms": st.Elapsed.Milliseconds(),
	})
}

func (s *Server) record(sess game.Session, r ai.Result) {
	if s.Log == nil {
		return
	}
	if err := s.Log.InsertSolve(logs.NewSolve(sess, r, "rpc")); err != nil {
		log.Warn().Err(err).Msg("recording solve")
	}
}

var _ SolverServer = (*Server)(nil)
