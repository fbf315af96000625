package rpc

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/logs"
)

func startServer(t *testing.T, srv *Server) *Client {
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	RegisterSolverServer(gs, srv)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn)
}

func newServer() *Server {
	srv := NewServer()
	srv.ConfigFactory = func(bitboard.Config) ai.SolverConfig {
		return ai.SolverConfig{TableBits: 12}
	}
	return srv
}

func request(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	req, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return req
}

func TestSolve(t *testing.T) {
	cl := startServer(t, newServer())
	ctx := context.Background()

	resp, err := cl.Solve(ctx, request(t, map[string]interface{}{
		"width": 4, "height": 4, "moves": "010101",
	}))
	require.NoError(t, err)
	f := resp.GetFields()
	assert.Equal(t, "win", f["value"].GetStringValue())
	assert.Equal(t, float64(ai.Win), f["score"].GetNumberValue())
	assert.Equal(t, "0", f["best"].GetStringValue())
	assert.NotEmpty(t, f["code"].GetStringValue())
	assert.NotEmpty(t, f["key"].GetStringValue())
	assert.Greater(t, f["nodes"].GetNumberValue(), float64(0))

	resp, err = cl.Solve(ctx, request(t, map[string]interface{}{
		"width": 4, "height": 4,
	}))
	require.NoError(t, err)
	assert.Equal(t, "draw", resp.GetFields()["value"].GetStringValue())
}

func TestSolveCube(t *testing.T) {
	cl := startServer(t, newServer())
	resp, err := cl.Solve(context.Background(), request(t, map[string]interface{}{
		"width": 4, "height": 4, "depth": 4, "moves": "0152a3",
	}))
	require.NoError(t, err)
	assert.Equal(t, "f", resp.GetFields()["best"].GetStringValue())
}

func TestAnalyze(t *testing.T) {
	cl := startServer(t, newServer())
	resp, err := cl.Analyze(context.Background(), request(t, map[string]interface{}{
		"width": 4, "height": 4, "moves": "010101",
	}))
	require.NoError(t, err)
	moves := resp.GetFields()["moves"].GetListValue().GetValues()
	require.Len(t, moves, 4)
	first := moves[0].GetStructValue().GetFields()
	assert.Equal(t, "0", first["move"].GetStringValue())
	assert.Equal(t, "win", first["value"].GetStringValue())
}

func TestBadRequests(t *testing.T) {
	cl := startServer(t, newServer())
	ctx := context.Background()
	for _, fields := range []map[string]interface{}{
		{"width": 4, "height": 4, "moves": "0000000"},
		{"width": 4, "height": 4, "moves": "z"},
		{"width": 7, "height": 6, "moves": "01010106"},
		{"width": -1, "height": 4},
		{"width": 2.5, "height": 4},
		{"width": 40, "height": 40},
	} {
		_, err := cl.Solve(ctx, request(t, fields))
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "%v", fields)
		_, err = cl.Analyze(ctx, request(t, fields))
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "analyze %v", fields)
	}
}

func TestCancelled(t *testing.T) {
	cl := startServer(t, newServer())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cl.Solve(ctx, request(t, map[string]interface{}{"width": 7, "height": 6}))
	assert.Equal(t, codes.Canceled, status.Code(err))
}

func TestLog(t *testing.T) {
	repo, err := logs.Open(filepath.Join(t.TempDir(), "solves.db"))
	require.NoError(t, err)
	defer repo.Close()

	srv := newServer()
	srv.Log = repo
	cl := startServer(t, srv)
	_, err = cl.Solve(context.Background(), request(t, map[string]interface{}{
		"width": 4, "height": 4, "moves": "010101",
	}))
	require.NoError(t, err)

	sum, err := repo.Summary()
	require.NoError(t, err)
	require.Len(t, sum, 1)
	assert.Equal(t, 4, sum[0].Width)
	assert.Equal(t, 1, sum[0].Depth)
	assert.Equal(t, "win", sum[0].Value)
	assert.Equal(t, 1, sum[0].Solves)
}
