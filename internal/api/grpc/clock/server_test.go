package clock

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/chessclock/internal/codec"
	domain "github.com/oshokin/chessclock/internal/domain/clock"
	"github.com/oshokin/chessclock/internal/session"
)

func testConfig() domain.Config {
	return domain.Config{
		MinutesPlayer1:   1,
		MinutesPlayer2:   1,
		IncrementSeconds: 2,
		SoundEnabled:     true,
	}
}

// startSession runs a session on a fake clock for the duration of the test.
func startSession(t *testing.T) (*session.Runner, *clockwork.FakeClock) {
	t.Helper()

	ctrl, err := session.NewController(testConfig())
	require.NoError(t, err)

	fc := clockwork.NewFakeClock()
	runner := session.NewRunner(ctrl, session.WithClock(fc))

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = runner.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		<-runner.Done()
	})

	return runner, fc
}

func decode(t *testing.T, msg *structpb.Struct) session.Update {
	t.Helper()

	update, err := codec.UpdateFromStruct(msg)
	require.NoError(t, err)

	return update
}

// TestServer_Select_Validation ensures invalid sides return InvalidArgument errors.
func TestServer_Select_Validation(t *testing.T) {
	t.Parallel()

	runner, _ := startSession(t)
	s := NewServer(runner)

	_, err := s.Select(context.Background(), nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Select(context.Background(), wrapperspb.String("player3"))
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_Roundtrip exercises the unary methods against a live session.
func TestServer_Roundtrip(t *testing.T) {
	t.Parallel()

	runner, fc := startSession(t)
	s := NewServer(runner)
	ctx := context.Background()

	resp, err := s.GetState(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, domain.Idle, decode(t, resp).State.Phase)

	resp, err = s.Select(ctx, wrapperspb.String("player2"))
	require.NoError(t, err)

	update := decode(t, resp)
	require.Equal(t, domain.Running, update.State.Phase)
	require.Equal(t, domain.Player2, update.State.ActiveSide)
	require.True(t, update.Has(session.SignalClick))

	fc.Advance(10 * time.Second)

	resp, err = s.Switch(ctx, new(emptypb.Empty))
	require.NoError(t, err)

	update = decode(t, resp)
	require.Equal(t, domain.Player1, update.State.ActiveSide)
	require.Equal(t, 52*time.Second, update.State.Remaining2)

	resp, err = s.TogglePause(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, domain.Paused, decode(t, resp).State.Phase)

	resp, err = s.Reset(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, domain.Idle, decode(t, resp).State.Phase)
}

// TestServer_Configure checks partial changes and validation.
func TestServer_Configure(t *testing.T) {
	t.Parallel()

	runner, _ := startSession(t)
	s := NewServer(runner)
	ctx := context.Background()

	_, err := s.Configure(ctx, new(structpb.Struct))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	bad, err := structpb.NewStruct(map[string]any{codec.FieldMinutes1: 0})
	require.NoError(t, err)

	_, err = s.Configure(ctx, bad)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	good, err := structpb.NewStruct(map[string]any{codec.FieldMinutes1: 3})
	require.NoError(t, err)

	resp, err := s.Configure(ctx, good)
	require.NoError(t, err)

	update := decode(t, resp)
	require.Equal(t, 3, update.Config.MinutesPlayer1)
	require.Equal(t, 2, update.Config.IncrementSeconds)
	require.Equal(t, 3*time.Minute, update.State.Remaining1)
}

// TestServer_ConfigureBuildsOnStagedChange keeps every partial change made during a game.
func TestServer_ConfigureBuildsOnStagedChange(t *testing.T) {
	t.Parallel()

	runner, _ := startSession(t)
	s := NewServer(runner)
	ctx := context.Background()

	_, err := s.Select(ctx, wrapperspb.String("player1"))
	require.NoError(t, err)

	increment, err := structpb.NewStruct(map[string]any{codec.FieldIncrement: 10})
	require.NoError(t, err)

	resp, err := s.Configure(ctx, increment)
	require.NoError(t, err)
	require.True(t, decode(t, resp).Pending)

	minutes, err := structpb.NewStruct(map[string]any{codec.FieldMinutes1: 5})
	require.NoError(t, err)

	resp, err = s.Configure(ctx, minutes)
	require.NoError(t, err)

	update := decode(t, resp)
	require.True(t, update.Pending)
	require.Equal(t, domain.Running, update.State.Phase)
	require.Equal(t, 2, update.Config.IncrementSeconds)

	resp, err = s.Reset(ctx, new(emptypb.Empty))
	require.NoError(t, err)

	update = decode(t, resp)
	require.False(t, update.Pending)
	require.Equal(t, 5, update.Config.MinutesPlayer1)
	require.Equal(t, 10, update.Config.IncrementSeconds)
	require.Equal(t, 5*time.Minute, update.State.Remaining1)

	// A field of the wrong type is rejected without touching the session.
	wrong, err := structpb.NewStruct(map[string]any{codec.FieldIncrement: "ten"})
	require.NoError(t, err)

	_, err = s.Configure(ctx, wrong)
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_Unavailable checks the status code once the session has ended.
func TestServer_Unavailable(t *testing.T) {
	t.Parallel()

	ctrl, err := session.NewController(testConfig())
	require.NoError(t, err)

	runner := session.NewRunner(ctrl, session.WithClock(clockwork.NewFakeClock()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, runner.Run(ctx))

	_, err = NewServer(runner).Switch(context.Background(), new(emptypb.Empty))
	require.Equal(t, codes.Unavailable, status.Code(err))
}

// TestClient_OverConnection exercises the service descriptor and client through a real gRPC connection.
func TestClient_OverConnection(t *testing.T) {
	t.Parallel()

	runner, _ := startSession(t)

	lis := bufconn.Listen(1 << 20)
	grpcServer := grpc.NewServer()
	RegisterClockServiceServer(grpcServer, NewServer(runner))

	go func() { _ = grpcServer.Serve(lis) }()

	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close() })

	client := NewClockServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := client.Watch(ctx)
	require.NoError(t, err)

	resp, err := client.Select(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, domain.Running, decode(t, resp).State.Phase)

	for {
		msg, err := stream.Recv()
		require.NoError(t, err)

		if decode(t, msg).State.Phase == domain.Running {
			break
		}
	}

	_, err = client.Select(ctx, "nobody")
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}
