package clock

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/chessclock/internal/codec"
	domain "github.com/oshokin/chessclock/internal/domain/clock"
	"github.com/oshokin/chessclock/internal/logger"
	"github.com/oshokin/chessclock/internal/session"
)

// Service abstracts the session operations the transport layer depends on.
// *session.Runner satisfies it.
type Service interface {
	Send(ctx context.Context, ev session.Event) (session.Update, error)
	Subscribe() (<-chan session.Update, func())
}

// Server implements the ClockService gRPC API.
type Server struct {
	// service is the running session.
	service Service
}

var _ ClockServiceServer = (*Server)(nil)

// NewServer wires the provided session into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetState returns the current session update.
func (s *Server) GetState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.send(ctx, session.Query{})
}

// Select presses the given side: it starts an idle clock or hands the turn over.
func (s *Server) Select(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "side is required")
	}

	side, err := domain.ParseSide(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	return s.send(ctx, session.SelectSide{Side: side})
}

// Switch ends the active player's turn, like a key press.
func (s *Server) Switch(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.send(ctx, session.KeyPress{})
}

// TogglePause pauses a running clock or resumes a paused one.
func (s *Server) TogglePause(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.send(ctx, session.TogglePause{})
}

// Reset starts a new session, applying a staged time control if any.
func (s *Server) Reset(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.send(ctx, session.ResetRequest{})
}

// Configure overlays the provided fields on the time control the next game
// will use. While a game is in progress the change waits for the next reset.
func (s *Server) Configure(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil || len(req.GetFields()) == 0 {
		return nil, status.Error(codes.InvalidArgument, "at least one setting is required")
	}

	// The merge happens inside the session so that two remote changes in a
	// row build on each other.
	adjust := session.AdjustSettings{
		Adjust: func(next domain.Config) (domain.Config, error) {
			return codec.MergeConfig(next, req)
		},
	}

	update, err := s.service.Send(ctx, adjust)
	if err != nil {
		return nil, toStatus(err)
	}

	logger.InfoKV(ctx, "Remote settings change",
		"change", req.AsMap(),
		"pending", update.Pending,
	)

	return codec.UpdateToStruct(update), nil
}

// Watch streams session updates until the client goes away or the session ends.
func (s *Server) Watch(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()

	updates, cancel := s.service.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			if err := stream.Send(codec.UpdateToStruct(update)); err != nil {
				return err
			}
		}
	}
}

func (s *Server) send(ctx context.Context, ev session.Event) (*structpb.Struct, error) {
	update, err := s.service.Send(ctx, ev)
	if err != nil {
		return nil, toStatus(err)
	}

	return codec.UpdateToStruct(update), nil
}

// toStatus maps session errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, session.ErrStopped):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, domain.ErrInvalidMinutes), errors.Is(err, domain.ErrInvalidIncrement),
		errors.Is(err, codec.ErrInvalidField):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
