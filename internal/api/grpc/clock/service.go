package clock

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "chessclock.v1.ClockService"

// Full method names of ClockService.
const (
	GetStateFullMethodName    = "/" + ServiceName + "/GetState"
	SelectFullMethodName      = "/" + ServiceName + "/Select"
	SwitchFullMethodName      = "/" + ServiceName + "/Switch"
	TogglePauseFullMethodName = "/" + ServiceName + "/TogglePause"
	ResetFullMethodName       = "/" + ServiceName + "/Reset"
	ConfigureFullMethodName   = "/" + ServiceName + "/Configure"
	WatchFullMethodName       = "/" + ServiceName + "/Watch"
)

// ClockServiceServer is the server API for ClockService.
// Every unary method answers with the session update it caused.
type ClockServiceServer interface {
	GetState(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	Select(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	Switch(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	TogglePause(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	Reset(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	Configure(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Watch(req *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error
}

// ClockServiceDesc is the grpc.ServiceDesc for ClockService.
var ClockServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClockServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetState",
			Handler:    unaryHandler(GetStateFullMethodName, newEmpty, ClockServiceServer.GetState),
		},
		{
			MethodName: "Select",
			Handler:    unaryHandler(SelectFullMethodName, newStringValue, ClockServiceServer.Select),
		},
		{
			MethodName: "Switch",
			Handler:    unaryHandler(SwitchFullMethodName, newEmpty, ClockServiceServer.Switch),
		},
		{
			MethodName: "TogglePause",
			Handler:    unaryHandler(TogglePauseFullMethodName, newEmpty, ClockServiceServer.TogglePause),
		},
		{
			MethodName: "Reset",
			Handler:    unaryHandler(ResetFullMethodName, newEmpty, ClockServiceServer.Reset),
		},
		{
			MethodName: "Configure",
			Handler:    unaryHandler(ConfigureFullMethodName, newStruct, ClockServiceServer.Configure),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
}

// RegisterClockServiceServer registers srv on the provided registrar.
func RegisterClockServiceServer(s grpc.ServiceRegistrar, srv ClockServiceServer) {
	s.RegisterService(&ClockServiceDesc, srv)
}

func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }

func newStringValue() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }

func newStruct() *structpb.Struct { return new(structpb.Struct) }

// unaryHandler builds a method handler that decodes a Req and calls method.
func unaryHandler[Req any](
	fullMethod string,
	newRequest func() *Req,
	method func(ClockServiceServer, context.Context, *Req) (*structpb.Struct, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newRequest()
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(ClockServiceServer) //nolint:errcheck // HandlerType guarantees the type.
		if interceptor == nil {
			return method(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(*Req) //nolint:errcheck // The interceptor passes in through.

			return method(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	server, _ := srv.(ClockServiceServer) //nolint:errcheck // HandlerType guarantees the type.

	return server.Watch(in, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

// ClockServiceClient is the client API for ClockService.
type ClockServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewClockServiceClient wraps a client connection.
func NewClockServiceClient(cc grpc.ClientConnInterface) *ClockServiceClient {
	return &ClockServiceClient{cc: cc}
}

// GetState returns the current session update.
func (c *ClockServiceClient) GetState(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GetStateFullMethodName, new(emptypb.Empty), opts...)
}

// Select presses the given side ("player1" or "player2").
func (c *ClockServiceClient) Select(ctx context.Context, side string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SelectFullMethodName, wrapperspb.String(side), opts...)
}

// Switch ends the active player's turn.
func (c *ClockServiceClient) Switch(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SwitchFullMethodName, new(emptypb.Empty), opts...)
}

// TogglePause pauses or resumes the clock.
func (c *ClockServiceClient) TogglePause(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, TogglePauseFullMethodName, new(emptypb.Empty), opts...)
}

// Reset starts a new session.
func (c *ClockServiceClient) Reset(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ResetFullMethodName, new(emptypb.Empty), opts...)
}

// Configure changes the time control; absent fields are left unchanged.
func (c *ClockServiceClient) Configure(
	ctx context.Context,
	cfg *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invoke(ctx, ConfigureFullMethodName, cfg, opts...)
}

// Watch streams every session update until ctx is cancelled or the session ends.
func (c *ClockServiceClient) Watch(
	ctx context.Context,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &ClockServiceDesc.Streams[0], WatchFullMethodName, opts...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.SendMsg(new(emptypb.Empty)); err != nil {
		return nil, err
	}

	if err := x.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}

func (c *ClockServiceClient) invoke(
	ctx context.Context,
	method string,
	in any,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
