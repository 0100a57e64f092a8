package play

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	api "github.com/oshokin/chessclock/internal/api/grpc/clock"
	"github.com/oshokin/chessclock/internal/logger"
)

// listen opens the remote-control socket.
func listen(ctx context.Context, address string) (net.Listener, error) {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	return lis, nil
}

// serveRemote serves the ClockService on lis until ctx is cancelled.
func serveRemote(ctx context.Context, lis net.Listener, svc api.Service) error {
	ctx = logger.WithName(ctx, "remote")

	grpcServer := grpc.NewServer()
	api.RegisterClockServiceServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Remote control listening", "listen_address", lis.Addr().String())

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}
