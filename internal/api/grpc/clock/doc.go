// Package clock implements the gRPC transport for the chess clock remote
// control.
//
// It declares the chessclock.v1.ClockService descriptor over protobuf
// well-known types, adapts session updates to protobuf messages and exposes a
// server that forwards requests to the running session.
package clock
