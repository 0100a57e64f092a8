// Package codec converts clock states, time controls and session updates to
// and from protobuf Struct messages.
//
// The same representation is used on the gRPC wire and in the snapshot file,
// so a saved session can be inspected with any JSON tool.
package codec
