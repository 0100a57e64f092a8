// Package remote is a client for a chess clock started with a listen address.
//
// It wraps the ClockService gRPC client with call timeouts and decodes every
// answer into a session update.
package remote
