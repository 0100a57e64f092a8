// Package play runs one interactive chess clock session: settings, terminal
// view, sound, the optional gRPC remote control and the session snapshot.
package play
