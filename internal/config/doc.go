// Package config defines the chess clock settings and provides helpers to
// load, validate and save them in YAML format, plus a Watcher that reloads
// the file when it changes on disk.
//
// The Config type holds the time control (minutes per player, increment,
// sound) and runtime knobs such as the tick interval and the remote-control
// listen address.
package config
