// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a sane console encoder,
//   - a file-backed variant for sessions that own the terminal,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - key-value helpers (InfoKV, WarnKV, ErrorKV).
//
// Every component accepts a context and extracts the logger from it, enabling
// scoped, structured logging throughout the codebase.
package logger
