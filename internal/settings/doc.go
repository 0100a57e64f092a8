// Package settings is the interactive editor for the chess clock settings
// file. A running clock picks the saved changes up through its file watcher.
package settings
