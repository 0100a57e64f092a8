// Package snapshot implements persistence for an interrupted clock session.
//
// The FileRepository stores and loads the session as JSON on disk and exposes
// a Repository interface that the play service depends on.
package snapshot
