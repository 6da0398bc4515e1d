// Package client bootstraps the CLI's local state: an SQLite database in the
// state directory with the embedded goose migrations applied. The session
// package keeps its key/value pairs there.
package client
