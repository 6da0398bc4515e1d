// Package cli provides the interactive authkeeper command-line client.
//
// It wires configuration, the local session database, the API client and
// an interactive REPL. Every command names a view; the route guard decides
// whether that view may be shown for the current session and redirects
// otherwise (anonymous users to login, authenticated users away from login
// and register).
//
// Commands: help, login, register, dashboard, users, show <id>, edit <id>,
// delete <id>, whoami, logout, exit.
package cli
