// Package cli provides the interactive accounts command-line client.
//
// It wires configuration, the local session cache, the API service and a
// REPL. A session cached by a previous run is restored on start, and a
// background watcher tracks server health.
//
// Commands: register, activate, resend, login, whoami, refresh, logout.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
