// Package client contains the CLI side of the account service transport.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Register/Activate/ResendActivation, Login/Refresh/Logout, WhoAmI, Ping.
//  2. A gRPC implementation (see GRPCClient) that keeps the issued tokens,
//     injects the access token via an interceptor, transparently refreshes
//     an expired access token once, and maps gRPC status codes to sentinel
//     errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     sqlite session cache.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotActivated,
// ErrInvalidInput, ErrAlreadyExists, ErrNotLoggedIn. The server's message
// is kept in the wrapped error text.
package client
