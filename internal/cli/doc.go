// Package cli provides the interactive NSG Health command-line client.
//
// It wires configuration, local storage, the session manager, the emergency
// request machine and the dashboard syncer behind a small REPL.
//
// Key features:
//   - Register / Login / Logout, profile and password changes
//   - Recent activity of the signed-in user
//   - Emergency requests: the guided "sos" flow and the abbreviated "quick"
//     flow, both available without signing in
//   - Emergency history, and for practitioners and pharmacists the list of
//     active requests, completion, and live alerts
//
// The REPL is started via App.Root(ctx), which blocks until the user exits
// or ctx is done.
// See App and runREPL for details.
package cli
