// Package cli provides the interactive scholarhub terminal client.
//
// It wires configuration, the per-origin credential store, the request
// pipeline and the session manager, then runs a REPL. The client keeps a
// current route the way a browser would; "open" moves it through the route
// guards and the request pipeline moves it to /login when the server rejects
// the session.
//
// Commands:
//   - login / register / logout
//   - whoami, profile (reload from the server), status
//   - open <route>, fetch <path>
//   - help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
