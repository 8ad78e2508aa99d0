// Package cli provides posctl, the interactive console of the posync agent.
//
// It wires configuration, the agent database, the backend REST client, the
// connectivity probe, the supervisor and the sync engine, then runs a REPL
// while a background watcher keeps the backend status and sync summary
// fresh.
//
// Commands:
//   - login / logout / whoami
//   - status      backend, network and sync summary
//   - sync        pull the catalog into the local store
//   - push        push outstanding orders to the remote store
//   - check       test whether the remote store answers
//   - reconnect   restart (native) or re-probe (hosted) the backend
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
