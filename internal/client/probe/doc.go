// Package probe implements the agent's connectivity probe.
//
// Prober answers two independent questions: is the host on a network at all
// (ProbeOnline) and is the backend alive (ProbeBackend). The backend check
// tries the health endpoint and, failing that, the root URL; any HTTP
// response from the root counts as alive. Every backend probe writes its
// result to a StatusCell, the single last-known status shared with the
// supervisor and the console.
//
// Watcher drives the prober on a ticker and skips ticks while a restart is
// in flight. GRPCHealthChecker is an optional readiness check against the
// backend's grpc.health.v1 service.
package probe
