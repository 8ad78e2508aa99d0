// Package client contains the agent's building blocks for talking to the
// POS backend and for bootstrapping its own database.
//
// # Overview
//
//  1. HTTPClient, a REST client over the backend API: bulk reads of the
//     remote catalog (products, barcodes, descriptions), existence checks and
//     create/update writes against the local mirror, per-status counts, and
//     the authenticate call that yields a session token.
//  2. InitDatabase / RunMigrations, which open the agent's sqlite file and
//     apply the embedded goose migrations.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. Non-2xx answers are returned as
// *ProtocolError whose message is the server's own message, or
// "Error: <status text>" when the body had none; ProtocolError unwraps to
// ErrUnauthorized, ErrNotFound or ErrUnavailable where the status maps to
// one. Bodies that cannot be decoded wrap ErrDecode.
//
// Count endpoints answer either a bare integer or {"count": n}; Count
// normalizes both before returning.
package client
