// Package executor defines the boundary between the ledger client and the
// runtime that actually moves packets: a native ledger client library, an
// in-process echo runtime or a network transport to a gateway.
//
// Key Components:
//
//   - IExecutor: Interface every executor implements (Init, Submit, Deinit).
//
//   - CompletionFunc: Callback the executor invokes once per submitted packet with
//     the packet status and the reply payload.
//
// Implementations:
//
//   - echo: in-process runtime that replies with the request payload
//   - native: cgo binding of the ledger's client library (build tag tbnative)
//   - transport/tcp, transport/unix, transport/http: forward packets to a gateway
//
// The testing subpackage provides a conformance suite that checks every
// implementation against the contract documented on IExecutor.
package executor
