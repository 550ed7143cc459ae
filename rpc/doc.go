// Package rpc contains the client runtime of dLedger: everything between an
// application call such as CreateAccounts and the bytes that reach a ledger
// cluster.
//
// The package is organized into several subpackages:
//
//   - common: Protocol vocabulary shared by all other packages, including
//     operations, packet and initialization status codes, the error taxonomy,
//     configuration structures, address parsing and logging.
//
//   - packet: The fixed-size packet pool that bounds the number of requests in
//     flight and tracks the lifecycle of every packet.
//
//   - executor: The boundary to whatever executes a packet (echo, native, or a
//     remote gateway) together with a conformance suite for implementations.
//
//   - transport: Network executors (TCP, Unix sockets, HTTP) and the matching
//     server transports used by the gateway.
//
//   - client: The ledger client. It encodes batches, submits them through an
//     executor and correlates every completion with the waiting caller.
//
//   - gateway: Serves a backend client to remote clients over a server
//     transport, with health and metrics endpoints.
package rpc
