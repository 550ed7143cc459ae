// Package cmd implements the command-line interface of dLedger. It provides a
// hierarchical command structure for talking to a ledger cluster as a client,
// measuring the client runtime and running a packet gateway.
//
// The package is organized into several subpackages:
//
//   - account: Commands for account operations (create, lookup, transfers, balances)
//   - transfer: Commands for transfer operations (create, lookup)
//   - perf: Batched load generator with latency percentiles and CSV export
//   - serve: Commands for starting and configuring a gateway
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set through the environment with the DLEDGER_ prefix
// (e.g. DLEDGER_ADDRESSES=3000,3001), optionally from a .env or .env.local file.
//
// See dledger -help for a list of all commands.
package cmd
