// Package common provides the protocol vocabulary shared by every component of
// the ledger client: operations, status codes, the error taxonomy, configuration
// structures and logging.
//
// The package focuses on:
//   - Operation codes and their request/reply record sizes
//   - Packet and initialization status codes as reported by executors
//   - Typed errors that callers can match with errors.Is / errors.As
//   - Configuration structures for clients and gateways
//   - Address list parsing (host:port normalization, replica limit)
//   - Custom logging implementation integrated with Dragonboat's logger registry
//
// Key Components:
//
//   - Operation: Enumeration of all batch operations (create_accounts, ...).
//     EventSize and ResultSize describe the fixed record sizes of each operation.
//
//   - PacketStatus / InitializationStatus: Protocol level outcomes. A non-Ok
//     PacketStatus is surfaced as *PacketError, a failed client creation as
//     *InitializationError.
//
//   - ClientConfig: Cluster id, addresses, concurrency, acquire mode, maximum
//     payload size and settings for the network executors.
//
//   - GatewayConfig: Listener, worker and backend settings of `dledger serve`.
//
//   - Logger: zerolog backed implementation of Dragonboat's logger.ILogger.
//     Packages obtain their logger via logger.GetLogger("<name>"); InitLoggers
//     installs the factory and sets the level.
package common
