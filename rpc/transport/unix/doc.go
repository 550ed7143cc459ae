// Package unix implements the transport between ledger clients and a gateway
// using Unix domain sockets. It provides optimized communication for processes
// running on the same machine as the gateway.
//
// This package extends the base transport layer with Unix socket-specific connectors
// while inheriting framing, reconnects and resending from the base package.
//
// Key Components:
//
//   - clientConnector: Establishes connections using Unix domain sockets. The
//     address list is a comma separated list of socket paths.
//
//   - serverConnector: Creates Unix socket listeners and accepts connections
//
// Performance Characteristics:
//
//   - Default buffer size: 64 KB, optimized for local communication patterns
//   - Reduced overhead: Eliminates TCP/IP stack processing for better performance
package unix
