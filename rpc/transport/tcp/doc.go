// Package tcp implements the TCP socket transport between ledger clients and a
// gateway. It provides concrete implementations of the base package's connector
// interfaces, tuned through the TCPConf and SocketConf settings.
//
// This package builds on the base package's transport functionality, inheriting
// its framing, buffer reuse and reconnect behaviour. See the base package
// documentation for details.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector.
//     Addresses use the ledger's address syntax ("3001", "host:port", "[::1]:3001").
//
//   - serverConnector: TCP-specific implementation of base.IServerConnector
//
// The default server buffer size is set to 512 KB, which fits the largest
// message of the ledger protocol.
package tcp
