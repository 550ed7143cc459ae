// Package transport defines the contract between the ledger client's network
// executors and the gateway that hosts the actual ledger connection.
//
// The package focuses on:
//   - Defining clear interfaces for the gateway side of a transport
//   - Enabling multiple transport implementations (HTTP, TCP, Unix sockets)
//
// The client side of every transport is an executor.IExecutor: it carries
// packets to a gateway and delivers the replies as completions. See the base
// package for the framing and the reconnect behaviour shared by tcp and unix.
//
// Key Components:
//
//   - IRPCServerTransport: Interface for gateway side transport implementations
//     that receive packets and pass them to a handler.
//
//   - ServerHandleFunc: Function type for packet handling callbacks.
package transport
