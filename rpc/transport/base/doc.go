// Package base provides the framed stream transport shared by the tcp and unix
// transports of the ledger client. It implements both sides: a network
// executor that carries packets to a gateway, and the gateway listener that
// receives them. Protocol specific behaviour is injected through connectors.
//
// The package focuses on:
//   - Protocol-agnostic client executor and server transport implementations
//   - A small frame format keyed by packet id
//   - Reconnection with backoff and resending of packets still in flight
//
// Frame Format (little endian):
//
//	offset 0   packet id (uint64)
//	offset 8   operation (uint8)
//	offset 9   packet status (uint8, replies only)
//	offset 10  reserved (uint16)
//	offset 12  payload length (uint32)
//	offset 16  payload
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     that allow extending the base transport with different network protocols.
//
//   - clientExecutor: Implements executor.IExecutor. Packets are spread over all
//     connections with round-robin, preferring connections that are established.
//     Every connection keeps its packets in flight until the reply arrives, so a
//     packet is completed at most once even if it is resent after a reconnect.
//
//   - serverTransport: Accepts connections and hands every packet to the
//     registered handler. A per connection semaphore bounds the number of
//     packets processed at the same time.
//
// Delivery:
//
//	A packet whose connection fails before the reply arrives is written again
//	once the connection is restored. The gateway may therefore see a packet
//	twice; the client still completes it exactly once. Ledger operations are
//	keyed by record ids, so a repeated create reports "exists" instead of
//	applying twice.
//
// Thread Safety:
//
//	Submit may be called from any goroutine. Completions are delivered on the
//	reader goroutine of the connection that received the reply; Deinit waits
//	for all of them.
package base
