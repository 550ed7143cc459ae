// Package gateway implements the packet gateway behind `dledger serve`. A
// gateway hosts one backend client (echo, native, or another gateway) and
// lets remote clients use it through the tcp, unix or http transport.
//
// The package focuses on:
//   - Forwarding raw packets to the backend without decoding them
//   - Translating backend outcomes into reply statuses
//   - Exposing health and metrics on a separate admin endpoint
//
// Key Components:
//
//   - Gateway: Registers its handler with an IRPCServerTransport and forwards
//     every packet through IBackend.Submit. Packet errors of the backend are sent
//     back as the reply status; any other failure (e.g. the backend shutting
//     down) drops the connection, so the remote client resends the packet.
//
//   - NewAdminRouter: chi router serving /healthz and /metrics.
//
// Usage Example:
//
//	backend, _ := client.NewClient(config.Backend, native.NewNativeExecutor())
//	g := gateway.NewGateway(config, tcp.NewTCPServerTransport(0, 16), backend)
//	go g.Serve()
//	defer g.Close()
//
// Thread Safety:
//
//	The handler runs concurrently for all connections. Serve should be called
//	only once; Close may be called from any goroutine.
package gateway
