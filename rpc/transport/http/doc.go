// Package http implements an HTTP transport between ledger clients and a
// gateway. It provides an executor that posts packets and a chi based server
// transport that hands them to the gateway's handler.
//
// The package focuses on:
//   - Client-side executor posting one request per packet
//   - Server-side transport built on a chi router
//   - Round-robin load balancing across multiple gateway URLs
//
// Wire Format:
//
//	POST {gateway}/operations/{code}
//	body: packet payload
//	reply: 200 with the X-Packet-Status header and the reply payload,
//	       503 if the gateway's backend could not process the packet
//
// Key Components:
//
//   - httpClientExecutor: Implements executor.IExecutor. Every packet is sent
//     from its own goroutine and retried with backoff on another gateway until
//     a reply arrives or the executor is stopped.
//
//   - httpServerTransport: Implements IRPCServerTransport with an http.Server
//     and supports graceful shutdown.
//
// Thread Safety:
//
//	The executor is safe for concurrent use. Deinit waits for every running
//	request, completions are never delivered after it returns.
package http
