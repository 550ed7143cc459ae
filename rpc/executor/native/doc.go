// Package native binds the ledger's C client library (libtb_client) as an
// executor. It is only compiled with the build tag tbnative:
//
//	CGO_ENABLED=1 go build -tags tbnative ./...
//
// Without the tag NewNativeExecutor returns an executor whose Init fails with
// an InitializationError, so the rest of the module builds without cgo.
//
// Every client packet is mirrored by a native packet acquired from the library.
// The payload is copied into C memory because the library retains the pointer
// until completion. Completions arrive on the library's own thread and are
// routed back through a cgo.Handle; the reply buffer is passed on without a copy
// and is only valid during the completion callback.
package native
