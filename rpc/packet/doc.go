// Package packet implements the bounded pool of request packets that couples
// callers with an executor.
//
// A client owns exactly one Pool whose capacity equals the configured
// concurrency. Every in-flight request occupies one Packet, so the pool is the
// only admission control of the client: when it is exhausted, callers either
// wait (AcquireModeBlock) or fail immediately (AcquireModeFailFast).
//
// Key Components:
//
//   - Packet: one slot of the pool. Each acquisition assigns a new, monotonically
//     increasing ID, so a stale or duplicated completion for an earlier use of the
//     same slot can never be mistaken for the current one.
//
//   - Pool: buffered channel of free packets plus atomics. Shutdown wakes every
//     blocked acquirer with common.ErrShutdown; Wait blocks until every packet has
//     been returned.
//
// Thread Safety:
//
//	All methods are safe for concurrent use. State transitions of a packet are
//	compare-and-swap guarded: a packet cannot be submitted twice, and a release
//	of a packet that is still submitted (or already free) is rejected with
//	common.ErrInvalidPacketState.
package packet
