// Package client implements the application facing ledger client. It turns
// typed batches into packets, hands them to an executor and matches every
// completion back to the goroutine that waits for it.
//
// The package focuses on:
//   - Typed operations on top of the fixed-layout record codec
//   - Correlating completions that arrive on executor goroutines
//   - A lifecycle in which every waiting operation is resolved exactly once
//
// Key Components:
//
//   - Client: Implements ILedger. Every operation acquires a packet from a
//     bounded pool, registers it in a lock-striped map keyed by packet id and
//     blocks on a channel of its own until the completion arrives.
//
//   - Operation Dispatcher: Empty batches fail with common.ErrEmptyBatch and
//     batches larger than the maximum payload fail with a
//     *common.PacketError (too_much_data), both before a packet is acquired.
//
//   - Completion Correlator: The executor's completion callback. It removes the
//     registration, copies the reply out of the executor's buffer, signals the
//     caller and returns the packet to the pool. Completions for unknown packets
//     are logged and ignored.
//
//   - EchoClient: A client whose operations return the submitted records, for
//     use with the echo executor.
//
// Usage Example:
//
//	c, err := client.NewClient(common.ClientConfig{
//		ClusterID: types.ToUint128(0),
//		Addresses: "3000",
//	}, native.NewNativeExecutor())
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	results, err := c.CreateAccounts([]types.Account{{ID: types.ID(), Ledger: 1, Code: 1}})
//
// Errors:
//
//	Protocol failures are *common.PacketError, closing the client resolves
//	every waiting operation with common.ErrShutdown. Domain outcomes such as
//	"exists" are returned as result data, never as errors.
//
// Thread Safety:
//
//	All methods are safe for concurrent use. Close may be called concurrently
//	with operations and with itself.
package client
