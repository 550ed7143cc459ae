// Package util provides small concurrency helpers shared by the executors and
// transports of the ledger client.
//
// The package contains:
//   - mpsc: A lock-free Multi-Producer Single-Consumer (MPSC) queue with a batch
//     oriented consumer side (Wait + PopBatch), used to hand submitted packets to a
//     single dispatcher goroutine
//   - backoff: Exponential backoff with jitter for reconnect and retry loops
//
// Features and Guarantees of the MPSC queue:
//
//   - Lock-Free: producers only use atomic operations, even under high contention
//   - Unbounded Size: the queue grows as needed, limited only by available memory
//   - Thread-Safe writes: any number of goroutines may Push() concurrently
//   - Single Consumer: exactly one goroutine may call Wait() and PopBatch()
//   - No Strict FIFO Guarantee: under concurrent Push() operations the order of items
//     is determined by which producer completes its operation first. A single
//     producer observes FIFO order.
package util
