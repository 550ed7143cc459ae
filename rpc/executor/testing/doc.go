// Package testing provides a standardised conformance suite for implementations
// of the executor.IExecutor interface.
//
// The suite assumes an echoing backend (the echo executor itself, or a network
// executor connected to a gateway that hosts an echo executor) and checks:
//   - replies are delivered for the submitted packet and echo its payload
//   - invalid operations and payload sizes are reported with the right status
//   - every packet is completed exactly once under concurrent submission
//   - no completion is delivered after Deinit has returned
//
// Example usage:
//
//	extesting.RunExecutorTests(t, "Echo", func() executor.IExecutor {
//		return echo.NewEchoExecutor()
//	}, common.ClientConfig{Addresses: "3000"})
package testing
