package executor

import (
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/packet"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("executor")

// CompletionFunc is called by an executor exactly once for every submitted packet.
// The reply buffer is owned by the executor and only valid during the call.
// It may be called on any goroutine and concurrently for distinct packets.
type CompletionFunc func(p *packet.Packet, status common.PacketStatus, reply []byte)

// IExecutor is the runtime that carries packets to the ledger and back.
//
// Contract:
//   - Init is called once before any Submit
//   - every submitted packet is completed exactly once until Deinit is called
//   - completions may arrive out of order and on executor owned goroutines
//   - no completion is delivered after Deinit has returned
//   - executors may retry internally, the client never does
type IExecutor interface {
	// Init prepares the executor. Address or resource problems are reported as
	// *common.InitializationError.
	Init(config common.ClientConfig, onCompletion CompletionFunc) error
	// Submit hands a packet in state Submitted to the executor. It must not block
	// on network or ledger progress.
	Submit(p *packet.Packet)
	// Deinit stops the executor. Packets that were not completed yet are dropped
	// and must be resolved by the caller.
	Deinit() error
	// GetName returns the name of the executor (e.g. "echo", "tcp")
	GetName() string
}
