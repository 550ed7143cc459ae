package echo

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ValentinKolb/dLedger/lib/util"
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/executor"
	"github.com/ValentinKolb/dLedger/rpc/packet"
	"github.com/VictoriaMetrics/metrics"
)

const (
	// maxDispatchBatch bounds the number of packets popped from the queue at once
	maxDispatchBatch = 256
)

var (
	batchesTotal   = metrics.NewCounter(`dledger_executor_batches_total{executor="echo"}`)
	completedTotal = metrics.NewCounter(`dledger_executor_completions_total{executor="echo"}`)
)

// Option configures an echo executor
type Option func(e *echoExecutor)

// WithWorkers sets the number of completion goroutines (default: number of CPUs)
func WithWorkers(n int) Option {
	return func(e *echoExecutor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithDelay delays every completion, which is useful to simulate ledger latency
func WithDelay(d time.Duration) Option {
	return func(e *echoExecutor) {
		e.delay = d
	}
}

// echoExecutor replies to every valid packet with its own request payload
type echoExecutor struct {
	workers    int
	delay      time.Duration
	maxPayload int

	onCompletion executor.CompletionFunc
	queue        *util.MPSC[*packet.Packet]
	work         chan []*packet.Packet
	wg           sync.WaitGroup
	deinitOnce   sync.Once
}

// --------------------------------------------------------------------------
// Executor Factory Method
// --------------------------------------------------------------------------

// NewEchoExecutor creates an in-process executor that echoes request payloads.
// It validates packets the same way the ledger's client library does.
func NewEchoExecutor(opts ...Option) executor.IExecutor {
	e := &echoExecutor{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// --------------------------------------------------------------------------
// Interface Methods (docu see executor.IExecutor)
// --------------------------------------------------------------------------

func (e *echoExecutor) Init(config common.ClientConfig, onCompletion executor.CompletionFunc) error {
	if onCompletion == nil {
		return common.NewInitializationError(common.InitUnexpected, "no completion callback")
	}
	if _, err := common.ParseAddresses(config.Addresses); err != nil {
		return err
	}

	e.maxPayload = config.MaxPayloadSize
	if e.maxPayload <= 0 {
		e.maxPayload = common.MessageBodySizeMax
	}

	e.onCompletion = onCompletion
	e.queue = util.NewMPSC[*packet.Packet]()
	e.work = make(chan []*packet.Packet, e.workers)

	e.wg.Add(1 + e.workers)
	go e.dispatch()
	for i := 0; i < e.workers; i++ {
		go e.complete()
	}

	executor.Logger.Debugf("echo executor started with %d workers", e.workers)
	return nil
}

func (e *echoExecutor) Submit(p *packet.Packet) {
	if !e.queue.Push(p) {
		executor.Logger.Debugf("echo executor is stopped, dropping %s", p)
	}
}

func (e *echoExecutor) Deinit() error {
	e.deinitOnce.Do(func() {
		if e.queue == nil {
			return
		}
		// queued packets are still completed before Deinit returns
		e.queue.Close()
		e.wg.Wait()
		executor.Logger.Debugf("echo executor stopped")
	})
	return nil
}

func (e *echoExecutor) GetName() string {
	return "echo"
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// dispatch pops submitted packets in batches and groups them by operation
func (e *echoExecutor) dispatch() {
	defer e.wg.Done()
	defer close(e.work)

	var popped []*packet.Packet
	for e.queue.Wait() {
		popped = e.queue.PopBatch(popped[:0], maxDispatchBatch)

		groups := make(map[common.Operation][]*packet.Packet)
		order := make([]common.Operation, 0, 1)
		for _, p := range popped {
			if _, ok := groups[p.Operation]; !ok {
				order = append(order, p.Operation)
			}
			groups[p.Operation] = append(groups[p.Operation], p)
		}

		for _, op := range order {
			batchesTotal.Inc()
			e.work <- groups[op]
		}
	}
}

// complete runs on the worker goroutines and delivers the completions
func (e *echoExecutor) complete() {
	defer e.wg.Done()

	for batch := range e.work {
		if e.delay > 0 {
			time.Sleep(e.delay)
		}
		for _, p := range batch {
			status := Validate(p.Operation, len(p.Data), e.maxPayload)
			var reply []byte
			if status == common.PacketOk {
				reply = p.Data
			}
			completedTotal.Inc()
			e.onCompletion(p, status, reply)
		}
	}
}

// Validate checks an operation and its payload size like the ledger's client
// library does before anything is sent
func Validate(op common.Operation, size int, maxPayload int) common.PacketStatus {
	if !op.Valid() {
		return common.PacketInvalidOperation
	}
	if size > maxPayload {
		return common.PacketTooMuchData
	}

	eventSize := op.EventSize()
	if size == 0 || size%eventSize != 0 {
		return common.PacketInvalidDataSize
	}
	if size/eventSize > op.MaxEvents(maxPayload) {
		return common.PacketTooMuchData
	}
	return common.PacketOk
}

func (e *echoExecutor) String() string {
	return fmt.Sprintf("echo{workers=%d delay=%s}", e.workers, e.delay)
}
