package testing

import (
	"bytes"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/dLedger/lib/types"
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/executor"
	"github.com/ValentinKolb/dLedger/rpc/executor/echo"
	"github.com/ValentinKolb/dLedger/rpc/packet"
)

// ExecutorFactory is a function that creates a new, uninitialized executor
type ExecutorFactory func() executor.IExecutor

// completionTimeout bounds every wait of the suite
const completionTimeout = 5 * time.Second

// RunExecutorTests runs the conformance suite for an executor whose backend
// echoes request payloads. config must carry valid addresses for the executor;
// its MaxPayloadSize must match the limit enforced by the backend.
func RunExecutorTests(t *testing.T, name string, factory ExecutorFactory, config common.ClientConfig) {
	config = config.WithDefaults()

	t.Run(name, func(t *testing.T) {
		t.Run("EchoReply", func(t *testing.T) {
			testEchoReply(t, factory(), config)
		})

		t.Run("InvalidOperation", func(t *testing.T) {
			testStatus(t, factory(), config, common.Operation(200), make([]byte, types.AccountSize), common.PacketInvalidOperation)
		})

		t.Run("InvalidDataSize", func(t *testing.T) {
			testStatus(t, factory(), config, common.OpCreateAccounts, make([]byte, types.AccountSize+1), common.PacketInvalidDataSize)
		})

		t.Run("EmptyPayload", func(t *testing.T) {
			testStatus(t, factory(), config, common.OpLookupAccounts, nil, common.PacketInvalidDataSize)
		})

		t.Run("TooMuchData", func(t *testing.T) {
			size := (config.MaxPayloadSize/types.Uint128Size + 1) * types.Uint128Size
			testStatus(t, factory(), config, common.OpLookupAccounts, make([]byte, size), common.PacketTooMuchData)
		})

		t.Run("ExactlyOnce", func(t *testing.T) {
			testExactlyOnce(t, factory(), config)
		})

		t.Run("NoCompletionAfterDeinit", func(t *testing.T) {
			testNoCompletionAfterDeinit(t, factory(), config)
		})
	})
}

// EchoHandler returns a gateway handler that validates packets like the
// ledger's client library and echoes valid payloads. It is used to test the
// network executors against a real gateway transport.
func EchoHandler(maxPayload int) func(op common.Operation, payload []byte) (common.PacketStatus, []byte, error) {
	return func(op common.Operation, payload []byte) (common.PacketStatus, []byte, error) {
		status := echo.Validate(op, len(payload), maxPayload)
		if status != common.PacketOk {
			return status, nil, nil
		}
		return status, payload, nil
	}
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

type completion struct {
	id     uint64
	status common.PacketStatus
	reply  []byte
}

// collector records completions and copies the executor owned reply buffers
type collector struct {
	ch chan completion
}

func newCollector(size int) *collector {
	return &collector{ch: make(chan completion, size)}
}

func (c *collector) onCompletion(p *packet.Packet, status common.PacketStatus, reply []byte) {
	c.ch <- completion{id: p.ID, status: status, reply: append([]byte(nil), reply...)}
}

func (c *collector) next(t *testing.T) completion {
	t.Helper()
	select {
	case res := <-c.ch:
		return res
	case <-time.After(completionTimeout):
		t.Fatalf("Timeout waiting for completion")
		return completion{}
	}
}

// submit acquires a packet from pool, fills it and hands it to the executor
func submit(t *testing.T, e executor.IExecutor, pool *packet.Pool, op common.Operation, data []byte) *packet.Packet {
	t.Helper()
	p, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	p.Operation = op
	p.Data = data
	if err := p.MarkSubmitted(); err != nil {
		t.Fatalf("MarkSubmitted failed: %v", err)
	}
	e.Submit(p)
	return p
}

func initExecutor(t *testing.T, e executor.IExecutor, config common.ClientConfig, fn executor.CompletionFunc) {
	t.Helper()
	if err := e.Init(config, fn); err != nil {
		t.Fatalf("Init of %s failed: %v", e.GetName(), err)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testEchoReply(t *testing.T, e executor.IExecutor, config common.ClientConfig) {
	c := newCollector(1)
	initExecutor(t, e, config, c.onCompletion)
	defer e.Deinit()

	accounts := []types.Account{
		{ID: types.ToUint128(1), Ledger: 1, Code: 1},
		{ID: types.ToUint128(2), Ledger: 1, Code: 1},
	}
	data := types.AccountCodec.EncodeBatch(accounts)

	pool := packet.NewPool(1, common.AcquireModeBlock)
	p := submit(t, e, pool, common.OpCreateAccounts, data)

	res := c.next(t)
	if res.id != p.ID {
		t.Errorf("Expected completion for packet %d, got %d", p.ID, res.id)
	}
	if res.status != common.PacketOk {
		t.Fatalf("Expected status ok, got %s", res.status)
	}
	if !bytes.Equal(res.reply, data) {
		t.Errorf("Expected reply to echo the %d byte request, got %d bytes", len(data), len(res.reply))
	}
}

func testStatus(t *testing.T, e executor.IExecutor, config common.ClientConfig, op common.Operation, data []byte, want common.PacketStatus) {
	c := newCollector(1)
	initExecutor(t, e, config, c.onCompletion)
	defer e.Deinit()

	pool := packet.NewPool(1, common.AcquireModeBlock)
	submit(t, e, pool, op, data)

	res := c.next(t)
	if res.status != want {
		t.Errorf("Expected status %s, got %s", want, res.status)
	}
	if want != common.PacketOk && len(res.reply) != 0 {
		t.Errorf("Expected no reply for status %s, got %d bytes", want, len(res.reply))
	}
}

func testExactlyOnce(t *testing.T, e executor.IExecutor, config common.ClientConfig) {
	const producers = 8
	const perProducer = 64

	var mu sync.Mutex
	seen := make(map[uint64]int)
	var done sync.WaitGroup
	done.Add(producers * perProducer)

	pool := packet.NewPool(producers*perProducer, common.AcquireModeBlock)

	initExecutor(t, e, config, func(p *packet.Packet, status common.PacketStatus, reply []byte) {
		mu.Lock()
		seen[p.ID]++
		count := seen[p.ID]
		mu.Unlock()

		if status != common.PacketOk {
			t.Errorf("Packet %d: expected status ok, got %s", p.ID, status)
		}
		if !bytes.Equal(reply, p.Data) {
			t.Errorf("Packet %d: reply does not match request", p.ID)
		}
		if count == 1 {
			done.Done()
		}
	})
	defer e.Deinit()

	var wg sync.WaitGroup
	for g := 0; g < producers; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				id := types.ToUint128(uint64(g*perProducer + i + 1))
				submit(t, e, pool, common.OpLookupAccounts, types.Uint128Codec.EncodeBatch([]types.Uint128{id}))
			}
		}(g)
	}
	wg.Wait()

	finished := make(chan struct{})
	go func() {
		done.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(completionTimeout):
		t.Fatalf("Timeout waiting for all completions")
	}

	// late duplicates would show up here
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	for id, count := range seen {
		if count != 1 {
			t.Errorf("Packet %d completed %d times", id, count)
		}
	}
	if len(seen) != producers*perProducer {
		t.Errorf("Expected %d completions, got %d", producers*perProducer, len(seen))
	}
}

func testNoCompletionAfterDeinit(t *testing.T, e executor.IExecutor, config common.ClientConfig) {
	var deinitDone atomic.Bool
	var late atomic.Int64

	initExecutor(t, e, config, func(p *packet.Packet, status common.PacketStatus, reply []byte) {
		if deinitDone.Load() {
			late.Add(1)
		}
	})

	pool := packet.NewPool(32, common.AcquireModeBlock)
	for i := 0; i < 32; i++ {
		submit(t, e, pool, common.OpLookupTransfers, make([]byte, types.Uint128Size))
	}

	if err := e.Deinit(); err != nil {
		t.Fatalf("Deinit failed: %v", err)
	}
	deinitDone.Store(true)

	// a second Deinit is a no-op
	if err := e.Deinit(); err != nil {
		t.Errorf("Second Deinit failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if n := late.Load(); n != 0 {
		t.Errorf("Got %d completions after Deinit returned", n)
	}
}
