package client

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ValentinKolb/dLedger/lib/types"
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/executor"
	"github.com/ValentinKolb/dLedger/rpc/packet"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("client")

// ILedger is the application facing API of a ledger client
type ILedger interface {
	// CreateAccounts creates a batch of accounts. Only failed entries are returned.
	CreateAccounts(accounts []types.Account) ([]types.CreateAccountsResult, error)
	// CreateTransfers creates a batch of transfers. Only failed entries are returned.
	CreateTransfers(transfers []types.Transfer) ([]types.CreateTransfersResult, error)
	// LookupAccounts returns the accounts that exist for the given ids
	LookupAccounts(ids []types.Uint128) ([]types.Account, error)
	// LookupTransfers returns the transfers that exist for the given ids
	LookupTransfers(ids []types.Uint128) ([]types.Transfer, error)
	// GetAccountTransfers returns the transfers of an account matching the filter
	GetAccountTransfers(filter types.AccountFilter) ([]types.Transfer, error)
	// GetAccountBalances returns the historical balances of an account matching the filter
	GetAccountBalances(filter types.AccountFilter) ([]types.AccountBalance, error)
	// Close releases the client, waiting operations return common.ErrShutdown
	Close() error
}

// request is the registration of a submitted packet
type request struct {
	packet     *packet.Packet
	id         uint64 // acquisition id of packet
	done       chan result // buffered, the correlator never blocks
	op         common.Operation
	resultSize int // 0 accepts any reply length
	start      time.Time
}

// result is what a waiting caller receives exactly once
type result struct {
	reply []byte
	err   error
}

// Client submits batches through an executor and correlates the completions.
// It is safe for concurrent use by multiple goroutines.
type Client struct {
	config   common.ClientConfig
	executor executor.IExecutor
	pool     *packet.Pool
	pending  *xsync.MapOf[uint64, *request]
	metrics  *clientMetrics

	submitMu  sync.RWMutex // submissions hold it shared, Close exclusively
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// --------------------------------------------------------------------------
// Client Factory Method
// --------------------------------------------------------------------------

// NewClient validates the configuration, creates the packet pool and
// initializes the executor. All errors are *common.InitializationError.
func NewClient(config common.ClientConfig, exec executor.IExecutor) (*Client, error) {
	if exec == nil {
		return nil, common.NewInitializationError(common.InitUnexpected, "no executor given")
	}

	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:   config,
		executor: exec,
		pool:     packet.NewPool(config.Concurrency, config.AcquireMode),
		pending:  xsync.NewMapOf[uint64, *request](),
		metrics:  newClientMetrics(exec.GetName()),
	}

	if err := exec.Init(config, c.onCompletion); err != nil {
		c.pool.Shutdown()
		var initErr *common.InitializationError
		if errors.As(err, &initErr) {
			return nil, initErr
		}
		return nil, &common.InitializationError{Status: common.InitUnexpected, Err: err}
	}

	Logger.Infof("Client for cluster %s started using the %s executor (concurrency %d, %s)",
		config.ClusterID, exec.GetName(), config.Concurrency, config.AcquireMode)
	return c, nil
}

// --------------------------------------------------------------------------
// Public Methods
// --------------------------------------------------------------------------

// Submit sends an encoded batch and returns the raw reply. The reply length is
// checked against the result size of the operation.
func (c *Client) Submit(op common.Operation, payload []byte) ([]byte, error) {
	return c.submit(op, payload, op.ResultSize())
}

// InitParameters returns the cluster id and the address list exactly as
// they were given to NewClient
func (c *Client) InitParameters() (types.Uint128, string) {
	return c.config.ClusterID, c.config.Addresses
}

// Close blocks new submissions, stops the executor and resolves every
// waiting operation with common.ErrShutdown. It returns once every packet is
// back in the pool. Close is idempotent; concurrent callers wait for the first.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.submitMu.Lock()
		c.closed = true
		c.submitMu.Unlock()

		// wakes blocked acquirers
		c.pool.Shutdown()

		// no completion is delivered after Deinit returns
		if err := c.executor.Deinit(); err != nil {
			Logger.Errorf("Failed to deinit the %s executor: %v", c.executor.GetName(), err)
			c.closeErr = err
		}

		swept := 0
		c.pending.Range(func(id uint64, _ *request) bool {
			if req, ok := c.pending.LoadAndDelete(id); ok {
				c.resolve(req, common.PacketOk, result{err: common.ErrShutdown})
				swept++
			}
			return true
		})

		c.pool.Wait()
		Logger.Infof("Client for cluster %s closed (%d pending operations cancelled)", c.config.ClusterID, swept)
	})
	return c.closeErr
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// submit acquires a packet, registers it and waits for its completion
func (c *Client) submit(op common.Operation, payload []byte, resultSize int) ([]byte, error) {
	if len(payload) == 0 {
		return nil, common.ErrEmptyBatch
	}
	if len(payload) > c.config.MaxPayloadSize || c.tooManyEvents(op, len(payload)) {
		c.metrics.rejected(op, common.PacketTooMuchData)
		return nil, &common.PacketError{Operation: op, Status: common.PacketTooMuchData}
	}

	p, err := c.pool.Acquire()
	if err != nil {
		return nil, err
	}
	p.Operation = op
	p.Data = payload

	req := &request{
		packet:     p,
		id:         p.ID,
		done:       make(chan result, 1),
		op:         op,
		resultSize: resultSize,
		start:      time.Now(),
	}

	c.submitMu.RLock()
	if c.closed {
		c.submitMu.RUnlock()
		c.discard(p, req.id)
		return nil, common.ErrShutdown
	}

	c.pending.Store(req.id, req)
	if err := p.MarkSubmitted(); err != nil {
		c.pending.Delete(req.id)
		c.submitMu.RUnlock()
		c.discard(p, req.id)
		return nil, err
	}
	c.metrics.submitted(op)
	c.executor.Submit(p)
	c.submitMu.RUnlock()

	res := <-req.done
	return res.reply, res.err
}

// onCompletion is the completion callback handed to the executor. It runs on
// executor goroutines, concurrently for distinct packets.
func (c *Client) onCompletion(p *packet.Packet, status common.PacketStatus, reply []byte) {
	req, ok := c.pending.LoadAndDelete(p.ID)
	if !ok {
		Logger.Warningf("Completion for unknown packet %d (%s, %s) ignored", p.ID, p.Operation, status)
		return
	}

	var res result
	switch {
	case status == common.PacketClientShutdown:
		res.err = common.ErrShutdown
	case status != common.PacketOk:
		res.err = &common.PacketError{Operation: req.op, Status: status}
	case req.resultSize > 0 && len(reply)%req.resultSize != 0:
		res.err = fmt.Errorf("%w: %s reply of %d bytes is not a multiple of %d", common.ErrUnexpectedReply, req.op, len(reply), req.resultSize)
	default:
		// the reply buffer belongs to the executor
		res.reply = make([]byte, len(reply))
		copy(res.reply, reply)
	}

	c.resolve(req, status, res)
}

// resolve signals the waiting caller, then returns the packet to the pool
func (c *Client) resolve(req *request, status common.PacketStatus, res result) {
	c.metrics.completed(req.op, status, res.err, req.start)
	req.done <- res

	if err := req.packet.MarkCompleted(status); err != nil {
		Logger.Errorf("Failed to complete %s: %v", req.packet, err)
	}
	if err := c.pool.Release(req.packet, req.id); err != nil {
		Logger.Errorf("Failed to release %s: %v", req.packet, err)
	}
}

// tooManyEvents reports whether a payload carries more events than the
// operation allows, lookups are bounded by the size of their reply
func (c *Client) tooManyEvents(op common.Operation, size int) bool {
	eventSize := op.EventSize()
	return eventSize > 0 && size/eventSize > op.MaxEvents(c.config.MaxPayloadSize)
}

// discard returns a packet that never reached the executor to the pool
func (c *Client) discard(p *packet.Packet, id uint64) {
	if err := c.pool.Release(p, id); err != nil {
		Logger.Errorf("Failed to release %s: %v", p, err)
	}
}
