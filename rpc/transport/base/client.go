package base

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dLedger/lib/util"
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/executor"
	"github.com/ValentinKolb/dLedger/rpc/packet"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("transport/rpc")

const (
	// initialReadBufferSize is the size of the per connection reply buffer
	initialReadBufferSize = 64 * 1024
	// reconnectBackoffMin and reconnectBackoffMax bound the delay between reconnect attempts
	reconnectBackoffMin = 50 * time.Millisecond
	reconnectBackoffMax = 2 * time.Second
)

var errNotConnected = errors.New("connection is not established")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientTransportConfig) error

	// ParseEndpoints turns the configured address list into dialable endpoints
	ParseEndpoints(addresses string) ([]string, error)
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientConnection is a single connection to a gateway. Packets written to it
// stay in inflight until their reply arrives; after a reconnect they are
// written again.
type clientConnection struct {
	endpoint string
	conn     net.Conn   // nil while disconnected
	connMu   sync.Mutex // protects conn and serializes writes
	inflight *xsync.MapOf[uint64, *packet.Packet]
	parent   *clientExecutor
}

// clientExecutor implements executor.IExecutor on top of framed stream
// connections, independent of the specific transport medium (unix, tcp, etc.)
type clientExecutor struct {
	connector    IClientConnector
	config       common.ClientConfig
	onCompletion executor.CompletionFunc
	connections  []*clientConnection
	nextConn     atomic.Uint64
	reconnects   *metrics.Counter

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.RWMutex // guards stopped against Submit
	stopped bool
}

// -----------------------------------------------------------
// Executor Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientExecutor creates a network executor using the specified connector
func NewBaseClientExecutor(connector IClientConnector) executor.IExecutor {
	return &clientExecutor{
		connector: connector,
		stopCh:    make(chan struct{}),
		reconnects: metrics.GetOrCreateCounter(
			fmt.Sprintf(`dledger_transport_reconnects_total{transport=%q}`, connector.GetName())),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see executor.IExecutor)
// --------------------------------------------------------------------------

func (t *clientExecutor) Init(config common.ClientConfig, onCompletion executor.CompletionFunc) error {
	if onCompletion == nil {
		return common.NewInitializationError(common.InitUnexpected, "no completion callback")
	}

	endpoints, err := t.connector.ParseEndpoints(config.Addresses)
	if err != nil {
		return err
	}

	t.config = config
	t.onCompletion = onCompletion

	connectionsPerEP := config.Transport.ConnectionsPerEndpoint
	if connectionsPerEP < 1 {
		connectionsPerEP = 1
	}
	attempts := config.Transport.RetryCount
	if attempts < 1 {
		attempts = 1
	}

	t.connections = make([]*clientConnection, 0, len(endpoints)*connectionsPerEP)
	connected := 0
	for _, endpoint := range endpoints {
		for i := 0; i < connectionsPerEP; i++ {
			c := &clientConnection{
				endpoint: endpoint,
				inflight: xsync.NewMapOf[uint64, *packet.Packet](),
				parent:   t,
			}

			// Establish the initial connection, later failures are handled by run
			backoff := util.NewBackoff(reconnectBackoffMin, reconnectBackoffMax)
			for attempt := 1; attempt <= attempts; attempt++ {
				if err = c.reconnect(); err == nil {
					connected++
					Logger.Infof("Connected to %s (connection %d/%d)", endpoint, i+1, connectionsPerEP)
					break
				}
				Logger.Warningf("Failed to connect to %s (attempt %d/%d): %v", endpoint, attempt, attempts, err)
				if attempt < attempts {
					time.Sleep(backoff.Next())
				}
			}

			t.connections = append(t.connections, c)
		}
	}

	if connected == 0 {
		t.closeConnections()
		return common.NewInitializationError(common.InitNetworkSubsystem,
			"failed to connect to any of %d endpoints using %s transport: %v", len(endpoints), t.connector.GetName(), err)
	}

	for _, c := range t.connections {
		t.wg.Add(1)
		go c.run()
	}

	Logger.Infof("Connected %d out of %d connections to %d endpoints using %s transport",
		connected, len(t.connections), len(endpoints), t.connector.GetName())
	return nil
}

func (t *clientExecutor) Submit(p *packet.Packet) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.stopped {
		Logger.Debugf("%s executor is stopped, dropping %s", t.connector.GetName(), p)
		return
	}

	c := t.getNextConnection()
	c.inflight.Store(p.ID, p)

	// on failure the packet stays in flight and is resent after the reconnect
	if err := c.send(p); err != nil && !errors.Is(err, errNotConnected) {
		Logger.Debugf("Failed to send %s to %s: %v", p, c.endpoint, err)
	}
}

func (t *clientExecutor) Deinit() error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	t.mu.Unlock()

	close(t.stopCh)
	t.closeConnections()
	// readers deliver their last completion before they return
	t.wg.Wait()

	Logger.Infof("%s executor stopped", t.connector.GetName())
	return nil
}

func (t *clientExecutor) GetName() string {
	return t.connector.GetName()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// getNextConnection selects the next connection via Round Robin, preferring
// connections that are currently established
func (t *clientExecutor) getNextConnection() *clientConnection {
	n := uint64(len(t.connections))
	if n == 1 {
		return t.connections[0]
	}

	start := t.nextConn.Add(1)
	for i := uint64(0); i < n; i++ {
		c := t.connections[(start+i)%n]
		if c.isConnected() {
			return c
		}
	}
	return t.connections[start%n]
}

// closeConnections closes all active connections
func (t *clientExecutor) closeConnections() {
	for _, c := range t.connections {
		c.connMu.Lock()
		if c.conn != nil {
			c.conn.Close()
			c.conn = nil
		}
		c.connMu.Unlock()
	}
}

func (t *clientExecutor) isStopping() bool {
	select {
	case <-t.stopCh:
		return true
	default:
		return false
	}
}

func (c *clientConnection) isConnected() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn != nil
}

// send writes a single packet
func (c *clientConnection) send(p *packet.Packet) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.writeLocked(p)
}

// writeLocked writes a packet, the caller holds connMu. A failed write closes
// the connection so the reader notices and reconnects.
func (c *clientConnection) writeLocked(p *packet.Packet) error {
	if c.conn == nil {
		return errNotConnected
	}

	if timeout := c.parent.config.Transport.TimeoutSecond; timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(time.Duration(timeout) * time.Second)); err != nil {
			c.conn.Close()
			return err
		}
	}

	if err := writeFrame(c.conn, p.ID, p.Operation, common.PacketOk, p.Data); err != nil {
		c.conn.Close()
		return err
	}
	return nil
}

// run keeps the connection alive: it reads replies until the connection
// fails, then reconnects with backoff and resends everything still in flight
func (c *clientConnection) run() {
	defer c.parent.wg.Done()

	backoff := util.NewBackoff(reconnectBackoffMin, reconnectBackoffMax)
	buf := make([]byte, initialReadBufferSize)

	for {
		if c.parent.isStopping() {
			return
		}

		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			if err := c.reconnect(); err != nil {
				Logger.Warningf("Failed to reconnect to %s: %v", c.endpoint, err)
				select {
				case <-c.parent.stopCh:
					return
				case <-time.After(backoff.Next()):
				}
				continue
			}
			c.parent.reconnects.Inc()
			backoff.Reset()
			c.resend()
			Logger.Infof("Reconnected to %s", c.endpoint)
			continue
		}

		var err error
		buf, err = c.readResponses(conn, buf)
		if c.parent.isStopping() {
			return
		}
		Logger.Warningf("Connection to %s lost: %v", c.endpoint, err)
		c.drop(conn)
	}
}

// readResponses reads replies and completes the matching packets until the
// connection fails
func (c *clientConnection) readResponses(conn net.Conn, buf []byte) ([]byte, error) {
	for {
		var h frameHeader
		var data []byte
		var err error

		h, buf, data, err = readFrame(conn, buf)
		if err != nil {
			return buf, err
		}

		p, found := c.inflight.LoadAndDelete(h.packetID)
		if !found {
			Logger.Warningf("Received reply for unknown packet %d from %s", h.packetID, c.endpoint)
			continue
		}

		c.parent.onCompletion(p, h.status, data)
	}
}

// drop forgets the connection if it is still the current one
func (c *clientConnection) drop(conn net.Conn) {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	conn.Close()
	if c.conn == conn {
		c.conn = nil
	}
}

// resend writes every packet still in flight on this connection again
func (c *clientConnection) resend() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	count := 0
	c.inflight.Range(func(_ uint64, p *packet.Packet) bool {
		if err := c.writeLocked(p); err != nil {
			Logger.Warningf("Failed to resend %s to %s: %v", p, c.endpoint, err)
			return false
		}
		count++
		return true
	})

	if count > 0 {
		Logger.Infof("Resent %d packets to %s", count, c.endpoint)
	}
}

// reconnect establishes or restores a connection to the endpoint
func (c *clientConnection) reconnect() error {
	conn, err := c.parent.connector.Connect(c.endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %v", c.endpoint, err)
	}

	// Upgrade the connection with protocol-specific settings
	if err := c.parent.connector.UpgradeConnection(conn, c.parent.config.Transport); err != nil {
		conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %v", c.endpoint, err)
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	// Deinit closes connections under connMu after closing stopCh
	if c.parent.isStopping() {
		conn.Close()
		return fmt.Errorf("executor is stopped")
	}

	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = conn
	return nil
}
