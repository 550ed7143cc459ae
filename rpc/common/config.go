package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ValentinKolb/dLedger/lib/types"
)

// --------------------------------------------------------------------------
// Acquire Mode
// --------------------------------------------------------------------------

// AcquireMode controls what happens when every packet of a client is in flight
type AcquireMode int

const (
	// AcquireModeBlock waits until a packet is released (or the client is closed)
	AcquireModeBlock AcquireMode = iota
	// AcquireModeFailFast returns ErrConcurrencyMaxExceeded immediately
	AcquireModeFailFast
)

func (m AcquireMode) String() string {
	switch m {
	case AcquireModeBlock:
		return "block"
	case AcquireModeFailFast:
		return "fail-fast"
	default:
		return fmt.Sprintf("acquire_mode(%d)", int(m))
	}
}

// ParseAcquireMode parses "block" or "fail-fast"
func ParseAcquireMode(value string) (AcquireMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "block":
		return AcquireModeBlock, nil
	case "fail-fast", "failfast", "fail_fast":
		return AcquireModeFailFast, nil
	default:
		return 0, fmt.Errorf("invalid acquire mode %q (expected block or fail-fast)", value)
	}
}

// --------------------------------------------------------------------------
// Transport configuration (shared by client and gateway)
// --------------------------------------------------------------------------

// SocketConf holds socket buffer settings (ignored for http)
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds tcp specific socket options
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// ClientTransportConfig configures the network executors (tcp, unix, http)
type ClientTransportConfig struct {
	ConnectionsPerEndpoint int
	RetryCount             int
	TimeoutSecond          int
	SocketConf
	TCPConf
}

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds everything needed to create a ledger client
type ClientConfig struct {
	// ClusterID identifies the ledger cluster
	ClusterID types.Uint128
	// Addresses is the comma separated list of cluster (or gateway) addresses.
	// It is passed to the executor unchanged.
	Addresses string
	// Concurrency is the number of packets (maximum in-flight requests)
	Concurrency int
	// AcquireMode decides whether callers wait for a free packet
	AcquireMode AcquireMode
	// MaxPayloadSize is the largest request payload in bytes
	MaxPayloadSize int

	Transport ClientTransportConfig
}

// WithDefaults returns a copy with zero values replaced by defaults
func (c ClientConfig) WithDefaults() ClientConfig {
	if c.Concurrency == 0 {
		c.Concurrency = ConcurrencyDefault
	}
	if c.MaxPayloadSize == 0 {
		c.MaxPayloadSize = MessageBodySizeMax
	}
	if c.Transport.ConnectionsPerEndpoint <= 0 {
		c.Transport.ConnectionsPerEndpoint = 1
	}
	return c
}

// Validate checks the executor independent settings. Address syntax is
// checked by the executor, since every executor understands different forms.
func (c *ClientConfig) Validate() error {
	if c.Concurrency <= 0 || c.Concurrency > ConcurrencyMax {
		return NewInitializationError(InitConcurrencyMaxInvalid, "concurrency must be in [1, %d], got %d", ConcurrencyMax, c.Concurrency)
	}
	if c.MaxPayloadSize <= 0 || c.MaxPayloadSize > MessageBodySizeMax {
		return NewInitializationError(InitUnexpected, "max payload size must be in [1, %d], got %d", MessageBodySizeMax, c.MaxPayloadSize)
	}
	if c.AcquireMode != AcquireModeBlock && c.AcquireMode != AcquireModeFailFast {
		return NewInitializationError(InitUnexpected, "invalid acquire mode %d", int(c.AcquireMode))
	}
	if _, err := SplitAddresses(c.Addresses); err != nil {
		return err
	}
	return nil
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder
	addSection, addField := tableWriter(&sb)

	addSection("Client Configuration")
	addField("Cluster ID", c.ClusterID.String())
	addField("Concurrency", strconv.Itoa(c.Concurrency))
	addField("Acquire Mode", c.AcquireMode.String())
	addField("Max Payload Size", fmt.Sprintf("%d bytes", c.MaxPayloadSize))

	addSection("Addresses")
	for i, address := range strings.Split(c.Addresses, ",") {
		addField(strconv.Itoa(i), strings.TrimSpace(address))
	}

	addSection("Transport")
	addField("Timeout", fmt.Sprintf("%d sec", c.Transport.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.Transport.ConnectionsPerEndpoint)))))
	addField("Write Buffer", fmt.Sprintf("%d bytes", c.Transport.WriteBufferSize))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.Transport.ReadBufferSize))
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))

	return sb.String()
}

// --------------------------------------------------------------------------
// Gateway configuration struct
// --------------------------------------------------------------------------

// GatewayConfig configures a `dledger serve` gateway
type GatewayConfig struct {
	// Transport is the listener type (tcp, unix, http)
	Transport string
	// Endpoint is the address the gateway listens on
	Endpoint string
	// AdminEndpoint serves /healthz and /metrics, empty disables it
	AdminEndpoint string
	// MaxWorkersPerConn bounds the concurrently processed packets per connection
	MaxWorkersPerConn int
	// BufferSize is the initial size of pooled read buffers
	BufferSize int
	// TimeoutSecond is the write timeout for replies
	TimeoutSecond int
	// LogLevel is one of debug, info, warn, error
	LogLevel string

	SocketConf
	TCPConf

	// Executor is the backend executor (echo, native, tcp, unix, http)
	Executor string
	// Backend configures the client the gateway forwards to
	Backend ClientConfig
}

// String returns a formatted string representation of the gateway configuration
func (c *GatewayConfig) String() string {
	var sb strings.Builder
	addSection, addField := tableWriter(&sb)

	addSection("Gateway")
	addField("Transport", c.Transport)
	addField("Endpoint", c.Endpoint)
	addField("Admin Endpoint", c.AdminEndpoint)
	addField("Workers Per Connection", strconv.Itoa(c.MaxWorkersPerConn))
	addField("Buffer Size", fmt.Sprintf("%d bytes", c.BufferSize))
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	addSection("Backend")
	addField("Executor", c.Executor)

	return sb.String() + c.Backend.String()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// tableWriter returns helper functions for consistent formatting of config tables
func tableWriter(sb *strings.Builder) (func(string), func(string, string)) {
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}
	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-24s: %s\n", name, value))
	}
	return addSection, addField
}
