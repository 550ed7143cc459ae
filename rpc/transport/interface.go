package transport

import (
	"github.com/ValentinKolb/dLedger/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming packets.
// This function is called by a server transport layer for every received
// packet. It returns the packet status and the reply payload. A non-nil error
// means the packet could not be processed at all (e.g. the backend is shutting
// down); the transport then drops the connection so the client resends the
// packet elsewhere.
type ServerHandleFunc func(op common.Operation, payload []byte) (status common.PacketStatus, reply []byte, err error)

// IRPCServerTransport is the interface for the gateway side of a transport
type IRPCServerTransport interface {
	// RegisterHandler registers the handler called for every received packet
	RegisterHandler(handler ServerHandleFunc)
	// Listen starts the transport layer and blocks until Close is called
	Listen(config common.GatewayConfig) error
	// Close stops accepting connections and waits for running handlers
	Close() error
}
