package gateway

import (
	"github.com/ValentinKolb/dLedger/rpc/common"
)

// IBackend is the client a gateway forwards packets to. Both *client.Client
// and *client.EchoClient implement it.
type IBackend interface {
	// Submit sends an encoded batch and returns the raw reply
	Submit(op common.Operation, payload []byte) ([]byte, error)
	// Close releases the backend, waiting submissions return common.ErrShutdown
	Close() error
}
