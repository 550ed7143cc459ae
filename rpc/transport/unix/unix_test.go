package unix

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/ValentinKolb/dLedger/lib/types"
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/executor"
	extesting "github.com/ValentinKolb/dLedger/rpc/executor/testing"
)

const maxPayload = 64 * types.AccountSize

func TestUnixExecutor(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "gw.sock")

	server := NewUnixServerTransport(0, 8)
	server.RegisterHandler(extesting.EchoHandler(maxPayload))
	go func() {
		if err := server.Listen(common.GatewayConfig{Endpoint: socketPath}); err != nil {
			t.Errorf("Listen failed: %v", err)
		}
	}()
	defer server.Close()

	// Wait for the socket to appear
	deadline := time.Now().Add(5 * time.Second)
	for {
		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			conn.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Gateway did not start: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	extesting.RunExecutorTests(t, "Unix", func() executor.IExecutor {
		return NewUnixClientExecutor()
	}, common.ClientConfig{
		Addresses:      socketPath,
		MaxPayloadSize: maxPayload,
		Transport:      common.ClientTransportConfig{RetryCount: 3, TimeoutSecond: 5},
	})
}
