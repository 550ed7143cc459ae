package gateway

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/ValentinKolb/dLedger/lib/types"
	"github.com/ValentinKolb/dLedger/rpc/client"
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/executor/echo"
	"github.com/ValentinKolb/dLedger/rpc/transport/tcp"
)

func freeEndpoint(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to find a free port: %v", err)
	}
	defer l.Close()
	return "127.0.0.1:" + strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
}

// startEchoGateway serves an echo backend over tcp
func startEchoGateway(t *testing.T) (string, *Gateway) {
	t.Helper()
	backend, err := client.NewEchoClient(common.ClientConfig{Addresses: "3000"}, echo.NewEchoExecutor())
	if err != nil {
		t.Fatalf("NewEchoClient failed: %v", err)
	}

	endpoint := freeEndpoint(t)
	g := NewGateway(common.GatewayConfig{
		Transport:         "tcp",
		Endpoint:          endpoint,
		MaxWorkersPerConn: 8,
		TimeoutSecond:     5,
	}, tcp.NewTCPServerTransport(0, 8), backend)

	go func() {
		if err := g.Serve(); err != nil {
			t.Errorf("Serve failed: %v", err)
		}
	}()
	t.Cleanup(func() { g.Close() })
	return endpoint, g
}

func remoteConfig(endpoint string) common.ClientConfig {
	return common.ClientConfig{
		Addresses: endpoint,
		Transport: common.ClientTransportConfig{RetryCount: 20, TimeoutSecond: 5},
	}
}

// TestForwarding tests a remote echo client against a gateway with an echo backend
func TestForwarding(t *testing.T) {
	endpoint, _ := startEchoGateway(t)

	c, err := client.NewEchoClient(remoteConfig(endpoint), tcp.NewTCPClientExecutor())
	if err != nil {
		t.Fatalf("NewEchoClient failed: %v", err)
	}
	defer c.Close()

	accounts := []types.Account{
		{ID: types.ID(), Ledger: 1, Code: 1, Flags: types.AccountFlagLinked},
		{ID: types.ID(), Ledger: 1, Code: 1},
	}
	got, err := c.CreateAccounts(accounts)
	if err != nil {
		t.Fatalf("CreateAccounts failed: %v", err)
	}
	if !reflect.DeepEqual(got, accounts) {
		t.Errorf("Expected %v, got %v", accounts, got)
	}

	// Packet errors of the backend come back as packet errors
	_, err = c.Submit(common.Operation(99), make([]byte, 16))
	var packetErr *common.PacketError
	if !errors.As(err, &packetErr) || packetErr.Status != common.PacketInvalidOperation {
		t.Errorf("Expected invalid_operation, got %v", err)
	}

	_, err = c.Submit(common.OpLookupAccounts, make([]byte, 17))
	if !errors.As(err, &packetErr) || packetErr.Status != common.PacketInvalidDataSize {
		t.Errorf("Expected invalid_data_size, got %v", err)
	}
}

// TestHandleAfterClose tests that a closed backend fails packets with an error
func TestHandleAfterClose(t *testing.T) {
	backend, err := client.NewEchoClient(common.ClientConfig{Addresses: "3000"}, echo.NewEchoExecutor())
	if err != nil {
		t.Fatalf("NewEchoClient failed: %v", err)
	}
	g := NewGateway(common.GatewayConfig{Transport: "tcp"}, tcp.NewTCPServerTransport(0, 1), backend)

	status, reply, err := g.handle(common.OpLookupTransfers, make([]byte, 32))
	if err != nil || status != common.PacketOk || len(reply) != 32 {
		t.Fatalf("Expected an echoed reply, got (%s, %d bytes, %v)", status, len(reply), err)
	}

	// an empty packet is answered, not treated as a broken connection
	status, _, err = g.handle(common.OpLookupTransfers, nil)
	if err != nil || status != common.PacketInvalidDataSize {
		t.Errorf("Expected invalid_data_size for an empty packet, got (%s, %v)", status, err)
	}

	if err := g.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if g.Healthy() {
		t.Errorf("Expected a closed gateway to be unhealthy")
	}

	if _, _, err := g.handle(common.OpLookupTransfers, make([]byte, 32)); !errors.Is(err, common.ErrShutdown) {
		t.Errorf("Expected ErrShutdown, got %v", err)
	}
}

// TestAdminRouter tests the health and metrics endpoints
func TestAdminRouter(t *testing.T) {
	healthy := true
	router := NewAdminRouter(func() bool { return healthy })

	// produce at least one gateway metric
	backend, _ := client.NewEchoClient(common.ClientConfig{Addresses: "3000"}, echo.NewEchoExecutor())
	defer backend.Close()
	g := NewGateway(common.GatewayConfig{Transport: "tcp"}, tcp.NewTCPServerTransport(0, 1), backend)
	g.handle(common.OpLookupAccounts, make([]byte, 16))

	tests := []struct {
		name     string
		path     string
		healthy  bool
		wantCode int
		wantBody string
	}{
		{"healthy", "/healthz", true, http.StatusOK, "ok"},
		{"closing", "/healthz", false, http.StatusServiceUnavailable, "closing"},
		{"metrics", "/metrics", true, http.StatusOK, "dledger_gateway_packets_total"},
		{"unknown", "/nope", true, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			healthy = tt.healthy
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("Expected body to contain %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}
