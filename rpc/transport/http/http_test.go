package http

import (
	"bytes"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/ValentinKolb/dLedger/lib/types"
	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/executor"
	extesting "github.com/ValentinKolb/dLedger/rpc/executor/testing"
	"github.com/ValentinKolb/dLedger/rpc/packet"
)

const maxPayload = 64 * types.AccountSize

func TestHttpExecutor(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to find a free port: %v", err)
	}
	endpoint := "127.0.0.1:" + strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
	l.Close()

	server := NewHttpServerTransport()
	server.RegisterHandler(extesting.EchoHandler(maxPayload))
	go func() {
		if err := server.Listen(common.GatewayConfig{Endpoint: endpoint, LogLevel: "debug"}); err != nil {
			t.Errorf("Listen failed: %v", err)
		}
	}()
	defer server.Close()

	extesting.RunExecutorTests(t, "HTTP", func() executor.IExecutor {
		return NewHttpClientExecutor()
	}, common.ClientConfig{
		Addresses:      "http://" + endpoint,
		MaxPayloadSize: maxPayload,
		Transport:      common.ClientTransportConfig{TimeoutSecond: 5},
	})
}

// TestRouter tests the wire format of the gateway router
func TestRouter(t *testing.T) {
	router := NewRouter(extesting.EchoHandler(maxPayload), false)

	tests := []struct {
		name       string
		path       string
		body       []byte
		wantCode   int
		wantStatus string
	}{
		{"echo", "/operations/131", make([]byte, 16), http.StatusOK, "0"},
		{"invalid size", "/operations/131", make([]byte, 17), http.StatusOK, strconv.Itoa(int(common.PacketInvalidDataSize))},
		{"invalid operation", "/operations/9", make([]byte, 16), http.StatusOK, strconv.Itoa(int(common.PacketInvalidOperation))},
		{"bad code", "/operations/abc", nil, http.StatusBadRequest, ""},
		{"code out of range", "/operations/256", nil, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("Expected http status %d, got %d", tt.wantCode, rec.Code)
			}
			if got := rec.Header().Get(PacketStatusHeader); got != tt.wantStatus {
				t.Errorf("Expected packet status %q, got %q", tt.wantStatus, got)
			}
		})
	}
}

// TestInitRejectsURLs tests that gateway addresses must be http urls
func TestInitRejectsURLs(t *testing.T) {
	for _, addresses := range []string{"127.0.0.1:3000", "ftp://host", "http://"} {
		e := NewHttpClientExecutor()
		err := e.Init(common.ClientConfig{Addresses: addresses}, func(*packet.Packet, common.PacketStatus, []byte) {})

		initErr, ok := err.(*common.InitializationError)
		if !ok || initErr.Status != common.InitAddressInvalid {
			t.Errorf("%q: expected address_invalid, got %v", addresses, err)
		}
	}
}
