//go:build !tbnative

package native

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/ValentinKolb/dLedger/rpc/packet"
)

// TestUnavailable checks that the stub refuses to initialize
func TestUnavailable(t *testing.T) {
	e := NewNativeExecutor()
	if e.GetName() != "native" {
		t.Errorf("Expected name native, got %s", e.GetName())
	}

	err := e.Init(common.ClientConfig{Addresses: "3000"}, func(*packet.Packet, common.PacketStatus, []byte) {})
	if !errors.Is(err, common.ErrInitialization) {
		t.Errorf("Expected initialization error, got %v", err)
	}
	if err := e.Deinit(); err != nil {
		t.Errorf("Deinit failed: %v", err)
	}
}
