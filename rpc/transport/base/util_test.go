package base

import (
	"bytes"
	"net"
	"testing"

	"github.com/ValentinKolb/dLedger/rpc/common"
)

// TestFrameRoundTrip tests that frames survive the wire unchanged
func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		id     uint64
		op     common.Operation
		status common.PacketStatus
		data   []byte
	}{
		{"request", 1, common.OpCreateAccounts, common.PacketOk, bytes.Repeat([]byte{0xAB}, 128)},
		{"reply status", 1 << 40, common.OpLookupTransfers, common.PacketInvalidDataSize, nil},
		{"large", 42, common.OpCreateTransfers, common.PacketOk, bytes.Repeat([]byte{1, 2, 3, 4}, 64*1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := net.Pipe()
			defer client.Close()
			defer server.Close()

			errCh := make(chan error, 1)
			go func() {
				errCh <- writeFrame(client, tt.id, tt.op, tt.status, tt.data)
			}()

			h, _, data, err := readFrame(server, make([]byte, 16))
			if err != nil {
				t.Fatalf("readFrame failed: %v", err)
			}
			if err := <-errCh; err != nil {
				t.Fatalf("writeFrame failed: %v", err)
			}

			if h.packetID != tt.id || h.operation != tt.op || h.status != tt.status {
				t.Errorf("Expected header (%d, %s, %s), got (%d, %s, %s)",
					tt.id, tt.op, tt.status, h.packetID, h.operation, h.status)
			}
			if int(h.length) != len(tt.data) || !bytes.Equal(data, tt.data) && len(tt.data) > 0 {
				t.Errorf("Payload mismatch: expected %d bytes, got %d", len(tt.data), len(data))
			}
		})
	}
}

// TestFrameTooLarge tests that oversized frames are rejected before reading the payload
func TestFrameTooLarge(t *testing.T) {
	header := make([]byte, frameHeaderSize)
	header[12] = 0xFF
	header[13] = 0xFF
	header[14] = 0xFF
	header[15] = 0x7F

	_, _, _, err := readFrame(bytes.NewReader(header), nil)
	if err == nil {
		t.Errorf("Expected an error for an oversized frame")
	}
}
