package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/ValentinKolb/dLedger/rpc/common"
)

const (
	// frameHeaderSize is the size of the frame header in bytes
	frameHeaderSize = 16
	// frameSizeMax bounds the payload of a single frame
	frameSizeMax = common.MessageSizeMax
)

// frameHeader describes one packet on the wire
type frameHeader struct {
	packetID  uint64
	operation common.Operation
	status    common.PacketStatus
	length    uint32
}

// writeFrame writes a frame to the connection with the format (little endian):
// - 8 bytes: packetID (uint64)
// - 1 byte:  operation
// - 1 byte:  packet status (always 0 for requests)
// - 2 bytes: reserved
// - 4 bytes: payload length (uint32)
// - N bytes: payload
func writeFrame(conn net.Conn, packetID uint64, op common.Operation, status common.PacketStatus, data []byte) error {
	header := make([]byte, frameHeaderSize)
	binary.LittleEndian.PutUint64(header[0:8], packetID)
	header[8] = byte(op)
	header[9] = byte(status)
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(data)))

	b := net.Buffers{header, data}
	_, err := b.WriteTo(conn)
	return err
}

// readFrame reads a frame from the connection using the provided buffer.
// If the buffer is too small, a new one is allocated; the returned buffer is
// the one that holds the payload and can be reused for the next call.
func readFrame(conn io.Reader, buf []byte) (frameHeader, []byte, []byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		return frameHeader{}, buf, nil, err
	}

	h := frameHeader{
		packetID:  binary.LittleEndian.Uint64(header[0:8]),
		operation: common.Operation(header[8]),
		status:    common.PacketStatus(header[9]),
		length:    binary.LittleEndian.Uint32(header[12:16]),
	}

	if h.length > frameSizeMax {
		return h, buf, nil, fmt.Errorf("frame of %d bytes exceeds the limit of %d bytes", h.length, frameSizeMax)
	}

	if h.length == 0 {
		return h, buf, []byte{}, nil
	}

	if cap(buf) < int(h.length) {
		buf = make([]byte, h.length)
	}
	data := buf[:h.length]

	if _, err := io.ReadFull(conn, data); err != nil {
		return h, buf, nil, err
	}
	return h, buf, data, nil
}
