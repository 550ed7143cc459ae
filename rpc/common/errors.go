package common

import (
	"errors"
	"fmt"
)

var (
	// ErrShutdown is returned for every operation that could not complete
	// because the client was closed
	ErrShutdown = errors.New("client is shut down")
	// ErrConcurrencyMaxExceeded is returned by a fail-fast pool when every packet is in flight
	ErrConcurrencyMaxExceeded = errors.New("concurrency max exceeded")
	// ErrEmptyBatch is returned when an operation is called without any events
	ErrEmptyBatch = errors.New("empty batch")
	// ErrReservedFieldNotZero is returned for a filter with non-zero reserved bytes
	ErrReservedFieldNotZero = errors.New("reserved field must be zero")
	// ErrUnexpectedReply is returned when a reply cannot belong to the submitted batch
	ErrUnexpectedReply = errors.New("unexpected reply")
	// ErrInvalidPacketState is returned when a packet is used outside its lifecycle
	ErrInvalidPacketState = errors.New("invalid packet state")

	// ErrPacket matches every *PacketError via errors.Is
	ErrPacket = errors.New("packet error")
	// ErrInitialization matches every *InitializationError via errors.Is
	ErrInitialization = errors.New("initialization error")
)

// PacketError reports a batch that was rejected at the protocol level
type PacketError struct {
	Operation Operation
	Status    PacketStatus
}

func (e *PacketError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, e.Status)
}

// Is makes errors.Is(err, ErrPacket) true for every PacketError
func (e *PacketError) Is(target error) bool {
	return target == ErrPacket
}

// InitializationError reports why a client could not be created
type InitializationError struct {
	Status InitializationStatus
	Err    error // optional detail
}

func (e *InitializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("client initialization failed (%s): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("client initialization failed (%s)", e.Status)
}

// Is makes errors.Is(err, ErrInitialization) true for every InitializationError
func (e *InitializationError) Is(target error) bool {
	return target == ErrInitialization
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// NewInitializationError creates an InitializationError with a formatted detail
func NewInitializationError(status InitializationStatus, format string, args ...interface{}) *InitializationError {
	return &InitializationError{Status: status, Err: fmt.Errorf(format, args...)}
}
