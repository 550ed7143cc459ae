package packet

import (
	"fmt"
	"sync/atomic"

	"github.com/ValentinKolb/dLedger/rpc/common"
)

// State is the lifecycle state of a packet
type State uint32

const (
	StateFree State = iota
	StateAcquired
	StateSubmitted
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateFree:
		return "free"
	case StateAcquired:
		return "acquired"
	case StateSubmitted:
		return "submitted"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", uint32(s))
	}
}

// Packet carries one batch from the caller to an executor and back.
//
// A packet moves through Free -> Acquired -> Submitted -> Completed -> Free.
// Between Acquire and Release it is owned by exactly one caller. While it is
// Submitted the executor may read Operation and Data but must not modify them.
type Packet struct {
	// ID is unique per acquisition and increases monotonically
	ID uint64
	// Operation of the carried batch
	Operation common.Operation
	// Data is the encoded request payload
	Data []byte

	slot   int
	status atomic.Uint32
	// word packs the acquisition id (upper bits) with the State (low byte),
	// so a transition can never apply to a later acquisition of the same slot
	word atomic.Uint64
}

const stateBits = 8

func packWord(id uint64, s State) uint64 {
	return id<<stateBits | uint64(s)
}

// Slot returns the fixed index of the packet within its pool
func (p *Packet) Slot() int {
	return p.slot
}

// State returns the current lifecycle state
func (p *Packet) State() State {
	return State(p.word.Load() & (1<<stateBits - 1))
}

// Status returns the packet status set on completion
func (p *Packet) Status() common.PacketStatus {
	return common.PacketStatus(p.status.Load())
}

// MarkSubmitted moves the packet from Acquired to Submitted
func (p *Packet) MarkSubmitted() error {
	return p.transition(StateAcquired, StateSubmitted)
}

// MarkCompleted records the status and moves the packet from Submitted to Completed
func (p *Packet) MarkCompleted(status common.PacketStatus) error {
	if err := p.transition(StateSubmitted, StateCompleted); err != nil {
		return err
	}
	p.status.Store(uint32(status))
	return nil
}

func (p *Packet) String() string {
	return fmt.Sprintf("packet{id=%d slot=%d op=%s state=%s}", p.ID, p.slot, p.Operation, p.State())
}

// transition performs a CAS guarded state change within the current acquisition
func (p *Packet) transition(from, to State) error {
	word := p.word.Load()
	return p.transitionAt(word>>stateBits, from, to)
}

// transitionAt performs a CAS guarded state change that only succeeds while
// the packet still belongs to acquisition id
func (p *Packet) transitionAt(id uint64, from, to State) error {
	if !p.word.CompareAndSwap(packWord(id, from), packWord(id, to)) {
		current := p.word.Load()
		return fmt.Errorf("%w: packet %d (acquisition %d) is %s, expected %s of acquisition %d",
			common.ErrInvalidPacketState, p.slot, current>>stateBits, State(current&(1<<stateBits-1)), from, id)
	}
	return nil
}

// reset clears the payload fields before the packet is handed out again
func (p *Packet) reset() {
	p.Operation = 0
	p.Data = nil
	p.status.Store(uint32(common.PacketOk))
}
