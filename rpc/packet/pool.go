package packet

import (
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/dLedger/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("packet")

// Pool is a fixed size set of packets shared by all callers of a client.
// The number of packets bounds the number of in-flight requests.
type Pool struct {
	mode     common.AcquireMode
	packets  []*Packet
	free     chan *Packet
	shutdown chan struct{}
	stopOnce sync.Once
	closed   atomic.Bool
	nextID   atomic.Uint64
	inFlight atomic.Int64
}

// NewPool creates a pool with capacity packets
func NewPool(capacity int, mode common.AcquireMode) *Pool {
	if capacity < 1 {
		capacity = 1
	}

	p := &Pool{
		mode:     mode,
		packets:  make([]*Packet, capacity),
		free:     make(chan *Packet, capacity),
		shutdown: make(chan struct{}),
	}

	for i := range p.packets {
		pkt := &Packet{slot: i}
		p.packets[i] = pkt
		p.free <- pkt
	}

	return p
}

// Acquire hands out a free packet in state Acquired with a fresh ID.
//
// In AcquireModeBlock it waits until a packet is released or the pool is shut
// down. In AcquireModeFailFast it returns common.ErrConcurrencyMaxExceeded if no
// packet is free. After Shutdown it always returns common.ErrShutdown.
func (p *Pool) Acquire() (*Packet, error) {
	if p.closed.Load() {
		return nil, common.ErrShutdown
	}

	var pkt *Packet
	if p.mode == common.AcquireModeFailFast {
		select {
		case pkt = <-p.free:
		default:
			return nil, common.ErrConcurrencyMaxExceeded
		}
	} else {
		select {
		case pkt = <-p.free:
		case <-p.shutdown:
			return nil, common.ErrShutdown
		}
	}

	// shutdown may have raced with the receive
	if p.closed.Load() {
		p.free <- pkt
		return nil, common.ErrShutdown
	}

	pkt.reset()
	pkt.ID = p.nextID.Add(1)
	pkt.word.Store(packWord(pkt.ID, StateAcquired))
	p.inFlight.Add(1)

	return pkt, nil
}

// Release returns a packet to the pool. id must be the ID the packet carried
// when it was acquired. Only packets in state Acquired or Completed may be
// released, anything else (a second release, or a release through a stale
// handle after the slot was acquired again) returns
// common.ErrInvalidPacketState and leaves the pool untouched.
func (p *Pool) Release(pkt *Packet, id uint64) error {
	if pkt == nil || pkt.slot < 0 || pkt.slot >= len(p.packets) || p.packets[pkt.slot] != pkt {
		return common.ErrInvalidPacketState
	}

	if pkt.transitionAt(id, StateCompleted, StateFree) != nil {
		if err := pkt.transitionAt(id, StateAcquired, StateFree); err != nil {
			Logger.Warningf("release rejected: %v", err)
			return err
		}
	}

	pkt.reset()
	p.inFlight.Add(-1)
	p.free <- pkt
	return nil
}

// Shutdown makes all current and future Acquire calls fail with
// common.ErrShutdown. Packets already handed out can still be released.
func (p *Pool) Shutdown() {
	p.stopOnce.Do(func() {
		p.closed.Store(true)
		close(p.shutdown)
	})
}

// IsShutdown reports whether Shutdown was called
func (p *Pool) IsShutdown() bool {
	return p.closed.Load()
}

// Wait blocks until every packet has been released. It must only be called
// after Shutdown, otherwise concurrent acquirers could hold packets forever.
func (p *Pool) Wait() {
	collected := make([]*Packet, 0, len(p.packets))
	for len(collected) < len(p.packets) {
		collected = append(collected, <-p.free)
	}

	// put them back so late Release/Acquire calls keep working
	for _, pkt := range collected {
		p.free <- pkt
	}
}

// InFlight returns the number of packets currently handed out
func (p *Pool) InFlight() int {
	return int(p.inFlight.Load())
}

// Capacity returns the fixed number of packets
func (p *Pool) Capacity() int {
	return len(p.packets)
}
