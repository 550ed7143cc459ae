package packet

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/dLedger/rpc/common"
)

// TestAcquireRelease tests the basic lifecycle of a packet
func TestAcquireRelease(t *testing.T) {
	pool := NewPool(2, common.AcquireModeBlock)

	p1, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if p1.State() != StateAcquired {
		t.Errorf("Expected state acquired, got %s", p1.State())
	}
	if pool.InFlight() != 1 {
		t.Errorf("Expected 1 in flight, got %d", pool.InFlight())
	}

	p2, _ := pool.Acquire()
	if p2.ID <= p1.ID {
		t.Errorf("Expected increasing ids, got %d after %d", p2.ID, p1.ID)
	}
	if p1.Slot() == p2.Slot() {
		t.Errorf("Expected distinct slots")
	}

	if err := p1.MarkSubmitted(); err != nil {
		t.Fatalf("MarkSubmitted failed: %v", err)
	}
	if err := p1.MarkCompleted(common.PacketInvalidDataSize); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	if p1.Status() != common.PacketInvalidDataSize {
		t.Errorf("Expected status invalid_data_size, got %s", p1.Status())
	}

	if err := pool.Release(p1, p1.ID); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := pool.Release(p2, p2.ID); err != nil {
		t.Fatalf("Release of an acquired packet failed: %v", err)
	}
	if pool.InFlight() != 0 {
		t.Errorf("Expected 0 in flight, got %d", pool.InFlight())
	}

	// the slot is reused with a fresh id
	p3, _ := pool.Acquire()
	if p3.ID <= p2.ID {
		t.Errorf("Expected a fresh id on reuse, got %d", p3.ID)
	}
	if p3.Status() != common.PacketOk || p3.Data != nil {
		t.Errorf("Expected a reset packet, got %s", p3)
	}
}

// TestInvalidTransitions tests that misuse is rejected without corrupting the pool
func TestInvalidTransitions(t *testing.T) {
	pool := NewPool(1, common.AcquireModeFailFast)

	p, _ := pool.Acquire()
	if err := p.MarkCompleted(common.PacketOk); !errors.Is(err, common.ErrInvalidPacketState) {
		t.Errorf("Expected ErrInvalidPacketState for completion before submission, got %v", err)
	}

	_ = p.MarkSubmitted()
	if err := p.MarkSubmitted(); !errors.Is(err, common.ErrInvalidPacketState) {
		t.Errorf("Expected ErrInvalidPacketState for double submission, got %v", err)
	}
	if err := pool.Release(p, p.ID); !errors.Is(err, common.ErrInvalidPacketState) {
		t.Errorf("Expected ErrInvalidPacketState for release while submitted, got %v", err)
	}

	_ = p.MarkCompleted(common.PacketOk)
	if err := pool.Release(p, p.ID); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := pool.Release(p, p.ID); !errors.Is(err, common.ErrInvalidPacketState) {
		t.Errorf("Expected ErrInvalidPacketState for double release, got %v", err)
	}

	// capacity is still exactly one
	if _, err := pool.Acquire(); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if _, err := pool.Acquire(); !errors.Is(err, common.ErrConcurrencyMaxExceeded) {
		t.Errorf("Expected ErrConcurrencyMaxExceeded, got %v", err)
	}

	foreign := &Packet{slot: 0}
	if err := pool.Release(foreign, 0); !errors.Is(err, common.ErrInvalidPacketState) {
		t.Errorf("Expected ErrInvalidPacketState for a foreign packet, got %v", err)
	}
}

// TestBlockingAcquire tests that a blocked acquirer is served by a release
func TestBlockingAcquire(t *testing.T) {
	pool := NewPool(1, common.AcquireModeBlock)
	held, _ := pool.Acquire()

	got := make(chan *Packet)
	go func() {
		p, err := pool.Acquire()
		if err != nil {
			t.Errorf("Acquire failed: %v", err)
		}
		got <- p
	}()

	select {
	case <-got:
		t.Fatalf("Acquire should block while the pool is exhausted")
	case <-time.After(20 * time.Millisecond):
	}

	_ = pool.Release(held, held.ID)

	select {
	case p := <-got:
		if p == nil || p.Slot() != held.Slot() {
			t.Errorf("Expected the released slot, got %v", p)
		}
	case <-time.After(time.Second):
		t.Fatalf("Timeout waiting for blocked acquirer")
	}
}

// TestShutdownWakesAcquirers tests that shutdown releases all waiters
func TestShutdownWakesAcquirers(t *testing.T) {
	pool := NewPool(1, common.AcquireModeBlock)
	held, _ := pool.Acquire()

	const waiters = 5
	errs := make(chan error, waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			_, err := pool.Acquire()
			errs <- err
		}()
	}

	time.Sleep(10 * time.Millisecond)
	pool.Shutdown()
	pool.Shutdown() // idempotent

	for i := 0; i < waiters; i++ {
		select {
		case err := <-errs:
			if !errors.Is(err, common.ErrShutdown) {
				t.Errorf("Expected ErrShutdown, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatalf("Timeout waiting for acquirer %d", i)
		}
	}

	// outstanding packets can still be released, Wait returns afterwards
	waitDone := make(chan struct{})
	go func() {
		pool.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
		t.Fatalf("Wait returned while a packet was still held")
	case <-time.After(20 * time.Millisecond):
	}

	if err := pool.Release(held, held.ID); err != nil {
		t.Fatalf("Release after shutdown failed: %v", err)
	}

	select {
	case <-waitDone:
	case <-time.After(time.Second):
		t.Fatalf("Wait did not return after all packets were released")
	}

	if _, err := pool.Acquire(); !errors.Is(err, common.ErrShutdown) {
		t.Errorf("Expected ErrShutdown after shutdown, got %v", err)
	}
}

// TestConcurrentUse tests that the pool never hands out more packets than its capacity
func TestConcurrentUse(t *testing.T) {
	const capacity = 4
	pool := NewPool(capacity, common.AcquireModeBlock)

	var mu sync.Mutex
	inUse := make(map[int]bool)
	maxSeen := 0

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				p, err := pool.Acquire()
				if err != nil {
					t.Errorf("Acquire failed: %v", err)
					return
				}

				mu.Lock()
				if inUse[p.Slot()] {
					t.Errorf("Slot %d handed out twice", p.Slot())
				}
				inUse[p.Slot()] = true
				if len(inUse) > maxSeen {
					maxSeen = len(inUse)
				}
				mu.Unlock()

				mu.Lock()
				delete(inUse, p.Slot())
				mu.Unlock()

				if err := pool.Release(p, p.ID); err != nil {
					t.Errorf("Release failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if maxSeen > capacity {
		t.Errorf("Saw %d packets in use, capacity is %d", maxSeen, capacity)
	}
	if pool.InFlight() != 0 {
		t.Errorf("Expected 0 in flight, got %d", pool.InFlight())
	}
}

// TestStaleRelease tests that a handle from an earlier acquisition cannot
// release the packet once the slot has been acquired again
func TestStaleRelease(t *testing.T) {
	pool := NewPool(1, common.AcquireModeFailFast)

	first, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	firstID := first.ID
	if err := pool.Release(first, firstID); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	second, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if second != first {
		t.Fatalf("Expected the single slot to be reused")
	}

	t.Run("stale acquired", func(t *testing.T) {
		if err := pool.Release(first, firstID); !errors.Is(err, common.ErrInvalidPacketState) {
			t.Errorf("Expected ErrInvalidPacketState for a stale release, got %v", err)
		}
		if second.State() != StateAcquired {
			t.Errorf("Expected the new owner to keep the packet acquired, got %s", second.State())
		}
		if pool.InFlight() != 1 {
			t.Errorf("Expected 1 in flight, got %d", pool.InFlight())
		}
		if _, err := pool.Acquire(); !errors.Is(err, common.ErrConcurrencyMaxExceeded) {
			t.Errorf("Expected ErrConcurrencyMaxExceeded, got %v", err)
		}
	})

	t.Run("stale completed", func(t *testing.T) {
		if err := second.MarkSubmitted(); err != nil {
			t.Fatalf("MarkSubmitted failed: %v", err)
		}
		if err := second.MarkCompleted(common.PacketOk); err != nil {
			t.Fatalf("MarkCompleted failed: %v", err)
		}
		if err := pool.Release(first, firstID); !errors.Is(err, common.ErrInvalidPacketState) {
			t.Errorf("Expected ErrInvalidPacketState for a stale release, got %v", err)
		}
		if second.State() != StateCompleted {
			t.Errorf("Expected the packet to stay completed, got %s", second.State())
		}
	})

	if err := pool.Release(second, second.ID); err != nil {
		t.Fatalf("Release by the current owner failed: %v", err)
	}
	if pool.InFlight() != 0 {
		t.Errorf("Expected 0 in flight, got %d", pool.InFlight())
	}
}
