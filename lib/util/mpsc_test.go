package util

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

// TestBasicOperations tests basic push and pop functionality
func TestBasicOperations(t *testing.T) {
	q := NewMPSC[int]()
	defer q.Close()

	for i := 0; i < 10; i++ {
		if !q.Push(i) {
			t.Fatalf("Failed to push item %d", i)
		}
	}

	if q.Len() != 10 {
		t.Errorf("Expected length 10, got %d", q.Len())
	}

	if !q.Wait() {
		t.Fatalf("Wait returned false on a non-empty queue")
	}

	batch := q.PopBatch(nil, 4)
	if len(batch) != 4 {
		t.Fatalf("Expected batch of 4, got %d", len(batch))
	}
	batch = q.PopBatch(batch, 0)
	if len(batch) != 10 {
		t.Fatalf("Expected 10 items in total, got %d", len(batch))
	}
	for i, v := range batch {
		if v != i {
			t.Errorf("Expected %d at position %d, got %d", i, i, v)
		}
	}

	if rest := q.PopBatch(nil, 0); len(rest) != 0 {
		t.Errorf("Queue should be empty, but got %v", rest)
	}
	if q.Len() != 0 {
		t.Errorf("Expected length 0, got %d", q.Len())
	}
}

// TestWaitWakesUp verifies that a parked consumer is woken by a producer
func TestWaitWakesUp(t *testing.T) {
	q := NewMPSC[string]()
	defer q.Close()

	done := make(chan []string)
	go func() {
		if !q.Wait() {
			done <- nil
			return
		}
		done <- q.PopBatch(nil, 0)
	}()

	// give the consumer a chance to park
	time.Sleep(10 * time.Millisecond)
	q.Push("test")

	select {
	case got := <-done:
		if len(got) != 1 || got[0] != "test" {
			t.Errorf("Expected [test], got %v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("Timeout waiting for consumer to wake up")
	}
}

// TestConcurrentProducers verifies the queue works correctly with multiple producers
func TestConcurrentProducers(t *testing.T) {
	q := NewMPSC[int]()
	defer q.Close()

	const numProducers = 10
	const itemsPerProducer = 1000
	totalItems := numProducers * itemsPerProducer

	received := make(map[int]bool, totalItems)
	done := make(chan struct{})

	go func() {
		defer close(done)
		var batch []int
		for len(received) < totalItems {
			if !q.Wait() {
				return
			}
			batch = q.PopBatch(batch[:0], 64)
			for _, v := range batch {
				if received[v] {
					t.Errorf("Duplicate item received: %v", v)
				}
				received[v] = true
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(numProducers)
	for p := 0; p < numProducers; p++ {
		go func(producerID int) {
			defer wg.Done()
			base := producerID * itemsPerProducer
			for i := 0; i < itemsPerProducer; i++ {
				if !q.Push(base + i) {
					t.Errorf("Producer %d failed to push item %d", producerID, i)
				}
				if i%100 == 0 {
					runtime.Gosched()
				}
			}
		}(p)
	}
	wg.Wait()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Timeout waiting for consumer to finish")
	}

	if len(received) != totalItems {
		t.Errorf("Expected %d items, got %d", totalItems, len(received))
	}
}

// TestCloseQueue verifies closing behavior
func TestCloseQueue(t *testing.T) {
	q := NewMPSC[int]()

	for i := 0; i < 5; i++ {
		q.Push(i)
	}
	q.Close()

	if q.Push(100) {
		t.Error("Should not be able to push after queue is closed")
	}
	if !q.IsClosed() {
		t.Error("Queue should report closed")
	}

	// existing items are still delivered
	if !q.Wait() {
		t.Fatalf("Wait should report remaining items after close")
	}
	if got := q.PopBatch(nil, 0); len(got) != 5 {
		t.Errorf("Expected 5 remaining items, got %v", got)
	}

	// drained and closed
	if q.Wait() {
		t.Error("Wait should return false on a closed, drained queue")
	}
}

// TestCloseWakesConsumer verifies that Close releases a parked consumer
func TestCloseWakesConsumer(t *testing.T) {
	q := NewMPSC[int]()

	result := make(chan bool)
	go func() { result <- q.Wait() }()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case ok := <-result:
		if ok {
			t.Error("Wait should return false after close on an empty queue")
		}
	case <-time.After(time.Second):
		t.Fatalf("Close did not wake the consumer")
	}
}

// TestOrderingSingleProducer tests FIFO order with a single producer
func TestOrderingSingleProducer(t *testing.T) {
	q := NewMPSC[int]()
	defer q.Close()

	const itemCount = 10000
	go func() {
		for i := 0; i < itemCount; i++ {
			q.Push(i)
		}
	}()

	next := 0
	deadline := time.After(5 * time.Second)
	for next < itemCount {
		select {
		case <-deadline:
			t.Fatalf("Timeout after %d items", next)
		default:
		}

		q.Wait()
		for _, v := range q.PopBatch(nil, 128) {
			if v != next {
				t.Fatalf("Expected %d, got %d", next, v)
			}
			next++
		}
	}
}

// TestBackoff tests growth, cap and reset of the backoff helper
func TestBackoff(t *testing.T) {
	b := NewBackoff(10*time.Millisecond, 40*time.Millisecond)

	within := func(d, base time.Duration) bool {
		return d >= base*9/10 && d <= base*11/10
	}

	expected := []time.Duration{10, 20, 40, 40}
	for i, base := range expected {
		if d := b.Next(); !within(d, base*time.Millisecond) {
			t.Errorf("Step %d: expected ~%dms, got %s", i, base, d)
		}
	}

	b.Reset()
	if d := b.Next(); !within(d, 10*time.Millisecond) {
		t.Errorf("Expected ~10ms after reset, got %s", d)
	}
}

// BenchmarkMultiProducer benchmarks the queue with multiple producers
func BenchmarkMultiProducer(b *testing.B) {
	q := NewMPSC[int]()
	defer q.Close()

	go func() {
		var batch []int
		for q.Wait() {
			batch = q.PopBatch(batch[:0], 256)
		}
	}()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			q.Push(i)
			i++
		}
	})
}
