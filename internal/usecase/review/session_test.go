package review

import (
	"sync"
	"testing"
)

func TestSession_Budget(t *testing.T) {
	s := NewSession(2)

	if !s.Acquire() {
		t.Fatal("first acquire should succeed")
	}
	if !s.Acquire() {
		t.Fatal("second acquire should succeed")
	}
	if s.Acquire() {
		t.Error("third acquire should fail")
	}
	if got := s.Used(); got != 2 {
		t.Errorf("Used() = %d, want 2", got)
	}
}

func TestSession_Unlimited(t *testing.T) {
	s := NewSession(0)

	for i := 0; i < 100; i++ {
		if !s.Acquire() {
			t.Fatalf("acquire %d failed on unlimited session", i)
		}
	}
	if got := s.Used(); got != 100 {
		t.Errorf("Used() = %d, want 100", got)
	}
}

func TestSession_ConcurrentAcquire(t *testing.T) {
	const budget = 50
	s := NewSession(budget)

	var wg sync.WaitGroup
	granted := make(chan struct{}, 200)

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Acquire() {
				granted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(granted)

	count := 0
	for range granted {
		count++
	}
	if count != budget {
		t.Errorf("granted %d acquisitions, want exactly %d", count, budget)
	}
}
