package keymutex

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLockSerializesSameKey(t *testing.T) {
	m := New()
	ctx := context.Background()

	type window struct{ start, end time.Time }
	var (
		mu      sync.Mutex
		windows []window
		wg      sync.WaitGroup
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := m.Lock(ctx, "p:1")
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			w := window{start: time.Now()}
			time.Sleep(10 * time.Millisecond)
			w.end = time.Now()
			release()
			mu.Lock()
			windows = append(windows, w)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(windows) != 5 {
		t.Fatalf("windows: want=5 got=%d", len(windows))
	}
	for i := range windows {
		for j := range windows {
			if i == j {
				continue
			}
			a, b := windows[i], windows[j]
			if a.start.Before(b.end) && b.start.Before(a.end) {
				t.Fatalf("overlap between %d and %d", i, j)
			}
		}
	}
	if m.size() != 0 {
		t.Fatalf("entries after release: want=0 got=%d", m.size())
	}
}

func TestLockDifferentKeysDoNotBlock(t *testing.T) {
	m := New()
	ctx := context.Background()

	r1, err := m.Lock(ctx, "p:1")
	if err != nil {
		t.Fatalf("Lock p:1: %v", err)
	}
	defer r1()

	done := make(chan struct{})
	go func() {
		r2, err := m.Lock(ctx, "l:1")
		if err == nil {
			r2()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("lock on a different key blocked")
	}
}

func TestLockFIFO(t *testing.T) {
	m := New()
	ctx := context.Background()

	hold, err := m.Lock(ctx, "k")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			release, err := m.Lock(ctx, "k")
			if err != nil {
				t.Errorf("Lock %d: %v", i, err)
				return
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			release()
		}(i)
		// Let each waiter enqueue before the next one arrives.
		time.Sleep(5 * time.Millisecond)
	}
	hold()
	wg.Wait()

	for i, v := range order {
		if v != i {
			t.Fatalf("order: want ascending got=%v", order)
		}
	}
}

func TestLockContextCancelledWhileWaiting(t *testing.T) {
	var waits int
	m := New(WithWaitObserver(func(string, time.Duration) { waits++ }))

	hold, err := m.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := m.Lock(ctx, "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Lock err: want=%v got=%v", context.DeadlineExceeded, err)
	}
	if !m.Held("k") {
		t.Fatalf("Held: want=true while first holder active")
	}

	hold()
	hold()
	if m.size() != 0 {
		t.Fatalf("entries: want=0 got=%d", m.size())
	}
	if waits != 1 {
		t.Fatalf("observed waits: want=1 got=%d", waits)
	}
}
