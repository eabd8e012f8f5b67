package mailbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	q := New[int]()
	for i := 0; i < 5; i++ {
		if err := q.Send(i); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	for want := 0; want < 5; want++ {
		got, err := q.Recv(testContext(t))
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		if got != want {
			t.Fatalf("recv = %d, want %d", got, want)
		}
	}
}

func TestQueueSendAfterCloseFails(t *testing.T) {
	q := New[string]()
	if err := q.Send("a"); err != nil {
		t.Fatalf("send: %v", err)
	}
	q.Close()
	if err := q.Send("b"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	got, err := q.Recv(testContext(t))
	if err != nil || got != "a" {
		t.Fatalf("expected queued item after close, got %q err=%v", got, err)
	}
	if _, err := q.Recv(testContext(t)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed once drained, got %v", err)
	}
}

func TestQueueRecvHonoursContext(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithTimeout(testContext(t), 20*time.Millisecond)
	defer cancel()
	if _, err := q.Recv(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestQueueCloseWakesReceiver(t *testing.T) {
	q := New[int]()
	errCh := make(chan error, 1)
	go func() {
		_, err := q.Recv(context.Background())
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	q.Close()
	select {
	case err := <-errCh:
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("receiver was not woken by close")
	}
}

func TestQueueManyProducers(t *testing.T) {
	q := New[int]()
	const producers = 8
	const perProducer = 250

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := q.Send(i); err != nil {
					t.Errorf("send: %v", err)
					return
				}
			}
		}()
	}

	received := 0
	ctx, cancel := context.WithTimeout(testContext(t), 5*time.Second)
	defer cancel()
	for received < producers*perProducer {
		if _, err := q.Recv(ctx); err != nil {
			t.Fatalf("recv after %d items: %v", received, err)
		}
		received++
	}
	wg.Wait()
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Len())
	}
}
