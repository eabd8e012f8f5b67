package scheduler

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var ErrStopped = errors.New("scheduler: debouncer stopped")

// DefaultDelay is the quiet period before pending edits are flushed.
const DefaultDelay = 5 * time.Second

type Fired struct {
	Gen uint64
	At  time.Time
}

// Debouncer is a single-slot timer. Arming while a countdown is pending
// replaces it; an expired countdown emits one Fired on C and disarms.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	gen      uint64
	deadline time.Time
	out      chan Fired
	wakeup   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	dropped  uint64
}

func NewDebouncer(delay time.Duration, bufferSize int) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Debouncer{
		delay:  delay,
		out:    make(chan Fired, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (d *Debouncer) C() <-chan Fired {
	return d.out
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

func (d *Debouncer) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true
	go d.loop()
}

func (d *Debouncer) Stop() {
	d.mu.Lock()
	if !d.started || d.stopped {
		d.stopped = true
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.stopCh)
	d.mu.Unlock()
	<-d.doneCh
}

// Arm cancels any pending countdown and starts a new one. The returned
// generation identifies the Fired this countdown will produce.
func (d *Debouncer) Arm() (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return 0, ErrStopped
	}
	d.gen++
	d.deadline = time.Now().Add(d.delay)
	d.signalWakeup()
	return d.gen, nil
}

// Cancel disarms the slot and invalidates any Fired already emitted. It
// reports whether a countdown was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	pending := !d.deadline.IsZero()
	d.deadline = time.Time{}
	d.gen++
	d.signalWakeup()
	return pending
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.deadline.IsZero()
}

// IsCurrent reports whether gen has been neither re-armed nor cancelled.
func (d *Debouncer) IsCurrent(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen != 0 && gen == d.gen
}

func (d *Debouncer) Dropped() uint64 {
	return atomic.LoadUint64(&d.dropped)
}

func (d *Debouncer) loop() {
	defer close(d.doneCh)

	var timer *time.Timer
	for {
		deadline, gen, armed := d.peek()
		if !armed {
			select {
			case <-d.wakeup:
				continue
			case <-d.stopCh:
				stopTimer(timer)
				return
			}
		}

		wait := time.Until(deadline)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			ev, ok := d.expire(gen, time.Now())
			if !ok {
				continue
			}
			select {
			case d.out <- ev:
			default:
				atomic.AddUint64(&d.dropped, 1)
			}
		case <-d.wakeup:
			continue
		case <-d.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (d *Debouncer) signalWakeup() {
	select {
	case d.wakeup <- struct{}{}:
	default:
	}
}

func (d *Debouncer) peek() (time.Time, uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deadline.IsZero() {
		return time.Time{}, 0, false
	}
	return d.deadline, d.gen, true
}

func (d *Debouncer) expire(gen uint64, now time.Time) (Fired, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen || d.deadline.IsZero() || now.Before(d.deadline) {
		return Fired{}, false
	}
	d.deadline = time.Time{}
	return Fired{Gen: gen, At: now.UTC()}, true
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
