package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/namgaylhamo24/quick-post-02240350/internal/logger"
	"github.com/namgaylhamo24/quick-post-02240350/internal/metrics"
)

// ErrQueueFull is returned when the async queue cannot take another link.
var ErrQueueFull = errors.New("notify: queue full")

// ErrClosed is returned by SendMagicLink after Close.
var ErrClosed = errors.New("notify: closed")

// Async hands links to a background worker so callers never wait on delivery.
// Accepted links count as "queued"; the worker records the final "sent" or
// "failed" outcome and logs failures.
type Async struct {
	next    Notifier
	timeout time.Duration
	queue   chan MagicLink

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAsync starts a worker delivering through next. size bounds the queue and
// timeout bounds each delivery.
func NewAsync(next Notifier, size int, timeout time.Duration) *Async {
	if size <= 0 {
		size = 64
	}
	a := &Async{
		next:    next,
		timeout: timeout,
		queue:   make(chan MagicLink, size),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// SendMagicLink enqueues link without blocking
func (a *Async) SendMagicLink(_ context.Context, link MagicLink) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	select {
	case a.queue <- link:
		metrics.RecordMagicLink("queued")
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *Async) run() {
	defer close(a.done)
	for link := range a.queue {
		a.deliver(link)
	}
}

func (a *Async) deliver(link MagicLink) {
	ctx := context.Background()
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	if err := a.next.SendMagicLink(ctx, link); err != nil {
		metrics.RecordMagicLink("failed")
		logger.Error("Magic link delivery failed",
			logger.F("email", link.Email),
			logger.F("error", err))
		return
	}
	metrics.RecordMagicLink("sent")
}

// Close stops accepting links and waits until the queue is drained or ctx ends.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
