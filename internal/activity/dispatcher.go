// Package activity delivers wallet activities to their consumers off the request path.
package activity

import (
	"context"
	"sync"
	"time"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/logger"
)

// Sink consumes activities. Errors are logged by the dispatcher and go no further.
type Sink interface {
	Deliver(ctx context.Context, a domain.Activity) error
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(ctx context.Context, a domain.Activity) error

func (f SinkFunc) Deliver(ctx context.Context, a domain.Activity) error {
	return f(ctx, a)
}

// Dispatcher fans activities out to every sink from a single worker goroutine.
type Dispatcher struct {
	eventCh         chan domain.Activity
	sinks           []namedSink
	deliveryTimeout time.Duration

	mu     sync.RWMutex
	closed bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

type namedSink struct {
	name string
	sink Sink
}

func NewDispatcher(bufferSize int, deliveryTimeout time.Duration) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if deliveryTimeout <= 0 {
		deliveryTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		eventCh:         make(chan domain.Activity, bufferSize),
		deliveryTimeout: deliveryTimeout,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Register adds a sink. Call before Start.
func (d *Dispatcher) Register(name string, sink Sink) {
	d.sinks = append(d.sinks, namedSink{name: name, sink: sink})
}

func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-d.ctx.Done():
				logger.Info("Draining activities before shutdown", "remaining", len(d.eventCh))
				for len(d.eventCh) > 0 {
					d.deliver(<-d.eventCh)
				}
				return
			case a := <-d.eventCh:
				d.deliver(a)
			}
		}
	}()
}

// Publish never blocks. When the buffer is full, or after Shutdown, the activity is dropped.
func (d *Dispatcher) Publish(a domain.Activity) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		logger.Warn("Dispatcher closed, dropping activity", "walletID", a.WalletID, "type", a.Type)
		return
	}

	select {
	case d.eventCh <- a:
	default:
		logger.Warn("Activity channel full, dropping activity", "walletID", a.WalletID, "type", a.Type)
	}
}

// Shutdown stops accepting activities and waits for the buffered ones to be delivered.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

// deliver detaches from d.ctx: cancellation only means "stop reading", in-flight
// deliveries still get their full timeout.
func (d *Dispatcher) deliver(a domain.Activity) {
	for _, s := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.deliveryTimeout)
		if err := s.sink.Deliver(ctx, a); err != nil {
			logger.Error("Failed to deliver activity", "sink", s.name, "walletID", a.WalletID, "type", a.Type, "error", err)
		}
		cancel()
	}
}
