package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shared-wallet-backend/internal/domain"
)

type recordingSink struct {
	mu   sync.Mutex
	seen []domain.Activity
}

func (s *recordingSink) Deliver(ctx context.Context, a domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, a)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func TestDispatcher_FansOutToAllSinks(t *testing.T) {
	d := NewDispatcher(8, time.Second)
	first := &recordingSink{}
	second := &recordingSink{}
	failing := SinkFunc(func(ctx context.Context, a domain.Activity) error {
		return errors.New("smtp down")
	})
	d.Register("first", first)
	d.Register("failing", failing)
	d.Register("second", second)
	d.Start()

	d.Publish(domain.Activity{ID: "1", WalletID: "w1", Type: domain.ActivityTypeWalletCreated})
	d.Publish(domain.Activity{ID: "2", WalletID: "w1", Type: domain.ActivityTypeMemberAdded})

	assert.Eventually(t, func() bool {
		return first.count() == 2 && second.count() == 2
	}, time.Second, 5*time.Millisecond)

	d.Shutdown()
	assert.Equal(t, "1", first.seen[0].ID)
	assert.Equal(t, "2", first.seen[1].ID)
}

func TestDispatcher_ShutdownDrainsBuffer(t *testing.T) {
	d := NewDispatcher(16, time.Second)
	sink := &recordingSink{}
	d.Register("sink", sink)

	// Not started yet: everything sits in the buffer until the worker runs.
	for i := 0; i < 5; i++ {
		d.Publish(domain.Activity{WalletID: "w1"})
	}
	d.Start()
	d.Shutdown()

	assert.Equal(t, 5, sink.count())
}

func TestDispatcher_PublishNeverBlocks(t *testing.T) {
	d := NewDispatcher(1, time.Second)
	sink := &recordingSink{}
	d.Register("sink", sink)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Publish(domain.Activity{WalletID: "w1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}

	d.Start()
	d.Shutdown()
	assert.Equal(t, 1, sink.count())

	// after shutdown publishing is a silent no-op
	d.Publish(domain.Activity{WalletID: "w1"})
	d.Shutdown()
}
