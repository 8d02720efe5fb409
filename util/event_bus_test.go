package util

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBus_DeliversToSubscribers(t *testing.T) {
	bus := NewEventBus()
	var calls atomic.Int32

	bus.Subscribe(EventSessionStarted, func(_ context.Context, e Event) error {
		assert.Equal(t, "s-1", e.Payload)
		calls.Add(1)
		return nil
	})
	bus.Subscribe(EventSessionStarted, func(context.Context, Event) error {
		calls.Add(1)
		return errors.New("handler failed")
	})
	bus.Subscribe(EventSessionEnded, func(context.Context, Event) error {
		t.Error("wrong event type delivered")
		return nil
	})

	bus.Publish(context.Background(), EventSessionStarted, "s-1")
	bus.Wait()

	assert.Equal(t, int32(2), calls.Load())
	assert.Len(t, bus.errorChan, 1)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	var calls atomic.Int32
	id := bus.Subscribe(EventMatrixReloaded, func(context.Context, Event) error {
		calls.Add(1)
		return nil
	})

	bus.Unsubscribe(EventMatrixReloaded, id)
	bus.Publish(context.Background(), EventMatrixReloaded, nil)
	bus.Wait()
	assert.Equal(t, int32(0), calls.Load())
}

func TestEventBus_HandlersOutliveCancelledContext(t *testing.T) {
	bus := NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawCancel atomic.Bool
	bus.Subscribe(EventAuditAlert, func(ctx context.Context, _ Event) error {
		sawCancel.Store(ctx.Err() != nil)
		return nil
	})
	bus.Publish(ctx, EventAuditAlert, nil)
	bus.Wait()
	assert.False(t, sawCancel.Load())
}
