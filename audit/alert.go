package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/util"
)

// AlertSink receives entries whose risk crossed the alert ceiling. It is
// a notification channel; callers never retry a failed alert.
type AlertSink interface {
	Alert(ctx context.Context, entry AuditEntry) error
}

// BusAlertSink publishes alerts on the in-process event bus.
type BusAlertSink struct {
	bus *util.EventBus
}

func NewBusAlertSink(bus *util.EventBus) *BusAlertSink {
	return &BusAlertSink{bus: bus}
}

func (s *BusAlertSink) Alert(ctx context.Context, entry AuditEntry) error {
	if s.bus == nil {
		return fmt.Errorf("event bus: %w", echo_errors.ErrAuditSinkUnavailable)
	}
	s.bus.Publish(ctx, util.EventAuditAlert, cloneEntry(entry))
	return nil
}

// RedisAlertSink publishes alerts as JSON on a Redis pub/sub channel.
type RedisAlertSink struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisAlertSink(client redis.UniversalClient, channel string) *RedisAlertSink {
	return &RedisAlertSink{client: client, channel: channel}
}

func (s *RedisAlertSink) Alert(ctx context.Context, entry AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish alert %s: %w: %v", entry.CorrelationID, echo_errors.ErrAuditSinkUnavailable, err)
	}
	return nil
}

// MultiAlertSink delivers to every sink and joins their errors.
type MultiAlertSink []AlertSink

func (m MultiAlertSink) Alert(ctx context.Context, entry AuditEntry) error {
	var errs []error
	for _, s := range m {
		if err := s.Alert(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DefaultAlertQueue is the number of alerts buffered for delivery.
const DefaultAlertQueue = 256

// alertDispatcher delivers alerts from a bounded queue on its own
// goroutine. A full queue drops the alert.
type alertDispatcher struct {
	sink    AlertSink
	timeout time.Duration
	queue   chan AuditEntry

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func newAlertDispatcher(sink AlertSink, size int, timeout time.Duration) *alertDispatcher {
	if size <= 0 {
		size = DefaultAlertQueue
	}
	d := &alertDispatcher{
		sink:    sink,
		timeout: timeout,
		queue:   make(chan AuditEntry, size),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// enqueue never blocks. It reports false when the alert was dropped.
func (d *alertDispatcher) enqueue(entry AuditEntry) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- entry:
		return true
	default:
		return false
	}
}

func (d *alertDispatcher) run() {
	defer close(d.done)
	for entry := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.sink.Alert(ctx, entry); err != nil {
			logger.Error("Failed to deliver risk alert",
				zap.String("correlationID", entry.CorrelationID),
				zap.Float64("riskScore", entry.RiskScore),
				zap.Error(err))
		}
		cancel()
	}
}

// close stops accepting alerts and waits until the queued ones are
// delivered or ctx ends.
func (d *alertDispatcher) close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("draining alerts: %w", ctx.Err())
	}
}
