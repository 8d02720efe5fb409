package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
)

const (
	DefaultFlushInterval = 5 * time.Second
	DefaultBatchSize     = 200
)

// Persister ships appended entries to long-term repositories in batches.
// Each repository has its own queue; a failed batch stays queued and is
// retried on the next flush.
type Persister struct {
	queues     []*sinkQueue
	interval   time.Duration
	batchSize  int
	maxPending int
	notify     chan struct{}
}

type sinkQueue struct {
	name    string
	repo    Repository
	flushMu sync.Mutex // one batch in flight per repository
	mu      sync.Mutex
	pending []AuditEntry
}

type NamedRepository struct {
	Name string
	Repo Repository
}

func NewPersister(interval time.Duration, batchSize int, repos ...NamedRepository) *Persister {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	p := &Persister{
		interval:   interval,
		batchSize:  batchSize,
		maxPending: batchSize * 500,
		notify:     make(chan struct{}, 1),
	}
	for _, r := range repos {
		p.queues = append(p.queues, &sinkQueue{name: r.Name, repo: r.Repo})
	}
	return p
}

// Enqueue queues entry for every repository. When a queue is over its
// bound the oldest entries are dropped and their ids logged as an incident.
func (p *Persister) Enqueue(entry AuditEntry) {
	full := false
	for _, q := range p.queues {
		q.mu.Lock()
		q.pending = append(q.pending, entry)
		if over := len(q.pending) - p.maxPending; over > 0 {
			logger.Error("Audit queue overflow, dropping entries",
				zap.String("sink", q.name),
				zap.Strings("correlationIDs", correlationIDs(q.pending[:over])))
			q.pending = append([]AuditEntry(nil), q.pending[over:]...)
		}
		if len(q.pending) >= p.batchSize {
			full = true
		}
		q.mu.Unlock()
	}
	if full {
		select {
		case p.notify <- struct{}{}:
		default:
		}
	}
}

// Pending returns the number of queued entries per repository name.
func (p *Persister) Pending() map[string]int {
	out := make(map[string]int, len(p.queues))
	for _, q := range p.queues {
		q.mu.Lock()
		out[q.name] = len(q.pending)
		q.mu.Unlock()
	}
	return out
}

// Run flushes on every tick or full batch until ctx is done, then makes a
// final attempt with a fresh deadline.
func (p *Persister) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.interval)
			err := p.Flush(drainCtx)
			cancel()
			if err != nil {
				logger.Error("Final audit flush failed", zap.Error(err))
			}
			return nil
		case <-ticker.C:
		case <-p.notify:
		}
		if err := p.Flush(ctx); err != nil {
			logger.Warn("Audit flush incomplete, will retry", zap.Error(err))
		}
	}
}

// Flush sends one batch per repository, in parallel.
func (p *Persister) Flush(ctx context.Context) error {
	// a failing sink must not cancel the others
	var g errgroup.Group
	for _, q := range p.queues {
		q := q
		g.Go(func() error {
			return p.flushQueue(ctx, q)
		})
	}
	return g.Wait()
}

func (p *Persister) flushQueue(ctx context.Context, q *sinkQueue) error {
	q.flushMu.Lock()
	defer q.flushMu.Unlock()

	q.mu.Lock()
	n := len(q.pending)
	if n > p.batchSize {
		n = p.batchSize
	}
	batch := append([]AuditEntry(nil), q.pending[:n]...)
	q.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	if err := q.repo.StoreBatch(ctx, batch); err != nil {
		logger.Error("Failed to persist audit batch",
			zap.String("sink", q.name),
			zap.Strings("correlationIDs", correlationIDs(batch)),
			zap.Error(err))
		return fmt.Errorf("sink %s: %w", q.name, err)
	}

	q.mu.Lock()
	q.pending = dropPersisted(q.pending, batch)
	q.mu.Unlock()
	return nil
}

// dropPersisted removes batch from the head of pending. Overflow trimming
// may have already dropped part of it.
func dropPersisted(pending, batch []AuditEntry) []AuditEntry {
	done := make(map[string]struct{}, len(batch))
	for _, e := range batch {
		done[e.CorrelationID] = struct{}{}
	}
	i := 0
	for i < len(pending) {
		if _, ok := done[pending[i].CorrelationID]; !ok {
			break
		}
		i++
	}
	return append([]AuditEntry(nil), pending[i:]...)
}
