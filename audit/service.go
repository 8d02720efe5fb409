// audit/service.go
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
)

type Service interface {
	Record(ctx context.Context, actor *model.Actor, action model.Action, decision *pdp_model.PermissionDecision, opts RecordOptions) (AuditEntry, error)
	RecordSessionEvent(ctx context.Context, event SessionEvent) (AuditEntry, error)
	Recent(limit int) []AuditEntry
	Find(filter Filter, limit int) []AuditEntry
	QueryLogs(ctx context.Context, from, to time.Time, actorID, resourceID string) ([]AuditEntry, error)
}

const (
	DefaultCapacity     = 10000
	DefaultAlertCeiling = 0.8
	alertTimeout        = 2 * time.Second
)

// Recorder keeps the audit trail in a bounded in-memory ring and hands
// every entry to an optional Persister for long-term storage.
type Recorder struct {
	mu       sync.RWMutex
	ring     []AuditEntry
	start    int
	size     int
	capacity int

	alertCeiling float64
	alerts       AlertSink
	alertQueue   int
	dispatcher   *alertDispatcher
	persister    *Persister
	searcher     Searcher
	now          func() time.Time
}

var _ Service = (*Recorder)(nil)

type Option func(*Recorder)

func WithCapacity(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.capacity = n
		}
	}
}

func WithAlertCeiling(ceiling float64) Option {
	return func(r *Recorder) { r.alertCeiling = ceiling }
}

func WithAlertSink(s AlertSink) Option {
	return func(r *Recorder) { r.alerts = s }
}

// WithAlertQueue bounds the number of alerts waiting for delivery.
func WithAlertQueue(n int) Option {
	return func(r *Recorder) { r.alertQueue = n }
}

func WithPersister(p *Persister) Option {
	return func(r *Recorder) { r.persister = p }
}

// WithSearcher sets the long-term store QueryLogs reads from.
func WithSearcher(s Searcher) Option {
	return func(r *Recorder) { r.searcher = s }
}

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		capacity:     DefaultCapacity,
		alertCeiling: DefaultAlertCeiling,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ring = make([]AuditEntry, r.capacity)
	if r.alerts != nil {
		r.dispatcher = newAlertDispatcher(r.alerts, r.alertQueue, alertTimeout)
	}
	return r
}

// Close stops alert delivery after the queued alerts were sent. Entries
// recorded afterwards are still appended, their alerts are dropped.
func (r *Recorder) Close(ctx context.Context) error {
	if r.dispatcher == nil {
		return nil
	}
	return r.dispatcher.close(ctx)
}

// Record appends one decision entry. When the decision's risk exceeds the
// alert ceiling exactly one alert is queued for delivery; delivery happens
// in the background and failures are only logged.
func (r *Recorder) Record(ctx context.Context, actor *model.Actor, action model.Action, decision *pdp_model.PermissionDecision, opts RecordOptions) (AuditEntry, error) {
	if decision == nil {
		return AuditEntry{}, fmt.Errorf("nil decision: %w", echo_errors.ErrMalformedRequest)
	}

	entry := AuditEntry{
		Type:                EntryDecision,
		Action:              action.Type,
		ResourceID:          action.ResourceID,
		Allowed:             decision.Allowed,
		Reason:              decision.Reason,
		Kinds:               decision.Kinds,
		RiskScore:           decision.TotalRisk(),
		RiskFactors:         decision.RiskFactors,
		PermissionsChecked:  decision.PermissionsChecked,
		ConditionsEvaluated: decision.ConditionsEvaluated,
		ConditionsViolated:  decision.ConditionsViolated,
		ConditionResults:    decision.ConditionResults,
		CacheHit:            opts.CacheHit,
		SessionID:           opts.SessionID,
		MatrixVersion:       decision.MatrixVersion,
		Metadata:            stringMetadata(action.Metadata),
	}
	if decision.RiskScore != nil {
		entry.RiskLevel = decision.RiskScore.Level
		entry.WeightsVersion = decision.RiskScore.WeightsVersion
	}
	describeActor(&entry, actor)
	if entry.SessionID == "" && actor != nil {
		entry.SessionID = actor.SessionID
	}

	stored := r.append(entry)

	if stored.RiskScore > r.alertCeiling {
		r.alert(stored)
	}
	return stored, nil
}

// RecordSessionEvent appends a session_start, session_end or
// reverification entry.
func (r *Recorder) RecordSessionEvent(ctx context.Context, event SessionEvent) (AuditEntry, error) {
	switch event.Type {
	case EntrySessionStart, EntrySessionEnd, EntryReverification:
	default:
		return AuditEntry{}, fmt.Errorf("unknown session event %q: %w", event.Type, echo_errors.ErrMalformedRequest)
	}

	entry := AuditEntry{
		Type:      event.Type,
		SessionID: event.SessionID,
		Allowed:   event.Allowed,
		Reason:    event.Reason,
		RiskScore: event.RiskScore,
		Metadata:  event.Metadata,
	}
	describeActor(&entry, event.Actor)
	return r.append(entry), nil
}

func (r *Recorder) append(entry AuditEntry) AuditEntry {
	entry = cloneEntry(entry)
	entry.CorrelationID = uuid.New().String()
	entry.Timestamp = r.now().UTC()

	r.mu.Lock()
	idx := (r.start + r.size) % r.capacity
	if r.size == r.capacity {
		// full: overwrite the oldest entry
		r.start = (r.start + 1) % r.capacity
	} else {
		r.size++
	}
	r.ring[idx] = entry
	r.mu.Unlock()

	if r.persister != nil {
		r.persister.Enqueue(entry)
	}
	return cloneEntry(entry)
}

func (r *Recorder) alert(entry AuditEntry) {
	if r.dispatcher == nil {
		logger.Warn("Risk above alert ceiling but no alert sink configured",
			zap.String("correlationID", entry.CorrelationID),
			zap.Float64("riskScore", entry.RiskScore))
		return
	}
	if !r.dispatcher.enqueue(entry) {
		logger.Error("Dropped risk alert",
			zap.String("correlationID", entry.CorrelationID),
			zap.Float64("riskScore", entry.RiskScore))
	}
}

// Snapshot returns every retained entry, oldest first.
func (r *Recorder) Snapshot() []AuditEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]AuditEntry, 0, r.size)
	for i := 0; i < r.size; i++ {
		out = append(out, cloneEntry(r.ring[(r.start+i)%r.capacity]))
	}
	return out
}

// Recent returns up to limit of the newest entries, oldest first.
func (r *Recorder) Recent(limit int) []AuditEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > r.size {
		limit = r.size
	}
	out := make([]AuditEntry, 0, limit)
	for i := r.size - limit; i < r.size; i++ {
		out = append(out, cloneEntry(r.ring[(r.start+i)%r.capacity]))
	}
	return out
}

// Find returns up to limit of the newest matching entries, oldest first.
func (r *Recorder) Find(filter Filter, limit int) []AuditEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []AuditEntry
	for i := r.size - 1; i >= 0; i-- {
		e := r.ring[(r.start+i)%r.capacity]
		if !filter.Match(e) {
			continue
		}
		matches = append(matches, cloneEntry(e))
		if limit > 0 && len(matches) == limit {
			break
		}
	}
	for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
		matches[i], matches[j] = matches[j], matches[i]
	}
	return matches
}

func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// QueryLogs searches the long-term store, or the in-memory trail when no
// store is configured.
func (r *Recorder) QueryLogs(ctx context.Context, from, to time.Time, actorID, resourceID string) ([]AuditEntry, error) {
	if r.searcher != nil {
		entries, err := r.searcher.QueryLogs(ctx, from, to, actorID, resourceID)
		if err != nil {
			return nil, fmt.Errorf("query audit store: %w", err)
		}
		return entries, nil
	}
	return r.Find(Filter{ActorID: actorID, ResourceID: resourceID, From: from, To: to}, 0), nil
}

func describeActor(entry *AuditEntry, actor *model.Actor) {
	if actor == nil {
		return
	}
	entry.ActorID = actor.ID
	entry.Role = actor.Role
	entry.NetworkOrigin = actor.Trust.NetworkOrigin
	entry.Device = actor.Trust.Device
	entry.Location = actor.Trust.Location
}

func stringMetadata(meta map[string]any) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = fmt.Sprint(v)
	}
	return out
}
