package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/audit"
	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
	mocks "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/test/mock"
)

var fixedNow = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

func actor(id string) *model.Actor {
	return &model.Actor{
		ID:        id,
		Role:      model.RoleFinanceManager,
		SessionID: "s-" + id,
		Trust: model.TrustSignals{
			DeviceTrusted: true,
			NetworkOrigin: "10.0.0.7",
			Device:        model.DeviceDescriptor{ID: "laptop-1"},
			Location:      &model.Location{Network: model.NetworkOffice, Country: "ES"},
		},
	}
}

func decision(allowed bool, score float64) *pdp_model.PermissionDecision {
	return &pdp_model.PermissionDecision{
		Allowed:             allowed,
		Reason:              "test",
		RiskScore:           &pdp_model.RiskScore{TotalScore: score, Level: model.RiskLow, WeightsVersion: "v1"},
		PermissionsChecked:  []string{"bancos.view"},
		ConditionsEvaluated: []model.ConditionType{model.ConditionMFA},
		MatrixVersion:       "2024.10-1",
	}
}

func viewBancos() model.Action {
	return model.Action{Type: model.ActionView, ResourceID: "bancos", Metadata: map[string]any{"ticket": 42}}
}

func TestRecord_CapturesDecision(t *testing.T) {
	r := audit.NewRecorder(audit.WithClock(func() time.Time { return fixedNow }))

	entry, err := r.Record(context.Background(), actor("u-1"), viewBancos(), decision(true, 0.2), audit.RecordOptions{CacheHit: true})
	require.NoError(t, err)

	assert.NotEmpty(t, entry.CorrelationID)
	assert.Equal(t, audit.EntryDecision, entry.Type)
	assert.Equal(t, fixedNow, entry.Timestamp)
	assert.Equal(t, "u-1", entry.ActorID)
	assert.Equal(t, "s-u-1", entry.SessionID)
	assert.Equal(t, "bancos", entry.ResourceID)
	assert.True(t, entry.Allowed)
	assert.True(t, entry.CacheHit)
	assert.Equal(t, 0.2, entry.RiskScore)
	assert.Equal(t, "v1", entry.WeightsVersion)
	assert.Equal(t, "2024.10-1", entry.MatrixVersion)
	assert.Equal(t, []string{"bancos.view"}, entry.PermissionsChecked)
	assert.Equal(t, "42", entry.Metadata["ticket"])
	assert.Equal(t, "10.0.0.7", entry.NetworkOrigin)
}

func TestRecord_NilDecision(t *testing.T) {
	r := audit.NewRecorder()
	_, err := r.Record(context.Background(), actor("u-1"), viewBancos(), nil, audit.RecordOptions{})
	assert.ErrorIs(t, err, echo_errors.ErrMalformedRequest)
	assert.Equal(t, 0, r.Len())
}

func TestRecord_HighRiskAlertsExactlyOnce(t *testing.T) {
	sink := new(mocks.MockAlertSink)
	sink.On("Alert", mock.Anything, mock.MatchedBy(func(e audit.AuditEntry) bool {
		return e.RiskScore == 0.85 && e.ActorID == "u-1"
	})).Return(nil).Once()

	r := audit.NewRecorder(audit.WithAlertSink(sink))
	_, err := r.Record(context.Background(), actor("u-1"), viewBancos(), decision(false, 0.85), audit.RecordOptions{})
	require.NoError(t, err)
	_, err = r.Record(context.Background(), actor("u-2"), viewBancos(), decision(true, 0.8), audit.RecordOptions{})
	require.NoError(t, err)
	require.NoError(t, r.Close(context.Background()))

	sink.AssertExpectations(t)
	sink.AssertNumberOfCalls(t, "Alert", 1)
	assert.Equal(t, 2, r.Len())
}

func TestRecord_AlertFailureDoesNotLoseEntry(t *testing.T) {
	sink := new(mocks.MockAlertSink)
	sink.On("Alert", mock.Anything, mock.Anything).Return(errors.New("pager down"))

	r := audit.NewRecorder(audit.WithAlertSink(sink), audit.WithAlertCeiling(0.5))
	entry, err := r.Record(context.Background(), actor("u-1"), viewBancos(), decision(false, 0.9), audit.RecordOptions{})
	require.NoError(t, err)
	require.NoError(t, r.Close(context.Background()))

	found := r.Find(audit.Filter{ActorID: "u-1"}, 0)
	require.Len(t, found, 1)
	assert.Equal(t, entry.CorrelationID, found[0].CorrelationID)
	sink.AssertNumberOfCalls(t, "Alert", 1)
}

// stuckSink blocks every delivery until released.
type stuckSink struct {
	release   chan struct{}
	delivered chan string
}

func (s *stuckSink) Alert(ctx context.Context, entry audit.AuditEntry) error {
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.delivered <- entry.CorrelationID
	return nil
}

func TestRecord_SlowAlertSinkDoesNotBlock(t *testing.T) {
	sink := &stuckSink{release: make(chan struct{}), delivered: make(chan string, 3)}
	r := audit.NewRecorder(audit.WithAlertSink(sink), audit.WithAlertQueue(1))

	start := time.Now()
	var ids []string
	for i := 0; i < 3; i++ {
		entry, err := r.Record(context.Background(), actor("u-1"), viewBancos(), decision(false, 0.85), audit.RecordOptions{})
		require.NoError(t, err)
		ids = append(ids, entry.CorrelationID)
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, 3, r.Len())

	close(sink.release)
	require.NoError(t, r.Close(context.Background()))

	// one alert is held by the sink and one waits in the queue, anything
	// beyond that is dropped
	assert.Equal(t, ids[0], <-sink.delivered)
	assert.LessOrEqual(t, len(sink.delivered), 1)
}

func TestRecorder_RingKeepsNewest(t *testing.T) {
	r := audit.NewRecorder(audit.WithCapacity(3))
	ids := map[string]struct{}{}
	for i := 0; i < 5; i++ {
		e, err := r.Record(context.Background(), actor("u-1"), viewBancos(), decision(i%2 == 0, float64(i)/10), audit.RecordOptions{})
		require.NoError(t, err)
		ids[e.CorrelationID] = struct{}{}
	}
	assert.Len(t, ids, 5)
	assert.Equal(t, 3, r.Len())

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, 0.2, snapshot[0].RiskScore)
	assert.Equal(t, 0.4, snapshot[2].RiskScore)

	recent := r.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, 0.3, recent[0].RiskScore)
	assert.Equal(t, 0.4, recent[1].RiskScore)
}

func TestRecorder_Find(t *testing.T) {
	r := audit.NewRecorder()
	ctx := context.Background()
	for _, id := range []string{"u-1", "u-2", "u-1", "u-1"} {
		_, err := r.Record(ctx, actor(id), viewBancos(), decision(id == "u-2", 0.3), audit.RecordOptions{})
		require.NoError(t, err)
	}
	_, err := r.RecordSessionEvent(ctx, audit.SessionEvent{Type: audit.EntrySessionEnd, SessionID: "s-u-1", Actor: actor("u-1"), Reason: model.EndReasonLogout})
	require.NoError(t, err)

	assert.Len(t, r.Find(audit.Filter{ActorID: "u-1"}, 0), 4)
	assert.Len(t, r.Find(audit.Filter{ActorID: "u-1", Type: audit.EntryDecision}, 2), 2)
	assert.Len(t, r.Find(audit.Filter{DeniedOnly: true}, 0), 4)
	assert.Empty(t, r.Find(audit.Filter{MinRisk: 0.5}, 0))

	sessions := r.Find(audit.Filter{SessionID: "s-u-1", Type: audit.EntrySessionEnd}, 0)
	require.Len(t, sessions, 1)
	assert.Equal(t, model.EndReasonLogout, sessions[0].Reason)
}

func TestRecordSessionEvent_RejectsUnknownType(t *testing.T) {
	r := audit.NewRecorder()
	_, err := r.RecordSessionEvent(context.Background(), audit.SessionEvent{Type: "coffee_break"})
	assert.ErrorIs(t, err, echo_errors.ErrMalformedRequest)
}

func TestRecorder_PersistsEveryEntry(t *testing.T) {
	repo := new(mocks.MockRepository)
	repo.On("StoreBatch", mock.Anything, mock.MatchedBy(func(b []audit.AuditEntry) bool { return len(b) == 2 })).Return(nil).Once()

	p := audit.NewPersister(time.Hour, 10, audit.NamedRepository{Name: "mock", Repo: repo})
	r := audit.NewRecorder(audit.WithPersister(p))
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := r.Record(ctx, actor("u-1"), viewBancos(), decision(true, 0.1), audit.RecordOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, map[string]int{"mock": 2}, p.Pending())

	require.NoError(t, p.Flush(ctx))
	assert.Equal(t, map[string]int{"mock": 0}, p.Pending())
	repo.AssertExpectations(t)
}

func TestRecorder_QueryLogsFallsBackToMemory(t *testing.T) {
	r := audit.NewRecorder(audit.WithClock(func() time.Time { return fixedNow }))
	_, err := r.Record(context.Background(), actor("u-1"), viewBancos(), decision(true, 0.1), audit.RecordOptions{})
	require.NoError(t, err)

	entries, err := r.QueryLogs(context.Background(), fixedNow.Add(-time.Hour), fixedNow.Add(time.Hour), "u-1", "bancos")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = r.QueryLogs(context.Background(), fixedNow.Add(time.Minute), fixedNow.Add(time.Hour), "", "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
