// test/mock/audit.go
package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/audit"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
)

// MockAuditService is a mock implementation of audit.Service
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Record(ctx context.Context, actor *model.Actor, action model.Action, decision *pdp_model.PermissionDecision, opts audit.RecordOptions) (audit.AuditEntry, error) {
	args := m.Called(ctx, actor, action, decision, opts)
	return args.Get(0).(audit.AuditEntry), args.Error(1)
}

func (m *MockAuditService) RecordSessionEvent(ctx context.Context, event audit.SessionEvent) (audit.AuditEntry, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(audit.AuditEntry), args.Error(1)
}

func (m *MockAuditService) Recent(limit int) []audit.AuditEntry {
	args := m.Called(limit)
	return args.Get(0).([]audit.AuditEntry)
}

func (m *MockAuditService) Find(filter audit.Filter, limit int) []audit.AuditEntry {
	args := m.Called(filter, limit)
	return args.Get(0).([]audit.AuditEntry)
}

func (m *MockAuditService) QueryLogs(ctx context.Context, from, to time.Time, actorID, resourceID string) ([]audit.AuditEntry, error) {
	args := m.Called(ctx, from, to, actorID, resourceID)
	return args.Get(0).([]audit.AuditEntry), args.Error(1)
}

// MockRepository is a mock implementation of audit.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) StoreBatch(ctx context.Context, entries []audit.AuditEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

// MockAlertSink is a mock implementation of audit.AlertSink
type MockAlertSink struct {
	mock.Mock
}

func (m *MockAlertSink) Alert(ctx context.Context, entry audit.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
