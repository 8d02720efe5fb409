// service/access_service.go
package service

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/engine"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/matrix"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/util"
)

// IAccessService exposes the permission matrix and engine housekeeping.
type IAccessService interface {
	ListPanels(ctx context.Context) []model.Panel
	GetPanel(ctx context.Context, panelID string) (*model.Panel, bool)
	MatrixVersion(ctx context.Context) string
	ReloadMatrix(ctx context.Context) (MatrixReload, error)
	CacheStats(ctx context.Context) pdp_model.CacheStats
	FilterRecord(decision *pdp_model.PermissionDecision, record map[string]any) map[string]any
}

type MatrixReload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type AccessService struct {
	engine          *engine.Engine
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IAccessService = (*AccessService)(nil)

func NewAccessService(e *engine.Engine, notificationSvc *util.NotificationService, eventBus *util.EventBus) *AccessService {
	service := &AccessService{
		engine:          e,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe(util.EventMatrixReloaded, service.handleMatrixReloaded)

	return service
}

func (s *AccessService) handleMatrixReloaded(ctx context.Context, event util.Event) error {
	reload, ok := event.Payload.(MatrixReload)
	if !ok {
		logger.Error("Invalid event payload type", zap.Any("payload", event.Payload))
		return nil
	}
	return s.notificationSvc.NotifyMatrixReloaded(ctx, reload.From, reload.To)
}

func (s *AccessService) ListPanels(ctx context.Context) []model.Panel {
	return s.engine.Registry().Panels()
}

func (s *AccessService) GetPanel(ctx context.Context, panelID string) (*model.Panel, bool) {
	panel, ok := s.engine.Registry().Panel(panelID)
	if !ok {
		return nil, false
	}
	return &panel, true
}

func (s *AccessService) MatrixVersion(ctx context.Context) string {
	return s.engine.Registry().Version()
}

// ReloadMatrix re-reads the matrix source. A broken document leaves the
// current matrix active.
func (s *AccessService) ReloadMatrix(ctx context.Context) (MatrixReload, error) {
	old, current, err := s.engine.Reload()
	if err != nil {
		return MatrixReload{From: old.Version(), To: old.Version()}, err
	}
	reload := MatrixReload{From: old.Version(), To: current.Version()}
	s.eventBus.Publish(ctx, util.EventMatrixReloaded, reload)
	return reload, nil
}

func (s *AccessService) CacheStats(ctx context.Context) pdp_model.CacheStats {
	return s.engine.CacheStats()
}

// FilterRecord applies the decision's field mask to record. Denied
// decisions reveal nothing.
func (s *AccessService) FilterRecord(decision *pdp_model.PermissionDecision, record map[string]any) map[string]any {
	if decision == nil || !decision.Allowed || record == nil {
		return nil
	}
	return matrix.ApplyFieldMask(record, decision.FieldMask)
}
