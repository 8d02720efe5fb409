// service/services.go
package service

import (
	"context"
	"fmt"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/audit"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/engine"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/util"
)

type Services struct {
	Session ISessionService
	Access  IAccessService
	Audit   audit.Service

	sessions *SessionService
}

func InitializeServices(
	decisionEngine *engine.Engine,
	auditService audit.Service,
	verifier VerificationProvider,
	validationUtil *util.ValidationUtil,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
	sessionCfg SessionConfig,
) (*Services, error) {
	if decisionEngine == nil || auditService == nil {
		return nil, fmt.Errorf("engine and audit service are required")
	}

	eventBus.Subscribe(util.EventAuditAlert, func(ctx context.Context, event util.Event) error {
		entry, ok := event.Payload.(audit.AuditEntry)
		if !ok {
			return fmt.Errorf("invalid event payload type: %T", event.Payload)
		}
		return notificationSvc.NotifyHighRisk(ctx, entry.CorrelationID, entry.ActorID, entry.ResourceID, entry.RiskScore)
	})

	sessions := NewSessionService(decisionEngine, auditService, verifier, validationUtil, notificationSvc, eventBus, sessionCfg)

	services := &Services{
		Session:  sessions,
		Access:   NewAccessService(decisionEngine, notificationSvc, eventBus),
		Audit:    auditService,
		sessions: sessions,
	}

	return services, nil
}

// Shutdown ends every open session.
func (s *Services) Shutdown(ctx context.Context) {
	s.sessions.Close(ctx)
}
