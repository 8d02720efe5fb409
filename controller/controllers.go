// controller/controllers.go
package controller

import "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/service"

type Controllers struct {
	Session *SessionController
	Panel   *PanelController
	Audit   *AuditController
	Health  *HealthController
}

func InitializeControllers(services *service.Services, checks ...HealthCheck) *Controllers {
	return &Controllers{
		Session: NewSessionController(services.Session, services.Access),
		Panel:   NewPanelController(services.Access),
		Audit:   NewAuditController(services.Audit),
		Health:  NewHealthController(services.Access, checks...),
	}
}
