// controller/health_controller.go
package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/service"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthController struct {
	accessService service.IAccessService
	checks        []HealthCheck
}

func NewHealthController(accessService service.IAccessService, checks ...HealthCheck) *HealthController {
	return &HealthController{
		accessService: accessService,
		checks:        checks,
	}
}

func (hc *HealthController) RegisterRoutes(r gin.IRoutes) {
	r.GET("/healthz", hc.Health)
}

// Health reports 503 when any dependency check fails.
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(hc.checks))
	for _, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			logger.Warn("Health check failed", zap.String("dependency", check.Name), zap.Error(err))
			deps[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[check.Name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":         state,
		"matrix_version": hc.accessService.MatrixVersion(c),
		"dependencies":   deps,
	})
}
