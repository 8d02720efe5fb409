// controller/panel_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/service"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/util"
)

type PanelController struct {
	accessService service.IAccessService
}

func NewPanelController(accessService service.IAccessService) *PanelController {
	return &PanelController{
		accessService: accessService,
	}
}

// RegisterRoutes registers the read-only matrix routes
func (pc *PanelController) RegisterRoutes(r *gin.RouterGroup) {
	panels := r.Group("/panels")
	{
		panels.GET("", pc.ListPanels)
		panels.GET("/:id", pc.GetPanel)
	}
	r.GET("/matrix", pc.GetMatrixVersion)
}

// RegisterAdminRoutes registers the routes that change engine state
func (pc *PanelController) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.POST("/matrix/reload", pc.ReloadMatrix)
	r.GET("/cache/stats", pc.CacheStats)
}

// ListPanels endpoint
func (pc *PanelController) ListPanels(c *gin.Context) {
	c.JSON(http.StatusOK, pc.accessService.ListPanels(c))
}

// GetPanel endpoint
func (pc *PanelController) GetPanel(c *gin.Context) {
	panel, ok := pc.accessService.GetPanel(c, c.Param("id"))
	if !ok {
		util.RespondWithError(c, http.StatusNotFound, "Panel not found", echo_errors.ErrResourceNotRecognized)
		return
	}

	c.JSON(http.StatusOK, panel)
}

func (pc *PanelController) GetMatrixVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": pc.accessService.MatrixVersion(c)})
}

// ReloadMatrix endpoint. A rejected document keeps the active matrix and
// answers 422.
func (pc *PanelController) ReloadMatrix(c *gin.Context) {
	reload, err := pc.accessService.ReloadMatrix(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnprocessableEntity, "Failed to reload permission matrix", err)
		return
	}

	c.JSON(http.StatusOK, reload)
}

func (pc *PanelController) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, pc.accessService.CacheStats(c))
}
