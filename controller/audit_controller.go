// controller/audit_controller.go
package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/audit"
	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/util"
	helper_util "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/util/helper"
)

// defaultHistoryWindow is how far back /audit/history looks without "from".
const defaultHistoryWindow = 24 * time.Hour

type AuditController struct {
	auditService audit.Service
	now          func() time.Time
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{
		auditService: auditService,
		now:          time.Now,
	}
}

// RegisterRoutes registers the API routes
func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup) {
	trail := r.Group("/audit")
	{
		trail.GET("", ac.ListEntries)
		trail.GET("/history", ac.QueryHistory)
	}
}

// ListEntries returns a page of the in-memory trail, newest page first.
// Filters: actor_id, session_id, resource_id, type, denied, min_risk.
func (ac *AuditController) ListEntries(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", echo_errors.ErrInvalidPagination)
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid search criteria", err)
		return
	}

	var entries []audit.AuditEntry
	if filter == (audit.Filter{}) {
		entries = ac.auditService.Recent(limit + offset)
	} else {
		entries = ac.auditService.Find(filter, limit+offset)
	}
	// both return oldest first; offset counts back from the newest entry
	end := len(entries) - offset
	if end < 0 {
		end = 0
	}
	start := end - limit
	if start < 0 {
		start = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries[start:end],
		"limit":   limit,
		"offset":  offset,
	})
}

// QueryHistory searches the long-term audit store.
func (ac *AuditController) QueryHistory(c *gin.Context) {
	from, to, err := helper_util.ParseTimeRange(c.Query("from"), c.Query("to"), defaultHistoryWindow, ac.now())
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid time range", echo_errors.ErrInvalidSearchCriteria)
		return
	}

	entries, err := ac.auditService.QueryLogs(c, from, to, c.Query("actor_id"), c.Query("resource_id"))
	if err != nil {
		util.RespondWithError(c, http.StatusBadGateway, "Failed to query audit history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":    from,
		"to":      to,
		"entries": entries,
	})
}

func parseFilter(c *gin.Context) (audit.Filter, error) {
	filter := audit.Filter{
		ActorID:    c.Query("actor_id"),
		SessionID:  c.Query("session_id"),
		ResourceID: c.Query("resource_id"),
		Type:       audit.EntryType(c.Query("type")),
	}
	switch filter.Type {
	case "", audit.EntryDecision, audit.EntrySessionStart, audit.EntrySessionEnd, audit.EntryReverification:
	default:
		return audit.Filter{}, echo_errors.ErrInvalidSearchCriteria
	}
	if v := c.Query("denied"); v != "" {
		denied, err := strconv.ParseBool(v)
		if err != nil {
			return audit.Filter{}, echo_errors.ErrInvalidSearchCriteria
		}
		filter.DeniedOnly = denied
	}
	if v := c.Query("min_risk"); v != "" {
		minRisk, err := strconv.ParseFloat(v, 64)
		if err != nil || minRisk < 0 || minRisk > 1 {
			return audit.Filter{}, echo_errors.ErrInvalidSearchCriteria
		}
		filter.MinRisk = minRisk
	}
	return filter, nil
}
