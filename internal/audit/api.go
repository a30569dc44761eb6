package audit

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
	"github.com/dhawalhost/staffhub/pkg/middleware"
)

// HTTPHandler handles audit log HTTP requests.
type HTTPHandler struct {
	svc    Service
	logger *zap.Logger
}

// NewHTTPHandler creates a new audit HTTP handler.
func NewHTTPHandler(svc Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers audit routes. The audit trail is hr/admin only.
func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup, guard middleware.StrategyGuard) {
	logs := rg.Group("/audit", guard(accessfilter.HRAdminOnly))
	{
		logs.GET("", h.queryLogs)
		logs.GET("/export", h.exportLogs)
		logs.GET("/:id", h.getEvent)
	}
}

func (h *HTTPHandler) authorized(c *gin.Context) bool {
	decision, ok := middleware.DecisionFromGinContext(c)
	if !ok {
		h.logger.Warn("No access decision on audit route, denying",
			zap.String("path", c.FullPath()))
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return false
	}
	if !decision.Unrestricted() {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return false
	}
	return true
}

func (h *HTTPHandler) queryLogs(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	params := h.parseParams(c)
	events, total, err := h.svc.Query(c.Request.Context(), params)
	if err != nil {
		h.logger.Error("Failed to query audit logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "total": total})
}

func (h *HTTPHandler) exportLogs(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	events, err := h.svc.Export(c.Request.Context(), h.parseParams(c))
	if err != nil {
		h.logger.Error("Failed to export audit logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="audit_logs.csv"`)
	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "timestamp", "actor_id", "action", "resource_type", "resource_id", "outcome"})
	for _, e := range events {
		actorID := ""
		if e.ActorID != nil {
			actorID = *e.ActorID
		}
		resourceID := ""
		if e.ResourceID != nil {
			resourceID = *e.ResourceID
		}
		_ = w.Write([]string{e.ID, e.Timestamp.Format(time.RFC3339), actorID, e.Action, e.ResourceType, resourceID, e.Outcome})
	}
	w.Flush()
}

func (h *HTTPHandler) getEvent(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	event, err := h.svc.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audit event not found"})
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *HTTPHandler) parseParams(c *gin.Context) QueryParams {
	params := QueryParams{}
	if v := c.Query("actor_id"); v != "" {
		params.ActorID = &v
	}
	if v := c.Query("action"); v != "" {
		params.Action = &v
	}
	if v := c.Query("resource_type"); v != "" {
		params.Resource = &v
	}
	if v := c.Query("outcome"); v != "" {
		params.Outcome = &v
	}
	if v := c.Query("start_time"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			params.StartTime = &t
		}
	}
	if v := c.Query("end_time"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			params.EndTime = &t
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Offset = n
		}
	}
	return params
}
