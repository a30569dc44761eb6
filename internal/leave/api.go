package leave

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
	"github.com/dhawalhost/staffhub/internal/audit"
	"github.com/dhawalhost/staffhub/pkg/middleware"
)

// HTTPHandler handles leave request HTTP requests.
type HTTPHandler struct {
	svc    Service
	audit  audit.Service
	logger *zap.Logger
}

// NewHTTPHandler creates a new leave HTTP handler.
func NewHTTPHandler(svc Service, auditSvc audit.Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, audit: auditSvc, logger: logger}
}

// RegisterRoutes registers leave routes. Reads and decisions are team-scoped;
// filing a request is always self-scoped.
func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup, guard middleware.StrategyGuard) {
	leave := rg.Group("/leave")
	{
		leave.GET("", guard(accessfilter.TeamViewable), h.list)
		leave.GET("/:id", guard(accessfilter.TeamViewable), h.get)
		leave.POST("", guard(accessfilter.SelfOnly), h.create)
		leave.POST("/:id/approve", guard(accessfilter.TeamViewable), h.approve)
		leave.POST("/:id/reject", guard(accessfilter.TeamViewable), h.reject)
	}
}

func (h *HTTPHandler) decision(c *gin.Context) *accessfilter.FilterDecision {
	decision, ok := middleware.DecisionFromGinContext(c)
	if !ok {
		h.logger.Warn("No access decision on route, denying",
			zap.String("path", c.FullPath()))
		return nil
	}
	return decision
}

func (h *HTTPHandler) list(c *gin.Context) {
	requests, err := h.svc.List(c.Request.Context(), h.decision(c))
	if err != nil {
		h.logger.Error("Failed to list leave requests", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (h *HTTPHandler) get(c *gin.Context) {
	r, err := h.svc.Get(c.Request.Context(), h.decision(c), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *HTTPHandler) create(c *gin.Context) {
	var input CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.svc.Create(c.Request.Context(), h.decision(c), input)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.record(c, "leave.create", &r.ID, audit.OutcomeSuccess)
	c.JSON(http.StatusCreated, r)
}

func (h *HTTPHandler) approve(c *gin.Context) {
	h.decide(c, true)
}

func (h *HTTPHandler) reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *HTTPHandler) decide(c *gin.Context, approve bool) {
	action := "leave.reject"
	if approve {
		action = "leave.approve"
	}

	id := c.Param("id")
	r, err := h.svc.Decide(c.Request.Context(), h.decision(c), id, approve)
	if err != nil {
		h.record(c, action, &id, audit.OutcomeFailure)
		h.renderError(c, err)
		return
	}
	h.record(c, action, &id, audit.OutcomeSuccess)
	c.JSON(http.StatusOK, r)
}

func (h *HTTPHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "leave request not found"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, ErrSelfDecision):
		c.JSON(http.StatusConflict, gin.H{"error": "cannot decide own leave request"})
	case errors.Is(err, ErrNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": "leave request is not pending"})
	default:
		h.logger.Error("Leave request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *HTTPHandler) record(c *gin.Context, action string, resourceID *string, outcome string) {
	var actorID *string
	if identity, err := middleware.IdentityFromGinContext(c); err == nil {
		actorID = &identity.UserID
	}
	ip := c.ClientIP()

	err := h.audit.Log(c.Request.Context(), audit.LogInput{
		ActorID:    actorID,
		Action:     action,
		Resource:   "leave_request",
		ResourceID: resourceID,
		IPAddress:  &ip,
		Outcome:    outcome,
	})
	if err != nil {
		h.logger.Warn("Failed to record audit event", zap.String("action", action), zap.Error(err))
	}
}
