package employee

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
	"github.com/dhawalhost/staffhub/internal/audit"
	"github.com/dhawalhost/staffhub/pkg/middleware"
)

// HTTPHandler handles employee HTTP requests.
type HTTPHandler struct {
	svc    Service
	audit  audit.Service
	logger *zap.Logger
}

// NewHTTPHandler creates a new employee HTTP handler.
func NewHTTPHandler(svc Service, auditSvc audit.Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, audit: auditSvc, logger: logger}
}

// RegisterRoutes registers employee routes. Each route declares its access
// strategy; the guard resolves it before the handler runs.
func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup, guard middleware.StrategyGuard) {
	emps := rg.Group("/employees")
	{
		emps.GET("", guard(accessfilter.EmployeeData), h.list)
		emps.GET("/me", guard(accessfilter.SelfOnly), h.me)
		emps.GET("/:id", guard(accessfilter.EmployeeData), h.get)
		emps.POST("", guard(accessfilter.HRAdminOnly), h.create)
		emps.PUT("/:id", guard(accessfilter.HRAdminOnly), h.update)
		emps.DELETE("/:id", guard(accessfilter.HRAdminOnly), h.delete)
	}
}

// decision returns the route's access decision, or nil when no guard ran.
// A nil decision denies everywhere downstream.
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
	employees, err := h.svc.List(c.Request.Context(), h.decision(c))
	if err != nil {
		h.logger.Error("Failed to list employees", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": employees})
}

func (h *HTTPHandler) me(c *gin.Context) {
	e, err := h.svc.GetSelf(c.Request.Context(), h.decision(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *HTTPHandler) get(c *gin.Context) {
	e, err := h.svc.Get(c.Request.Context(), h.decision(c), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *HTTPHandler) create(c *gin.Context) {
	var input CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := h.svc.Create(c.Request.Context(), h.decision(c), input)
	if err != nil {
		h.record(c, "employee.create", nil, audit.OutcomeFailure)
		h.renderError(c, err)
		return
	}
	h.record(c, "employee.create", &e.ID, audit.OutcomeSuccess)
	c.JSON(http.StatusCreated, e)
}

func (h *HTTPHandler) update(c *gin.Context) {
	var input UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	e, err := h.svc.Update(c.Request.Context(), h.decision(c), id, input)
	if err != nil {
		h.record(c, "employee.update", &id, audit.OutcomeFailure)
		h.renderError(c, err)
		return
	}
	h.record(c, "employee.update", &id, audit.OutcomeSuccess)
	c.JSON(http.StatusOK, e)
}

func (h *HTTPHandler) delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), h.decision(c), id); err != nil {
		h.record(c, "employee.delete", &id, audit.OutcomeFailure)
		h.renderError(c, err)
		return
	}
	h.record(c, "employee.delete", &id, audit.OutcomeSuccess)
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	default:
		h.logger.Error("Employee request failed", zap.Error(err))
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
		Resource:   "employee",
		ResourceID: resourceID,
		IPAddress:  &ip,
		Outcome:    outcome,
	})
	if err != nil {
		h.logger.Warn("Failed to record audit event", zap.String("action", action), zap.Error(err))
	}
}
