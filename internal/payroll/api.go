package payroll

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
	"github.com/dhawalhost/staffhub/internal/audit"
	"github.com/dhawalhost/staffhub/pkg/middleware"
)

// HTTPHandler handles payroll HTTP requests.
type HTTPHandler struct {
	svc    Service
	audit  audit.Service
	logger *zap.Logger
}

// NewHTTPHandler creates a new payroll HTTP handler.
func NewHTTPHandler(svc Service, auditSvc audit.Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, audit: auditSvc, logger: logger}
}

// RegisterRoutes registers payroll routes. Reads are financial-grade
// (managers excluded); issuing payslips is hr/admin only.
func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup, guard middleware.StrategyGuard) {
	payslips := rg.Group("/payslips")
	{
		payslips.GET("", guard(accessfilter.SensitiveFinancial), h.list)
		payslips.GET("/:id", guard(accessfilter.SensitiveFinancial), h.get)
		payslips.POST("", guard(accessfilter.HRAdminOnly), h.issue)
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
	payslips, err := h.svc.List(c.Request.Context(), h.decision(c))
	if err != nil {
		h.logger.Error("Failed to list payslips", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payslips": payslips})
}

func (h *HTTPHandler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), h.decision(c), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *HTTPHandler) issue(c *gin.Context) {
	var input IssueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.svc.Issue(c.Request.Context(), h.decision(c), input)
	if err != nil {
		h.record(c, "payslip.issue", nil, audit.OutcomeFailure)
		h.renderError(c, err)
		return
	}
	h.record(c, "payslip.issue", &p.ID, audit.OutcomeSuccess)
	c.JSON(http.StatusCreated, p)
}

func (h *HTTPHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "payslip not found"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	default:
		h.logger.Error("Payroll request failed", zap.Error(err))
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
		Resource:   "payslip",
		ResourceID: resourceID,
		IPAddress:  &ip,
		Outcome:    outcome,
	})
	if err != nil {
		h.logger.Warn("Failed to record audit event", zap.String("action", action), zap.Error(err))
	}
}
