package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
	"github.com/dhawalhost/staffhub/internal/audit"
	"github.com/dhawalhost/staffhub/pkg/middleware"
)

// HTTPHandler handles auth HTTP requests.
type HTTPHandler struct {
	svc    Service
	audit  audit.Service
	logger *zap.Logger
}

// NewHTTPHandler creates a new auth HTTP handler.
func NewHTTPHandler(svc Service, auditSvc audit.Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, audit: auditSvc, logger: logger}
}

// RegisterPublicRoutes registers the unauthenticated auth surface.
func (h *HTTPHandler) RegisterPublicRoutes(r *gin.Engine) {
	r.POST("/auth/login", h.login)
	r.GET("/.well-known/jwks.json", h.jwks)
}

// RegisterRoutes registers the protected auth surface.
func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup, guard middleware.StrategyGuard) {
	rg.POST("/auth/users", guard(accessfilter.HRAdminOnly), h.createUser)
}

func (h *HTTPHandler) login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.svc.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		h.logger.Error("Login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}

func (h *HTTPHandler) jwks(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.JWKS())
}

func (h *HTTPHandler) createUser(c *gin.Context) {
	decision, ok := middleware.DecisionFromGinContext(c)
	if !ok || !decision.Unrestricted() {
		if !ok {
			h.logger.Warn("No access decision on route, denying",
				zap.String("path", c.FullPath()))
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.svc.CreateUser(c.Request.Context(), input)
	if err != nil {
		h.record(c, nil, audit.OutcomeFailure)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.record(c, &u.ID, audit.OutcomeSuccess)
	c.JSON(http.StatusCreated, u)
}

func (h *HTTPHandler) record(c *gin.Context, resourceID *string, outcome string) {
	var actorID *string
	if identity, err := middleware.IdentityFromGinContext(c); err == nil {
		actorID = &identity.UserID
	}
	ip := c.ClientIP()

	err := h.audit.Log(c.Request.Context(), audit.LogInput{
		ActorID:    actorID,
		Action:     "user.create",
		Resource:   "user",
		ResourceID: resourceID,
		IPAddress:  &ip,
		Outcome:    outcome,
	})
	if err != nil {
		h.logger.Warn("Failed to record audit event", zap.Error(err))
	}
}
