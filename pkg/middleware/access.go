package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
	"github.com/dhawalhost/staffhub/pkg/observability"
)

const decisionKey = "accessfilter.decision"

// StrategyGuard builds per-route middleware that resolves the declared
// access strategy for the authenticated caller.
type StrategyGuard func(strategy accessfilter.Strategy) gin.HandlerFunc

// NewStrategyGuard returns a StrategyGuard bound to a resolver. The produced
// middleware resolves the decision once per request and stores it on the
// context; it never widens access on failure. A directory failure is a 500,
// a missing identity a 401. An empty decision is not rejected here; list
// handlers render it as an empty result and single-record handlers as a
// not-found or forbidden response.
func NewStrategyGuard(resolver *accessfilter.Resolver, metrics *observability.Metrics, logger *zap.Logger) StrategyGuard {
	return func(strategy accessfilter.Strategy) gin.HandlerFunc {
		return func(c *gin.Context) {
			identity, err := IdentityFromGinContext(c)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
				return
			}

			decision, err := resolver.Resolve(c.Request.Context(), identity, strategy)
			if err != nil {
				logger.Error("Access resolution failed",
					zap.String("strategy", strategy.String()),
					zap.String("user_id", identity.UserID),
					zap.Error(err))
				if metrics != nil {
					metrics.AccessDecisionsTotal.WithLabelValues(strategy.String(), "error").Inc()
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "access resolution failed"})
				return
			}

			if metrics != nil {
				metrics.AccessDecisionsTotal.WithLabelValues(strategy.String(), decisionOutcome(decision)).Inc()
			}
			logger.Debug("Access resolved",
				zap.String("strategy", strategy.String()),
				zap.String("user_id", identity.UserID),
				zap.String("decision", decision.Describe()))

			c.Set(decisionKey, decision)
			c.Next()
		}
	}
}

func decisionOutcome(d *accessfilter.FilterDecision) string {
	switch {
	case d.Unrestricted():
		return "unrestricted"
	case d.HasAccess():
		return "scoped"
	default:
		return "denied"
	}
}

// DecisionFromGinContext extracts the decision stored by a StrategyGuard.
// The second return is false when no guard ran for this route; callers must
// treat that as no access, never as unrestricted.
func DecisionFromGinContext(c *gin.Context) (*accessfilter.FilterDecision, bool) {
	if value, ok := c.Get(decisionKey); ok {
		if decision, ok := value.(*accessfilter.FilterDecision); ok && decision != nil {
			return decision, true
		}
	}
	return nil, false
}
