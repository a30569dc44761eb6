package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/dhawalhost/staffhub/internal/accessfilter"
)

// identityContextKey is an unexported key type to avoid collisions in the Gin context store.
type identityContextKey string

const identityKey identityContextKey = "identity"

// Authenticate returns a Gin middleware that verifies the Bearer token and
// stores the caller's identity on the context for downstream handlers. The
// token must carry `sub` (user id) and `role` claims.
func Authenticate(keyfunc jwt.Keyfunc, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, keyfunc,
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithExpirationRequired())
		if err != nil {
			logger.Warn("Rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		sub, _ := claims["sub"].(string)
		role, _ := claims["role"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		SetIdentity(c, accessfilter.Identity{
			UserID: sub,
			Role:   accessfilter.Role(role),
		})
		c.Next()
	}
}

// SetIdentity stores the caller's identity on the Gin context. Exposed for
// handler tests; production code goes through Authenticate.
func SetIdentity(c *gin.Context, identity accessfilter.Identity) {
	c.Set(string(identityKey), identity)
}

// IdentityFromGinContext extracts the identity previously stored by Authenticate.
func IdentityFromGinContext(c *gin.Context) (accessfilter.Identity, error) {
	if value, ok := c.Get(string(identityKey)); ok {
		if identity, ok := value.(accessfilter.Identity); ok && identity.UserID != "" {
			return identity, nil
		}
	}
	return accessfilter.Identity{}, errors.New("identity not found in context")
}
