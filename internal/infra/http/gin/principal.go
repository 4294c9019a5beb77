package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

const principalContextKey = "studyreserve.principal"

// PrincipalResolver turns a bearer token into a user id. Identity itself is
// an external concern; the engine only ever sees the resolved id.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

type AuthMiddleware struct {
	Resolver PrincipalResolver
	Logger   *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Resolver == nil {
		c.Next()
		return
	}
	userID, err := m.Resolver.Resolve(c.Request.Context(), token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token resolution failed", "error", err)
		}
		c.Next()
		return
	}
	c.Set(principalContextKey, userID)
	c.Next()
}

// requireUser aborts with 401 unless a principal was resolved.
func requireUser(c *gin.Context) (string, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return "", false
	}
	userID, ok := val.(string)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return "", false
	}
	return userID, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
