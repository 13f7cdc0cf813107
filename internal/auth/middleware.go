package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionKey is the gin context key holding the authenticated session id
const SessionKey = "session_id"

// Validator checks a bearer token
type Validator interface {
	Validate(token string) (uuid.UUID, error)
}

// RequireSession rejects requests whose bearer token was not issued for the
// session named by the :id path parameter. Browsers cannot set headers on a
// websocket upgrade, so a token query parameter is accepted as well.
func RequireSession(v Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			return
		}

		sessionID, err := v.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		if param := c.Param("id"); param != "" && param != sessionID.String() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token does not belong to this session"})
			return
		}

		c.Set(SessionKey, sessionID)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// RequireAdmin guards operator routes with a static token sent as a bearer
// token or in X-Admin-Token.
func RequireAdmin(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Admin-Token")
		if got == "" {
			got = bearerToken(c.GetHeader("Authorization"))
		}
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin token required"})
			return
		}
		c.Next()
	}
}
