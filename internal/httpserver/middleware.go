package httpserver

import (
	"net/http"
	"strings"

	accountsvc "dealership/internal/service/account"
	"github.com/gin-gonic/gin"
)

// SessionHeader carries the anonymous session token.
const SessionHeader = "X-Session-Token"

const (
	sessionTokenKey = "sessionToken"
	claimsKey       = "claims"
)

func requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(SessionHeader))
		if token == "" {
			fail(c, http.StatusUnauthorized, "session token required")
			return
		}
		c.Set(sessionTokenKey, token)
		c.Next()
	}
}

// authenticate verifies a bearer token when one is sent. With required set,
// requests without a token are rejected.
func authenticate(accounts accountService, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			if required {
				fail(c, http.StatusUnauthorized, "missing bearer token")
				return
			}
			c.Next()
			return
		}
		claims, err := accounts.Authenticate(token)
		if err != nil {
			fail(c, http.StatusUnauthorized, accountsvc.ErrInvalidToken.Error())
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			fail(c, http.StatusUnauthorized, "authentication required")
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		fail(c, http.StatusForbidden, "insufficient role")
	}
}

func sessionToken(c *gin.Context) string {
	return c.GetString(sessionTokenKey)
}

func claimsFrom(c *gin.Context) *accountsvc.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*accountsvc.Claims)
	return claims
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
