package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/decor-ecom/internal/httpx"
)

const principalKey = "principal"

// BearerToken extracts the token from an "Authorization: Bearer <t>" header.
func BearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Authenticate rejects requests without a valid live token.
func Authenticate(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := BearerToken(c)
		if !ok {
			httpx.Error(c, http.StatusUnauthorized, "authorization header required")
			return
		}
		p, err := v.Verify(c.Request.Context(), tok)
		if err != nil {
			if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrSessionRevoked) {
				httpx.Error(c, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			httpx.Internal(c, err)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// Authorize must run after Authenticate.
func Authorize(e *Enforcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			httpx.Error(c, http.StatusUnauthorized, "authentication required")
			return
		}
		allowed, err := e.Allow(p.Role, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		if !allowed {
			log.Printf("[auth] denied role=%s %s %s", p.Role, c.Request.Method, c.Request.URL.Path)
			httpx.Error(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}

func PrincipalFrom(c *gin.Context) (*Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}

// WithPrincipal attaches p to the context; handler tests use it to skip the
// token round trip.
func WithPrincipal(p *Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(principalKey, p)
		c.Next()
	}
}
