package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/almostcrackd/captionboard/internal/domain"
)

const sessionKey = "session"

// TokenVerifier resolves a bearer token to the profile that owns it.
type TokenVerifier interface {
	Verify(token string) (profileID string, ok bool)
}

// StaticTokenVerifier verifies tokens against a fixed token-to-profile
// map loaded from configuration. Suitable for single-tenant deployments
// and tests; an identity provider can replace it behind the same
// interface.
type StaticTokenVerifier struct {
	tokens map[string]string
}

// NewStaticTokenVerifier creates a verifier over the given token map.
// Parameters:
//   - tokens: mapping from bearer token to profile ID.
//
// Returns:
//   - *StaticTokenVerifier: initialized verifier.
func NewStaticTokenVerifier(tokens map[string]string) *StaticTokenVerifier {
	return &StaticTokenVerifier{tokens: tokens}
}

// Verify looks the token up in the static map.
func (v *StaticTokenVerifier) Verify(token string) (string, bool) {
	profileID, ok := v.tokens[token]
	return profileID, ok
}

// RequireAuth returns a middleware that rejects requests without a valid
// bearer token and stores the resolved session in the Gin context.
// Parameters:
//   - verifier: token verifier.
//
// Returns:
//   - gin.HandlerFunc: middleware handler.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "authentication required",
			})
			return
		}

		profileID, ok := verifier.Verify(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "invalid or expired token",
			})
			return
		}

		c.Set(sessionKey, domain.Session{ProfileID: profileID, Token: token})
		c.Next()
	}
}

// OptionalAuth resolves a session when a valid token is present but lets
// anonymous requests through with an empty session.
// Parameters:
//   - verifier: token verifier.
//
// Returns:
//   - gin.HandlerFunc: middleware handler.
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token != "" {
			if profileID, ok := verifier.Verify(token); ok {
				c.Set(sessionKey, domain.Session{ProfileID: profileID, Token: token})
			}
		}
		c.Next()
	}
}

// GetSession extracts the resolved session from the Gin context.
// Parameters:
//   - c: Gin request context.
//
// Returns:
//   - domain.Session: resolved session; zero value when anonymous.
func GetSession(c *gin.Context) domain.Session {
	if s, exists := c.Get(sessionKey); exists {
		if session, ok := s.(domain.Session); ok {
			return session
		}
	}
	return domain.Session{}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
