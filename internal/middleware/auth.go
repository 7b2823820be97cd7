package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDKey is the context key for the authenticated user's ID
	UserIDKey = "user_id"
	// AccessTokenKey is the context key for the raw bearer token of the request
	AccessTokenKey = "access_token"
)

// AccessTokenVerifier validates a raw access token and returns its subject.
type AccessTokenVerifier interface {
	VerifyAccess(ctx context.Context, raw string) (int64, error)
}

// Authenticate resolves the caller from an "Authorization: Bearer" header.
// Requests without the header continue anonymously. A malformed header or a
// token that fails verification is rejected with 401 on every route it guards,
// including the anonymous reads under it.
func Authenticate(verifier AccessTokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, raw, ok := strings.Cut(header, " ")
		raw = strings.TrimSpace(raw)
		if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
			abortUnauthorized(c, "Authorization header must be 'Bearer <token>'")
			return
		}

		userID, err := verifier.VerifyAccess(c.Request.Context(), raw)
		if err != nil {
			if log := GetLogger(c); log != nil {
				log.Warn("Rejected access token", map[string]interface{}{
					"path":  c.Request.URL.Path,
					"error": err.Error(),
				})
			}
			abortUnauthorized(c, "Given token not valid for any token type")
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(AccessTokenKey, raw)
		if log := GetLogger(c); log != nil {
			c.Set(LoggerKey, log.WithUserID(userID))
		}

		c.Next()
	}
}

// RequireAuth aborts with 401 unless Authenticate resolved a caller.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c); !ok {
			abortUnauthorized(c, "Authentication credentials were not provided.")
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user's ID, if any.
func GetUserID(c *gin.Context) (int64, bool) {
	if v, exists := c.Get(UserIDKey); exists {
		if id, ok := v.(int64); ok {
			return id, true
		}
	}
	return 0, false
}

// GetAccessToken returns the raw bearer token accepted for this request.
func GetAccessToken(c *gin.Context) string {
	return c.GetString(AccessTokenKey)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":       "UNAUTHORIZED",
			"message":    message,
			"request_id": GetRequestID(c),
		},
	})
}
