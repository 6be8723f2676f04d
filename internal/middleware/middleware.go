package middleware

import (
	"net/http"
	"strings"

	"task-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserKey is the gin context key holding the authenticated subject.
const UserKey = "user"

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id (taken from X-Request-ID when
// the caller sent one) and attaches it to the request's logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		ctx := logger.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// AuthMiddleware requires a valid HS256 bearer token signed with secret.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if secret == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server misconfiguration"})
			c.Abort()
			return
		}
		sub, err := subject(c.GetHeader("Authorization"), secret)
		if err != nil {
			logger.Debug(ctx, "Bearer token rejected", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Set(UserKey, sub)
		c.Next()
	}
}

// OptionalAuth sets the subject when a valid token is present and never rejects.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret != "" {
			if sub, err := subject(c.GetHeader("Authorization"), secret); err == nil {
				c.Set(UserKey, sub)
			}
		}
		c.Next()
	}
}

var errNoBearer = jwt.ErrTokenMalformed

func subject(header, secret string) (string, error) {
	const prefix = "Bearer "
	if header == "" || !strings.HasPrefix(header, prefix) {
		return "", errNoBearer
	}
	tokenStr := strings.TrimSpace(header[len(prefix):])
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}
