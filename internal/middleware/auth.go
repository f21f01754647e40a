package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KiranBagal-17/gully/pkg/responses"
	"github.com/KiranBagal-17/gully/pkg/token"
)

const (
	AuthUserIDKey   = "currentUserID"
	AuthUserNameKey = "currentUserName"
)

// AuthMiddleware validates the bearer token and stashes the scorer identity
// on the context. Identity is token-only; there is no user table behind it.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			responses.Unauthorized(c, "Authorization header is required")
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			responses.Unauthorized(c, "Invalid Authorization header format. Expected: Bearer <token>")
			return
		}

		claims, err := token.ValidateJWT(bearerToken[1], jwtSecret)
		if err != nil {
			responses.Unauthorized(c, "Invalid or expired token: "+err.Error())
			return
		}

		c.Set(AuthUserIDKey, claims.UserID)
		c.Set(AuthUserNameKey, claims.Name)
		c.Next()
	}
}

// GetUserIDFromContext extracts the user ID from the context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get(AuthUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}

	uid, ok := userID.(string)
	if !ok {
		return "", fmt.Errorf("user ID has unexpected type: %T", userID)
	}

	return uid, nil
}
