package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "user_id"

// identityMiddleware resolves the caller from an optional bearer token.
// Requests without a token (or with an unverifiable one) proceed anonymously;
// identity only scopes QA history and ticket attribution.
func identityMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || secret == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.Next()
			return
		}
		token, err := jwt.Parse(strings.TrimSpace(parts[1]), func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.Next()
			return
		}
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, ok := claims["sub"].(string); ok && sub != "" {
				c.Set(userIDKey, sub)
			}
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	value, ok := c.Get(userIDKey)
	if !ok {
		return ""
	}
	id, _ := value.(string)
	return id
}
