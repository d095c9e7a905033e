package middleware

import (
	"net/http"
	"strings"

	"curiohub/internal/auth"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 校验 Bearer 会话令牌并把 userID 写入上下文。
// 令牌校验只走凭证管理的入口，这里不直接碰 JWT。
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	secret := []byte(jwtSecret)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing authorization"})
			c.Abort()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid authorization header"})
			c.Abort()
			return
		}

		userID, err := auth.VerifySessionToken(secret, parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			c.Abort()
			return
		}

		c.Set("userID", int(userID))
		c.Next()
	}
}
