package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thkox/home-ai-server/internal/pkg/ctxutil"
)

// AdminChecker 管理员校验
type AdminChecker interface {
	EnsureAdmin(ctx context.Context, userID string) error
}

// RequireAdmin 管理员权限中间件
// 必须挂在 Auth 之后，按数据库里的当前角色判断而不是令牌里的旧角色
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := ctxutil.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    40101,
				"kind":    "unauthorized",
				"message": "unauthorized",
			})
			c.Abort()
			return
		}

		if err := checker.EnsureAdmin(c.Request.Context(), userID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    40302,
				"kind":    "unauthorized",
				"message": "admin privileges required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
