package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/thkox/home-ai-server/internal/pkg/ctxutil"
)

type roleChecker struct {
	adminID string
}

func (c *roleChecker) EnsureAdmin(_ context.Context, userID string) error {
	if userID != c.adminID {
		return errors.New("admin privileges required")
	}
	return nil
}

func adminRouter(userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	// 模拟 Auth 中间件注入的 user_id
	engine.Use(func(c *gin.Context) {
		if userID != "" {
			c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), userID))
		}
	})
	engine.Use(RequireAdmin(&roleChecker{adminID: "admin-1"}))
	engine.GET("/users", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return engine
}

func TestRequireAdmin(t *testing.T) {
	Convey("RequireAdmin 只放行管理员", t, func() {
		Convey("管理员通过", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			adminRouter("admin-1").ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("普通成员被拒绝", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			adminRouter("member-1").ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusForbidden)
			So(w.Body.String(), ShouldContainSubstring, "40302")
		})

		Convey("缺少用户身份返回未认证", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			adminRouter("").ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})
	})
}
