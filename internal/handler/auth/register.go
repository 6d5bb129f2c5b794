package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thkox/home-ai-server/internal/pkg/password"
	"github.com/thkox/home-ai-server/internal/service"
)

// RegisterRequest 用户注册请求
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,max=50"` // 名（必填）
	LastName  string `json:"last_name" binding:"required,max=50"`  // 姓（必填）
	Email     string `json:"email" binding:"required,email"`       // 邮箱（必填，需符合邮箱格式）
	Password  string `json:"password" binding:"required"`          // 密码（必填，强度由服务端校验）
}

// Register 用户注册
// @Summary      用户注册
// @Description  注册新的家庭成员账号
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "注册请求"
// @Success      201      {object}  map[string]interface{}
// @Failure      400      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /api/v1/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Kind:    "validation",
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	// 调用Service层（传递基本类型参数，不依赖Handler层的Request类型）
	user, err := h.authService.Register(ctx, req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		// 邮箱冲突和密码强度问题都是客户端错误
		if errors.Is(err, service.ErrUserAlreadyExists) {
			code = http.StatusBadRequest
			errorCode = 40002
		} else if errors.Is(err, password.ErrTooWeak) {
			code = http.StatusBadRequest
			errorCode = 40003
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Kind:    "validation",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "registered",
		"data":    toUserInfo(user),
	})
}
