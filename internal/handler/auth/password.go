package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thkox/home-ai-server/internal/pkg/ctxutil"
	"github.com/thkox/home-ai-server/internal/pkg/password"
	"github.com/thkox/home-ai-server/internal/service"
)

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword 修改当前用户密码
// @Summary      修改密码
// @Description  修改密码，成功后已签发的Refresh Token全部失效
// @Tags         认证
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      ChangePasswordRequest  true  "修改密码请求"
// @Success      200     {object}  map[string]string
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Router       /api/v1/auth/password [put]
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Kind:    "unauthorized",
			Message: "unauthorized",
		})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Kind:    "validation",
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword)
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001
		kind := "persistence_failure"

		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			code = http.StatusUnauthorized
			errorCode = 40101
			kind = "unauthorized"
		case errors.Is(err, password.ErrTooWeak):
			code = http.StatusBadRequest
			errorCode = 40003
			kind = "validation"
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Kind:    kind,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "password changed",
	})
}
