package auth

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thkox/home-ai-server/internal/model/auth"
	"github.com/thkox/home-ai-server/internal/pkg/password"
	"github.com/thkox/home-ai-server/internal/service"
)

// ListUsers 管理员查看用户列表
// @Summary      用户列表
// @Description  管理员分页查看全部用户
// @Tags         用户管理
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "页码"
// @Param        page_size  query     int  false  "每页数量"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Router       /api/v1/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.DefaultQuery("page_size", "20"), 10, 64)

	users, total, err := h.authService.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Kind:    "persistence_failure",
			Message: "failed to list users",
		})
		return
	}

	infos := make([]UserInfo, 0, len(users))
	for _, user := range users {
		infos = append(infos, toUserInfo(user))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data": gin.H{
			"users":     infos,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

// AdminUpdateUserRequest 管理员更新用户请求
type AdminUpdateUserRequest struct {
	FirstName string  `json:"first_name,omitempty"`
	LastName  string  `json:"last_name,omitempty"`
	Email     string  `json:"email,omitempty" binding:"omitempty,email"`
	Role      *string `json:"role,omitempty" binding:"omitempty,oneof=admin member"`
	Enabled   *bool   `json:"enabled,omitempty"`
}

// AdminUpdateUser 管理员更新指定用户
// @Summary      更新用户
// @Description  管理员更新指定用户的资料、角色和启用状态
// @Tags         用户管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "用户ID"
// @Param        request  body      AdminUpdateUserRequest  true  "更新请求"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/users/{id}/profile [put]
func (h *Handler) AdminUpdateUser(c *gin.Context) {
	var req AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Kind:    "validation",
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	var role *auth.UserRole
	if req.Role != nil {
		r := auth.UserRole(*req.Role)
		role = &r
	}

	user, err := h.authService.AdminUpdateUser(
		c.Request.Context(), c.Param("id"),
		req.FirstName, req.LastName, req.Email, role, req.Enabled,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Code:    40401,
				Kind:    "not_found",
				Message: "user not found",
			})
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    40002,
				Kind:    "validation",
				Message: "email already registered",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Code:    50001,
				Kind:    "persistence_failure",
				Message: "failed to update user",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    toUserInfo(user),
	})
}

// AdminSetPasswordRequest 管理员重置密码请求
type AdminSetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

// AdminSetPassword 管理员重置指定用户的密码
// @Summary      重置用户密码
// @Description  管理员重置密码，不需要旧密码，该用户已签发的Refresh Token全部失效
// @Tags         用户管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "用户ID"
// @Param        request  body      AdminSetPasswordRequest  true  "重置密码请求"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/users/{id}/password [put]
func (h *Handler) AdminSetPassword(c *gin.Context) {
	var req AdminSetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Kind:    "validation",
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	err := h.authService.AdminSetPassword(c.Request.Context(), c.Param("id"), req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Code:    40401,
				Kind:    "not_found",
				Message: "user not found",
			})
		case errors.Is(err, password.ErrTooWeak):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    40003,
				Kind:    "validation",
				Message: "password too weak",
				Detail:  err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Code:    50001,
				Kind:    "persistence_failure",
				Message: "failed to reset password",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
