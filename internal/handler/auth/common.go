package auth

import (
	"time"

	"github.com/thkox/home-ai-server/internal/model/auth"
)

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// UserInfo 用户信息（用于响应，所有API共用）
type UserInfo struct {
	ID        string `json:"id"`         // 用户ID
	FirstName string `json:"first_name"` // 名
	LastName  string `json:"last_name"`  // 姓
	Email     string `json:"email"`      // 邮箱
	Role      string `json:"role"`       // 角色：admin/member
	Enabled   bool   `json:"enabled"`    // 是否启用
	CreatedAt string `json:"created_at,omitempty"`
}

// toUserInfo 将User实体转换为UserInfo（所有API共用）
func toUserInfo(user *auth.User) UserInfo {
	return UserInfo{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      string(user.Role),
		Enabled:   user.Enabled,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
