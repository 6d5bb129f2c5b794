package auth

import (
	"time"
)

// AssistantUserID 助手哨兵用户的固定ID
// 助手是一条真实的用户记录（不是空指针占位），所有AI消息的 sender_id
// 都指向它，消息归属永远是合法的外键
const AssistantUserID = "00000000-0000-0000-0000-000000000000"

// User 用户实体
// ID使用UUID格式（string），避免ObjectID转换的麻烦
type User struct {
	ID             string    `bson:"_id,omitempty" json:"id"`          // UUID格式的ID
	FirstName      string    `bson:"first_name" json:"first_name"`     // 名
	LastName       string    `bson:"last_name" json:"last_name"`       // 姓
	Email          string    `bson:"email" json:"email"`               // 邮箱（唯一）
	HashedPassword string    `bson:"hashed_password" json:"-"`         // 密码（加密存储，不返回）
	Role           UserRole  `bson:"role" json:"role"`                 // 角色
	Enabled        bool      `bson:"enabled" json:"enabled"`           // 是否启用（禁用用户不能登录）
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// UserRole 用户角色
type UserRole string

const (
	RoleAdmin  UserRole = "admin"  // 管理员
	RoleMember UserRole = "member" // 家庭成员
)

// IsValid 检查角色是否有效
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// String 返回角色字符串
func (r UserRole) String() string {
	return string(r)
}
