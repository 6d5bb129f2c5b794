package auth

import "time"

// RefreshToken 长效凭证
// Token 值是不透明随机串，不是JWT；换发Access Token时查库校验，
// 所以修改密码、禁用账号都能立即让它失效
type RefreshToken struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Token     string    `bson:"token" json:"token"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// IsExpired 是否已过期
func (rt *RefreshToken) IsExpired() bool {
	return !rt.ExpiresAt.After(time.Now())
}
