// Package id 生成实体主键
// 用户、会话、消息、文档的 _id 都是UUID字符串，跨存储（Mongo/Redis/对象存储路径）
// 直接当普通字符串用
package id

import "github.com/google/uuid"

// New 生成一个UUID主键
func New() string {
	return uuid.NewString()
}

// IsValid 检查是否为合法的UUID
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
