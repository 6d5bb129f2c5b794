package model

import (
	"time"
)

// ConversationStatus 会话状态
type ConversationStatus string

const (
	ConversationActive ConversationStatus = "active" // 只有 active 会话接受新消息
	ConversationClosed ConversationStatus = "closed" // 终态
)

// Conversation 会话实体
// selected_document_ids 是会话级的文档选择集：某次消息显式指定后持续生效，
// 直到下一次显式指定覆盖；空集表示不做检索限制（即不检索）
type Conversation struct {
	ID                  string             `bson:"_id,omitempty" json:"id"`
	UserID              string             `bson:"user_id" json:"user_id"`
	Title               string             `bson:"title,omitempty" json:"title,omitempty"` // 首次成功交互后惰性生成，只设置一次
	Status              ConversationStatus `bson:"status" json:"status"`
	StartTime           time.Time          `bson:"start_time" json:"start_time"`
	EndTime             *time.Time         `bson:"end_time,omitempty" json:"end_time,omitempty"`
	SelectedDocumentIDs []string           `bson:"selected_document_ids" json:"selected_document_ids"`
}

// IsActive 会话是否还接受新消息
func (c *Conversation) IsActive() bool {
	return c.Status == ConversationActive
}

// Message 消息实体
// 人类消息和AI消息共用同一结构；人类消息的 tokens_generated/response_time 为0，
// llm_model 也照常记录（表示将要回应它的模型）
type Message struct {
	ID              string    `bson:"_id,omitempty" json:"id"`
	ConversationID  string    `bson:"conversation_id" json:"conversation_id"`
	SenderID        string    `bson:"sender_id" json:"sender_id"` // 人类用户或助手哨兵用户
	Content         string    `bson:"content" json:"content"`
	LLMModel        string    `bson:"llm_model" json:"llm_model"`
	TokensGenerated int       `bson:"tokens_generated" json:"tokens_generated"`
	ResponseTime    float64   `bson:"response_time" json:"response_time"` // 秒
	Timestamp       time.Time `bson:"timestamp" json:"timestamp"`
}
