package service

import (
	"context"
	"time"

	"github.com/thkox/home-ai-server/internal/ai"
	"github.com/thkox/home-ai-server/internal/model"
	"github.com/thkox/home-ai-server/internal/vector"
)

// 服务层依赖按用到的方法收窄成接口，repository/vector/ingest 的具体实现直接满足

// ConversationStore 会话持久化
type ConversationStore interface {
	Create(ctx context.Context, conv *model.Conversation) error
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Conversation, error)
	UpdateSelection(ctx context.Context, id string, documentIDs []string) error
	SetTitle(ctx context.Context, id, title string) error
	Close(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	PullDocumentFromSelections(ctx context.Context, userID, documentID string) error
}

// MessageStore 消息持久化
type MessageStore interface {
	InsertExchange(ctx context.Context, human, assistant *model.Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]*model.Message, error)
	DeleteByConversation(ctx context.Context, conversationID string) error
}

// DocumentStore 文档持久化
type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Document, error)
	FindByUserAndChecksum(ctx context.Context, userID, checksum string) (*model.Document, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Document, error)
	FindOwnedIDs(ctx context.Context, userID string, candidateIDs []string) ([]string, error)
	Delete(ctx context.Context, id string) error
}

// ChatClient 大模型对话
type ChatClient interface {
	Chat(ctx context.Context, req *ai.ChatRequest) (*ai.ChatResult, error)
	GenerateTitle(ctx context.Context, userMessage, aiResponse string) (string, error)
}

// VectorIndex 向量索引
type VectorIndex interface {
	Search(ctx context.Context, userID string, query []float64, documentIDs []string, topK int) ([]vector.ScoredChunk, error)
	DeleteByDocument(ctx context.Context, userID, documentID string) error
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// Indexer 文档索引与查询向量化
type Indexer interface {
	IndexDocument(ctx context.Context, userID string, doc *model.Document, path string) error
	EmbedQuery(ctx context.Context, query string) ([]float64, error)
}

// Cache 键值缓存
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
