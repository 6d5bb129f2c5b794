package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/thkox/home-ai-server/internal/ai"
	"github.com/thkox/home-ai-server/internal/config"
	"github.com/thkox/home-ai-server/internal/model"
	"github.com/thkox/home-ai-server/internal/model/auth"
	"github.com/thkox/home-ai-server/internal/pkg/cache"
	"github.com/thkox/home-ai-server/internal/pkg/id"
	"github.com/thkox/home-ai-server/internal/pkg/keylock"
)

var (
	ErrConversationNotFound     = errors.New("conversation not found")
	ErrConversationClosed       = errors.New("conversation is closed")
	ErrInvalidDocumentReference = errors.New("selected document does not exist or is not yours")
)

// ConversationService 会话服务
// 承载一轮对话的编排: 选择集校验 -> 检索 -> 生成 -> 成对落库 -> 标题
type ConversationService struct {
	conversationRepo ConversationStore
	messageRepo      MessageStore
	documentRepo     DocumentStore
	aiClient         ChatClient
	vectorStore      VectorIndex
	pipeline         Indexer
	cache            Cache
	locks            *keylock.KeyLock
	ragCfg           *config.RAGConfig
}

// NewConversationService 创建会话服务
func NewConversationService(
	conversationRepo ConversationStore,
	messageRepo MessageStore,
	documentRepo DocumentStore,
	aiClient ChatClient,
	vectorStore VectorIndex,
	pipeline Indexer,
	redisCache Cache,
	ragCfg *config.RAGConfig,
) *ConversationService {
	return &ConversationService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		documentRepo:     documentRepo,
		aiClient:         aiClient,
		vectorStore:      vectorStore,
		pipeline:         pipeline,
		cache:            redisCache,
		locks:            keylock.New(),
		ragCfg:           ragCfg,
	}
}

// Create 创建新会话
func (s *ConversationService) Create(ctx context.Context, userID string) (*model.Conversation, error) {
	conv := &model.Conversation{
		ID:                  id.New(),
		UserID:              userID,
		Status:              model.ConversationActive,
		StartTime:           time.Now(),
		SelectedDocumentIDs: []string{},
	}

	if err := s.conversationRepo.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// List 用户会话列表
func (s *ConversationService) List(ctx context.Context, userID string) ([]*model.Conversation, error) {
	return s.conversationRepo.ListByUser(ctx, userID)
}

// Get 查询单个会话
func (s *ConversationService) Get(ctx context.Context, userID, conversationID string) (*model.Conversation, error) {
	// 读多写少，会话元数据走一层缓存
	var cached model.Conversation
	cacheKey := cache.ConversationCacheKey(conversationID)
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && cached.UserID == userID {
		return &cached, nil
	}

	conv, err := s.conversationRepo.FindByIDAndUser(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, conv, cache.ConversationCacheTTL); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).Msg("failed to cache conversation")
	}
	return conv, nil
}

// GetMessages 按时间升序返回会话消息
func (s *ConversationService) GetMessages(ctx context.Context, userID, conversationID string) ([]*model.Message, error) {
	if _, err := s.Get(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListByConversation(ctx, conversationID)
}

// Continue 在会话中继续一轮对话
// 同一会话的并发请求被串行化，消息顺序与锁获取顺序一致
func (s *ConversationService) Continue(ctx context.Context, userID, conversationID string, req *model.ContinueConversationRequest) (*model.ContinueConversationResponse, error) {
	s.locks.Lock(conversationID)
	defer s.locks.Unlock(conversationID)
	defer s.invalidate(ctx, conversationID)

	conv, err := s.conversationRepo.FindByIDAndUser(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if !conv.IsActive() {
		return nil, ErrConversationClosed
	}

	// 显式传入选择集时先校验引用再覆盖，校验失败不产生任何写入
	if req.SelectedDocuments != nil {
		selection := dedupe(*req.SelectedDocuments)
		owned, err := s.documentRepo.FindOwnedIDs(ctx, userID, selection)
		if err != nil {
			return nil, fmt.Errorf("validate document selection: %w", err)
		}
		if len(owned) != len(selection) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDocumentReference, strings.Join(missingIDs(selection, owned), ", "))
		}
		if err := s.conversationRepo.UpdateSelection(ctx, conversationID, selection); err != nil {
			return nil, fmt.Errorf("update document selection: %w", err)
		}
		conv.SelectedDocumentIDs = selection
	}

	history, err := s.messageRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation history: %w", err)
	}

	chunks := s.retrieve(ctx, userID, conv.SelectedDocumentIDs, req.Message)

	result, err := s.aiClient.Chat(ctx, &ai.ChatRequest{
		SystemPrompt: ai.BuildSystemPrompt(chunks),
		History:      s.buildHistory(history),
		Message:      req.Message,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	human := &model.Message{
		ID:             id.New(),
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        req.Message,
		LLMModel:       result.Model,
		Timestamp:      now,
	}
	assistant := &model.Message{
		ID:              id.New(),
		ConversationID:  conversationID,
		SenderID:        auth.AssistantUserID,
		Content:         result.Content,
		LLMModel:        result.Model,
		TokensGenerated: result.TokensGenerated,
		ResponseTime:    result.ResponseTime,
		Timestamp:       now.Add(time.Millisecond),
	}

	if err := s.messageRepo.InsertExchange(ctx, human, assistant); err != nil {
		return nil, fmt.Errorf("persist message exchange: %w", err)
	}

	resp := &model.ContinueConversationResponse{
		ConversationID: conversationID,
		Answer:         assistant,
	}

	// 首轮成功后生成标题，失败不影响本轮结果
	if conv.Title == "" {
		title, err := s.aiClient.GenerateTitle(ctx, req.Message, result.Content)
		if err != nil {
			log.Warn().Err(err).Str("conversation_id", conversationID).Msg("failed to generate conversation title")
		} else if err := s.conversationRepo.SetTitle(ctx, conversationID, title); err != nil {
			log.Warn().Err(err).Str("conversation_id", conversationID).Msg("failed to store conversation title")
		} else {
			resp.Title = title
		}
	}

	return resp, nil
}

// retrieve 在选择集上做向量检索
// 检索通路故障时降级为不带上下文回答，只留告警
func (s *ConversationService) retrieve(ctx context.Context, userID string, documentIDs []string, query string) []string {
	if len(documentIDs) == 0 {
		return nil
	}

	// 向量库里没有该用户的任何切块时直接跳过，省掉一次 embedding 调用
	count, err := s.vectorStore.CountByUser(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("vector count failed, answering without context")
		return nil
	}
	if count == 0 {
		return nil
	}

	queryVec, err := s.pipeline.EmbedQuery(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("query embedding failed, answering without context")
		return nil
	}

	hits, err := s.vectorStore.Search(ctx, userID, queryVec, documentIDs, s.ragCfg.TopK)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("vector search failed, answering without context")
		return nil
	}

	chunks := make([]string, 0, len(hits))
	for _, hit := range hits {
		chunks = append(chunks, hit.Content)
	}
	return chunks
}

// buildHistory 把落库消息转成模型输入，只保留最近的若干条
func (s *ConversationService) buildHistory(messages []*model.Message) []*schema.Message {
	if max := s.ragCfg.MaxHistoryMessages; max > 0 && len(messages) > max {
		messages = messages[len(messages)-max:]
	}

	history := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.SenderID == auth.AssistantUserID {
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		} else {
			history = append(history, schema.UserMessage(msg.Content))
		}
	}
	return history
}

// Close 关闭会话
func (s *ConversationService) Close(ctx context.Context, userID, conversationID string) error {
	conv, err := s.Get(ctx, userID, conversationID)
	if err != nil {
		return err
	}
	if !conv.IsActive() {
		return ErrConversationClosed
	}

	if err := s.conversationRepo.Close(ctx, conversationID); err != nil {
		return fmt.Errorf("close conversation: %w", err)
	}
	s.invalidate(ctx, conversationID)
	return nil
}

// Delete 删除会话及其全部消息
// 消息先删: 中途失败时会话仍在，可重试，不会留下孤儿消息
func (s *ConversationService) Delete(ctx context.Context, userID, conversationID string) error {
	if _, err := s.Get(ctx, userID, conversationID); err != nil {
		return err
	}

	s.locks.Lock(conversationID)
	defer s.locks.Unlock(conversationID)

	if err := s.messageRepo.DeleteByConversation(ctx, conversationID); err != nil {
		return fmt.Errorf("delete conversation messages: %w", err)
	}
	if err := s.conversationRepo.Delete(ctx, conversationID); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}

	s.invalidate(ctx, conversationID)
	return nil
}

func (s *ConversationService) invalidate(ctx context.Context, conversationID string) {
	if err := s.cache.Delete(ctx, cache.ConversationCacheKey(conversationID)); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).Msg("failed to invalidate conversation cache")
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// missingIDs 返回 requested 中不在 owned 里的 id
func missingIDs(requested, owned []string) []string {
	have := make(map[string]bool, len(owned))
	for _, v := range owned {
		have[v] = true
	}
	var missing []string
	for _, v := range requested {
		if !have[v] {
			missing = append(missing, v)
		}
	}
	return missing
}
