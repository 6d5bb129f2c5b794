package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/thkox/home-ai-server/internal/ai"
	"github.com/thkox/home-ai-server/internal/model"
	"github.com/thkox/home-ai-server/internal/pkg/storage"
	"github.com/thkox/home-ai-server/internal/vector"
)

// 基于内存的依赖实现，记录调用次数供断言

type memConversationStore struct {
	conversations        map[string]*model.Conversation
	updateSelectionCalls int
	setTitleCalls        int
	pulledDocumentIDs    []string
}

func newMemConversationStore() *memConversationStore {
	return &memConversationStore{conversations: make(map[string]*model.Conversation)}
}

func (s *memConversationStore) Create(_ context.Context, conv *model.Conversation) error {
	s.conversations[conv.ID] = conv
	return nil
}

func (s *memConversationStore) FindByIDAndUser(_ context.Context, id, userID string) (*model.Conversation, error) {
	conv, ok := s.conversations[id]
	if !ok || conv.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}
	clone := *conv
	return &clone, nil
}

func (s *memConversationStore) ListByUser(_ context.Context, userID string) ([]*model.Conversation, error) {
	var out []*model.Conversation
	for _, conv := range s.conversations {
		if conv.UserID == userID {
			out = append(out, conv)
		}
	}
	return out, nil
}

func (s *memConversationStore) UpdateSelection(_ context.Context, id string, documentIDs []string) error {
	s.updateSelectionCalls++
	s.conversations[id].SelectedDocumentIDs = documentIDs
	return nil
}

func (s *memConversationStore) SetTitle(_ context.Context, id, title string) error {
	s.setTitleCalls++
	if conv := s.conversations[id]; conv.Title == "" {
		conv.Title = title
	}
	return nil
}

func (s *memConversationStore) Close(_ context.Context, id string) error {
	now := time.Now()
	conv := s.conversations[id]
	conv.Status = model.ConversationClosed
	conv.EndTime = &now
	return nil
}

func (s *memConversationStore) Delete(_ context.Context, id string) error {
	delete(s.conversations, id)
	return nil
}

func (s *memConversationStore) PullDocumentFromSelections(_ context.Context, userID, documentID string) error {
	s.pulledDocumentIDs = append(s.pulledDocumentIDs, documentID)
	for _, conv := range s.conversations {
		if conv.UserID != userID {
			continue
		}
		kept := conv.SelectedDocumentIDs[:0]
		for _, id := range conv.SelectedDocumentIDs {
			if id != documentID {
				kept = append(kept, id)
			}
		}
		conv.SelectedDocumentIDs = kept
	}
	return nil
}

type memMessageStore struct {
	messages []*model.Message
}

func (s *memMessageStore) InsertExchange(_ context.Context, human, assistant *model.Message) error {
	s.messages = append(s.messages, human, assistant)
	return nil
}

func (s *memMessageStore) ListByConversation(_ context.Context, conversationID string) ([]*model.Message, error) {
	var out []*model.Message
	for _, msg := range s.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (s *memMessageStore) DeleteByConversation(_ context.Context, conversationID string) error {
	kept := s.messages[:0]
	for _, msg := range s.messages {
		if msg.ConversationID != conversationID {
			kept = append(kept, msg)
		}
	}
	s.messages = kept
	return nil
}

type memDocumentStore struct {
	documents map[string]*model.Document
}

func newMemDocumentStore() *memDocumentStore {
	return &memDocumentStore{documents: make(map[string]*model.Document)}
}

func (s *memDocumentStore) Create(_ context.Context, doc *model.Document) error {
	s.documents[doc.ID] = doc
	return nil
}

func (s *memDocumentStore) FindByIDAndUser(_ context.Context, id, userID string) (*model.Document, error) {
	doc, ok := s.documents[id]
	if !ok || doc.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}
	return doc, nil
}

func (s *memDocumentStore) FindByUserAndChecksum(_ context.Context, userID, checksum string) (*model.Document, error) {
	for _, doc := range s.documents {
		if doc.UserID == userID && doc.Checksum == checksum {
			return doc, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *memDocumentStore) ListByUser(_ context.Context, userID string) ([]*model.Document, error) {
	var out []*model.Document
	for _, doc := range s.documents {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *memDocumentStore) FindOwnedIDs(_ context.Context, userID string, candidateIDs []string) ([]string, error) {
	seen := make(map[string]bool)
	var owned []string
	for _, id := range candidateIDs {
		doc, ok := s.documents[id]
		if ok && doc.UserID == userID && !seen[id] {
			seen[id] = true
			owned = append(owned, id)
		}
	}
	return owned, nil
}

func (s *memDocumentStore) Delete(_ context.Context, id string) error {
	delete(s.documents, id)
	return nil
}

type stubChatClient struct {
	answer     string
	title      string
	titleErr   error
	chatCalls  int
	titleCalls int
}

func (c *stubChatClient) Chat(_ context.Context, _ *ai.ChatRequest) (*ai.ChatResult, error) {
	c.chatCalls++
	return &ai.ChatResult{
		Content:         c.answer,
		Model:           "test-model",
		TokensGenerated: 7,
		ResponseTime:    0.1,
	}, nil
}

func (c *stubChatClient) GenerateTitle(_ context.Context, _, _ string) (string, error) {
	c.titleCalls++
	if c.titleErr != nil {
		return "", c.titleErr
	}
	return c.title, nil
}

type stubVectorIndex struct {
	chunkCount  int64
	hits        []vector.ScoredChunk
	searchCalls int
	deletedDocs []string
}

func (v *stubVectorIndex) Search(_ context.Context, _ string, _ []float64, _ []string, _ int) ([]vector.ScoredChunk, error) {
	v.searchCalls++
	return v.hits, nil
}

func (v *stubVectorIndex) DeleteByDocument(_ context.Context, _, documentID string) error {
	v.deletedDocs = append(v.deletedDocs, documentID)
	return nil
}

func (v *stubVectorIndex) CountByUser(_ context.Context, _ string) (int64, error) {
	return v.chunkCount, nil
}

type stubIndexer struct {
	indexErr   error
	indexCalls int
	embedCalls int
}

func (p *stubIndexer) IndexDocument(_ context.Context, _ string, _ *model.Document, _ string) error {
	p.indexCalls++
	return p.indexErr
}

func (p *stubIndexer) EmbedQuery(_ context.Context, _ string) ([]float64, error) {
	p.embedCalls++
	return []float64{1, 0, 0}, nil
}

type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string, dest any) error {
	raw, ok := c.entries[key]
	if !ok {
		return errors.New("cache miss")
	}
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

type memStorage struct {
	files map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{files: make(map[string][]byte)}
}

func (s *memStorage) Upload(_ context.Context, key string, data io.Reader, _ string) (string, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	s.files[key] = raw
	return key, nil
}

func (s *memStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := s.files[key]
	if !ok {
		return nil, errors.New("file not found")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	delete(s.files, key)
	return nil
}

func (s *memStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.files[key]
	return ok, nil
}

func (s *memStorage) GetFileInfo(_ context.Context, key string) (*storage.FileInfo, error) {
	raw, ok := s.files[key]
	if !ok {
		return nil, errors.New("file not found")
	}
	return &storage.FileInfo{Key: key, Size: int64(len(raw))}, nil
}

func (s *memStorage) GetStorageType() string {
	return "memory"
}
