package vector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Chunk 待写入索引的文本块
type Chunk struct {
	ID         string
	DocumentID string
	FileName   string
	Content    string
	Embedding  []float64
}

// ScoredChunk 检索命中的文本块
type ScoredChunk struct {
	Chunk
	Score float64
}

// Store 向量索引
// 每个用户一个独立命名空间，块向量存在 Redis hash 里，
// 检索时对该用户的全部候选块做余弦相似度暴力排序
//
// key 布局:
//
//	vec:{user}:chunk:{id}  hash: content, document_id, file_name, embedding(JSON)
//	vec:{user}:doc:{doc}   set:  该文档的块ID
//	vec:{user}:chunks      set:  该用户的全部块ID
type Store struct {
	client *redis.Client
}

// NewStore 创建向量索引
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func chunkKey(userID, chunkID string) string {
	return fmt.Sprintf("vec:%s:chunk:%s", userID, chunkID)
}

func docKey(userID, documentID string) string {
	return fmt.Sprintf("vec:%s:doc:%s", userID, documentID)
}

func userChunksKey(userID string) string {
	return fmt.Sprintf("vec:%s:chunks", userID)
}

// Upsert 批量写入一个文档的块向量
func (s *Store) Upsert(ctx context.Context, userID string, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, chunk := range chunks {
		embedding, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return fmt.Errorf("marshal embedding for chunk %s: %w", chunk.ID, err)
		}

		pipe.HSet(ctx, chunkKey(userID, chunk.ID), map[string]interface{}{
			"content":     chunk.Content,
			"document_id": chunk.DocumentID,
			"file_name":   chunk.FileName,
			"embedding":   embedding,
		})
		pipe.SAdd(ctx, docKey(userID, chunk.DocumentID), chunk.ID)
		pipe.SAdd(ctx, userChunksKey(userID), chunk.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}

	log.Debug().
		Str("user_id", userID).
		Int("chunks", len(chunks)).
		Msg("chunks indexed")
	return nil
}

// Search 在指定文档范围内检索与查询向量最相近的topK个块
// documentIDs 为空时直接返回空结果，不做全库检索
func (s *Store) Search(ctx context.Context, userID string, query []float64, documentIDs []string, topK int) ([]ScoredChunk, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(documentIDs))
	for _, docID := range documentIDs {
		keys = append(keys, docKey(userID, docID))
	}

	chunkIDs, err := s.client.SUnion(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("collect candidate chunks: %w", err)
	}
	if len(chunkIDs) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(chunkIDs))
	for i, id := range chunkIDs {
		cmds[i] = pipe.HGetAll(ctx, chunkKey(userID, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("load candidate chunks: %w", err)
	}

	candidates := make([]ScoredChunk, 0, len(chunkIDs))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// 块在检索过程中被删除，跳过
			continue
		}

		var embedding []float64
		if err := json.Unmarshal([]byte(fields["embedding"]), &embedding); err != nil {
			log.Warn().Str("chunk_id", chunkIDs[i]).Err(err).Msg("skip chunk with corrupt embedding")
			continue
		}

		candidates = append(candidates, ScoredChunk{Chunk: Chunk{
			ID:         chunkIDs[i],
			DocumentID: fields["document_id"],
			FileName:   fields["file_name"],
			Content:    fields["content"],
			Embedding:  embedding,
		}})
	}

	return rankTopK(query, candidates, topK), nil
}

// DeleteByDocument 移除一个文档的全部块
func (s *Store) DeleteByDocument(ctx context.Context, userID, documentID string) error {
	chunkIDs, err := s.client.SMembers(ctx, docKey(userID, documentID)).Result()
	if err != nil {
		return fmt.Errorf("list document chunks: %w", err)
	}
	if len(chunkIDs) == 0 {
		log.Warn().
			Str("user_id", userID).
			Str("document_id", documentID).
			Msg("no embeddings found for document")
	}

	pipe := s.client.TxPipeline()
	for _, id := range chunkIDs {
		pipe.Del(ctx, chunkKey(userID, id))
		pipe.SRem(ctx, userChunksKey(userID), id)
	}
	pipe.Del(ctx, docKey(userID, documentID))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete document chunks: %w", err)
	}
	return nil
}

// CountByUser 用户当前索引里的块数量
func (s *Store) CountByUser(ctx context.Context, userID string) (int64, error) {
	return s.client.SCard(ctx, userChunksKey(userID)).Result()
}
