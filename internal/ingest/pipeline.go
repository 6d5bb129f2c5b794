package ingest

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/rs/zerolog/log"

	"github.com/thkox/home-ai-server/internal/model"
	"github.com/thkox/home-ai-server/internal/pkg/id"
	"github.com/thkox/home-ai-server/internal/vector"
)

// Pipeline 文档索引流水线: 抽取文本 -> 切块 -> 向量化 -> 写入索引
// 向量化全部成功后才写索引，单个文档的索引要么全有要么全无
type Pipeline struct {
	embedder embedding.Embedder
	store    *vector.Store
	splitter *Splitter
}

// NewPipeline 创建索引流水线
func NewPipeline(embedder embedding.Embedder, store *vector.Store, splitter *Splitter) *Pipeline {
	return &Pipeline{
		embedder: embedder,
		store:    store,
		splitter: splitter,
	}
}

// IndexDocument 把一个已落盘的文档写入该用户的向量索引
func (p *Pipeline) IndexDocument(ctx context.Context, userID string, doc *model.Document, path string) error {
	text, err := ExtractText(path, doc.FileName)
	if err != nil {
		return err
	}

	pieces := p.splitter.Split(text)
	if len(pieces) == 0 {
		log.Warn().
			Str("document_id", doc.ID).
			Str("file_name", doc.FileName).
			Msg("document produced no indexable text")
		return nil
	}

	embeddings, err := p.embedder.EmbedStrings(ctx, pieces)
	if err != nil {
		return fmt.Errorf("embed document chunks: %w", err)
	}
	if len(embeddings) != len(pieces) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(pieces))
	}

	chunks := make([]vector.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = vector.Chunk{
			ID:         id.New(),
			DocumentID: doc.ID,
			FileName:   doc.FileName,
			Content:    piece,
			Embedding:  embeddings[i],
		}
	}

	if err := p.store.Upsert(ctx, userID, chunks); err != nil {
		return err
	}

	log.Info().
		Str("user_id", userID).
		Str("document_id", doc.ID).
		Str("file_name", doc.FileName).
		Int("chunks", len(chunks)).
		Msg("document indexed")
	return nil
}

// EmbedQuery 向量化一条查询文本
func (p *Pipeline) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	vectors, err := p.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}
	return vectors[0], nil
}
