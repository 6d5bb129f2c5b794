package component

import (
	"context"
	"fmt"

	arkemb "github.com/cloudwego/eino-ext/components/embedding/ark"
	openaiemb "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"

	"github.com/thkox/home-ai-server/internal/config"
)

// NewEmbedder 创建 Embedder
// 与 ChatModel 一致，openai Provider 同时覆盖 Ollama 兼容端点
func NewEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	switch cfg.Provider {
	case "openai", "":
		return newOpenAIEmbedder(ctx, cfg)
	case "ark":
		return newArkEmbedder(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// newOpenAIEmbedder 创建 OpenAI Embedder
func newOpenAIEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	embCfg := &openaiemb.EmbeddingConfig{
		Model:  cfg.Model,
		APIKey: cfg.APIKey,
	}
	if cfg.BaseURL != "" {
		embCfg.BaseURL = cfg.BaseURL
	}

	return openaiemb.NewEmbedder(ctx, embCfg)
}

// newArkEmbedder 创建 Ark Embedder（使用 eino-ext 模块）
func newArkEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}

	embCfg := &arkemb.EmbeddingConfig{
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
	}

	return arkemb.NewEmbedder(ctx, embCfg)
}
