package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/thkox/home-ai-server/internal/ai/component"
	"github.com/thkox/home-ai-server/internal/config"
	"github.com/thkox/home-ai-server/internal/pkg/tokenizer"
)

var (
	// ErrUpstream 模型服务不可达或调用失败
	ErrUpstream = errors.New("model upstream error")
	// ErrEmptyCompletion 模型返回了空内容
	ErrEmptyCompletion = errors.New("model returned empty completion")
)

// Client AI 能力层客户端
// 职责: 封装对话补全与标题生成，提供统一接口
type Client struct {
	cfg       *config.AIConfig
	chatModel model.ChatModel
}

// NewClient 创建 AI 客户端
func NewClient(ctx context.Context, cfg *config.AIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		log.Warn().Str("provider", cfg.Provider).Msg("AI API key not configured")
	}

	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return &Client{
		cfg:       cfg,
		chatModel: chatModel,
	}, nil
}

// ChatRequest AI 对话请求
// History 按时间升序，只含 user/assistant 两种角色
type ChatRequest struct {
	SystemPrompt string
	History      []*schema.Message
	Message      string
}

// ChatResult AI 对话结果
type ChatResult struct {
	Content         string
	Model           string
	TokensGenerated int
	ResponseTime    float64 // 秒
}

// Chat 同步对话
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	messages := make([]*schema.Message, 0, len(req.History)+2)
	messages = append(messages, schema.SystemMessage(req.SystemPrompt))
	messages = append(messages, req.History...)
	messages = append(messages, schema.UserMessage(req.Message))

	start := time.Now()
	resp, err := c.chatModel.Generate(ctx, messages)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%w: chat completion: %v", ErrUpstream, err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return nil, ErrEmptyCompletion
	}

	result := &ChatResult{
		Content:         content,
		Model:           c.cfg.Model,
		TokensGenerated: tokenizer.Count(content),
		ResponseTime:    elapsed.Seconds(),
	}

	log.Debug().
		Str("model", result.Model).
		Int("tokens_generated", result.TokensGenerated).
		Float64("response_time", result.ResponseTime).
		Msg("chat completion finished")

	return result, nil
}

// GenerateTitle 基于首轮问答生成会话标题
// 输出收敛为最多4个词；失败时返回错误，由调用方决定是否降级
func (c *Client) GenerateTitle(ctx context.Context, userMessage, aiResponse string) (string, error) {
	prompt := BuildTitlePrompt(userMessage, aiResponse)

	resp, err := c.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("%w: title generation: %v", ErrUpstream, err)
	}

	title := TruncateTitle(resp.Content)
	if title == "" {
		return "", ErrEmptyCompletion
	}
	return title, nil
}

// Model 当前配置的生成模型名
func (c *Client) Model() string {
	return c.cfg.Model
}
