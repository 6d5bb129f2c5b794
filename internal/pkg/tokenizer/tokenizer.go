package tokenizer

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog/log"
)

// 默认编码。大部分现代 chat 模型都兼容 cl100k_base 的量级估计。
const defaultEncoding = "cl100k_base"

var (
	once sync.Once
	enc  *tiktoken.Tiktoken
)

// Count 统计文本的 token 数
// 优先使用 tiktoken 真实计数；编码不可用时退化为按空白切分的近似计数
// （与旧版本行为一致，误差对计费统计可接受）
func Count(text string) int {
	once.Do(func() {
		e, err := tiktoken.GetEncoding(defaultEncoding)
		if err != nil {
			log.Warn().Err(err).Msg("tiktoken encoding unavailable, falling back to whitespace token count")
			return
		}
		enc = e
	})

	if enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return ApproxCount(text)
}

// ApproxCount 按空白切分的近似 token 计数
func ApproxCount(text string) int {
	return len(strings.Fields(text))
}
