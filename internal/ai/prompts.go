package ai

import (
	"fmt"
	"strings"
)

// 助手人设，所有对话共用
const personaPrompt = "You are Home AI assistant. Your job is to assist house members for question-answering tasks. Your native language is English, but you can speak other languages too."

// 检索命中时附加的指令
const groundedInstruction = "Use the following pieces of retrieved context to answer the question. If you don't know the answer, say that you don't know."

const titlePromptTemplate = "Generate a short 3-4 word title with an emoji at the start of the title for a conversation based on the following messages. Print ONLY the title.\n" +
	"User: %s\n" +
	"AI: %s\n" +
	"Title:"

// BuildSystemPrompt 组装本轮的 system prompt
// chunks 为空时只有人设；命中检索时带上指令和上下文片段
func BuildSystemPrompt(chunks []string) string {
	if len(chunks) == 0 {
		return personaPrompt
	}

	var b strings.Builder
	b.WriteString(personaPrompt)
	b.WriteString("\n")
	b.WriteString(groundedInstruction)
	b.WriteString("\n\nDocuments:\n")
	b.WriteString(strings.Join(chunks, "\n\n"))
	return b.String()
}

// BuildTitlePrompt 组装标题生成 prompt
func BuildTitlePrompt(userMessage, aiResponse string) string {
	return fmt.Sprintf(titlePromptTemplate, userMessage, aiResponse)
}

// TruncateTitle 收敛模型输出为最多4个词的短标题
func TruncateTitle(raw string) string {
	words := strings.Fields(strings.TrimSpace(raw))
	if len(words) > 4 {
		words = words[:4]
	}
	return strings.Join(words, " ")
}
