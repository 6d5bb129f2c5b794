package model

// ContinueConversationRequest 继续会话请求
// selected_documents 为 nil 表示沿用会话当前选择；非 nil（包括空数组）表示
// 显式覆盖选择集
type ContinueConversationRequest struct {
	Message           string    `json:"message" binding:"required"`
	SelectedDocuments *[]string `json:"selected_documents,omitempty"`
}
