package model

// ContinueConversationResponse 继续会话响应
type ContinueConversationResponse struct {
	ConversationID string   `json:"conversation_id"`
	Answer         *Message `json:"answer"`
	Title          string   `json:"title,omitempty"` // 本轮生成了标题时回带
}

// UploadResult 单个文件的上传结果
type UploadResult struct {
	FileName   string    `json:"file_name"`
	Skipped    bool      `json:"skipped"` // 内容重复，未新建记录
	DocumentID string    `json:"document_id,omitempty"`
	Document   *Document `json:"document,omitempty"`
}

// UploadResponse 批量上传响应
// 全部重复时 documents 为空，message 提示 "no new documents"
type UploadResponse struct {
	Results []UploadResult `json:"results"`
	Message string         `json:"message,omitempty"`
}
