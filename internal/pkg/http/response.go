package http

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Code    int    `json:"code"`             // 错误码（非0表示错误）
	Kind    string `json:"kind,omitempty"`   // 稳定的错误类别（not_found / invalid_reference / ...）
	Message string `json:"message"`          // 错误消息
	Detail  string `json:"detail,omitempty"` // 错误详情（可选）
}

// SuccessResponse 成功响应（所有API共用）
type SuccessResponse struct {
	Code    int         `json:"code"`           // 状态码（0表示成功）
	Message string      `json:"message"`        // 响应消息
	Data    interface{} `json:"data,omitempty"` // 响应数据（可选）
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(message string, data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Code:    0,
		Message: message,
		Data:    data,
	}
}

// 稳定的错误类别，客户端按类别而不是按消息文案分支
const (
	KindValidation          = "validation"
	KindUnauthorized        = "unauthorized"
	KindNotFound            = "not_found"
	KindInvalidReference    = "invalid_reference"
	KindUnsupportedType     = "unsupported_type"
	KindUpstreamUnavailable = "upstream_unavailable"
	KindPersistenceFailure  = "persistence_failure"
)

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string, detail ...string) *ErrorResponse {
	resp := &ErrorResponse{
		Code:    code,
		Message: message,
	}
	if len(detail) > 0 && detail[0] != "" {
		resp.Detail = detail[0]
	}
	return resp
}

// NewKindErrorResponse 创建带错误类别的错误响应
func NewKindErrorResponse(code int, kind, message string, detail ...string) *ErrorResponse {
	resp := NewErrorResponse(code, message, detail...)
	resp.Kind = kind
	return resp
}
