package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thkox/home-ai-server/internal/ai"
	"github.com/thkox/home-ai-server/internal/ingest"
	httputil "github.com/thkox/home-ai-server/internal/pkg/http"
	"github.com/thkox/home-ai-server/internal/service"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// respondError 把Service层错误翻译成HTTP响应
// 客户端按 kind 分支，code 保留旧式数字错误码
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	resp := httputil.NewKindErrorResponse(50001, httputil.KindPersistenceFailure, err.Error())

	switch {
	case errors.Is(err, service.ErrConversationNotFound),
		errors.Is(err, service.ErrDocumentNotFound):
		status = http.StatusNotFound
		resp = httputil.NewKindErrorResponse(40401, httputil.KindNotFound, err.Error())

	case errors.Is(err, service.ErrConversationClosed):
		status = http.StatusConflict
		resp = httputil.NewKindErrorResponse(40901, httputil.KindInvalidReference, err.Error())

	case errors.Is(err, service.ErrInvalidDocumentReference):
		status = http.StatusBadRequest
		resp = httputil.NewKindErrorResponse(40004, httputil.KindInvalidReference, err.Error())

	case errors.Is(err, service.ErrUnsupportedDocument),
		errors.Is(err, ingest.ErrUnsupportedType):
		status = http.StatusBadRequest
		resp = httputil.NewKindErrorResponse(40005, httputil.KindUnsupportedType, err.Error())

	case errors.Is(err, ai.ErrUpstream), errors.Is(err, ai.ErrEmptyCompletion):
		status = http.StatusBadGateway
		resp = httputil.NewKindErrorResponse(50201, httputil.KindUpstreamUnavailable, err.Error())
	}

	c.JSON(status, resp)
}

// respondBadRequest 请求体解析失败
func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, httputil.NewKindErrorResponse(
		40001, httputil.KindValidation, "Invalid request body", err.Error()))
}

// respondUnauthorized 缺少或无法解析用户身份
func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, httputil.NewKindErrorResponse(
		40101, httputil.KindUnauthorized, "unauthorized"))
}
