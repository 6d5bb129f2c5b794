package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thkox/home-ai-server/internal/pkg/ctxutil"
	httputil "github.com/thkox/home-ai-server/internal/pkg/http"
	"github.com/thkox/home-ai-server/internal/service"
)

// DocumentHandler 文档处理器
type DocumentHandler struct {
	svc *service.DocumentService
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Upload 批量上传文档
// @Summary      上传文档
// @Description  multipart 批量上传，内容重复的文件跳过，其余的抽取文本并建立索引
// @Tags         文档
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        files  formData  file  true  "文档文件（可多个）"
// @Success      201   {object}  model.UploadResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Router       /api/v1/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, httputil.NewKindErrorResponse(
			40001, httputil.KindValidation, "no files in request"))
		return
	}

	files := make([]service.UploadFile, 0, len(fileHeaders))
	closers := make([]func() error, 0, len(fileHeaders))
	defer func() {
		for _, closeFn := range closers {
			_ = closeFn()
		}
	}()

	for _, header := range fileHeaders {
		f, err := header.Open()
		if err != nil {
			respondBadRequest(c, fmt.Errorf("open uploaded file %s: %w", header.Filename, err))
			return
		}
		closers = append(closers, f.Close)
		files = append(files, service.UploadFile{
			FileName: header.Filename,
			Reader:   f,
		})
	}

	resp, err := h.svc.Upload(c.Request.Context(), userID, files)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// List 文档列表
// @Summary      文档列表
// @Tags         文档
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Router       /api/v1/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}

	docs, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"total":     len(docs),
	})
}

// Get 文档详情
// @Summary      文档详情
// @Tags         文档
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "文档ID"
// @Success      200  {object}  model.Document
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}

	doc, err := h.svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Download 下载文档原文件
// @Summary      下载文档
// @Tags         文档
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id  path  string  true  "文档ID"
// @Success      200
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}

	doc, reader, err := h.svc.Download(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", reader, nil)
}

// Delete 删除文档
// @Summary      删除文档
// @Description  级联清理存储文件、向量索引和会话选择集里的引用
// @Tags         文档
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "文档ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		respondUnauthorized(c)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}
