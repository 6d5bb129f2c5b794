package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/thkox/home-ai-server/internal/ingest"
	"github.com/thkox/home-ai-server/internal/model"
	"github.com/thkox/home-ai-server/internal/pkg/id"
	"github.com/thkox/home-ai-server/internal/pkg/storage"
)

var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrUnsupportedDocument = errors.New("unsupported file type")
)

// DocumentService 文档服务
// 负责上传去重、落盘、索引和级联删除
type DocumentService struct {
	documentRepo     DocumentStore
	conversationRepo ConversationStore
	storage          storage.Storage
	vectorStore      VectorIndex
	pipeline         Indexer
}

// NewDocumentService 创建文档服务
func NewDocumentService(
	documentRepo DocumentStore,
	conversationRepo ConversationStore,
	store storage.Storage,
	vectorStore VectorIndex,
	pipeline Indexer,
) *DocumentService {
	return &DocumentService{
		documentRepo:     documentRepo,
		conversationRepo: conversationRepo,
		storage:          store,
		vectorStore:      vectorStore,
		pipeline:         pipeline,
	}
}

// UploadFile 待上传的文件
type UploadFile struct {
	FileName string
	Reader   io.Reader
}

// Upload 批量上传并索引文档
// 同一用户内容重复的文件直接跳过；全部重复时 message 提示无新文档
func (s *DocumentService) Upload(ctx context.Context, userID string, files []UploadFile) (*model.UploadResponse, error) {
	resp := &model.UploadResponse{Results: make([]model.UploadResult, 0, len(files))}

	newDocuments := 0
	for _, file := range files {
		if !ingest.IsSupported(file.FileName) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, file.FileName)
		}

		result, err := s.uploadOne(ctx, userID, file)
		if err != nil {
			return nil, err
		}

		if !result.Skipped {
			newDocuments++
		}
		resp.Results = append(resp.Results, *result)
	}

	if newDocuments == 0 {
		resp.Message = "no new documents"
	}
	return resp, nil
}

func (s *DocumentService) uploadOne(ctx context.Context, userID string, file UploadFile) (*model.UploadResult, error) {
	// 先写临时文件: 索引阶段的文本抽取需要本地路径
	tmp, err := os.CreateTemp("", "homeai-upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), file.Reader)
	closeErr := tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("save uploaded file: %w", err)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("save uploaded file: %w", closeErr)
	}

	checksum := hex.EncodeToString(hasher.Sum(nil))

	// 内容去重
	existing, err := s.documentRepo.FindByUserAndChecksum(ctx, userID, checksum)
	if err == nil {
		log.Info().
			Str("user_id", userID).
			Str("file_name", file.FileName).
			Str("document_id", existing.ID).
			Msg("duplicate upload skipped")
		return &model.UploadResult{
			FileName:   file.FileName,
			Skipped:    true,
			DocumentID: existing.ID,
		}, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("checksum lookup: %w", err)
	}

	doc := &model.Document{
		ID:       id.New(),
		UserID:   userID,
		FileName: file.FileName,
		Checksum: checksum,
		Size:     float64(size) / (1024 * 1024),
	}
	doc.FilePath = fmt.Sprintf("%s/%s_%s", userID, doc.ID, file.FileName)

	src, err := os.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("reopen uploaded file: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(file.FileName))
	_, err = s.storage.Upload(ctx, doc.FilePath, src, contentType)
	src.Close()
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		_ = s.storage.Delete(ctx, doc.FilePath)
		return nil, fmt.Errorf("create document record: %w", err)
	}

	// 索引失败时回滚已写入的记录和文件，上传要么完整要么不存在
	if err := s.pipeline.IndexDocument(ctx, userID, doc, tmpPath); err != nil {
		_ = s.vectorStore.DeleteByDocument(ctx, userID, doc.ID)
		_ = s.documentRepo.Delete(ctx, doc.ID)
		_ = s.storage.Delete(ctx, doc.FilePath)
		return nil, fmt.Errorf("index document %s: %w", file.FileName, err)
	}

	return &model.UploadResult{
		FileName:   file.FileName,
		DocumentID: doc.ID,
		Document:   doc,
	}, nil
}

// List 用户文档列表
func (s *DocumentService) List(ctx context.Context, userID string) ([]*model.Document, error) {
	return s.documentRepo.ListByUser(ctx, userID)
}

// Get 查询单个文档
func (s *DocumentService) Get(ctx context.Context, userID, documentID string) (*model.Document, error) {
	doc, err := s.documentRepo.FindByIDAndUser(ctx, documentID, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Download 打开文档内容流
func (s *DocumentService) Download(ctx context.Context, userID, documentID string) (*model.Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.storage.Download(ctx, doc.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open document content: %w", err)
	}
	return doc, reader, nil
}

// Delete 级联删除文档
// 顺序: 存储文件 -> 向量索引 -> 会话选择集 -> 数据库记录
// 记录最后删，中途失败时文档仍可见、可重试
func (s *DocumentService) Delete(ctx context.Context, userID, documentID string) error {
	doc, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, doc.FilePath); err != nil {
		return fmt.Errorf("delete document file: %w", err)
	}

	if err := s.vectorStore.DeleteByDocument(ctx, userID, documentID); err != nil {
		return fmt.Errorf("delete document vectors: %w", err)
	}

	if err := s.conversationRepo.PullDocumentFromSelections(ctx, userID, documentID); err != nil {
		return fmt.Errorf("detach document from conversations: %w", err)
	}

	if err := s.documentRepo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete document record: %w", err)
	}

	log.Info().
		Str("user_id", userID).
		Str("document_id", documentID).
		Str("file_name", doc.FileName).
		Msg("document deleted")
	return nil
}
