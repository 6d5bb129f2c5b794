package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/thkox/home-ai-server/internal/model"
)

// DocumentRepo 文档仓库
type DocumentRepo struct {
	collection *mongo.Collection
}

// NewDocumentRepo 创建文档仓库
func NewDocumentRepo(db *mongo.Database) *DocumentRepo {
	return &DocumentRepo{
		collection: db.Collection("documents"),
	}
}

// Create 创建文档记录
func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	if doc.UploadTime.IsZero() {
		doc.UploadTime = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

// FindByIDAndUser 查询属于指定用户的文档
func (r *DocumentRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Document, error) {
	var doc model.Document
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByUserAndChecksum 按内容指纹查重
func (r *DocumentRepo) FindByUserAndChecksum(ctx context.Context, userID, checksum string) (*model.Document, error) {
	var doc model.Document
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "checksum": checksum}).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByUser 查询用户文档列表，按上传时间倒序
func (r *DocumentRepo) ListByUser(ctx context.Context, userID string) ([]*model.Document, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "upload_time", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*model.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	return docs, nil
}

// FindOwnedIDs 从候选ID中筛出确实属于该用户的那部分
// 用于校验会话选择集里的文档引用
func (r *DocumentRepo) FindOwnedIDs(ctx context.Context, userID string, candidateIDs []string) ([]string, error) {
	if len(candidateIDs) == 0 {
		return []string{}, nil
	}

	cursor, err := r.collection.Find(ctx,
		bson.M{"user_id": userID, "_id": bson.M{"$in": candidateIDs}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	owned := make([]string, 0, len(rows))
	for _, row := range rows {
		owned = append(owned, row.ID)
	}
	return owned, nil
}

// Delete 删除文档记录
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
