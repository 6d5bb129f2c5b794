package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/thkox/home-ai-server/internal/model"
)

// ConversationRepo 会话仓库
// 使用UUID作为ID，无需ObjectID转换
type ConversationRepo struct {
	collection *mongo.Collection
}

// NewConversationRepo 创建会话仓库
func NewConversationRepo(db *mongo.Database) *ConversationRepo {
	return &ConversationRepo{
		collection: db.Collection("conversations"),
	}
}

// Create 创建会话
func (r *ConversationRepo) Create(ctx context.Context, conv *model.Conversation) error {
	if conv.StartTime.IsZero() {
		conv.StartTime = time.Now()
	}
	if conv.SelectedDocumentIDs == nil {
		conv.SelectedDocumentIDs = []string{}
	}

	_, err := r.collection.InsertOne(ctx, conv)
	return err
}

// FindByIDAndUser 查询属于指定用户的会话
// 所有权检查下沉到查询条件，查不到与不存在同样返回 mongo.ErrNoDocuments
func (r *ConversationRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&conv)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListByUser 查询用户会话列表，按开始时间倒序
func (r *ConversationRepo) ListByUser(ctx context.Context, userID string) ([]*model.Conversation, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "start_time", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var convs []*model.Conversation
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, err
	}

	return convs, nil
}

// UpdateSelection 覆盖会话的文档选择集
func (r *ConversationRepo) UpdateSelection(ctx context.Context, id string, documentIDs []string) error {
	if documentIDs == nil {
		documentIDs = []string{}
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"selected_document_ids": documentIDs},
	})
	return err
}

// SetTitle 设置会话标题，只在尚未设置时生效
func (r *ConversationRepo) SetTitle(ctx context.Context, id, title string) error {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"title": bson.M{"$exists": false}},
			bson.M{"title": ""},
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"title": title}})
	return err
}

// Close 关闭会话并记录结束时间
func (r *ConversationRepo) Close(ctx context.Context, id string) error {
	now := time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": model.ConversationClosed, "end_time": now},
	})
	return err
}

// Delete 删除会话
func (r *ConversationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// PullDocumentFromSelections 从某用户所有会话的选择集中移除指定文档
// 文档被删除后，引用它的历史会话选择需要同步收敛
func (r *ConversationRepo) PullDocumentFromSelections(ctx context.Context, userID, documentID string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "selected_document_ids": documentID},
		bson.M{"$pull": bson.M{"selected_document_ids": documentID}},
	)
	return err
}
