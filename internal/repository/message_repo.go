package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/thkox/home-ai-server/internal/model"
	"github.com/thkox/home-ai-server/internal/pkg/mongodb"
)

// MessageRepo 消息仓库
// 消息独立成集合，(conversation_id, timestamp) 升序是会话记录的规范顺序
type MessageRepo struct {
	client     *mongodb.Client
	collection *mongo.Collection
}

// NewMessageRepo 创建消息仓库
func NewMessageRepo(client *mongodb.Client) *MessageRepo {
	return &MessageRepo{
		client:     client,
		collection: client.Collection("messages"),
	}
}

// InsertExchange 在一个事务中成对写入人类消息和AI回复
// 二者要么都落库要么都不落库，避免出现缺少回复的半截记录
func (r *MessageRepo) InsertExchange(ctx context.Context, human, assistant *model.Message) error {
	_, err := r.client.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.collection.InsertOne(sc, human); err != nil {
			return nil, err
		}
		if _, err := r.collection.InsertOne(sc, assistant); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

// ListByConversation 按时间升序返回会话的全部消息
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]*model.Message, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "timestamp", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*model.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

// CountByConversation 统计会话消息数
func (r *MessageRepo) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"conversation_id": conversationID})
}

// DeleteByConversation 删除会话的全部消息
func (r *MessageRepo) DeleteByConversation(ctx context.Context, conversationID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"conversation_id": conversationID})
	return err
}
