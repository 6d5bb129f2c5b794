package service

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/thkox/home-ai-server/internal/config"
	"github.com/thkox/home-ai-server/internal/model"
)

type convFixture struct {
	svc      *ConversationService
	convs    *memConversationStore
	messages *memMessageStore
	docs     *memDocumentStore
	chat     *stubChatClient
	vecIdx   *stubVectorIndex
	indexer  *stubIndexer
}

func newConvFixture() *convFixture {
	f := &convFixture{
		convs:    newMemConversationStore(),
		messages: &memMessageStore{},
		docs:     newMemDocumentStore(),
		chat:     &stubChatClient{answer: "the rent is 500", title: "🏠 Rent Question"},
		vecIdx:   &stubVectorIndex{},
		indexer:  &stubIndexer{},
	}
	f.svc = NewConversationService(
		f.convs, f.messages, f.docs, f.chat, f.vecIdx, f.indexer,
		newMemCache(), &config.RAGConfig{TopK: 3, MaxHistoryMessages: 20},
	)
	return f
}

func (f *convFixture) addDocument(userID, docID string) {
	f.docs.documents[docID] = &model.Document{ID: docID, UserID: userID, FileName: docID + ".txt"}
}

func TestConversationService_Continue(t *testing.T) {
	ctx := context.Background()
	userID := "user-1"

	Convey("Continue 编排一轮对话", t, func() {
		f := newConvFixture()
		conv, err := f.svc.Create(ctx, userID)
		So(err, ShouldBeNil)

		Convey("首轮生成标题，后续轮次不再生成", func() {
			resp, err := f.svc.Continue(ctx, userID, conv.ID, &model.ContinueConversationRequest{Message: "how much is rent?"})
			So(err, ShouldBeNil)
			So(resp.Title, ShouldEqual, "🏠 Rent Question")
			So(f.chat.titleCalls, ShouldEqual, 1)

			resp, err = f.svc.Continue(ctx, userID, conv.ID, &model.ContinueConversationRequest{Message: "and utilities?"})
			So(err, ShouldBeNil)
			So(resp.Title, ShouldBeEmpty)
			So(f.chat.titleCalls, ShouldEqual, 1)
			So(f.convs.setTitleCalls, ShouldEqual, 1)
		})

		Convey("标题生成失败只告警，本轮正常返回", func() {
			f.chat.titleErr = context.DeadlineExceeded

			resp, err := f.svc.Continue(ctx, userID, conv.ID, &model.ContinueConversationRequest{Message: "hello"})
			So(err, ShouldBeNil)
			So(resp.Answer.Content, ShouldEqual, "the rent is 500")
			So(resp.Title, ShouldBeEmpty)
			So(f.convs.setTitleCalls, ShouldEqual, 0)
		})

		Convey("不带选择集的请求沿用当前选择", func() {
			f.addDocument(userID, "doc-1")
			sel := []string{"doc-1"}
			_, err := f.svc.Continue(ctx, userID, conv.ID, &model.ContinueConversationRequest{Message: "first", SelectedDocuments: &sel})
			So(err, ShouldBeNil)
			So(f.convs.updateSelectionCalls, ShouldEqual, 1)

			_, err = f.svc.Continue(ctx, userID, conv.ID, &model.ContinueConversationRequest{Message: "second"})
			So(err, ShouldBeNil)
			So(f.convs.updateSelectionCalls, ShouldEqual, 1)
			So(f.convs.conversations[conv.ID].SelectedDocumentIDs, ShouldResemble, []string{"doc-1"})
		})

		Convey("显式空选择集清空当前选择", func() {
			f.addDocument(userID, "doc-1")
			sel := []string{"doc-1"}
			_, err := f.svc.Continue(ctx, userID, conv.ID, &model.ContinueConversationRequest{Message: "first", SelectedDocuments: &sel})
			So(err, ShouldBeNil)

			empty := []string{}
			_, err = f.svc.Continue(ctx, userID, conv.ID, &model.ContinueConversationRequest{Message: "second", SelectedDocuments: &empty})
			So(err, ShouldBeNil)
			So(f.convs.conversations[conv.ID].SelectedDocumentIDs, ShouldBeEmpty)
		})

		Convey("选择集引用非本人文档时整轮失败且无任何写入", func() {
			f.addDocument(userID, "doc-1")
			f.addDocument("someone-else", "doc-2")
			sel := []string{"doc-1", "doc-2"}

			_, err := f.svc.Continue(ctx, userID, conv.ID, &model.ContinueConversationRequest{Message: "hi", SelectedDocuments: &sel})
			So(errors.Is(err, ErrInvalidDocumentReference), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "doc-2")
			So(f.convs.updateSelectionCalls, ShouldEqual, 0)
			So(f.convs.conversations[conv.ID].SelectedDocumentIDs, ShouldBeEmpty)
			So(f.messages.messages, ShouldBeEmpty)
			So(f.chat.chatCalls, ShouldEqual, 0)
		})

		Convey("选择集中的重复ID落库前去重", func() {
			f.addDocument(userID, "doc-1")
			sel := []string{"doc-1", "doc-1", "doc-1"}

			_, err := f.svc.Continue(ctx, userID, conv.ID, &model.ContinueConversationRequest{Message: "hi", SelectedDocuments: &sel})
			So(err, ShouldBeNil)
			So(f.convs.conversations[conv.ID].SelectedDocumentIDs, ShouldResemble, []string{"doc-1"})
		})

		Convey("向量库为空时跳过检索，不调用 embedding", func() {
			f.addDocument(userID, "doc-1")
			f.vecIdx.chunkCount = 0
			sel := []string{"doc-1"}

			_, err := f.svc.Continue(ctx, userID, conv.ID, &model.ContinueConversationRequest{Message: "hi", SelectedDocuments: &sel})
			So(err, ShouldBeNil)
			So(f.indexer.embedCalls, ShouldEqual, 0)
			So(f.vecIdx.searchCalls, ShouldEqual, 0)
		})

		Convey("向量库非空且有选择集时走检索", func() {
			f.addDocument(userID, "doc-1")
			f.vecIdx.chunkCount = 5
			sel := []string{"doc-1"}

			_, err := f.svc.Continue(ctx, userID, conv.ID, &model.ContinueConversationRequest{Message: "hi", SelectedDocuments: &sel})
			So(err, ShouldBeNil)
			So(f.indexer.embedCalls, ShouldEqual, 1)
			So(f.vecIdx.searchCalls, ShouldEqual, 1)
		})

		Convey("关闭后的会话拒绝新消息", func() {
			So(f.svc.Close(ctx, userID, conv.ID), ShouldBeNil)

			_, err := f.svc.Continue(ctx, userID, conv.ID, &model.ContinueConversationRequest{Message: "hi"})
			So(err, ShouldEqual, ErrConversationClosed)
		})

		Convey("消息成对落库，助手消息归属哨兵用户", func() {
			_, err := f.svc.Continue(ctx, userID, conv.ID, &model.ContinueConversationRequest{Message: "hello"})
			So(err, ShouldBeNil)
			So(f.messages.messages, ShouldHaveLength, 2)
			So(f.messages.messages[0].SenderID, ShouldEqual, userID)
			So(f.messages.messages[1].SenderID, ShouldEqual, "00000000-0000-0000-0000-000000000000")
			So(f.messages.messages[1].Timestamp.After(f.messages.messages[0].Timestamp), ShouldBeTrue)
		})
	})
}

func TestConversationService_Delete(t *testing.T) {
	ctx := context.Background()
	userID := "user-1"

	Convey("Delete 级联删除会话与消息", t, func() {
		f := newConvFixture()
		conv, err := f.svc.Create(ctx, userID)
		So(err, ShouldBeNil)
		_, err = f.svc.Continue(ctx, userID, conv.ID, &model.ContinueConversationRequest{Message: "hello"})
		So(err, ShouldBeNil)
		So(f.messages.messages, ShouldHaveLength, 2)

		So(f.svc.Delete(ctx, userID, conv.ID), ShouldBeNil)
		So(f.messages.messages, ShouldBeEmpty)
		So(f.convs.conversations, ShouldBeEmpty)

		Convey("重复删除返回未找到", func() {
			So(f.svc.Delete(ctx, userID, conv.ID), ShouldEqual, ErrConversationNotFound)
		})
	})
}
