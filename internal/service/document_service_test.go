package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/thkox/home-ai-server/internal/model"
)

type docFixture struct {
	svc     *DocumentService
	docs    *memDocumentStore
	convs   *memConversationStore
	files   *memStorage
	vecIdx  *stubVectorIndex
	indexer *stubIndexer
}

func newDocFixture() *docFixture {
	f := &docFixture{
		docs:    newMemDocumentStore(),
		convs:   newMemConversationStore(),
		files:   newMemStorage(),
		vecIdx:  &stubVectorIndex{},
		indexer: &stubIndexer{},
	}
	f.svc = NewDocumentService(f.docs, f.convs, f.files, f.vecIdx, f.indexer)
	return f
}

func upload(name, content string) UploadFile {
	return UploadFile{FileName: name, Reader: strings.NewReader(content)}
}

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()
	userID := "user-1"

	Convey("Upload 上传并索引文档", t, func() {
		f := newDocFixture()

		Convey("新文档落库、落盘并触发索引", func() {
			resp, err := f.svc.Upload(ctx, userID, []UploadFile{upload("notes.txt", "rent is 500")})
			So(err, ShouldBeNil)
			So(resp.Results, ShouldHaveLength, 1)
			So(resp.Results[0].Skipped, ShouldBeFalse)
			So(resp.Message, ShouldBeEmpty)
			So(f.docs.documents, ShouldHaveLength, 1)
			So(f.indexer.indexCalls, ShouldEqual, 1)

			doc := resp.Results[0].Document
			So(doc.FilePath, ShouldEqual, userID+"/"+doc.ID+"_notes.txt")
			So(f.files.files, ShouldContainKey, doc.FilePath)
		})

		Convey("同一用户重复内容跳过，不产生新记录", func() {
			first, err := f.svc.Upload(ctx, userID, []UploadFile{upload("notes.txt", "rent is 500")})
			So(err, ShouldBeNil)

			again, err := f.svc.Upload(ctx, userID, []UploadFile{upload("renamed.txt", "rent is 500")})
			So(err, ShouldBeNil)
			So(again.Results[0].Skipped, ShouldBeTrue)
			So(again.Results[0].DocumentID, ShouldEqual, first.Results[0].DocumentID)
			So(again.Message, ShouldEqual, "no new documents")
			So(f.docs.documents, ShouldHaveLength, 1)
			So(f.indexer.indexCalls, ShouldEqual, 1)
		})

		Convey("相同内容在不同用户之间互不去重", func() {
			_, err := f.svc.Upload(ctx, userID, []UploadFile{upload("notes.txt", "rent is 500")})
			So(err, ShouldBeNil)

			resp, err := f.svc.Upload(ctx, "user-2", []UploadFile{upload("notes.txt", "rent is 500")})
			So(err, ShouldBeNil)
			So(resp.Results[0].Skipped, ShouldBeFalse)
			So(f.docs.documents, ShouldHaveLength, 2)
		})

		Convey("批次里有新文档时不提示无新文档", func() {
			_, err := f.svc.Upload(ctx, userID, []UploadFile{upload("a.txt", "alpha")})
			So(err, ShouldBeNil)

			resp, err := f.svc.Upload(ctx, userID, []UploadFile{
				upload("a.txt", "alpha"),
				upload("b.txt", "beta"),
			})
			So(err, ShouldBeNil)
			So(resp.Message, ShouldBeEmpty)
			So(resp.Results[0].Skipped, ShouldBeTrue)
			So(resp.Results[1].Skipped, ShouldBeFalse)
		})

		Convey("不支持的类型使整个请求失败", func() {
			_, err := f.svc.Upload(ctx, userID, []UploadFile{upload("virus.exe", "boom")})
			So(errors.Is(err, ErrUnsupportedDocument), ShouldBeTrue)
			So(f.docs.documents, ShouldBeEmpty)
		})

		Convey("索引失败回滚记录、文件和向量", func() {
			f.indexer.indexErr = errors.New("embedding backend down")

			_, err := f.svc.Upload(ctx, userID, []UploadFile{upload("notes.txt", "rent is 500")})
			So(err, ShouldNotBeNil)
			So(f.docs.documents, ShouldBeEmpty)
			So(f.files.files, ShouldBeEmpty)
			So(f.vecIdx.deletedDocs, ShouldHaveLength, 1)
		})
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()
	userID := "user-1"

	Convey("Delete 级联清理文档的全部痕迹", t, func() {
		f := newDocFixture()
		resp, err := f.svc.Upload(ctx, userID, []UploadFile{upload("notes.txt", "rent is 500")})
		So(err, ShouldBeNil)
		docID := resp.Results[0].DocumentID

		conv := &model.Conversation{
			ID: "conv-1", UserID: userID,
			Status:              model.ConversationActive,
			SelectedDocumentIDs: []string{docID},
		}
		So(f.convs.Create(ctx, conv), ShouldBeNil)

		Convey("文件、向量、会话选择集和记录全部清掉", func() {
			So(f.svc.Delete(ctx, userID, docID), ShouldBeNil)
			So(f.files.files, ShouldBeEmpty)
			So(f.vecIdx.deletedDocs, ShouldResemble, []string{docID})
			So(f.convs.pulledDocumentIDs, ShouldResemble, []string{docID})
			So(f.convs.conversations["conv-1"].SelectedDocumentIDs, ShouldBeEmpty)
			So(f.docs.documents, ShouldBeEmpty)
		})

		Convey("删除他人文档返回未找到", func() {
			So(f.svc.Delete(ctx, "user-2", docID), ShouldEqual, ErrDocumentNotFound)
			So(f.docs.documents, ShouldHaveLength, 1)
		})

		Convey("删除不存在的文档返回未找到", func() {
			So(f.svc.Delete(ctx, userID, "missing"), ShouldEqual, ErrDocumentNotFound)
		})
	})
}
