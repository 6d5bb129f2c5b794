package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIsSupported(t *testing.T) {
	Convey("IsSupported 按扩展名判断文件类型", t, func() {
		So(IsSupported("notes.txt"), ShouldBeTrue)
		So(IsSupported("manual.pdf"), ShouldBeTrue)
		So(IsSupported("letter.doc"), ShouldBeTrue)
		So(IsSupported("letter.docx"), ShouldBeTrue)
		So(IsSupported("expenses.csv"), ShouldBeTrue)

		Convey("扩展名大小写不敏感", func() {
			So(IsSupported("REPORT.PDF"), ShouldBeTrue)
			So(IsSupported("Notes.TXT"), ShouldBeTrue)
		})

		Convey("不支持的类型返回 false", func() {
			So(IsSupported("photo.png"), ShouldBeFalse)
			So(IsSupported("archive.zip"), ShouldBeFalse)
			So(IsSupported("no_extension"), ShouldBeFalse)
		})
	})
}

func TestExtractText(t *testing.T) {
	Convey("ExtractText 抽取文件纯文本", t, func() {
		dir := t.TempDir()

		Convey("txt 文件原样读出", func() {
			path := filepath.Join(dir, "notes.txt")
			content := "shopping list\nmilk, eggs, bread"
			So(os.WriteFile(path, []byte(content), 0o644), ShouldBeNil)

			text, err := ExtractText(path, "notes.txt")
			So(err, ShouldBeNil)
			So(text, ShouldEqual, content)
		})

		Convey("csv 文件渲染为 列名: 值 的段落", func() {
			path := filepath.Join(dir, "expenses.csv")
			content := "item,amount\nrent,1200\ngroceries,300"
			So(os.WriteFile(path, []byte(content), 0o644), ShouldBeNil)

			text, err := ExtractText(path, "expenses.csv")
			So(err, ShouldBeNil)
			So(text, ShouldContainSubstring, "item: rent")
			So(text, ShouldContainSubstring, "amount: 1200")
			So(text, ShouldContainSubstring, "item: groceries")
			So(text, ShouldContainSubstring, "amount: 300")
		})

		Convey("csv 行字段多于表头时用占位列名", func() {
			path := filepath.Join(dir, "ragged.csv")
			content := "name\nalice,extra"
			So(os.WriteFile(path, []byte(content), 0o644), ShouldBeNil)

			text, err := ExtractText(path, "ragged.csv")
			So(err, ShouldBeNil)
			So(text, ShouldContainSubstring, "name: alice")
			So(text, ShouldContainSubstring, "column_2: extra")
		})

		Convey("不支持的类型返回 ErrUnsupportedType", func() {
			_, err := ExtractText(filepath.Join(dir, "photo.png"), "photo.png")
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrUnsupportedType), ShouldBeTrue)
		})

		Convey("文件不存在时返回错误", func() {
			_, err := ExtractText(filepath.Join(dir, "missing.txt"), "missing.txt")
			So(err, ShouldNotBeNil)
		})
	})
}
