package ingest

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSplitter_Split(t *testing.T) {
	Convey("Splitter.Split 能按约束切分文本", t, func() {
		Convey("空文本返回空结果", func() {
			s := NewSplitter(100, 20)
			So(s.Split(""), ShouldBeEmpty)
		})

		Convey("纯空白文本返回空结果", func() {
			s := NewSplitter(100, 20)
			So(s.Split("   \n\n  \t "), ShouldBeEmpty)
		})

		Convey("短文本原样返回为单块", func() {
			s := NewSplitter(100, 20)
			chunks := s.Split("hello world")
			So(chunks, ShouldHaveLength, 1)
			So(chunks[0], ShouldEqual, "hello world")
		})

		Convey("所有块都不超过 chunk_size", func() {
			s := NewSplitter(50, 10)
			text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 20)

			chunks := s.Split(text)
			So(len(chunks), ShouldBeGreaterThan, 1)
			for _, chunk := range chunks {
				So(len([]rune(chunk)), ShouldBeLessThanOrEqualTo, 50)
			}
		})

		Convey("大片段跟在重叠留存后也不会超长", func() {
			s := NewSplitter(500, 200)
			text := strings.Repeat("a", 150) + " " + strings.Repeat("b", 40) + " " + strings.Repeat("c", 450)

			chunks := s.Split(text)
			So(len(chunks), ShouldBeGreaterThan, 1)
			for _, chunk := range chunks {
				So(len([]rune(chunk)), ShouldBeLessThanOrEqualTo, 500)
			}
			So(chunks[len(chunks)-1], ShouldContainSubstring, strings.Repeat("c", 450))
		})

		Convey("恰好等于 chunk_size 的片段独立成块", func() {
			s := NewSplitter(100, 30)
			text := strings.Repeat("a", 80) + " " + strings.Repeat("b", 100) + " " + strings.Repeat("d", 20)

			chunks := s.Split(text)
			for _, chunk := range chunks {
				So(len([]rune(chunk)), ShouldBeLessThanOrEqualTo, 100)
			}
			So(chunks, ShouldContain, strings.Repeat("b", 100))
		})

		Convey("优先在段落边界切分", func() {
			s := NewSplitter(40, 0)
			text := "first paragraph here\n\nsecond paragraph here\n\nthird paragraph here"

			chunks := s.Split(text)
			So(len(chunks), ShouldBeGreaterThanOrEqualTo, 2)
			So(chunks[0], ShouldContainSubstring, "first paragraph")
		})

		Convey("相邻块有内容重叠", func() {
			s := NewSplitter(30, 15)
			text := "aaa bbb ccc ddd eee fff ggg hhh iii jjj kkk lll"

			chunks := s.Split(text)
			So(len(chunks), ShouldBeGreaterThan, 1)

			// 第二块应以第一块尾部的某个词开头
			lastWords := strings.Fields(chunks[0])
			tail := lastWords[len(lastWords)-1]
			So(chunks[1], ShouldContainSubstring, tail)
		})

		Convey("没有任何分隔符的长串按长度硬切", func() {
			s := NewSplitter(10, 0)
			text := strings.Repeat("x", 35)

			chunks := s.Split(text)
			So(len(chunks), ShouldEqual, 4)
			for _, chunk := range chunks {
				So(len([]rune(chunk)), ShouldBeLessThanOrEqualTo, 10)
			}
			So(strings.Join(chunks, ""), ShouldEqual, text)
		})

		Convey("多字节字符按 rune 计数不被截断", func() {
			s := NewSplitter(5, 0)
			text := strings.Repeat("中文字符测试", 3)

			chunks := s.Split(text)
			for _, chunk := range chunks {
				So(len([]rune(chunk)), ShouldBeLessThanOrEqualTo, 5)
			}
			So(strings.Join(chunks, ""), ShouldEqual, text)
		})
	})
}
