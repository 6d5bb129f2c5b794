package ai

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildSystemPrompt(t *testing.T) {
	Convey("BuildSystemPrompt 组装 system prompt", t, func() {
		Convey("无检索结果时只有人设", func() {
			prompt := BuildSystemPrompt(nil)
			So(prompt, ShouldEqual, personaPrompt)
			So(prompt, ShouldNotContainSubstring, "Documents:")
		})

		Convey("有检索结果时带指令和上下文", func() {
			prompt := BuildSystemPrompt([]string{"the wifi password is hunter2", "trash day is Tuesday"})
			So(prompt, ShouldContainSubstring, personaPrompt)
			So(prompt, ShouldContainSubstring, groundedInstruction)
			So(prompt, ShouldContainSubstring, "Documents:")
			So(prompt, ShouldContainSubstring, "the wifi password is hunter2")
			So(prompt, ShouldContainSubstring, "trash day is Tuesday")
		})

		Convey("多个片段用空行分隔", func() {
			prompt := BuildSystemPrompt([]string{"first", "second"})
			So(prompt, ShouldContainSubstring, "first\n\nsecond")
		})
	})
}

func TestBuildTitlePrompt(t *testing.T) {
	Convey("BuildTitlePrompt 包含首轮问答", t, func() {
		prompt := BuildTitlePrompt("how do I reset the router?", "Unplug it for ten seconds.")
		So(prompt, ShouldContainSubstring, "User: how do I reset the router?")
		So(prompt, ShouldContainSubstring, "AI: Unplug it for ten seconds.")
		So(prompt, ShouldContainSubstring, "Print ONLY the title")
		So(strings.HasSuffix(prompt, "Title:"), ShouldBeTrue)
	})
}

func TestTruncateTitle(t *testing.T) {
	Convey("TruncateTitle 收敛标题长度", t, func() {
		Convey("不超过4个词时原样保留", func() {
			So(TruncateTitle("🏠 Home Setup"), ShouldEqual, "🏠 Home Setup")
		})

		Convey("超过4个词时截断", func() {
			So(TruncateTitle("🔧 Router Reset Guide For Beginners"), ShouldEqual, "🔧 Router Reset Guide")
		})

		Convey("去掉首尾空白和多余空格", func() {
			So(TruncateTitle("  🍜   Dinner   Ideas  \n"), ShouldEqual, "🍜 Dinner Ideas")
		})

		Convey("空输入返回空串", func() {
			So(TruncateTitle("   "), ShouldEqual, "")
		})
	})
}
