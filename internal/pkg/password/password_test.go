package password

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestHashAndVerify(t *testing.T) {
	Convey("Hash/Verify 加密和校验密码", t, func() {
		hash, err := Hash("Sup3r$ecret")
		So(err, ShouldBeNil)
		So(hash, ShouldNotBeEmpty)
		So(hash, ShouldNotEqual, "Sup3r$ecret")

		Convey("正确密码校验通过", func() {
			So(Verify("Sup3r$ecret", hash), ShouldBeTrue)
		})

		Convey("错误密码校验失败", func() {
			So(Verify("wrong-password", hash), ShouldBeFalse)
		})
	})
}

func TestCheckStrength(t *testing.T) {
	Convey("CheckStrength 校验密码强度", t, func() {
		Convey("满足全部要求的密码通过", func() {
			So(CheckStrength("Abcdef1!"), ShouldBeNil)
			So(CheckStrength("MyP@ssw0rd"), ShouldBeNil)
		})

		Convey("太短被拒绝", func() {
			err := CheckStrength("Ab1!")
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrTooWeak), ShouldBeTrue)
		})

		Convey("缺少数字被拒绝", func() {
			err := CheckStrength("Abcdefg!")
			So(errors.Is(err, ErrTooWeak), ShouldBeTrue)
		})

		Convey("缺少大写字母被拒绝", func() {
			err := CheckStrength("abcdef1!")
			So(errors.Is(err, ErrTooWeak), ShouldBeTrue)
		})

		Convey("缺少特殊字符被拒绝", func() {
			err := CheckStrength("Abcdefg1")
			So(errors.Is(err, ErrTooWeak), ShouldBeTrue)
		})
	})
}
