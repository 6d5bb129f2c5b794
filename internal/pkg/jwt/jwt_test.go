package jwt

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestJWT(t *testing.T) {
	Convey("JWT 签发和校验", t, func() {
		j := NewJWT("test-secret", time.Hour)

		Convey("签发的 Token 能被校验并还原 Claims", func() {
			token, err := j.GenerateToken("user-123", "alice@example.com", "member")
			So(err, ShouldBeNil)
			So(token, ShouldNotBeEmpty)

			claims, err := j.ValidateToken(token)
			So(err, ShouldBeNil)
			So(claims.UserID, ShouldEqual, "user-123")
			So(claims.Email, ShouldEqual, "alice@example.com")
			So(claims.Role, ShouldEqual, "member")
		})

		Convey("密钥不匹配时校验失败", func() {
			token, err := j.GenerateToken("user-123", "alice@example.com", "member")
			So(err, ShouldBeNil)

			other := NewJWT("another-secret", time.Hour)
			_, err = other.ValidateToken(token)
			So(err, ShouldEqual, ErrInvalidToken)
		})

		Convey("过期 Token 返回 ErrExpiredToken", func() {
			expired := NewJWT("test-secret", -time.Minute)
			token, err := expired.GenerateToken("user-123", "alice@example.com", "member")
			So(err, ShouldBeNil)

			_, err = j.ValidateToken(token)
			So(err, ShouldEqual, ErrExpiredToken)
		})

		Convey("随手伪造的字符串校验失败", func() {
			_, err := j.ValidateToken("not.a.token")
			So(err, ShouldEqual, ErrInvalidToken)
		})
	})
}

func TestGenerateRefreshToken(t *testing.T) {
	Convey("GenerateRefreshToken 生成随机令牌", t, func() {
		a := GenerateRefreshToken()
		b := GenerateRefreshToken()

		So(a, ShouldHaveLength, 64)
		So(b, ShouldHaveLength, 64)
		So(a, ShouldNotEqual, b)
	})
}
