package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080, Mode: "release"},
		RAG:    RAGConfig{ChunkSize: 500, ChunkOverlap: 200, TopK: 3, MaxHistoryMessages: 50},
	}
}

func TestConfigValidate(t *testing.T) {
	Convey("Config.Validate 校验配置", t, func() {
		Convey("合法配置通过", func() {
			So(validConfig().Validate(), ShouldBeNil)
		})

		Convey("非法端口被拒绝", func() {
			cfg := validConfig()
			cfg.Server.Port = 0
			So(cfg.Validate(), ShouldNotBeNil)

			cfg.Server.Port = 70000
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("非法模式被拒绝", func() {
			cfg := validConfig()
			cfg.Server.Mode = "production"
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("chunk_size 必须为正", func() {
			cfg := validConfig()
			cfg.RAG.ChunkSize = 0
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("overlap 不能达到 chunk_size", func() {
			cfg := validConfig()
			cfg.RAG.ChunkOverlap = 500
			So(cfg.Validate(), ShouldNotBeNil)

			cfg.RAG.ChunkOverlap = -1
			So(cfg.Validate(), ShouldNotBeNil)

			cfg.RAG.ChunkOverlap = 499
			So(cfg.Validate(), ShouldBeNil)
		})

		Convey("top_k 必须为正", func() {
			cfg := validConfig()
			cfg.RAG.TopK = 0
			So(cfg.Validate(), ShouldNotBeNil)
		})
	})
}
