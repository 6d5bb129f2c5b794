package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/thkox/home-ai-server/internal/ai"
	"github.com/thkox/home-ai-server/internal/ai/component"
	"github.com/thkox/home-ai-server/internal/config"
	"github.com/thkox/home-ai-server/internal/handler"
	authHandler "github.com/thkox/home-ai-server/internal/handler/auth"
	"github.com/thkox/home-ai-server/internal/ingest"
	"github.com/thkox/home-ai-server/internal/pkg/cache"
	"github.com/thkox/home-ai-server/internal/pkg/jwt"
	"github.com/thkox/home-ai-server/internal/pkg/mongodb"
	"github.com/thkox/home-ai-server/internal/pkg/storagefactory"
	"github.com/thkox/home-ai-server/internal/repository"
	authRepo "github.com/thkox/home-ai-server/internal/repository/auth"
	"github.com/thkox/home-ai-server/internal/server/middleware"
	"github.com/thkox/home-ai-server/internal/service"
	"github.com/thkox/home-ai-server/internal/vector"
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
}

// New 创建服务器实例并完成全部依赖装配
// 与对话链路相关的依赖都是硬依赖，缺一不可，连接失败直接报错退出
func New(cfg *config.Config) (*Server, error) {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	ctx := context.Background()

	// MongoDB
	mongoClient, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// Redis（向量索引 + 会话缓存共用一个连接池）
	redisCache, err := cache.NewRedisCache(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect to Redis: %w", err)
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

	// 文档存储
	store, err := storagefactory.NewStorage(ctx, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init document storage: %w", err)
	}
	log.Info().Str("type", store.GetStorageType()).Msg("document storage ready")

	// AI 能力层
	aiClient, err := ai.NewClient(ctx, &cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("init AI client: %w", err)
	}
	embedder, err := component.NewEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	log.Info().
		Str("provider", cfg.AI.Provider).
		Str("model", cfg.AI.Model).
		Str("embedding_model", cfg.Embedding.Model).
		Msg("AI components ready")

	// RAG 组件
	vectorStore := vector.NewStore(redisCache.Client())
	splitter := ingest.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	pipeline := ingest.NewPipeline(embedder, vectorStore, splitter)

	// 仓库
	db := mongoClient.Database()
	userRepo := authRepo.NewUserRepo(db)
	refreshTokenRepo := authRepo.NewRefreshTokenRepo(db)
	conversationRepo := repository.NewConversationRepo(db)
	messageRepo := repository.NewMessageRepo(mongoClient)
	documentRepo := repository.NewDocumentRepo(db)

	// JWT 参数，未配置时退回默认值
	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
		log.Warn().Msg("JWT secret not configured, using default (NOT SECURE for production)")
	}
	accessTokenExpiry := cfg.Auth.AccessTokenExpiry
	if accessTokenExpiry == 0 {
		accessTokenExpiry = 24 * time.Hour
	}
	refreshTokenExpiry := cfg.Auth.RefreshTokenExpiry
	if refreshTokenExpiry == 0 {
		refreshTokenExpiry = 7 * 24 * time.Hour
	}

	// 服务
	authSvc := service.NewAuthService(userRepo, refreshTokenRepo, jwtSecret, accessTokenExpiry, refreshTokenExpiry)
	documentSvc := service.NewDocumentService(documentRepo, conversationRepo, store, vectorStore, pipeline)
	conversationSvc := service.NewConversationService(
		conversationRepo, messageRepo, documentRepo,
		aiClient, vectorStore, pipeline, redisCache, &cfg.RAG,
	)

	// AI消息的归属方，必须先于第一轮对话存在
	if err := authSvc.EnsureAssistantUser(ctx); err != nil {
		return nil, fmt.Errorf("ensure assistant user: %w", err)
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
	}

	srv.setupRoutes(
		jwt.NewJWT(jwtSecret, accessTokenExpiry),
		authSvc,
		authHandler.NewHandler(authSvc),
		handler.NewConversationHandler(conversationSvc),
		handler.NewDocumentHandler(documentSvc),
	)

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(
	jwtUtil *jwt.JWT,
	authSvc *service.AuthService,
	authHdl *authHandler.Handler,
	conversationHdl *handler.ConversationHandler,
	documentHdl *handler.DocumentHandler,
) {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查
	healthHandler := handler.NewHealthHandler(s.mongo, s.redis)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1
	v1 := s.engine.Group("/api/v1")
	{
		// 认证接口（公开）
		v1.POST("/auth/register", authHdl.Register)
		v1.POST("/auth/login", authHdl.Login)
		v1.POST("/auth/refresh", authHdl.Refresh)

		// 需要认证的接口
		authed := v1.Group("")
		authed.Use(middleware.Auth(jwtUtil))
		{
			authed.POST("/auth/logout", authHdl.Logout)
			authed.GET("/auth/me", authHdl.GetMe)
			authed.PUT("/auth/me", authHdl.UpdateMe)
			authed.PUT("/auth/password", authHdl.ChangePassword)

			authed.POST("/conversations", conversationHdl.Create)
			authed.GET("/conversations", conversationHdl.List)
			authed.GET("/conversations/:id", conversationHdl.Get)
			authed.DELETE("/conversations/:id", conversationHdl.Delete)
			authed.GET("/conversations/:id/messages", conversationHdl.GetMessages)
			authed.POST("/conversations/:id/continue", conversationHdl.Continue)
			authed.POST("/conversations/:id/close", conversationHdl.Close)

			// 用户管理（仅管理员）
			admin := authed.Group("")
			admin.Use(middleware.RequireAdmin(authSvc))
			{
				admin.GET("/users", authHdl.ListUsers)
				admin.PUT("/users/:id/profile", authHdl.AdminUpdateUser)
				admin.PUT("/users/:id/password", authHdl.AdminSetPassword)
			}

			authed.POST("/documents", documentHdl.Upload)
			authed.GET("/documents", documentHdl.List)
			authed.GET("/documents/:id", documentHdl.Get)
			authed.GET("/documents/:id/download", documentHdl.Download)
			authed.DELETE("/documents/:id", documentHdl.Delete)
		}
	}
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		if err := s.mongo.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close MongoDB connection")
		}
		if err := s.redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis connection")
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
