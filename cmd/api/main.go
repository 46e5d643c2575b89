// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/webblog/internal/auth"
	"github.com/yourusername/webblog/internal/blog"
	"github.com/yourusername/webblog/internal/config"
	"github.com/yourusername/webblog/internal/logging"
	"github.com/yourusername/webblog/internal/storage"
	"github.com/yourusername/webblog/internal/users"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	secret := cfg.SessionSecret
	if secret == "" {
		generated, err := ephemeralSecret()
		if err != nil {
			return err
		}
		secret = generated
		logger.Warn(ctx, "SESSION_SECRET is empty; sessions will not survive a restart")
	}

	alg, err := auth.ParseAlgorithm(cfg.PasswordHashAlgorithm)
	if err != nil {
		return err
	}

	stores, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	sink, eventManager, err := setupEvents(cfg, stores, logger)
	if err != nil {
		return err
	}
	if eventManager != nil {
		eventManager.StartWorkers()
		defer eventManager.Shutdown(context.Background())
	}

	codec := auth.NewCodec(secret, auth.NewHasher(alg), stores.Users,
		auth.WithLogger(logger),
		auth.WithEventSink(sink),
		auth.WithLookupTimeout(cfg.LookupTimeout()),
	)

	deps := &appDeps{
		cfg:    cfg,
		secret: secret,
		auth:   auth.NewManager(cfg, stores.Users, codec, sink, logger),
		blogs:  blog.NewHandler(blog.NewService(stores.Blogs, cfg.PageSize, logger), logger),
		users:  stores.Users,
		log:    logger,
	}
	if eventManager != nil {
		deps.events = eventManager
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "starting API server", "addr", server.Addr, "mode", cfg.GinMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// appDeps はルーティングに必要な依存をまとめます。
type appDeps struct {
	cfg    *config.Config
	secret string
	auth   *auth.Manager
	blogs  *blog.Handler
	users  users.Repository
	events eventReader
	log    logging.Logger
}

func newRouter(deps *appDeps) *gin.Engine {
	cfg := deps.cfg

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// CSRF トークン用のセッションストア（セッション Cookie 本体とは別）
	store := cookie.NewStore([]byte(deps.secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionTTLSeconds,
		HttpOnly: true,
		Secure:   cfg.IsRelease(),
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.SessionsMany([]string{auth.MetaSessionName}, store))

	// CORSミドルウェアの設定（許可オリジンが空なら同一オリジンのみ）
	if origins := splitOrigins(cfg.CORSAllowedOrigins); len(origins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-CSRF-Token", // CSRF保護用ヘッダー
		}
		// フロントエンドがレスポンスヘッダーから CSRF トークンを読み取れるように公開
		corsConfig.ExposeHeaders = []string{"X-CSRF-Token"}
		router.Use(cors.New(corsConfig))
	}

	// すべてのリクエストでセッション Cookie を検証（無効なら匿名として続行）
	router.Use(deps.auth.LoadPrincipal())

	setupRoutes(router, deps)
	return router
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "webblog-api",
	})
}

// setupRoutes は API グループと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, deps *appDeps) {
	router.GET("/health", handleHealth)
	router.GET("/signout", deps.auth.Signout)

	api := router.Group("/api")
	{
		// 登録・ログイン時はセッション未生成なので CSRF 検証は不要
		api.POST("/users", deps.auth.Register)
		api.POST("/authenticate", deps.auth.Authenticate)
		api.GET("/me", deps.auth.Me)

		api.GET("/blogs", deps.blogs.ListBlogs)
		api.GET("/blogs/:id", deps.blogs.GetBlog)
		api.GET("/comments", deps.blogs.ListComments)

		signedIn := api.Group("")
		signedIn.Use(deps.auth.RequireSignedIn(), deps.auth.VerifyCSRF())
		{
			signedIn.POST("/blogs/:id/comments", deps.blogs.CreateComment)
		}

		admin := api.Group("")
		admin.Use(deps.auth.RequireAdmin(), deps.auth.VerifyCSRF())
		{
			admin.POST("/blogs", deps.blogs.CreateBlog)
			admin.POST("/blogs/:id", deps.blogs.UpdateBlog)
			admin.POST("/blogs/:id/delete", deps.blogs.DeleteBlog)
			admin.POST("/comments/:id/delete", deps.blogs.DeleteComment)
			admin.GET("/users", usersHandler(deps.users, deps.cfg.PageSize, deps.log))
			admin.GET("/security/events", securityEventsHandler(deps.events, deps.cfg.PageSize, deps.log))
		}
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func ephemeralSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
