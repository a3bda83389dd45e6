package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dahuaptz/internal/camera"
	"dahuaptz/internal/config"
	"dahuaptz/internal/observability"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// メトリクスのサービスラベル
const serviceName = "ptz-server"

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config        *config.Config
	cameraManager camera.Manager
	router        *gin.Engine
	httpServer    *http.Server
	logger        zerolog.Logger

	// 実際にリッスンしているアドレス（ポート0指定時の確認用）
	addrCh chan string
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, manager camera.Manager) *Server {
	observability.RegisterMetrics()

	logger := log.Logger.With().Str("component", "server").Logger()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(observability.RequestLogger(logger))
	router.Use(observability.RequestMetricsMiddleware(serviceName))
	router.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))
	_ = router.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		config:        cfg,
		cameraManager: manager,
		router:        router,
		logger:        logger,
		addrCh:        make(chan string, 1),
		httpServer: &http.Server{
			Addr:         cfg.ServerAddress(),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
	s.setupRoutes(NewPTZHandler(cfg, manager))

	return s
}

// Handler はルーティング済みのハンドラーを返す
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr はリッスン開始後のアドレスを返す。起動前はブロックする
func (s *Server) Addr(ctx context.Context) (string, error) {
	select {
	case addr := <-s.addrCh:
		// 他の呼び出し元のために戻しておく
		s.addrCh <- addr
		return addr, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// setupRoutes はHTTPルートを設定する
func (s *Server) setupRoutes(h *PTZHandler) {
	s.router.GET("/health", h.HealthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	api.GET("/status", h.GetStatus)

	cameras := api.Group("/cameras")
	cameras.GET("", h.GetCameras)
	cameras.POST("", h.AddCamera)
	cameras.GET("/:id", h.GetCamera)
	cameras.DELETE("/:id", h.RemoveCamera)
	cameras.GET("/:id/status", h.GetCameraStatus)
	cameras.GET("/:id/position", h.GetPosition)
	cameras.PUT("/:id/position", h.GoTo)
	cameras.POST("/:id/position/relative", h.GoToRelative)
	cameras.POST("/:id/move", h.Move)
	cameras.POST("/:id/stop", h.Stop)
	cameras.POST("/:id/zoom/:direction", h.Zoom)
	cameras.GET("/:id/presets", h.GetPresets)
	cameras.POST("/:id/presets/:index", h.GoToPreset)
}

// Start はカメラの監視を開始してサーバーを起動する
//
// ctx のキャンセルか SIGINT/SIGTERM を受けるとグレースフルにシャットダウンする。
func (s *Server) Start(ctx context.Context) error {
	if err := s.cameraManager.Start(ctx); err != nil {
		return fmt.Errorf("カメラマネージャーの開始に失敗: %w", err)
	}

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		_ = s.cameraManager.Stop(ctx)
		return fmt.Errorf("サーバーの起動に失敗: %w", err)
	}
	s.addrCh <- listener.Addr().String()

	// シャットダウン用のチャンネル
	shutdownCh := make(chan error, 1)

	// サーバーを別ゴルーチンで起動
	go func() {
		s.logger.Info().Str("addr", listener.Addr().String()).Msg("HTTPサーバーを起動しています")
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownCh <- fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		s.logger.Info().Msg("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		s.logger.Info().Str("signal", sig.String()).Msg("シグナルを受信しました")
	case err := <-shutdownCh:
		_ = s.cameraManager.Stop(context.Background())
		return err
	}

	// グレースフルシャットダウン
	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("サーバーをシャットダウンしています")

	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.cameraManager.Stop(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("カメラマネージャーの停止に失敗")
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
	}

	s.logger.Info().Msg("サーバーが正常にシャットダウンされました")
	return nil
}

// corsConfig は許可オリジンから CORS 設定を作る。未指定か "*" を含む場合は全て許可する
func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}

	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch origin {
		case "":
			continue
		case "*":
			config.AllowAllOrigins = true
			config.AllowOrigins = nil
			return config
		}
		config.AllowOrigins = append(config.AllowOrigins, origin)
	}
	if len(config.AllowOrigins) == 0 {
		config.AllowAllOrigins = true
	}
	return config
}
