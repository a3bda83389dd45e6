// Package main はPTZ制御サーバーコマンドの実装です
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dahuaptz/internal/camera"
	"dahuaptz/internal/config"
	"dahuaptz/internal/observability"
	"dahuaptz/internal/server"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	// コマンドラインオプション
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	configFile := flags.String("config", "", "設定ファイル (YAML)")
	flags.String("listen-host", "0.0.0.0", "サーバーのホスト ($SERVER_HOST)")
	flags.Int("port", 8080, "サーバーのポート ($PORT)")
	flags.String("log-level", "info", "ログレベル ($LOG_LEVEL)")
	help := flags.BoolP("help", "h", false, "ヘルプを表示")

	_ = flags.Parse(os.Args[1:])

	// ヘルプ表示
	if *help {
		fmt.Println("dahuaptz server")
		fmt.Println()
		fmt.Println("使用方法:")
		fmt.Println("  server [オプション]")
		fmt.Println()
		fmt.Println("オプション:")
		flags.PrintDefaults()
		os.Exit(0)
	}

	// 設定を読み込む
	cfg, err := config.Load(*configFile, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定の読み込みに失敗しました: %v\n", err)
		os.Exit(1)
	}

	logger := observability.InitLogger("ptz-server", cfg.Log.Level)

	// カメラを登録
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := camera.NewDefaultManager(camera.NewClientFactory(logger))
	manager.SetHealthInterval(cfg.Server.HealthInterval)
	for _, device := range cfg.CameraDevices() {
		if _, err := manager.AddCamera(ctx, camera.Device{
			ID:     device.ID,
			Name:   device.Name,
			Config: device.ClientConfig(),
		}); err != nil {
			log.Fatal().Err(err).Str("host", device.Host).Msg("カメラの登録に失敗しました")
		}
	}

	// サーバーを起動
	srv := server.New(cfg, manager)
	logger.Info().Str("addr", cfg.ServerAddress()).Msg("PTZサーバーを起動します")
	if err := srv.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("サーバーの起動に失敗しました")
	}
}
