package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"dahuaptz/internal/camera"
	"dahuaptz/internal/config"
	"dahuaptz/internal/observability"
	"dahuaptz/internal/ptz"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const appName = "ptz"

// ControllerFunc は接続設定から Controller を作る。テストで差し替える
type ControllerFunc func(cfg ptz.Config, logger zerolog.Logger) (ptz.Controller, error)

// app はコマンド間で共有する状態
type app struct {
	configFile string
	output     string

	config *config.Config
	logger zerolog.Logger

	newController     ControllerFunc
	controllerFactory camera.ControllerFactory
}

func defaultController(cfg ptz.Config, logger zerolog.Logger) (ptz.Controller, error) {
	return ptz.NewClient(cfg, ptz.WithLogger(logger))
}

// NewRootCommand は ptz コマンドを作成する
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{newController: defaultController})
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Dahua PTZカメラを操作する",
		Long: `Dahua IPカメラの HTTP API (CGI) を使ってPTZを操作します。

接続先は環境変数 DAHUA_PTZ_IP, DAHUA_PTZ_CHANNEL, DAHUA_PTZ_USERNAME,
DAHUA_PTZ_PASSWORD、設定ファイル、またはフラグで指定します。
負の値を引数に渡す場合は -- の後に並べてください (例: ptz move -- -4 0 0 10)。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "設定ファイル (YAML)")
	flags.String("host", "", "カメラのIPアドレスまたはホスト名 ($DAHUA_PTZ_IP)")
	flags.Int("channel", ptz.DefaultChannel, "PTZチャンネル ($DAHUA_PTZ_CHANNEL)")
	flags.String("username", "", "ユーザー名 ($DAHUA_PTZ_USERNAME)")
	flags.String("password", "", "パスワード ($DAHUA_PTZ_PASSWORD)")
	flags.String("scheme", ptz.DefaultScheme, "http または https ($DAHUA_PTZ_SCHEME)")
	flags.Duration("timeout", ptz.DefaultTimeout, "リクエストタイムアウト ($DAHUA_PTZ_TIMEOUT)")
	flags.StringVarP(&a.output, "output", "o", formatYAML, "出力形式 (yaml, json)")
	flags.String("log-level", "info", "ログレベル (trace, debug, info, warn, error, off)")

	rootCmd.AddCommand(
		newGetCommand(a),
		newSetCommand(a),
		newMoveCommand(a),
		newStopCommand(a),
		newZoomCommand(a),
		newServeCommand(a),
	)

	return rootCmd
}

// init は設定を読み込みロガーを初期化する
func (a *app) init(cmd *cobra.Command) error {
	if !validFormat(a.output) {
		return fmt.Errorf("未対応の出力形式: %s", a.output)
	}

	cfg, err := config.Load(a.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	a.config = cfg
	a.logger = observability.InitLoggerWithWriter(appName, cfg.Log.Level, cmd.ErrOrStderr())
	return nil
}

// controller は単一カメラ用の Controller を作る
func (a *app) controller() (ptz.Controller, error) {
	if err := a.config.ValidateCamera(); err != nil {
		return nil, err
	}
	return a.newController(a.config.Camera.ClientConfig(), a.logger)
}

// commandContext はリクエスト全体のタイムアウト付きコンテキストを返す
func (a *app) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := a.config.Camera.Timeout
	if timeout <= 0 {
		timeout = ptz.DefaultTimeout
	}
	// 再試行分を含める
	return context.WithTimeout(ctx, timeout*time.Duration(a.config.Camera.Retries+1))
}

// Execute はコマンドを実行し、失敗時は終了コード1で終了する
func Execute() {
	ExecuteContext(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

// ExecuteContext は引数と出力先を指定してコマンドを実行する
func ExecuteContext(ctx context.Context, args []string, stdout, stderr io.Writer) {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "エラー: %v\n", err)
		os.Exit(1)
	}
}
