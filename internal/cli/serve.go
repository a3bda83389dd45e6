package cli

import (
	"context"
	"fmt"

	"dahuaptz/internal/camera"
	"dahuaptz/internal/server"

	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "PTZ制御用のHTTPサーバーを起動する",
		Long: `登録したカメラを操作する HTTP API を起動します。

カメラは設定ファイルの devices で指定します。devices がない場合は
--host または DAHUA_PTZ_IP のカメラを "default" として登録します。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			manager, err := a.newManager(ctx)
			if err != nil {
				return err
			}

			srv := server.New(a.config, manager)
			a.logger.Info().
				Str("addr", a.config.ServerAddress()).
				Int("cameras", len(manager.GetCameras())).
				Msg("PTZサーバーを起動します")
			return srv.Start(ctx)
		},
	}

	serveCmd.Flags().String("listen-host", "0.0.0.0", "サーバーのホスト ($SERVER_HOST)")
	serveCmd.Flags().Int("port", 8080, "サーバーのポート ($PORT)")

	return serveCmd
}

// newManager は設定のカメラを登録したマネージャーを作る
func (a *app) newManager(ctx context.Context) (*camera.DefaultManager, error) {
	factory := a.controllerFactory
	if factory == nil {
		factory = camera.NewClientFactory(a.logger)
	}

	manager := camera.NewDefaultManager(factory)
	manager.SetLogger(a.logger.With().Str("component", "camera").Logger())
	manager.SetHealthInterval(a.config.Server.HealthInterval)

	for _, device := range a.config.CameraDevices() {
		_, err := manager.AddCamera(ctx, camera.Device{
			ID:     device.ID,
			Name:   device.Name,
			Config: device.ClientConfig(),
		})
		if err != nil {
			return nil, fmt.Errorf("カメラ %s の登録に失敗: %w", device.Host, err)
		}
	}

	return manager, nil
}
