package cli

import (
	"fmt"
	"strconv"

	"dahuaptz/internal/ptz"

	"github.com/spf13/cobra"
)

func newSetCommand(a *app) *cobra.Command {
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "カメラの位置を設定する",
	}

	setCmd.AddCommand(
		&cobra.Command{
			Use:   "position X Y ZOOM SPEED",
			Short: "絶対位置へ移動する",
			Long: fmt.Sprintf(`指定した絶対位置へ移動します。

  X, Y   パン・チルト角度
  ZOOM   ズーム倍率 (%g-%g)
  SPEED  移動速度 (%d-%d)`, ptz.MinZoomMultiple, ptz.MaxZoomMultiple, ptz.MinSpeed, ptz.MaxSpeed),
			Args: cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				x, err := parseFloatArg("X", args[0])
				if err != nil {
					return err
				}
				y, err := parseFloatArg("Y", args[1])
				if err != nil {
					return err
				}
				zoom, err := parseFloatArg("ZOOM", args[2])
				if err != nil {
					return err
				}
				speed, err := parseIntArg("SPEED", args[3])
				if err != nil {
					return err
				}

				return a.runCommand(ptz.CodePositionABS, func(ctrl ptz.Controller) error {
					ctx, cancel := a.commandContext(cmd)
					defer cancel()
					return ctrl.GoTo(ctx, x, y, zoom, speed)
				})
			},
		},
		&cobra.Command{
			Use:   "preset N",
			Short: "プリセット位置へ移動する",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := parseIntArg("N", args[0])
				if err != nil {
					return err
				}

				return a.runCommand(ptz.CodeGotoPreset, func(ctrl ptz.Controller) error {
					ctx, cancel := a.commandContext(cmd)
					defer cancel()
					return ctrl.GoToPreset(ctx, index)
				})
			},
		},
	)

	return setCmd
}

// runCommand は Controller を作ってコマンドを実行する
func (a *app) runCommand(name string, run func(ptz.Controller) error) error {
	controller, err := a.controller()
	if err != nil {
		return err
	}
	if err := run(controller); err != nil {
		return err
	}
	a.logger.Info().Str("command", name).Msg("コマンドを送信しました")
	return nil
}

func parseFloatArg(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s は数値で指定してください: %q", name, raw)
	}
	return v, nil
}

func parseIntArg(name, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s は整数で指定してください: %q", name, raw)
	}
	return v, nil
}
