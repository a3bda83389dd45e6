package cli

import (
	"fmt"

	"dahuaptz/internal/ptz"

	"github.com/spf13/cobra"
)

func newMoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move H V ZOOM TIMEOUT",
		Short: "連続移動を開始する",
		Long: fmt.Sprintf(`指定した速度で連続移動を開始します。TIMEOUT 秒後に停止します。

  H, V     水平・垂直速度 (-%d-%d)
  ZOOM     ズーム速度 (-%d-%d)
  TIMEOUT  移動時間 [秒] (1-%d)`, ptz.MaxMoveSpeed, ptz.MaxMoveSpeed, ptz.MaxZoomSpeed, ptz.MaxZoomSpeed, ptz.MaxMoveTimeout),
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := []string{"H", "V", "ZOOM", "TIMEOUT"}
			values := make([]int, len(args))
			for i, raw := range args {
				v, err := parseIntArg(names[i], raw)
				if err != nil {
					return err
				}
				values[i] = v
			}

			return a.runCommand(ptz.CodeContinuously, func(ctrl ptz.Controller) error {
				ctx, cancel := a.commandContext(cmd)
				defer cancel()
				return ctrl.Move(ctx, values[0], values[1], values[2], values[3])
			})
		},
	}
}

func newStopCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "連続移動を停止する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCommand(ptz.ActionStop, func(ctrl ptz.Controller) error {
				ctx, cancel := a.commandContext(cmd)
				defer cancel()
				return ctrl.Stop(ctx)
			})
		},
	}
}

func newZoomCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "zoom in|out",
		Short:     "ズームイン・ズームアウトする",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"in", "out"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "in" {
				return a.runCommand(ptz.CodeZoomTele, func(ctrl ptz.Controller) error {
					ctx, cancel := a.commandContext(cmd)
					defer cancel()
					return ctrl.ZoomIn(ctx)
				})
			}
			return a.runCommand(ptz.CodeZoomWide, func(ctrl ptz.Controller) error {
				ctx, cancel := a.commandContext(cmd)
				defer cancel()
				return ctrl.ZoomOut(ctx)
			})
		},
	}
}
