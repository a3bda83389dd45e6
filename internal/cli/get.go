package cli

import (
	"github.com/spf13/cobra"
)

func newGetCommand(a *app) *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "カメラの状態を取得する",
	}

	getCmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "PTZステータスを表示する",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				controller, err := a.controller()
				if err != nil {
					return err
				}
				ctx, cancel := a.commandContext(cmd)
				defer cancel()

				status, err := controller.Status(ctx)
				if err != nil {
					return err
				}
				return writeResult(cmd.OutOrStdout(), a.output, status)
			},
		},
		&cobra.Command{
			Use:   "position",
			Short: "現在位置 (パン, チルト, ズーム) を表示する",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				controller, err := a.controller()
				if err != nil {
					return err
				}
				ctx, cancel := a.commandContext(cmd)
				defer cancel()

				position, err := controller.Position(ctx)
				if err != nil {
					return err
				}
				return writeResult(cmd.OutOrStdout(), a.output, position)
			},
		},
		&cobra.Command{
			Use:   "presets",
			Short: "登録済みプリセットを表示する",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				controller, err := a.controller()
				if err != nil {
					return err
				}
				ctx, cancel := a.commandContext(cmd)
				defer cancel()

				presets, err := controller.Presets(ctx)
				if err != nil {
					return err
				}
				return writeResult(cmd.OutOrStdout(), a.output, presets)
			},
		},
	)

	return getCmd
}
