package ptz

import (
	"context"
	"fmt"
	"strconv"
)

// Status はPTZの状態を取得する
func (c *Client) Status(ctx context.Context) (Status, error) {
	body, err := c.query(ctx, ActionGetStatus)
	if err != nil {
		return nil, err
	}

	status, err := ParseStatus(body)
	if err != nil {
		return nil, fmt.Errorf("ステータスの解析に失敗: %w", err)
	}
	return status, nil
}

// Position は現在位置を取得する
func (c *Client) Position(ctx context.Context) (Position, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return Position{}, err
	}
	return status.Position()
}

// GoTo は絶対位置へ移動する
//
// x, y は Postion と同じ座標系。zoom は 0 から 128 倍、speed は 1 から 8。
func (c *Client) GoTo(ctx context.Context, x, y, zoom float64, speed int) error {
	if err := ValidateGoTo(zoom, speed); err != nil {
		return err
	}
	return c.command(ctx, ActionStart, CodePositionABS, [4]string{
		formatFloat(x), formatFloat(y), formatFloat(zoom), strconv.Itoa(speed),
	})
}

// GoToRelative は現在位置からの相対移動を行う
func (c *Client) GoToRelative(ctx context.Context, horizontal, vertical, zoomChange float64) error {
	return c.command(ctx, ActionStart, CodePosition, [4]string{
		formatFloat(horizontal), formatFloat(vertical), formatFloat(zoomChange), "0",
	})
}

// Move は指定速度で連続移動する。timeout 秒経過するとカメラ側で停止する
func (c *Client) Move(ctx context.Context, horizontal, vertical, zoomSpeed, timeout int) error {
	if err := ValidateMove(horizontal, vertical, zoomSpeed, timeout); err != nil {
		return err
	}
	return c.command(ctx, ActionStart, CodeContinuously, [4]string{
		strconv.Itoa(horizontal), strconv.Itoa(vertical), strconv.Itoa(zoomSpeed), strconv.Itoa(timeout),
	})
}

// Stop は連続移動を停止する
func (c *Client) Stop(ctx context.Context) error {
	return c.command(ctx, ActionStop, CodeContinuously, zeroArgs)
}

// ZoomIn は最大までズームインする
func (c *Client) ZoomIn(ctx context.Context) error {
	return c.command(ctx, ActionStart, CodeZoomTele, zeroArgs)
}

// ZoomOut は最大までズームアウトする
func (c *Client) ZoomOut(ctx context.Context) error {
	return c.command(ctx, ActionStart, CodeZoomWide, zeroArgs)
}

// Presets は登録済みプリセット一覧を取得する
func (c *Client) Presets(ctx context.Context) ([]Preset, error) {
	body, err := c.query(ctx, ActionGetPresets)
	if err != nil {
		return nil, err
	}

	presets, err := ParsePresets(body)
	if err != nil {
		return nil, fmt.Errorf("プリセットの解析に失敗: %w", err)
	}
	return presets, nil
}

// GoToPreset は指定番号のプリセットへ移動する
func (c *Client) GoToPreset(ctx context.Context, index int) error {
	if err := ValidatePreset(index); err != nil {
		return err
	}
	return c.command(ctx, ActionStart, CodeGotoPreset, [4]string{"0", strconv.Itoa(index), "0", "0"})
}

// ValidateGoTo は絶対位置移動の引数を検証する
func ValidateGoTo(zoom float64, speed int) error {
	if zoom < MinZoomMultiple || zoom > MaxZoomMultiple {
		return outOfRange("zoom", zoom, MinZoomMultiple, MaxZoomMultiple)
	}
	if speed < MinSpeed || speed > MaxSpeed {
		return outOfRange("speed", speed, MinSpeed, MaxSpeed)
	}
	return nil
}

// ValidateMove は連続移動の引数を検証する
func ValidateMove(horizontal, vertical, zoomSpeed, timeout int) error {
	if timeout <= 0 || timeout > MaxMoveTimeout {
		return outOfRange("timeout", timeout, 1, MaxMoveTimeout)
	}
	if zoomSpeed < -MaxZoomSpeed || zoomSpeed > MaxZoomSpeed {
		return outOfRange("zoom speed", zoomSpeed, -MaxZoomSpeed, MaxZoomSpeed)
	}
	if vertical < -MaxMoveSpeed || vertical > MaxMoveSpeed {
		return outOfRange("vertical speed", vertical, -MaxMoveSpeed, MaxMoveSpeed)
	}
	if horizontal < -MaxMoveSpeed || horizontal > MaxMoveSpeed {
		return outOfRange("horizontal speed", horizontal, -MaxMoveSpeed, MaxMoveSpeed)
	}
	return nil
}

// ValidatePreset はプリセット番号を検証する
func ValidatePreset(index int) error {
	if index < 1 {
		return fmt.Errorf("%w: preset=%d (1以上)", ErrOutOfRange, index)
	}
	return nil
}
