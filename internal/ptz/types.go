package ptz

import (
	"context"
	"time"
)

// PTZコマンドのコード
const (
	CodePositionABS  = "PositionABS"  // 絶対位置への移動
	CodePosition     = "Position"     // 相対位置への移動
	CodeContinuously = "Continuously" // 連続移動
	CodeZoomTele     = "ZoomTele"     // ズームイン（望遠）
	CodeZoomWide     = "ZoomWide"     // ズームアウト（広角）
	CodeGotoPreset   = "GotoPreset"   // プリセット呼び出し
)

// PTZコマンドのアクション
const (
	ActionStart      = "start"
	ActionStop       = "stop"
	ActionGetStatus  = "getStatus"
	ActionGetPresets = "getPresets"
)

// 引数の有効範囲
const (
	MinSpeed         = 1
	MaxSpeed         = 8
	MinZoomMultiple  = 0.0
	MaxZoomMultiple  = 128.0
	MaxMoveSpeed     = 8
	MaxZoomSpeed     = 100
	MaxMoveTimeout   = 3600
	DefaultScheme    = "http"
	DefaultTimeout   = 10 * time.Second
	DefaultChannel   = 1
	commandOKMessage = "OK"
)

// Config は単一カメラへの接続設定
type Config struct {
	Host     string        // カメラのホスト（IPアドレス、ポート付き可）
	Channel  int           // 映像チャンネル番号（1始まり）
	Username string        // ダイジェスト認証のユーザー名
	Password string        // ダイジェスト認証のパスワード
	Scheme   string        // "http" または "https"
	Timeout  time.Duration // 1リクエストあたりのタイムアウト
	Retries  int           // 5xx・通信エラー時の再試行回数
}

// Position はカメラの現在位置を表す
type Position struct {
	Pan  float64 `json:"pan" yaml:"pan"`   // 水平角度
	Tilt float64 `json:"tilt" yaml:"tilt"` // 垂直角度
	Zoom float64 `json:"zoom" yaml:"zoom"` // ズーム倍率
}

// Preset はカメラに登録されたプリセット
type Preset struct {
	Index int    `json:"index" yaml:"index"`
	Name  string `json:"name" yaml:"name"`
}

// Controller はPTZカメラの操作を担うインターフェース
type Controller interface {
	// Status はPTZの状態を取得する
	Status(ctx context.Context) (Status, error)

	// Position は現在位置を取得する
	Position(ctx context.Context) (Position, error)

	// GoTo は絶対位置へ移動する（zoom: 0-128倍, speed: 1-8）
	GoTo(ctx context.Context, x, y, zoom float64, speed int) error

	// GoToRelative は現在位置からの相対移動を行う
	GoToRelative(ctx context.Context, horizontal, vertical, zoomChange float64) error

	// Move は指定速度で連続移動する（速度: -8から8, ズーム: -100から100, timeout: 秒）
	Move(ctx context.Context, horizontal, vertical, zoomSpeed, timeout int) error

	// Stop は連続移動を停止する
	Stop(ctx context.Context) error

	// ZoomIn は最大までズームインする
	ZoomIn(ctx context.Context) error

	// ZoomOut は最大までズームアウトする
	ZoomOut(ctx context.Context) error

	// Presets は登録済みプリセット一覧を取得する
	Presets(ctx context.Context) ([]Preset, error)

	// GoToPreset は指定番号のプリセットへ移動する
	GoToPreset(ctx context.Context, index int) error
}
