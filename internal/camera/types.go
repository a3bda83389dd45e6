package camera

import (
	"context"
	"errors"
	"time"

	"dahuaptz/internal/ptz"
)

// Status はカメラの動作状態を表す
type Status string

const (
	StatusInactive Status = "inactive" // 未確認
	StatusActive   Status = "active"   // 直近の死活監視に成功
	StatusError    Status = "error"    // 直近の死活監視に失敗
)

var (
	// ErrCameraNotFound は指定IDのカメラが登録されていない
	ErrCameraNotFound = errors.New("カメラが見つかりません")
	// ErrDuplicateCamera は同じIDまたは同じホスト・チャンネルのカメラが登録済み
	ErrDuplicateCamera = errors.New("カメラは既に登録されています")
)

// Camera は登録されたPTZカメラの情報
type Camera struct {
	ID        string    // カメラの一意識別子
	Name      string    // カメラの表示名
	Host      string    // IPアドレスまたはホスト名
	Channel   int       // PTZチャンネル
	Status    Status    // 現在の状態
	LastSeen  time.Time // 最後に応答を確認した時刻
	LastError string    // 直近の死活監視のエラー
}

// Device はカメラ登録時の入力
type Device struct {
	ID     string     // 空の場合は自動採番
	Name   string     // 空の場合はホスト名
	Config ptz.Config // 接続設定
}

// Manager は複数カメラの登録と死活監視を担うインターフェース
type Manager interface {
	// Start は初回の死活監視を行い、定期監視を開始する
	Start(ctx context.Context) error

	// Stop は定期監視を停止する
	Stop(ctx context.Context) error

	// GetCameras は登録されているカメラ一覧をID順で取得する
	GetCameras() []Camera

	// GetCamera は指定されたIDのカメラを取得する
	GetCamera(id string) (*Camera, bool)

	// AddCamera はカメラを登録する
	AddCamera(ctx context.Context, device Device) (*Camera, error)

	// RemoveCamera はカメラの登録を解除する
	RemoveCamera(ctx context.Context, id string) error

	// Controller は指定されたIDのカメラを操作する Controller を返す
	Controller(id string) (ptz.Controller, error)

	// CheckCameras は全カメラの死活監視を行う
	CheckCameras(ctx context.Context) error
}

// ControllerFactory はカメラごとの Controller を生成する
type ControllerFactory interface {
	CreateController(config ptz.Config) (ptz.Controller, error)
}
