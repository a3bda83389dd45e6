package server

import (
	"time"

	"dahuaptz/internal/camera"
	"dahuaptz/internal/ptz"
)

// HealthResponse は /health のレスポンス
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ServerInfo はサーバーのリッスン情報
type ServerInfo struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// StatusResponse は /api/status のレスポンス
type StatusResponse struct {
	Status    string     `json:"status"`
	Server    ServerInfo `json:"server"`
	Cameras   int        `json:"cameras"`
	Active    int        `json:"active"`
	Timestamp time.Time  `json:"timestamp"`
}

// CameraInfo はカメラ一覧の要素
type CameraInfo struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Host      string     `json:"host"`
	Channel   int        `json:"channel"`
	Status    string     `json:"status"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// CamerasResponse は /api/cameras のレスポンス
type CamerasResponse struct {
	Cameras []CameraInfo `json:"cameras"`
}

// AddCameraRequest はカメラ登録のリクエスト
type AddCameraRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Host     string `json:"host" binding:"required"`
	Channel  int    `json:"channel" binding:"omitempty,min=1"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password"`
	Scheme   string `json:"scheme" binding:"omitempty,oneof=http https"`
}

// GoToRequest は絶対位置移動のリクエスト
type GoToRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Zoom  float64 `json:"zoom"`
	Speed int     `json:"speed" binding:"required"`
}

// RelativeMoveRequest は相対位置移動のリクエスト
type RelativeMoveRequest struct {
	Horizontal float64 `json:"horizontal"`
	Vertical   float64 `json:"vertical"`
	Zoom       float64 `json:"zoom"`
}

// MoveRequest は連続移動のリクエスト
type MoveRequest struct {
	Horizontal int `json:"horizontal"`
	Vertical   int `json:"vertical"`
	Zoom       int `json:"zoom"`
	Timeout    int `json:"timeout" binding:"required"`
}

// CameraStatusResponse はPTZステータスのレスポンス
type CameraStatusResponse struct {
	CameraID string     `json:"camera_id"`
	PTZ      ptz.Status `json:"ptz"`
}

// PositionResponse は現在位置のレスポンス
type PositionResponse struct {
	CameraID string       `json:"camera_id"`
	Position ptz.Position `json:"position"`
}

// PresetsResponse はプリセット一覧のレスポンス
type PresetsResponse struct {
	CameraID string       `json:"camera_id"`
	Presets  []ptz.Preset `json:"presets"`
}

// CommandResponse はPTZコマンド実行結果のレスポンス
type CommandResponse struct {
	CameraID  string    `json:"camera_id"`
	Command   string    `json:"command"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse はエラーレスポンス
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Details   *string   `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// エラーコード
const (
	errCodeCameraNotFound = "camera_not_found"
	errCodeCameraExists   = "camera_exists"
	errCodeInvalidRequest = "invalid_request"
	errCodeCameraError    = "camera_error"
)

// toCameraInfo はカメラ情報をレスポンス用に変換する
func toCameraInfo(cam camera.Camera) CameraInfo {
	info := CameraInfo{
		ID:        cam.ID,
		Name:      cam.Name,
		Host:      cam.Host,
		Channel:   cam.Channel,
		Status:    string(cam.Status),
		LastError: cam.LastError,
	}
	if !cam.LastSeen.IsZero() {
		lastSeen := cam.LastSeen
		info.LastSeen = &lastSeen
	}
	return info
}

// stringPtr は文字列のポインタを返すヘルパー関数
func stringPtr(s string) *string {
	return &s
}
