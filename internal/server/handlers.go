package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"dahuaptz/internal/camera"
	"dahuaptz/internal/config"
	"dahuaptz/internal/ptz"

	"github.com/gin-gonic/gin"
)

// PTZHandler はカメラ操作APIのハンドラー
type PTZHandler struct {
	config        *config.Config
	cameraManager camera.Manager
}

// NewPTZHandler は新しいPTZHandlerを作成する
func NewPTZHandler(cfg *config.Config, manager camera.Manager) *PTZHandler {
	return &PTZHandler{config: cfg, cameraManager: manager}
}

// HealthCheck はヘルスチェックエンドポイントの実装
func (h *PTZHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// GetStatus はシステム状態取得エンドポイントの実装
func (h *PTZHandler) GetStatus(c *gin.Context) {
	cameras := h.cameraManager.GetCameras()
	active := 0
	for _, cam := range cameras {
		if cam.Status == camera.StatusActive {
			active++
		}
	}

	c.JSON(http.StatusOK, StatusResponse{
		Status: "running",
		Server: ServerInfo{
			Host: h.config.Server.Host,
			Port: h.config.Server.Port,
		},
		Cameras:   len(cameras),
		Active:    active,
		Timestamp: time.Now(),
	})
}

// GetCameras はカメラ一覧取得エンドポイントの実装
func (h *PTZHandler) GetCameras(c *gin.Context) {
	managed := h.cameraManager.GetCameras()
	cameras := make([]CameraInfo, 0, len(managed))
	for _, cam := range managed {
		cameras = append(cameras, toCameraInfo(cam))
	}

	c.JSON(http.StatusOK, CamerasResponse{Cameras: cameras})
}

// GetCamera は個別カメラ取得エンドポイントの実装
func (h *PTZHandler) GetCamera(c *gin.Context) {
	cam, found := h.cameraManager.GetCamera(c.Param("id"))
	if !found {
		respondError(c, camera.ErrCameraNotFound)
		return
	}

	c.JSON(http.StatusOK, toCameraInfo(*cam))
}

// AddCamera はカメラ登録エンドポイントの実装
func (h *PTZHandler) AddCamera(c *gin.Context) {
	var req AddCameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "リクエストの形式が正しくありません", err)
		return
	}

	device := camera.Device{
		ID:   req.ID,
		Name: req.Name,
		Config: ptz.Config{
			Host:     req.Host,
			Channel:  req.Channel,
			Username: req.Username,
			Password: req.Password,
			Scheme:   req.Scheme,
			Timeout:  h.config.Camera.Timeout,
			Retries:  h.config.Camera.Retries,
		},
	}

	cam, err := h.cameraManager.AddCamera(c.Request.Context(), device)
	if err != nil {
		if errors.Is(err, camera.ErrDuplicateCamera) {
			respondError(c, err)
			return
		}
		respondBadRequest(c, "カメラを登録できません", err)
		return
	}

	c.JSON(http.StatusCreated, toCameraInfo(*cam))
}

// RemoveCamera はカメラ削除エンドポイントの実装
func (h *PTZHandler) RemoveCamera(c *gin.Context) {
	if err := h.cameraManager.RemoveCamera(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetCameraStatus はPTZステータス取得エンドポイントの実装
func (h *PTZHandler) GetCameraStatus(c *gin.Context) {
	id := c.Param("id")
	controller, ok := h.controller(c)
	if !ok {
		return
	}

	status, err := controller.Status(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CameraStatusResponse{CameraID: id, PTZ: status})
}

// GetPosition は現在位置取得エンドポイントの実装
func (h *PTZHandler) GetPosition(c *gin.Context) {
	id := c.Param("id")
	controller, ok := h.controller(c)
	if !ok {
		return
	}

	position, err := controller.Position(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PositionResponse{CameraID: id, Position: position})
}

// GoTo は絶対位置移動エンドポイントの実装
func (h *PTZHandler) GoTo(c *gin.Context) {
	var req GoToRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "リクエストの形式が正しくありません", err)
		return
	}

	h.runCommand(c, ptz.CodePositionABS, func(ctrl ptz.Controller) error {
		return ctrl.GoTo(c.Request.Context(), req.X, req.Y, req.Zoom, req.Speed)
	})
}

// GoToRelative は相対位置移動エンドポイントの実装
func (h *PTZHandler) GoToRelative(c *gin.Context) {
	var req RelativeMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "リクエストの形式が正しくありません", err)
		return
	}

	h.runCommand(c, ptz.CodePosition, func(ctrl ptz.Controller) error {
		return ctrl.GoToRelative(c.Request.Context(), req.Horizontal, req.Vertical, req.Zoom)
	})
}

// Move は連続移動エンドポイントの実装
func (h *PTZHandler) Move(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "リクエストの形式が正しくありません", err)
		return
	}

	h.runCommand(c, ptz.CodeContinuously, func(ctrl ptz.Controller) error {
		return ctrl.Move(c.Request.Context(), req.Horizontal, req.Vertical, req.Zoom, req.Timeout)
	})
}

// Stop は移動停止エンドポイントの実装
func (h *PTZHandler) Stop(c *gin.Context) {
	h.runCommand(c, ptz.ActionStop, func(ctrl ptz.Controller) error {
		return ctrl.Stop(c.Request.Context())
	})
}

// Zoom はズームエンドポイントの実装
func (h *PTZHandler) Zoom(c *gin.Context) {
	switch direction := c.Param("direction"); direction {
	case "in":
		h.runCommand(c, ptz.CodeZoomTele, func(ctrl ptz.Controller) error {
			return ctrl.ZoomIn(c.Request.Context())
		})
	case "out":
		h.runCommand(c, ptz.CodeZoomWide, func(ctrl ptz.Controller) error {
			return ctrl.ZoomOut(c.Request.Context())
		})
	default:
		respondBadRequest(c, "ズーム方向は in または out を指定してください", nil)
	}
}

// GetPresets はプリセット一覧取得エンドポイントの実装
func (h *PTZHandler) GetPresets(c *gin.Context) {
	id := c.Param("id")
	controller, ok := h.controller(c)
	if !ok {
		return
	}

	presets, err := controller.Presets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PresetsResponse{CameraID: id, Presets: presets})
}

// GoToPreset はプリセット呼び出しエンドポイントの実装
func (h *PTZHandler) GoToPreset(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondBadRequest(c, "プリセット番号が正しくありません", err)
		return
	}

	h.runCommand(c, ptz.CodeGotoPreset, func(ctrl ptz.Controller) error {
		return ctrl.GoToPreset(c.Request.Context(), index)
	})
}

// ヘルパー関数

// controller はパスのカメラIDから Controller を取得する。見つからない場合はレスポンスを書き込む
func (h *PTZHandler) controller(c *gin.Context) (ptz.Controller, bool) {
	controller, err := h.cameraManager.Controller(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return controller, true
}

// runCommand はコマンドを実行して結果を返す
func (h *PTZHandler) runCommand(c *gin.Context, command string, run func(ptz.Controller) error) {
	controller, ok := h.controller(c)
	if !ok {
		return
	}

	if err := run(controller); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CommandResponse{
		CameraID:  c.Param("id"),
		Command:   command,
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// respondError はエラーの種類に応じたレスポンスを返す
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, camera.ErrCameraNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:     errCodeCameraNotFound,
			Message:   "指定されたカメラが見つかりません",
			Timestamp: time.Now(),
		})
	case errors.Is(err, camera.ErrDuplicateCamera):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:     errCodeCameraExists,
			Message:   "カメラは既に登録されています",
			Details:   stringPtr(err.Error()),
			Timestamp: time.Now(),
		})
	case errors.Is(err, ptz.ErrOutOfRange):
		respondBadRequest(c, "パラメータが範囲外です", err)
	default:
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:     errCodeCameraError,
			Message:   "カメラの操作に失敗しました",
			Details:   stringPtr(err.Error()),
			Timestamp: time.Now(),
		})
	}
}

// respondBadRequest は 400 を返す
func respondBadRequest(c *gin.Context, message string, err error) {
	response := ErrorResponse{
		Error:     errCodeInvalidRequest,
		Message:   message,
		Timestamp: time.Now(),
	}
	if err != nil {
		response.Details = stringPtr(err.Error())
	}
	c.JSON(http.StatusBadRequest, response)
}
