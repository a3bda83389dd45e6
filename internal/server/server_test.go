package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dahuaptz/internal/camera"
	"dahuaptz/internal/config"
	"dahuaptz/internal/ptz"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Camera: config.CameraConfig{Channel: 1, Scheme: "http", Timeout: time.Second},
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0, // ランダムポートを使用
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 2 * time.Second,
			CORSOrigins:     []string{"http://localhost:3000"},
		},
	}
}

// newTestServer はモックカメラ "cam1" を登録したサーバーを作る
func newTestServer(t *testing.T) (*Server, *ptz.MockController) {
	t.Helper()

	factory := camera.NewMockControllerFactory()
	manager := camera.NewDefaultManager(factory)
	manager.SetHealthInterval(0)

	_, err := manager.AddCamera(context.Background(), camera.Device{
		ID:   "cam1",
		Name: "正門",
		Config: ptz.Config{
			Host:     "10.0.0.10",
			Channel:  1,
			Username: "admin",
			Password: "admin123",
		},
	})
	require.NoError(t, err)

	mock, ok := factory.Mock("10.0.0.10")
	require.True(t, ok)

	return New(testConfig(), manager), mock
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[HealthResponse](t, rec).Status)

	rec = doRequest(t, srv, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[StatusResponse](t, rec)
	assert.Equal(t, "running", status.Status)
	assert.Equal(t, 1, status.Cameras)
	assert.Equal(t, "127.0.0.1", status.Server.Host)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	doRequest(t, srv, http.MethodGet, "/health", "")
	rec := doRequest(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dahuaptz_http_requests_total")
}

func TestCameraCRUD(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/cameras", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cameras := decode[CamerasResponse](t, rec).Cameras
	require.Len(t, cameras, 1)
	assert.Equal(t, CameraInfo{ID: "cam1", Name: "正門", Host: "10.0.0.10", Channel: 1, Status: "inactive"}, cameras[0])

	rec = doRequest(t, srv, http.MethodPost, "/api/cameras",
		`{"id":"yard","host":"10.0.0.11","channel":2,"username":"admin","password":"x"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	added := decode[CameraInfo](t, rec)
	assert.Equal(t, "yard", added.ID)
	assert.Equal(t, 2, added.Channel)

	rec = doRequest(t, srv, http.MethodGet, "/api/cameras/yard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// 同じホストとチャンネル
	rec = doRequest(t, srv, http.MethodPost, "/api/cameras",
		`{"host":"10.0.0.11","channel":2,"username":"admin"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "camera_exists", decode[ErrorResponse](t, rec).Error)

	// 必須項目なし
	rec = doRequest(t, srv, http.MethodPost, "/api/cameras", `{"host":"10.0.0.12"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decode[ErrorResponse](t, rec).Error)

	rec = doRequest(t, srv, http.MethodDelete, "/api/cameras/yard", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, srv, http.MethodDelete, "/api/cameras/yard", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "camera_not_found", decode[ErrorResponse](t, rec).Error)
}

func TestCameraCommands(t *testing.T) {
	srv, mock := newTestServer(t)

	testCases := []struct {
		name    string
		method  string
		path    string
		body    string
		command string
	}{
		{"絶対位置移動", http.MethodPut, "/api/cameras/cam1/position", `{"x":90,"y":-10,"zoom":4,"speed":5}`, ptz.CodePositionABS},
		{"相対位置移動", http.MethodPost, "/api/cameras/cam1/position/relative", `{"horizontal":5,"vertical":1,"zoom":0}`, ptz.CodePosition},
		{"連続移動", http.MethodPost, "/api/cameras/cam1/move", `{"horizontal":-4,"vertical":0,"zoom":0,"timeout":10}`, ptz.CodeContinuously},
		{"停止", http.MethodPost, "/api/cameras/cam1/stop", "", ptz.ActionStop},
		{"ズームイン", http.MethodPost, "/api/cameras/cam1/zoom/in", "", ptz.CodeZoomTele},
		{"ズームアウト", http.MethodPost, "/api/cameras/cam1/zoom/out", "", ptz.CodeZoomWide},
		{"プリセット呼び出し", http.MethodPost, "/api/cameras/cam1/presets/2", "", ptz.CodeGotoPreset},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, srv, tc.method, tc.path, tc.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			resp := decode[CommandResponse](t, rec)
			assert.Equal(t, "cam1", resp.CameraID)
			assert.Equal(t, tc.command, resp.Command)
			assert.Equal(t, "ok", resp.Status)

			calls := mock.Calls()
			assert.Equal(t, tc.command, calls[len(calls)-1])
		})
	}

	assert.Equal(t, ptz.Position{Pan: 95, Tilt: -9, Zoom: 1}, mock.CurrentPosition())
}

func TestCameraQueries(t *testing.T) {
	srv, mock := newTestServer(t)
	require.NoError(t, mock.GoTo(context.Background(), 10, 20, 3, 1))

	rec := doRequest(t, srv, http.MethodGet, "/api/cameras/cam1/position", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ptz.Position{Pan: 10, Tilt: 20, Zoom: 3}, decode[PositionResponse](t, rec).Position)

	rec = doRequest(t, srv, http.MethodGet, "/api/cameras/cam1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[CameraStatusResponse](t, rec)
	assert.Equal(t, "Idle", status.PTZ["MoveStatus"])
	assert.Equal(t, []any{10.0, 20.0, 3.0}, status.PTZ[ptz.KeyPosition])

	rec = doRequest(t, srv, http.MethodGet, "/api/cameras/cam1/presets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []ptz.Preset{{Index: 1, Name: "Preset1"}, {Index: 2, Name: "Preset2"}},
		decode[PresetsResponse](t, rec).Presets)
}

func TestCameraErrors(t *testing.T) {
	srv, mock := newTestServer(t)

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"未登録のカメラ", http.MethodGet, "/api/cameras/none/position", "", http.StatusNotFound, "camera_not_found"},
		{"未登録のカメラへのコマンド", http.MethodPost, "/api/cameras/none/stop", "", http.StatusNotFound, "camera_not_found"},
		{"ズーム倍率の範囲外", http.MethodPut, "/api/cameras/cam1/position", `{"x":0,"y":0,"zoom":200,"speed":1}`, http.StatusBadRequest, "invalid_request"},
		{"速度なし", http.MethodPut, "/api/cameras/cam1/position", `{"x":0,"y":0,"zoom":1}`, http.StatusBadRequest, "invalid_request"},
		{"タイムアウトの範囲外", http.MethodPost, "/api/cameras/cam1/move", `{"horizontal":1,"timeout":4000}`, http.StatusBadRequest, "invalid_request"},
		{"不正なJSON", http.MethodPost, "/api/cameras/cam1/move", `{`, http.StatusBadRequest, "invalid_request"},
		{"不正なズーム方向", http.MethodPost, "/api/cameras/cam1/zoom/left", "", http.StatusBadRequest, "invalid_request"},
		{"不正なプリセット番号", http.MethodPost, "/api/cameras/cam1/presets/abc", "", http.StatusBadRequest, "invalid_request"},
		{"プリセット0", http.MethodPost, "/api/cameras/cam1/presets/0", "", http.StatusBadRequest, "invalid_request"},
		{"カメラが拒否したプリセット", http.MethodPost, "/api/cameras/cam1/presets/9", "", http.StatusBadGateway, "camera_error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, srv, tc.method, tc.path, tc.body)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, decode[ErrorResponse](t, rec).Error)
		})
	}

	// カメラとの通信エラーは 502
	mock.SetFailure(errors.New("connection refused"))
	rec := doRequest(t, srv, http.MethodGet, "/api/cameras/cam1/status", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "camera_error", resp.Error)
	require.NotNil(t, resp.Details)
	assert.Contains(t, *resp.Details, "connection refused")
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORSConfig(t *testing.T) {
	assert.True(t, corsConfig(nil).AllowAllOrigins)
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)

	cfg := corsConfig([]string{" http://a.example/ ", ""})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"http://a.example"}, cfg.AllowOrigins)
}

// TestServerStartAndShutdown はサーバーの起動とシャットダウンをテストする
func TestServerStartAndShutdown(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// サーバーを別ゴルーチンで起動
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	addr, err := srv.Addr(ctx)
	require.NoError(t, err)

	resp, err := http.Get(fmt.Sprintf("http://%s/api/cameras", addr))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Start で初回の死活監視が行われている
	cam, ok := srv.cameraManager.GetCamera("cam1")
	require.True(t, ok)
	assert.Equal(t, camera.StatusActive, cam.Status)

	// コンテキストをキャンセルしてサーバーを停止
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("サーバーの起動/停止でエラーが発生しました: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("サーバーの停止がタイムアウトしました")
	}
}
