package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dahuaptz/internal/ptz"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv はテスト中の環境変数を空にする
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dahuaptz.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestLoad_Defaults はデフォルト値での読み込みをテストする
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.HealthInterval)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "", cfg.Camera.Host)
	assert.Equal(t, 1, cfg.Camera.Channel)
	assert.Equal(t, "http", cfg.Camera.Scheme)
	assert.Equal(t, ptz.DefaultTimeout, cfg.Camera.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Devices)
}

// TestLoad_Environment は環境変数の反映をテストする
func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCameraHost, "192.168.1.108")
	t.Setenv(EnvCameraChannel, "2")
	t.Setenv(EnvCameraUsername, "admin")
	t.Setenv(EnvCameraPassword, "secret")
	t.Setenv(EnvCameraTimeout, "3s")
	t.Setenv(EnvServerHost, "127.0.0.1")
	t.Setenv(EnvServerPort, "9999")
	t.Setenv(EnvCORSOrigins, "http://a.example,http://b.example")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, CameraConfig{
		Host:     "192.168.1.108",
		Channel:  2,
		Username: "admin",
		Password: "secret",
		Scheme:   "http",
		Timeout:  3 * time.Second,
	}, cfg.Camera)
	assert.Equal(t, "127.0.0.1:9999", cfg.ServerAddress())
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestLoad_File は設定ファイルの読み込みと優先順位をテストする
func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
camera:
  host: 10.0.0.5
  username: operator
  password: pass
  timeout: 5s
server:
  port: 9090
  health_interval: 1m
devices:
  - id: gate
    name: 正門
    host: 10.0.0.10
  - id: yard
    host: 10.0.0.11
    channel: 2
    username: viewer
    password: viewerpass
`)
	// 環境変数はファイルより優先
	t.Setenv(EnvCameraHost, "10.0.0.6")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.6", cfg.Camera.Host)
	assert.Equal(t, "operator", cfg.Camera.Username)
	assert.Equal(t, 5*time.Second, cfg.Camera.Timeout)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Server.HealthInterval)
	require.Len(t, cfg.Devices, 2)

	devices := cfg.CameraDevices()
	require.Len(t, devices, 2)

	assert.Equal(t, "gate", devices[0].ID)
	assert.Equal(t, "正門", devices[0].Name)
	assert.Equal(t, "10.0.0.10", devices[0].Host)
	assert.Equal(t, 1, devices[0].Channel)
	assert.Equal(t, "operator", devices[0].Username)
	assert.Equal(t, "pass", devices[0].Password)
	assert.Equal(t, 5*time.Second, devices[0].Timeout)

	assert.Equal(t, "10.0.0.11", devices[1].Name)
	assert.Equal(t, 2, devices[1].Channel)
	assert.Equal(t, "viewer", devices[1].Username)
	assert.Equal(t, "viewerpass", devices[1].Password)
}

// TestLoad_Flags はフラグが最優先されることをテストする
func TestLoad_Flags(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCameraHost, "10.0.0.6")
	t.Setenv(EnvServerPort, "9999")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("host", "", "")
	flags.Int("channel", 1, "")
	flags.Int("port", 8080, "")
	require.NoError(t, flags.Parse([]string{"--host", "10.0.0.7", "--channel", "3"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.7", cfg.Camera.Host)
	assert.Equal(t, 3, cfg.Camera.Channel)
	// 未指定のフラグは環境変数を上書きしない
	assert.Equal(t, 9999, cfg.Server.Port)
}

// TestLoad_Errors は読み込み失敗をテストする
func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	_, err = Load(writeConfigFile(t, "camera: [broken"), nil)
	assert.Error(t, err)

	t.Setenv(EnvServerPort, "70000")
	_, err = Load("", nil)
	assert.Error(t, err)
}

// TestConfigValidate は設定の検証をテストする
func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Camera: CameraConfig{Channel: 1, Scheme: "http"},
			Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		}
	}

	testCases := []struct {
		name      string
		modify    func(*Config)
		expectErr bool
	}{
		{"正常な設定", func(*Config) {}, false},
		{"ポート0", func(c *Config) { c.Server.Port = 0 }, true},
		{"ポート上限超過", func(c *Config) { c.Server.Port = 65536 }, true},
		{"負の監視間隔", func(c *Config) { c.Server.HealthInterval = -time.Second }, true},
		{"チャンネル0", func(c *Config) { c.Camera.Channel = 0 }, true},
		{"不正なスキーム", func(c *Config) { c.Camera.Scheme = "rtsp" }, true},
		{"ホストのないデバイス", func(c *Config) {
			c.Devices = []CameraDevice{{ID: "a"}}
		}, true},
		{"ID重複", func(c *Config) {
			c.Devices = []CameraDevice{
				{ID: "a", CameraConfig: CameraConfig{Host: "10.0.0.1"}},
				{ID: "a", CameraConfig: CameraConfig{Host: "10.0.0.2"}},
			}
		}, true},
		{"ID省略は重複扱いしない", func(c *Config) {
			c.Devices = []CameraDevice{
				{CameraConfig: CameraConfig{Host: "10.0.0.1"}},
				{CameraConfig: CameraConfig{Host: "10.0.0.2"}},
			}
		}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestValidateCamera は不足している環境変数名がエラーに含まれることをテストする
func TestValidateCamera(t *testing.T) {
	cfg := &Config{Camera: CameraConfig{Username: "admin"}}
	err := cfg.ValidateCamera()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvCameraHost)
	assert.Contains(t, err.Error(), EnvCameraPassword)
	assert.NotContains(t, err.Error(), EnvCameraUsername)

	cfg.Camera.Host = "10.0.0.1"
	cfg.Camera.Password = "secret"
	assert.NoError(t, cfg.ValidateCamera())
}

// TestCameraDevices_Single は devices 未設定時の単一カメラ登録をテストする
func TestCameraDevices_Single(t *testing.T) {
	cfg := &Config{}
	assert.Empty(t, cfg.CameraDevices())

	cfg.Camera = CameraConfig{Host: "10.0.0.1", Channel: 1, Username: "admin", Password: "x"}
	devices := cfg.CameraDevices()
	require.Len(t, devices, 1)
	assert.Equal(t, "default", devices[0].ID)
	assert.Equal(t, "10.0.0.1", devices[0].Name)
}

// TestServerAddress はサーバーアドレスの生成をテストする
func TestServerAddress(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Host: "192.168.1.100",
			Port: 9090,
		},
	}
	assert.Equal(t, "192.168.1.100:9090", cfg.ServerAddress())
}

// TestClientConfig は ptz.Config への変換をテストする
func TestClientConfig(t *testing.T) {
	cc := CameraConfig{
		Host:     "10.0.0.1",
		Channel:  2,
		Username: "admin",
		Password: "secret",
		Scheme:   "https",
		Timeout:  time.Second,
		Retries:  2,
	}
	assert.Equal(t, ptz.Config{
		Host:     "10.0.0.1",
		Channel:  2,
		Username: "admin",
		Password: "secret",
		Scheme:   "https",
		Timeout:  time.Second,
		Retries:  2,
	}, cc.ClientConfig())
}
