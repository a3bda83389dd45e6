package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dahuaptz/internal/ptz"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// 環境変数名
const (
	EnvCameraHost     = "DAHUA_PTZ_IP"
	EnvCameraChannel  = "DAHUA_PTZ_CHANNEL"
	EnvCameraUsername = "DAHUA_PTZ_USERNAME"
	EnvCameraPassword = "DAHUA_PTZ_PASSWORD"
	EnvCameraScheme   = "DAHUA_PTZ_SCHEME"
	EnvCameraTimeout  = "DAHUA_PTZ_TIMEOUT"
	EnvCameraRetries  = "DAHUA_PTZ_RETRIES"
	EnvServerHost     = "SERVER_HOST"
	EnvServerPort     = "PORT"
	EnvCORSOrigins    = "CORS_ORIGINS"
	EnvLogLevel       = "LOG_LEVEL"
)

// 設定ファイルを指定しない場合に探すファイル名（拡張子なし）
const defaultConfigName = "dahuaptz"

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Camera  CameraConfig   `mapstructure:"camera" yaml:"camera"`
	Devices []CameraDevice `mapstructure:"devices" yaml:"devices"`
	Server  ServerConfig   `mapstructure:"server" yaml:"server"`
	Log     LogConfig      `mapstructure:"log" yaml:"log"`
}

// CameraConfig は単一カメラへの接続設定
type CameraConfig struct {
	Host     string        `mapstructure:"host" yaml:"host"`         // IPアドレスまたはホスト名
	Channel  int           `mapstructure:"channel" yaml:"channel"`   // PTZチャンネル (1始まり)
	Username string        `mapstructure:"username" yaml:"username"` // ダイジェスト認証のユーザー名
	Password string        `mapstructure:"password" yaml:"password"` // ダイジェスト認証のパスワード
	Scheme   string        `mapstructure:"scheme" yaml:"scheme"`     // http または https
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`   // リクエストタイムアウト
	Retries  int           `mapstructure:"retries" yaml:"retries"`   // 失敗時の再試行回数
}

// CameraDevice はサーバーに登録するカメラの設定
//
// 省略した接続項目は Camera の値を引き継ぐ。
type CameraDevice struct {
	ID           string `mapstructure:"id" yaml:"id"`
	Name         string `mapstructure:"name" yaml:"name"`
	CameraConfig `mapstructure:",squash" yaml:",inline"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"` // リッスンするホスト
	Port int    `mapstructure:"port" yaml:"port"` // リッスンするポート番号

	// タイムアウト設定
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// カメラの死活監視間隔
	HealthInterval time.Duration `mapstructure:"health_interval" yaml:"health_interval"`

	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LogConfig はログ出力の設定
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // trace, debug, info, warn, error, off
}

// 設定キーと環境変数の対応
var envBindings = map[string]string{
	"camera.host":         EnvCameraHost,
	"camera.channel":      EnvCameraChannel,
	"camera.username":     EnvCameraUsername,
	"camera.password":     EnvCameraPassword,
	"camera.scheme":       EnvCameraScheme,
	"camera.timeout":      EnvCameraTimeout,
	"camera.retries":      EnvCameraRetries,
	"server.host":         EnvServerHost,
	"server.port":         EnvServerPort,
	"server.cors_origins": EnvCORSOrigins,
	"log.level":           EnvLogLevel,
}

// フラグ名と設定キーの対応。存在するフラグのみ紐付ける
var flagBindings = map[string]string{
	"host":        "camera.host",
	"channel":     "camera.channel",
	"username":    "camera.username",
	"password":    "camera.password",
	"scheme":      "camera.scheme",
	"timeout":     "camera.timeout",
	"listen-host": "server.host",
	"port":        "server.port",
	"log-level":   "log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("camera.host", "")
	v.SetDefault("camera.channel", ptz.DefaultChannel)
	v.SetDefault("camera.username", "")
	v.SetDefault("camera.password", "")
	v.SetDefault("camera.scheme", ptz.DefaultScheme)
	v.SetDefault("camera.timeout", ptz.DefaultTimeout)
	v.SetDefault("camera.retries", 0)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.health_interval", 30*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("log.level", "info")
}

// Load は設定を読み込む
//
// 優先順位は デフォルト値 < 設定ファイル < 環境変数 < フラグ。
// configFile が空の場合はカレントディレクトリの dahuaptz.yaml を探し、
// 見つからなければデフォルト値を使う。flags は nil でもよい。
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("環境変数 %s の設定に失敗: %w", env, err)
		}
	}

	if flags != nil {
		for name, key := range flagBindings {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("フラグ --%s の設定に失敗: %w", name, err)
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("設定ファイル %s の読み込みに失敗: %w", configFile, err)
		}
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("設定の変換に失敗: %w", err)
	}

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return &cfg, nil
}

// Validate は設定の妥当性を検証する
//
// カメラの接続情報はCLIのサブコマンドによっては不要なので ValidateCamera で別に検証する。
func (c *Config) Validate() error {
	// サーバー設定の検証
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("無効なポート番号: %d", c.Server.Port)
	}
	if c.Server.HealthInterval < 0 {
		return fmt.Errorf("無効な監視間隔: %s", c.Server.HealthInterval)
	}

	if c.Camera.Channel < 1 {
		return fmt.Errorf("無効なチャンネル番号: %d", c.Camera.Channel)
	}
	if c.Camera.Scheme != "http" && c.Camera.Scheme != "https" {
		return fmt.Errorf("無効なスキーム: %s", c.Camera.Scheme)
	}

	ids := make(map[string]bool)
	for i, device := range c.Devices {
		if device.Host == "" {
			return fmt.Errorf("devices[%d]: ホストが設定されていません", i)
		}
		if device.Channel < 0 {
			return fmt.Errorf("devices[%d]: 無効なチャンネル番号: %d", i, device.Channel)
		}
		if device.ID == "" {
			continue
		}
		if ids[device.ID] {
			return fmt.Errorf("devices[%d]: カメラIDが重複しています: %s", i, device.ID)
		}
		ids[device.ID] = true
	}

	return nil
}

// ValidateCamera は単一カメラの接続情報が揃っているかを検証する
func (c *Config) ValidateCamera() error {
	var missing []string
	if c.Camera.Host == "" {
		missing = append(missing, EnvCameraHost)
	}
	if c.Camera.Username == "" {
		missing = append(missing, EnvCameraUsername)
	}
	if c.Camera.Password == "" {
		missing = append(missing, EnvCameraPassword)
	}
	if len(missing) > 0 {
		return fmt.Errorf("カメラの接続情報が不足しています。環境変数 %s を設定してください", strings.Join(missing, ", "))
	}
	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// CameraDevices はサーバーに登録するカメラ一覧を返す
//
// devices が未設定で camera.host がある場合は単一カメラを "default" として返す。
func (c *Config) CameraDevices() []CameraDevice {
	if len(c.Devices) == 0 {
		if c.Camera.Host == "" {
			return nil
		}
		return []CameraDevice{{ID: "default", Name: c.Camera.Host, CameraConfig: c.Camera}}
	}

	devices := make([]CameraDevice, len(c.Devices))
	for i, device := range c.Devices {
		device.CameraConfig = device.CameraConfig.inherit(c.Camera)
		if device.Name == "" {
			device.Name = device.Host
		}
		devices[i] = device
	}
	return devices
}

// inherit は未設定の項目を base から補う
func (cc CameraConfig) inherit(base CameraConfig) CameraConfig {
	if cc.Channel == 0 {
		cc.Channel = base.Channel
	}
	if cc.Username == "" {
		cc.Username = base.Username
		if cc.Password == "" {
			cc.Password = base.Password
		}
	}
	if cc.Scheme == "" {
		cc.Scheme = base.Scheme
	}
	if cc.Timeout == 0 {
		cc.Timeout = base.Timeout
	}
	if cc.Retries == 0 {
		cc.Retries = base.Retries
	}
	return cc
}

// ClientConfig は ptz.Client 用の設定に変換する
func (cc CameraConfig) ClientConfig() ptz.Config {
	return ptz.Config{
		Host:     cc.Host,
		Channel:  cc.Channel,
		Username: cc.Username,
		Password: cc.Password,
		Scheme:   cc.Scheme,
		Timeout:  cc.Timeout,
		Retries:  cc.Retries,
	}
}
