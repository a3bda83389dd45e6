package ptz

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dahuaptz/internal/observability"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Client はダイジェスト認証でカメラのCGI APIを呼び出す Controller 実装
type Client struct {
	config Config
	http   *resty.Client
	logger zerolog.Logger
}

var _ Controller = (*Client)(nil)

// Option は Client の生成オプション
type Option func(*Client)

// WithLogger はロガーを指定する
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient は新しい Client を作成する
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg = withDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: cfg,
		logger: log.Logger.With().Str("camera", cfg.Host).Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = resty.New().
		SetBaseURL(fmt.Sprintf("%s://%s", cfg.Scheme, cfg.Host)).
		SetDigestAuth(cfg.Username, cfg.Password).
		SetTimeout(cfg.Timeout).
		SetLogger(restyLogger{logger: c.logger}).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= http.StatusInternalServerError
		})

	return c, nil
}

// Validate は接続設定を検証する
func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("カメラのホストが設定されていません")
	}
	if c.Channel < 1 {
		return fmt.Errorf("無効なチャンネル番号: %d", c.Channel)
	}
	if c.Username == "" {
		return fmt.Errorf("ユーザー名が設定されていません")
	}
	if c.Scheme != "http" && c.Scheme != "https" {
		return fmt.Errorf("無効なスキーム: %s", c.Scheme)
	}
	if c.Retries < 0 {
		return fmt.Errorf("無効な再試行回数: %d", c.Retries)
	}
	return nil
}

func withDefaults(cfg Config) Config {
	if cfg.Scheme == "" {
		cfg.Scheme = DefaultScheme
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg
}

// Host は接続先ホストを返す
func (c *Client) Host() string {
	return c.config.Host
}

// Request は /cgi-bin/<resource>.cgi にGETリクエストを送り、レスポンス本文を返す
//
// HTTPステータスが2xx以外の場合は *CommandError を返す。
func (c *Client) Request(ctx context.Context, resource string, params map[string]string) (string, error) {
	operation := params["code"]
	if operation == "" {
		operation = params["action"]
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/cgi-bin/" + resource + ".cgi")
	elapsed := time.Since(start)

	if err != nil {
		observability.RecordCameraRequest(c.config.Host, operation, false, elapsed)
		c.logger.Debug().Err(err).Str("operation", operation).Dur("duration", elapsed).Msg("ptz_request")
		return "", fmt.Errorf("カメラへのリクエストに失敗 (%s): %w", operation, err)
	}

	success := !resp.IsError()
	observability.RecordCameraRequest(c.config.Host, operation, success, elapsed)
	c.logger.Debug().
		Str("operation", operation).
		Int("status", resp.StatusCode()).
		Dur("duration", elapsed).
		Msg("ptz_request")

	if !success {
		return "", &CommandError{
			Code:       operation,
			StatusCode: resp.StatusCode(),
			Body:       strings.TrimSpace(resp.String()),
		}
	}
	return string(resp.Body()), nil
}

// command はPTZコマンドを送信し、"OK" が返ることを確認する
func (c *Client) command(ctx context.Context, action, code string, args [4]string) error {
	params := map[string]string{
		"action":  action,
		"code":    code,
		"channel": strconv.Itoa(c.config.Channel),
		"arg1":    args[0],
		"arg2":    args[1],
		"arg3":    args[2],
		"arg4":    args[3],
	}

	body, err := c.Request(ctx, "ptz", params)
	if err != nil {
		return err
	}

	if trimmed := strings.TrimSpace(body); trimmed != commandOKMessage {
		return &CommandError{Code: code, StatusCode: http.StatusOK, Body: trimmed}
	}
	return nil
}

// query はチャンネル指定の取得系アクションを実行する
func (c *Client) query(ctx context.Context, action string) (string, error) {
	return c.Request(ctx, "ptz", map[string]string{
		"action":  action,
		"channel": strconv.Itoa(c.config.Channel),
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var zeroArgs = [4]string{"0", "0", "0", "0"}

// restyLogger は resty のログを zerolog に流す
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), v...)
}
