package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger はコンソール出力のロガーを作成し、グローバルロガーに設定する
//
// 標準出力はコマンド結果に使うため、ログは標準エラー出力に書き出す。
func InitLogger(app, level string) zerolog.Logger {
	return InitLoggerWithWriter(app, level, os.Stderr)
}

// InitLoggerWithWriter は出力先を指定してロガーを初期化する
func InitLoggerWithWriter(app, level string, out io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).
		Level(ParseLevel(level)).
		With().Timestamp().Str("app", app).
		Logger()
	log.Logger = logger
	return logger
}

// ParseLevel はログレベル文字列を解決する。不明な値は info とする
func ParseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
