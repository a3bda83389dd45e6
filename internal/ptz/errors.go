package ptz

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedResponse はカメラが "OK" 以外を返したことを示す
	ErrUnexpectedResponse = errors.New("予期しないレスポンス")
	// ErrOutOfRange は引数が有効範囲外であることを示す
	ErrOutOfRange = errors.New("引数が範囲外です")
	// ErrMalformedStatus はレスポンスの書式が不正であることを示す
	ErrMalformedStatus = errors.New("不正なレスポンス書式")
	// ErrPositionUnavailable はステータスに位置情報が含まれないことを示す
	ErrPositionUnavailable = errors.New("位置情報がありません")
)

// CommandError はカメラがコマンドを受け付けなかった場合のエラー
type CommandError struct {
	Code       string // 送信したコード（getStatus等はアクション名）
	StatusCode int    // HTTPステータスコード
	Body       string // レスポンス本文（前後の空白は除去済み）
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("コマンド %s が拒否されました (HTTP %d): %q", e.Code, e.StatusCode, e.Body)
}

// Unwrap は errors.Is(err, ErrUnexpectedResponse) を成立させる
func (e *CommandError) Unwrap() error {
	return ErrUnexpectedResponse
}

// ParseError はレスポンス解析時のエラー
type ParseError struct {
	Line int    // 1始まりの行番号
	Text string // 問題の行
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d行目の解析に失敗 (%q): %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func outOfRange(name string, value any, min, max any) error {
	return fmt.Errorf("%w: %s=%v (有効範囲 %v から %v)", ErrOutOfRange, name, value, min, max)
}
