package ptz

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// KeyPosition は位置情報のキー（ベンダーAPIの綴りのまま）
const KeyPosition = "Postion"

var (
	// status.<本体>=<値>。本体と値の区切りは最後の '='
	statusLinePattern = regexp.MustCompile(`^status\.(.+)=(.*)$`)
	// 末尾の [n] を配列要素として扱う
	indexedKeyPattern = regexp.MustCompile(`^(.+)\[(\d+)\]$`)
)

// 整数として扱うキー
var intKeys = map[string]bool{
	"ActionID":      true,
	"PresetID":      true,
	"ZoomValue":     true,
	"AbsPosition":   true,
	"ZoomMapValue":  true,
	"FocusMapValue": true,
}

// 浮動小数点数として扱うキー
var floatKeys = map[string]bool{
	KeyPosition:     true,
	"IrisValue":     true,
	"FocusPosition": true,
}

// Status は getStatus レスポンスを変換したネスト構造
//
// 値は string, int, float64, []any, map[string]any のいずれか。
type Status map[string]any

// ParseStatus は getStatus のレスポンス本文を解析する
//
//	status.MoveStatus=Idle          -> {"MoveStatus": "Idle"}
//	status.Postion[0]=10.5          -> {"Postion": [10.5, ...]}
//	status.Focus.FocusPosition=1.2  -> {"Focus": {"FocusPosition": 1.2}}
func ParseStatus(text string) (Status, error) {
	status := Status{}

	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		matches := statusLinePattern.FindStringSubmatch(line)
		if matches == nil {
			return nil, &ParseError{Line: lineNo, Text: line, Err: ErrMalformedStatus}
		}

		if err := status.assign(matches[1], matches[2]); err != nil {
			return nil, &ParseError{Line: lineNo, Text: line, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("レスポンスの読み込みに失敗: %w", err)
	}

	return status, nil
}

// assign は1行分の値をツリーに格納する
func (s Status) assign(body, raw string) error {
	segments := strings.Split(body, ".")
	node := map[string]any(s)

	// 中間のキーはマップを作成（既存なら再利用）
	for _, segment := range segments[:len(segments)-1] {
		if segment == "" {
			return fmt.Errorf("%w: 空のキー", ErrMalformedStatus)
		}
		child, exists := node[segment]
		if !exists {
			next := map[string]any{}
			node[segment] = next
			node = next
			continue
		}
		next, ok := child.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s は値として定義済みです", ErrMalformedStatus, segment)
		}
		node = next
	}

	key := segments[len(segments)-1]
	indexed := false
	if m := indexedKeyPattern.FindStringSubmatch(key); m != nil {
		key = m[1]
		indexed = true
	}
	if key == "" {
		return fmt.Errorf("%w: 空のキー", ErrMalformedStatus)
	}

	value, err := coerceValue(key, raw)
	if err != nil {
		return err
	}

	current, exists := node[key]
	if !indexed {
		if _, isMap := current.(map[string]any); isMap {
			return fmt.Errorf("%w: %s はマップとして定義済みです", ErrMalformedStatus, key)
		}
		node[key] = value
		return nil
	}

	if !exists {
		node[key] = []any{value}
		return nil
	}
	list, ok := current.([]any)
	if !ok {
		return fmt.Errorf("%w: %s は配列ではありません", ErrMalformedStatus, key)
	}
	node[key] = append(list, value)
	return nil
}

// coerceValue はキーに応じて値の型を変換する
func coerceValue(key, raw string) (any, error) {
	switch {
	case intKeys[key]:
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %s は整数ではありません: %q", ErrMalformedStatus, key, raw)
		}
		return v, nil
	case floatKeys[key]:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s は数値ではありません: %q", ErrMalformedStatus, key, raw)
		}
		return v, nil
	default:
		return raw, nil
	}
}

// Lookup はドット区切りのパスで値を取得する
func (s Status) Lookup(path string) (any, bool) {
	var current any = map[string]any(s)
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Position はステータスから現在位置を取り出す
func (s Status) Position() (Position, error) {
	raw, ok := s[KeyPosition]
	if !ok {
		return Position{}, ErrPositionUnavailable
	}

	values, ok := raw.([]any)
	if !ok || len(values) < 3 {
		return Position{}, fmt.Errorf("%w: %s=%v", ErrPositionUnavailable, KeyPosition, raw)
	}

	coords := make([]float64, 3)
	for i := range coords {
		f, ok := values[i].(float64)
		if !ok {
			return Position{}, fmt.Errorf("%w: %s[%d]=%v", ErrPositionUnavailable, KeyPosition, i, values[i])
		}
		coords[i] = f
	}

	return Position{Pan: coords[0], Tilt: coords[1], Zoom: coords[2]}, nil
}
