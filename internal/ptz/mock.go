package ptz

import (
	"context"
	"fmt"
	"sync"
)

// MockController はテスト用の Controller 実装
//
// 位置はコマンドに応じて更新され、呼び出されたコードが記録される。
type MockController struct {
	mu       sync.RWMutex
	position Position
	moving   bool
	presets  []Preset
	calls    []string

	// テスト制御用
	failWith error
}

var _ Controller = (*MockController)(nil)

// NewMockController は新しいMockControllerを作成する
func NewMockController() *MockController {
	return &MockController{
		position: Position{Zoom: 1},
		presets: []Preset{
			{Index: 1, Name: "Preset1"},
			{Index: 2, Name: "Preset2"},
		},
	}
}

// Status はモックのステータスを返す
func (m *MockController) Status(_ context.Context) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(ActionGetStatus); err != nil {
		return nil, err
	}

	moveStatus := "Idle"
	if m.moving {
		moveStatus = "Moving"
	}
	return Status{
		KeyPosition:  []any{m.position.Pan, m.position.Tilt, m.position.Zoom},
		"MoveStatus": moveStatus,
		"ZoomStatus": "Idle",
		"PresetID":   0,
	}, nil
}

// Position はモックの現在位置を返す
func (m *MockController) Position(ctx context.Context) (Position, error) {
	status, err := m.Status(ctx)
	if err != nil {
		return Position{}, err
	}
	return status.Position()
}

// GoTo はモックの位置を更新する
func (m *MockController) GoTo(_ context.Context, x, y, zoom float64, speed int) error {
	if err := ValidateGoTo(zoom, speed); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(CodePositionABS); err != nil {
		return err
	}
	m.position = Position{Pan: x, Tilt: y, Zoom: zoom}
	return nil
}

// GoToRelative はモックの位置を相対的に更新する
func (m *MockController) GoToRelative(_ context.Context, horizontal, vertical, zoomChange float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(CodePosition); err != nil {
		return err
	}
	m.position.Pan += horizontal
	m.position.Tilt += vertical
	m.position.Zoom += zoomChange
	return nil
}

// Move はモックを移動中にする
func (m *MockController) Move(_ context.Context, horizontal, vertical, zoomSpeed, timeout int) error {
	if err := ValidateMove(horizontal, vertical, zoomSpeed, timeout); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(CodeContinuously); err != nil {
		return err
	}
	m.moving = true
	return nil
}

// Stop はモックの移動を止める
func (m *MockController) Stop(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(ActionStop); err != nil {
		return err
	}
	m.moving = false
	return nil
}

// ZoomIn はモックのズームを最大にする
func (m *MockController) ZoomIn(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(CodeZoomTele); err != nil {
		return err
	}
	m.position.Zoom = MaxZoomMultiple
	return nil
}

// ZoomOut はモックのズームを最小にする
func (m *MockController) ZoomOut(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(CodeZoomWide); err != nil {
		return err
	}
	m.position.Zoom = 1
	return nil
}

// Presets はモックのプリセット一覧を返す
func (m *MockController) Presets(_ context.Context) ([]Preset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(ActionGetPresets); err != nil {
		return nil, err
	}
	presets := make([]Preset, len(m.presets))
	copy(presets, m.presets)
	return presets, nil
}

// GoToPreset は登録済みプリセットかを確認する
func (m *MockController) GoToPreset(_ context.Context, index int) error {
	if err := ValidatePreset(index); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(CodeGotoPreset); err != nil {
		return err
	}
	for _, p := range m.presets {
		if p.Index == index {
			return nil
		}
	}
	return &CommandError{Code: CodeGotoPreset, StatusCode: 200, Body: "Error"}
}

// record は呼び出しを記録する（ロック済み前提）
func (m *MockController) record(code string) error {
	m.calls = append(m.calls, code)
	if m.failWith != nil {
		return fmt.Errorf("モック: %s に失敗: %w", code, m.failWith)
	}
	return nil
}

// SetFailure はテスト用に全操作を失敗させる。nil で解除する
func (m *MockController) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// SetPresets はテスト用にプリセットを設定する
func (m *MockController) SetPresets(presets []Preset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presets = presets
}

// Calls は呼び出されたコードの一覧を返す
func (m *MockController) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]string, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CurrentPosition は記録されている位置を返す
func (m *MockController) CurrentPosition() Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.position
}
