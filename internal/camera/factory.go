package camera

import (
	"sync"

	"dahuaptz/internal/ptz"

	"github.com/rs/zerolog"
)

// ClientFactory は実機に接続する ptz.Client を生成する
type ClientFactory struct {
	logger zerolog.Logger
}

// NewClientFactory は新しいClientFactoryを作成する
func NewClientFactory(logger zerolog.Logger) ControllerFactory {
	return &ClientFactory{logger: logger}
}

// CreateController はダイジェスト認証付きの ptz.Client を作成する
func (f *ClientFactory) CreateController(config ptz.Config) (ptz.Controller, error) {
	logger := f.logger.With().Str("camera", config.Host).Int("channel", config.Channel).Logger()
	return ptz.NewClient(config, ptz.WithLogger(logger))
}

// MockControllerFactory はテスト用の ControllerFactory 実装
//
// 生成したモックはホスト名で取り出せる。
type MockControllerFactory struct {
	mu          sync.Mutex
	controllers map[string]*ptz.MockController
}

// NewMockControllerFactory は新しいMockControllerFactoryを作成する
func NewMockControllerFactory() *MockControllerFactory {
	return &MockControllerFactory{
		controllers: make(map[string]*ptz.MockController),
	}
}

// CreateController は設定を検証してモックを作成する
func (f *MockControllerFactory) CreateController(config ptz.Config) (ptz.Controller, error) {
	if config.Scheme == "" {
		config.Scheme = ptz.DefaultScheme
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	mock := ptz.NewMockController()
	f.controllers[config.Host] = mock
	return mock, nil
}

// Mock は指定ホスト用に生成されたモックを返す
func (f *MockControllerFactory) Mock(host string) (*ptz.MockController, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	mock, ok := f.controllers[host]
	return mock, ok
}
