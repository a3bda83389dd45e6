package camera

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"dahuaptz/internal/observability"
	"dahuaptz/internal/ptz"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultHealthInterval は定期監視の既定間隔
	DefaultHealthInterval = 30 * time.Second
	// 同時に問い合わせるカメラ数の上限
	maxConcurrentChecks = 4
	// 1台あたりの死活監視のタイムアウト
	checkTimeout = 5 * time.Second
)

// DefaultManager はManagerのデフォルト実装
type DefaultManager struct {
	factory     ControllerFactory
	cameras     map[string]*Camera
	controllers map[string]ptz.Controller
	mu          sync.RWMutex

	logger zerolog.Logger

	// 制御用
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool

	healthInterval time.Duration
}

var _ Manager = (*DefaultManager)(nil)

// NewDefaultManager は新しいDefaultManagerを作成する
func NewDefaultManager(factory ControllerFactory) *DefaultManager {
	return &DefaultManager{
		factory:        factory,
		cameras:        make(map[string]*Camera),
		controllers:    make(map[string]ptz.Controller),
		logger:         log.Logger.With().Str("component", "camera").Logger(),
		stopCh:         make(chan struct{}),
		healthInterval: DefaultHealthInterval,
	}
}

// SetHealthInterval は定期監視の間隔を設定する。0 で定期監視を無効化する
func (m *DefaultManager) SetHealthInterval(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthInterval = interval
}

// SetLogger はロガーを設定する
func (m *DefaultManager) SetLogger(logger zerolog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// Start は初回の死活監視を行い、定期監視を開始する
func (m *DefaultManager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("カメラマネージャーは既に開始されています")
	}
	m.running = true
	interval := m.healthInterval
	stopCh := m.stopCh
	m.mu.Unlock()

	if err := m.CheckCameras(ctx); err != nil {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		return fmt.Errorf("初回の死活監視に失敗: %w", err)
	}

	// 定期監視を開始
	if interval > 0 {
		m.wg.Add(1)
		go m.backgroundCheck(ctx, interval, stopCh)
	}

	return nil
}

// Stop は定期監視を停止する
func (m *DefaultManager) Stop(_ context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	m.stopCh = make(chan struct{})
	m.mu.Unlock()

	return nil
}

// GetCameras は登録されているカメラ一覧をID順で取得する
func (m *DefaultManager) GetCameras() []Camera {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cameras := make([]Camera, 0, len(m.cameras))
	for _, camera := range m.cameras {
		cameras = append(cameras, *camera)
	}
	sort.Slice(cameras, func(i, j int) bool { return cameras[i].ID < cameras[j].ID })

	return cameras
}

// GetCamera は指定されたIDのカメラを取得する
func (m *DefaultManager) GetCamera(id string) (*Camera, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	camera, exists := m.cameras[id]
	if !exists {
		return nil, false
	}

	// コピーを返す
	result := *camera
	return &result, true
}

// AddCamera はカメラを登録する
//
// 登録時点ではカメラへ接続しない。状態は次の死活監視で更新される。
func (m *DefaultManager) AddCamera(_ context.Context, device Device) (*Camera, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if device.Config.Channel == 0 {
		device.Config.Channel = ptz.DefaultChannel
	}

	if device.ID != "" {
		if _, exists := m.cameras[device.ID]; exists {
			return nil, fmt.Errorf("%w: ID %s", ErrDuplicateCamera, device.ID)
		}
	}

	// 同じホスト・チャンネルが登録されていないかチェック
	for _, camera := range m.cameras {
		if camera.Host == device.Config.Host && camera.Channel == device.Config.Channel {
			return nil, fmt.Errorf("%w: %s (チャンネル %d)", ErrDuplicateCamera, camera.Host, camera.Channel)
		}
	}

	controller, err := m.factory.CreateController(device.Config)
	if err != nil {
		return nil, fmt.Errorf("カメラクライアントの作成に失敗: %w", err)
	}

	id := device.ID
	if id == "" {
		id = uuid.New().String()
	}
	name := device.Name
	if name == "" {
		name = device.Config.Host
	}

	camera := &Camera{
		ID:      id,
		Name:    name,
		Host:    device.Config.Host,
		Channel: device.Config.Channel,
		Status:  StatusInactive,
	}

	m.cameras[id] = camera
	m.controllers[id] = controller

	m.logger.Info().Str("id", id).Str("host", camera.Host).Int("channel", camera.Channel).Msg("camera_added")

	result := *camera
	return &result, nil
}

// RemoveCamera はカメラの登録を解除する
func (m *DefaultManager) RemoveCamera(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.cameras[id]; !exists {
		return fmt.Errorf("%w: %s", ErrCameraNotFound, id)
	}

	delete(m.cameras, id)
	delete(m.controllers, id)
	observability.ForgetCamera(id)

	m.logger.Info().Str("id", id).Msg("camera_removed")
	return nil
}

// Controller は指定されたIDのカメラを操作する Controller を返す
func (m *DefaultManager) Controller(id string) (ptz.Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	controller, exists := m.controllers[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCameraNotFound, id)
	}
	return controller, nil
}

// CheckCameras は全カメラに getStatus を送り、状態を更新する
//
// 個々のカメラの失敗は Camera.Status と LastError に記録し、エラーとしては返さない。
func (m *DefaultManager) CheckCameras(ctx context.Context) error {
	m.mu.RLock()
	targets := make(map[string]ptz.Controller, len(m.controllers))
	for id, controller := range m.controllers {
		targets[id] = controller
	}
	m.mu.RUnlock()

	var g errgroup.Group
	g.SetLimit(maxConcurrentChecks)

	for id, controller := range targets {
		id, controller := id, controller
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			_, err := controller.Status(checkCtx)
			m.recordCheck(id, err)
			return nil
		})
	}
	_ = g.Wait()

	return ctx.Err()
}

// recordCheck は死活監視の結果を反映する
func (m *DefaultManager) recordCheck(id string, checkErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	camera, exists := m.cameras[id]
	if !exists {
		// 監視中に削除された
		return
	}

	previous := camera.Status
	if checkErr != nil {
		camera.Status = StatusError
		camera.LastError = checkErr.Error()
	} else {
		camera.Status = StatusActive
		camera.LastError = ""
		camera.LastSeen = time.Now()
	}
	observability.SetCameraUp(id, checkErr == nil)

	if previous != camera.Status {
		event := m.logger.Info()
		if checkErr != nil {
			event = m.logger.Warn().Err(checkErr)
		}
		event.Str("id", id).Str("from", string(previous)).Str("to", string(camera.Status)).Msg("camera_status_changed")
	}
}

// backgroundCheck は定期的な死活監視を実行する
func (m *DefaultManager) backgroundCheck(ctx context.Context, interval time.Duration, stopCh <-chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.CheckCameras(ctx); err != nil {
				return
			}
		}
	}
}
