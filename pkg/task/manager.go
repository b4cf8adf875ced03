package task

import (
	"context"
	"fmt"
	"sync"

	"storefront-service/pkg/logger"
)

// BackgroundTask 常驻后台任务，例如清理 worker 池
type BackgroundTask interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
}

// Manager 按注册顺序启动任务，逆序停止已启动的任务
type Manager struct {
	mu      sync.Mutex
	tasks   []BackgroundTask
	started []BackgroundTask
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewManager() *Manager {
	return &Manager{}
}

var defaultManager = NewManager()

// Register 组件 Start 阶段调用，StartAll 之后注册的任务需要再次 StartAll 才会启动
func (m *Manager) Register(t BackgroundTask) {
	if t == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, t)
}

// StartAll 启动尚未启动的任务；任一失败时停止本轮已启动的任务并返回错误
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel == nil {
		m.ctx, m.cancel = context.WithCancel(ctx)
	}

	base := len(m.started)
	for _, t := range m.tasks[base:] {
		if err := t.Start(m.ctx); err != nil {
			for j := len(m.started) - 1; j >= base; j-- {
				_ = m.started[j].Stop()
			}
			m.started = m.started[:base]
			m.tasks = m.tasks[:base]
			return fmt.Errorf("start task %s: %w", t.Name(), err)
		}
		m.started = append(m.started, t)
		logger.Infof("Background task started name=%s", t.Name())
	}
	return nil
}

// StopAll 取消任务上下文并逆序停止
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.ctx, m.cancel = nil, nil
	}
	for i := len(m.started) - 1; i >= 0; i-- {
		t := m.started[i]
		if err := t.Stop(); err != nil {
			logger.Warnf("Background task stop failed name=%s error=%v", t.Name(), err)
			continue
		}
		logger.Infof("Background task stopped name=%s", t.Name())
	}
	m.started = nil
	m.tasks = nil
}

// Names 已注册任务名
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.tasks))
	for _, t := range m.tasks {
		names = append(names, t.Name())
	}
	return names
}

func Register(t BackgroundTask) { defaultManager.Register(t) }

func StartAll(ctx context.Context) error { return defaultManager.StartAll(ctx) }

func StopAll() { defaultManager.StopAll() }

func Names() []string { return defaultManager.Names() }
