package matrix

import (
	"sync/atomic"

	"go.uber.org/zap"

	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
)

// Manager holds the active registry. Readers never lock; a reload swaps
// the whole registry.
type Manager struct {
	current atomic.Pointer[Registry]
	source  string
}

// NewManager loads the matrix file at path, or the built-in matrix when
// path is empty.
func NewManager(path string) (*Manager, error) {
	reg, err := loadSource(path)
	if err != nil {
		return nil, err
	}
	m := &Manager{source: path}
	m.current.Store(reg)
	return m, nil
}

// NewStaticManager wraps an already loaded registry.
func NewStaticManager(reg *Registry) *Manager {
	m := &Manager{}
	m.current.Store(reg)
	return m
}

func (m *Manager) Current() *Registry {
	return m.current.Load()
}

// Swap installs reg and returns the registry it replaced.
func (m *Manager) Swap(reg *Registry) *Registry {
	old := m.current.Swap(reg)
	logger.Info("Permission matrix swapped",
		zap.String("from", versionOf(old)),
		zap.String("to", versionOf(reg)))
	return old
}

// Reload re-reads the matrix source. On error the current registry stays.
func (m *Manager) Reload() (*Registry, error) {
	reg, err := loadSource(m.source)
	if err != nil {
		logger.Error("Permission matrix reload failed", zap.String("source", m.source), zap.Error(err))
		return nil, err
	}
	m.Swap(reg)
	return reg, nil
}

func loadSource(path string) (*Registry, error) {
	if path == "" {
		return LoadDefault()
	}
	return LoadFile(path)
}

func versionOf(r *Registry) string {
	if r == nil {
		return ""
	}
	return r.Version()
}
