package config

import (
	"fmt"
	"os"
	"sync"
)

// warnf emits resolution fallback warnings. The logger cannot be used here
// because it is itself configured from the settings being resolved.
// Overridable in tests.
var warnf = func(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

// Manager owns the process-wide settings snapshot. The first Settings call
// resolves lazily under the lock; Reload re-runs the full precedence chain and
// swaps the snapshot. Readers never observe a partially built snapshot.
type Manager struct {
	mu         sync.RWMutex
	snapshot   *AppSettings
	configFile string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithConfigFile overrides the conventional config/config.toml location.
func WithConfigFile(path string) ManagerOption {
	return func(m *Manager) {
		m.configFile = path
	}
}

// NewManager creates a Manager. Resolution is deferred until the first
// Settings call.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Settings returns the current snapshot, resolving it on first use. It never
// fails: resolution errors fall back to environment-built settings.
func (m *Manager) Settings() AppSettings {
	m.mu.RLock()
	if s := m.snapshot; s != nil {
		m.mu.RUnlock()
		return *s
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		s := m.load()
		m.snapshot = &s
	}
	return *m.snapshot
}

// Reload re-runs the full resolution chain and replaces the snapshot. Safe to
// call concurrently with readers and with other Reload calls.
func (m *Manager) Reload() {
	m.mu.Lock()
	s := m.load()
	m.snapshot = &s
	m.mu.Unlock()
}

// load runs resolution and converts any failure into the environment fallback,
// emitting a warning so misconfiguration stays visible.
func (m *Manager) load() AppSettings {
	settings, err := Resolve(m.configFile)
	if err != nil {
		warnf("configuration load failed, falling back to environment defaults: %v", err)
		return fromEnvironment()
	}
	return settings
}

// defaultManager backs the package-level Settings/Reload handle used by route
// handlers and service clients.
var defaultManager = NewManager()

// Settings returns the process-wide settings snapshot.
func Settings() AppSettings {
	return defaultManager.Settings()
}

// Reload forces re-resolution of the process-wide snapshot.
func Reload() {
	defaultManager.Reload()
}
