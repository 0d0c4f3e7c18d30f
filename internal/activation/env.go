package activation

import (
	"os"
	"sync"
)

// Env is the process environment the engine updates and reads liveness from.
type Env interface {
	Getenv(key string) string
	Setenv(key, value string) error
	Unsetenv(key string) error
}

// ProcessEnv is the real process environment.
type ProcessEnv struct{}

// Getenv implements Env.
func (ProcessEnv) Getenv(key string) string { return os.Getenv(key) }

// Setenv implements Env.
func (ProcessEnv) Setenv(key, value string) error { return os.Setenv(key, value) }

// Unsetenv implements Env.
func (ProcessEnv) Unsetenv(key string) error { return os.Unsetenv(key) }

// MapEnv is an in-memory Env.
type MapEnv struct {
	mu   sync.RWMutex
	vars map[string]string
}

// NewMapEnv returns a MapEnv seeded with vars.
func NewMapEnv(vars map[string]string) *MapEnv {
	m := &MapEnv{vars: make(map[string]string, len(vars))}
	for k, v := range vars {
		m.vars[k] = v
	}
	return m
}

// Getenv implements Env.
func (m *MapEnv) Getenv(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vars[key]
}

// Setenv implements Env.
func (m *MapEnv) Setenv(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vars[key] = value
	return nil
}

// Unsetenv implements Env.
func (m *MapEnv) Unsetenv(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vars, key)
	return nil
}

// Lookup reports whether key is set.
func (m *MapEnv) Lookup(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vars[key]
	return v, ok
}
