package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Probe checks a single dependency; a nil error means healthy.
type Probe func(ctx context.Context) error

// BufferSizer is satisfied by the pending write buffer.
type BufferSizer interface {
	Size() (int, error)
}

// Monitor periodically probes the configured dependencies. The remote
// storage probe decides whether pending writes may be replayed.
type Monitor struct {
	probes map[string]Probe
	buffer BufferSizer

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(buf BufferSizer, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   make(map[string]Probe),
		buffer:   buf,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Register adds a named probe. Call before Start.
func (m *Monitor) Register(name string, probe Probe) {
	if probe == nil {
		return
	}
	m.mu.Lock()
	m.probes[name] = probe
	m.mu.Unlock()
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether the remote storage tier answered its last probe.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy(ProbeRemoteStorage)
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	deps := make(map[string]bool, len(m.status.Dependencies))
	for name, ok := range m.status.Dependencies {
		deps[name] = ok
	}
	status := m.status
	status.Dependencies = deps
	return status
}

// Refresh runs every probe once and stores the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	m.mu.RLock()
	probes := make(map[string]Probe, len(m.probes))
	for name, probe := range m.probes {
		probes[name] = probe
	}
	previous := m.status.Dependencies
	m.mu.RUnlock()

	deps := make(map[string]bool, len(probes))
	for name, probe := range probes {
		err := probe(ctx)
		deps[name] = err == nil
		if err != nil && previous[name] {
			m.logger.Warn("dependency went offline", zap.String("dependency", name), zap.Error(err))
		} else if err == nil && previous != nil && !previous[name] {
			m.logger.Info("dependency back online", zap.String("dependency", name))
		}
	}

	bufferOK, bufferSize := m.checkBuffer()
	status := Status{
		Dependencies: deps,
		Buffer:       bufferOK,
		BufferSize:   bufferSize,
		LastCheck:    time.Now(),
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) checkBuffer() (bool, int) {
	if m.buffer == nil {
		return false, 0
	}
	size, err := m.buffer.Size()
	if err != nil {
		m.logger.Warn("buffer size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
