package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/lifetrack/usecase/goals"
)

// EngineFactory builds an uninitialized engine for one identity.
type EngineFactory func(identity string) *goals.Engine

type session struct {
	mu     sync.Mutex
	engine *goals.Engine
	ready  bool

	// guarded by SessionRegistry.mu
	active   int
	lastUsed time.Time
}

// SessionConfig controls idle eviction. A zero IdleTTL keeps sessions forever.
type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// SessionRegistry keeps one goals engine per identity and serializes the
// calls made against each of them. Engines idle for longer than IdleTTL are
// evicted, so the next call reloads the namespace from storage.
type SessionRegistry struct {
	factory EngineFactory
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
	cron     *cron.Cron
}

func NewSessionRegistry(factory EngineFactory, logger *zap.Logger) *SessionRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRegistry{
		factory:  factory,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// With runs fn against the engine of identity, loading its namespace on first use.
func (r *SessionRegistry) With(ctx context.Context, identity string, fn func(*goals.Engine) error) error {
	s := r.acquire(identity)
	defer r.release(s)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		s.engine.SwitchNamespace(ctx, identity)
		s.ready = true
	}
	return fn(s.engine)
}

// Evict forgets the engine of identity; the next call reloads it from storage.
func (r *SessionRegistry) Evict(identity string) {
	r.mu.Lock()
	delete(r.sessions, identity)
	r.mu.Unlock()
}

// Sweep evicts every session unused for longer than idle and returns how
// many were dropped. Sessions with a call in flight are kept.
func (r *SessionRegistry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for identity, s := range r.sessions {
		if s.active > 0 || s.lastUsed.After(cutoff) {
			continue
		}
		delete(r.sessions, identity)
		evicted++
	}
	if evicted > 0 {
		r.logger.Debug("idle sessions evicted", zap.Int("count", evicted), zap.Int("remaining", len(r.sessions)))
	}
	return evicted
}

// StartEviction schedules Sweep on its own cron.
func (r *SessionRegistry) StartEviction(cfg SessionConfig) {
	if cfg.IdleTTL <= 0 {
		return
	}
	if cfg.SweepInterval < time.Second {
		cfg.SweepInterval = time.Minute
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return
	}

	r.cron = cron.New(cron.WithSeconds())
	schedule := fmt.Sprintf("@every %ds", int(cfg.SweepInterval.Seconds()))
	_, _ = r.cron.AddFunc(schedule, func() {
		r.Sweep(cfg.IdleTTL)
	})
	r.cron.Start()
	r.logger.Info("session eviction started",
		zap.Duration("idle_ttl", cfg.IdleTTL),
		zap.Duration("interval", cfg.SweepInterval))
}

// Stop halts the eviction schedule, waiting for a running sweep or ctx.
func (r *SessionRegistry) Stop(ctx context.Context) error {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRegistry) acquire(identity string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[identity]
	if !ok {
		s = &session{engine: r.factory(identity)}
		r.sessions[identity] = s
		r.logger.Debug("session created", zap.String("identity", identity))
	}
	s.active++
	s.lastUsed = r.now()
	return s
}

func (r *SessionRegistry) release(s *session) {
	r.mu.Lock()
	s.active--
	s.lastUsed = r.now()
	r.mu.Unlock()
}
