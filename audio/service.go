package audio

import (
	"sync/atomic"

	"github.com/lixenwraith/binaural/sim"
)

// Service wraps Engine behind the service lifecycle contract with
// graceful degradation: if the engine cannot be built or started the
// service disables itself instead of failing the whole application.
type Service struct {
	engine   *Engine
	cfg      *Config
	provider FeedProvider
	geo      sim.Geometry
	disabled atomic.Bool
}

// NewService creates an audio service. cfg may be nil for defaults.
func NewService(cfg *Config, provider FeedProvider, geo sim.Geometry) *Service {
	return &Service{cfg: cfg, provider: provider, geo: geo}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "audio"
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements service.Service
// Builds the engine; sets the disabled flag on failure instead of
// returning an error
func (s *Service) Init(args ...any) error {
	engine, err := NewEngine(s.cfg, s.provider, s.geo)
	if err != nil {
		s.disabled.Store(true)
		return nil
	}
	s.engine = engine
	return nil
}

// Start implements service.Service
func (s *Service) Start() error {
	if s.disabled.Load() || s.engine == nil {
		return nil
	}
	if err := s.engine.Start(); err != nil {
		s.disabled.Store(true)
		s.engine = nil
		return nil
	}
	return nil
}

// Stop implements service.Service
func (s *Service) Stop() error {
	if s.engine != nil {
		_ = s.engine.Stop()
	}
	return nil
}

// IsDisabled reports whether audio is unavailable
func (s *Service) IsDisabled() bool {
	return s.disabled.Load()
}

// Engine returns the underlying engine, nil when disabled
func (s *Service) Engine() *Engine {
	if s.disabled.Load() {
		return nil
	}
	return s.engine
}
