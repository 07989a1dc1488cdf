package controller

import (
	"sync"

	"github.com/markusressel/hpfan/internal/configuration"
	"github.com/markusressel/hpfan/internal/fans"
	"github.com/markusressel/hpfan/internal/hardware"
)

type speedCall struct {
	isGpu bool
	pwm   int
}

type mockHardware struct {
	mu          sync.Mutex
	stats       hardware.SystemStats
	statsPanics int
	statsReads  int
	speedErr    error
	modes       []fans.Mode
	speeds      []speedCall
	forceResets int
	// hardware calls in the order they happened
	events []string

	// when set, every stats read signals statsEntered and then blocks until statsGate is closed
	statsGate    chan struct{}
	statsEntered chan struct{}
}

func (h *mockHardware) GetSystemStats() hardware.SystemStats {
	h.mu.Lock()
	gate, entered := h.statsGate, h.statsEntered
	h.mu.Unlock()
	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		<-gate
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.statsReads++
	if h.statsPanics > 0 {
		h.statsPanics--
		panic("sensor exploded")
	}
	return h.stats
}

func (h *mockHardware) SetFanMode(mode fans.Mode) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.modes = append(h.modes, mode)
	h.events = append(h.events, "mode")
	return nil
}

func (h *mockHardware) SetFanSpeed(isGpu bool, pwm int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.speedErr != nil {
		return h.speedErr
	}
	h.speeds = append(h.speeds, speedCall{isGpu: isGpu, pwm: pwm})
	h.events = append(h.events, "speed")
	return nil
}

func (h *mockHardware) ForceResetFanMode() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.forceResets++
	h.events = append(h.events, "reset")
}

func (h *mockHardware) eventLog() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.events...)
}

func (h *mockHardware) setStats(stats hardware.SystemStats) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats = stats
}

func (h *mockHardware) speedCalls(isGpu bool) []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	var result []int
	for _, call := range h.speeds {
		if call.isGpu == isGpu {
			result = append(result, call.pwm)
		}
	}
	return result
}

func (h *mockHardware) modeCalls() []fans.Mode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]fans.Mode(nil), h.modes...)
}

func (h *mockHardware) forceResetCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.forceResets
}

type mockStore struct {
	mu     sync.Mutex
	config configuration.FanConfig
	loads  int
	saves  []configuration.FanConfig
	// called during Save, to inspect the state at that moment
	onSave  func()
	saveErr error
}

func (s *mockStore) Load() configuration.FanConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.config.Clone()
}

func (s *mockStore) Save(config configuration.FanConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onSave != nil {
		s.onSave()
	}
	s.saves = append(s.saves, config)
	return s.saveErr
}

func (s *mockStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}
