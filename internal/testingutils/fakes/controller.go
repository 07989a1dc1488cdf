package fakes

import (
	"context"
	"sync"

	"github.com/markusressel/hpfan/internal/configuration"
	"github.com/markusressel/hpfan/internal/controller"
	"github.com/markusressel/hpfan/internal/fans"
	"github.com/markusressel/hpfan/internal/hardware"
)

// FakeController is a controller.FanController that only records calls
type FakeController struct {
	mu              sync.Mutex
	FanConfig       configuration.FanConfig
	Stats           hardware.SystemStats
	ControllerStats controller.Statistics
	Running         bool
	ModeCalls       []fans.Mode
	LoadedCount     int
}

func NewFakeController(config configuration.FanConfig, stats hardware.SystemStats) *FakeController {
	return &FakeController{
		FanConfig: config,
		Stats:     stats,
		ControllerStats: controller.Statistics{
			Mode:       config.LastMode,
			LastCpuPwm: -1,
			LastGpuPwm: -1,
		},
	}
}

func (c *FakeController) Run(ctx context.Context) error {
	c.Start()
	<-ctx.Done()
	c.Stop()
	return nil
}

func (c *FakeController) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Running = true
}

func (c *FakeController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Running = false
}

func (c *FakeController) SetMode(mode fans.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ModeCalls = append(c.ModeCalls, mode)
	c.FanConfig.LastMode = mode
}

func (c *FakeController) LoadConfig(config configuration.FanConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LoadedCount++
	c.FanConfig = config.Clone()
}

func (c *FakeController) CurrentMode() fans.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.FanConfig.LastMode
}

func (c *FakeController) Config() configuration.FanConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.FanConfig.Clone()
}

func (c *FakeController) LastStats() hardware.SystemStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Stats
}

func (c *FakeController) Statistics() controller.Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := c.ControllerStats
	result.Mode = c.FanConfig.LastMode
	result.Running = c.Running
	return result
}

func (c *FakeController) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Running
}

func (c *FakeController) SubscribeStats() (<-chan hardware.SystemStats, func()) {
	ch := make(chan hardware.SystemStats)
	return ch, func() { close(ch) }
}

func (c *FakeController) SubscribeMode() (<-chan fans.Mode, func()) {
	ch := make(chan fans.Mode)
	return ch, func() { close(ch) }
}

func (c *FakeController) Close() error {
	c.Stop()
	return nil
}

// MemoryStore is a persistence.Store keeping the profile in memory
type MemoryStore struct {
	mu      sync.Mutex
	Current configuration.FanConfig
	Saves   int
	SaveErr error
}

func (s *MemoryStore) Load() configuration.FanConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Current.Clone()
}

func (s *MemoryStore) Save(config configuration.FanConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saves++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Current = config.Clone()
	return nil
}
