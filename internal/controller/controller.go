package controller

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/markusressel/hpfan/internal/configuration"
	"github.com/markusressel/hpfan/internal/curves"
	"github.com/markusressel/hpfan/internal/fans"
	"github.com/markusressel/hpfan/internal/hardware"
	"github.com/markusressel/hpfan/internal/persistence"
	"github.com/markusressel/hpfan/internal/ui"
	"github.com/markusressel/hpfan/internal/util"
	cmap "github.com/orcaman/concurrent-map/v2"
)

const (
	// notApplied is never a valid pwm, so the next comparison always triggers a write
	notApplied = -1

	tickDurationWindowSize = 10
)

type FanController interface {
	// Run starts the controller and blocks until ctx is done, then stops it
	Run(ctx context.Context) error

	// Start loads the stored profile, applies its mode and starts the control loop.
	// Does nothing if the loop is already running.
	Start()
	// Stop ends the control loop and returns the fans to fans.ModeAuto
	Stop()

	// SetMode persists and applies the given mode
	SetMode(mode fans.Mode)
	// LoadConfig replaces the active profile
	LoadConfig(config configuration.FanConfig)

	CurrentMode() fans.Mode
	// Config returns a copy of the active profile
	Config() configuration.FanConfig
	LastStats() hardware.SystemStats
	Statistics() Statistics
	IsRunning() bool

	// SubscribeStats returns a channel receiving every snapshot read by the loop,
	// and a function to cancel the subscription. Snapshots are dropped if the
	// channel buffer is full.
	SubscribeStats() (<-chan hardware.SystemStats, func())
	// SubscribeMode returns a channel receiving every mode change,
	// and a function to cancel the subscription.
	SubscribeMode() (<-chan fans.Mode, func())

	Close() error
}

// Statistics describes the current state of the control loop
type Statistics struct {
	Mode            fans.Mode
	Running         bool
	LastCpuPwm      int
	LastGpuPwm      int
	TickErrors      int
	AvgTickDuration time.Duration
	MaxTickDuration time.Duration
}

type fanController struct {
	hardware   hardware.Hardware
	store      persistence.Store
	tickRate   time.Duration
	bufferSize int

	// held for the whole of Start and Stop, so a Start never overlaps the reset of a Stop
	lifecycleMu sync.Mutex

	mu         sync.Mutex
	config     configuration.FanConfig
	mode       fans.Mode
	lastCpuPwm int
	lastGpuPwm int
	lastStats  hardware.SystemStats

	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	tickErrors    int
	tickDurations *rolling.PointPolicy

	// guards sending to and closing of subscriber channels
	publishMu        sync.Mutex
	subscriberId     atomic.Uint64
	statsSubscribers cmap.ConcurrentMap[string, chan hardware.SystemStats]
	modeSubscribers  cmap.ConcurrentMap[string, chan fans.Mode]
}

func NewFanController(hw hardware.Hardware, store persistence.Store, tickRate time.Duration, subscriberBufferSize int) FanController {
	return newFanController(hw, store, tickRate, subscriberBufferSize)
}

func newFanController(hw hardware.Hardware, store persistence.Store, tickRate time.Duration, subscriberBufferSize int) *fanController {
	config := configuration.DefaultFanConfig()
	return &fanController{
		hardware:         hw,
		store:            store,
		tickRate:         tickRate,
		bufferSize:       subscriberBufferSize,
		config:           config,
		mode:             config.LastMode,
		lastCpuPwm:       notApplied,
		lastGpuPwm:       notApplied,
		tickDurations:    util.CreateRollingWindow(tickDurationWindowSize),
		statsSubscribers: cmap.New[chan hardware.SystemStats](),
		modeSubscribers:  cmap.New[chan fans.Mode](),
	}
}

func (f *fanController) Run(ctx context.Context) error {
	f.Start()
	<-ctx.Done()
	f.Stop()
	return nil
}

func (f *fanController) Start() {
	f.lifecycleMu.Lock()
	defer f.lifecycleMu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return
	}

	ui.Info("Starting fan controller...")

	f.config = f.store.Load()
	f.mode = f.config.LastMode
	f.publishMode(f.mode)
	f.applyMode()
	f.resetDebounce()

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.done = make(chan struct{})
	f.running = true

	go f.loop(ctx, f.done)
}

func (f *fanController) Stop() {
	f.lifecycleMu.Lock()
	defer f.lifecycleMu.Unlock()

	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.cancel, f.done = nil, nil
	f.running = false
	f.mu.Unlock()

	ui.Info("Stopping fan controller...")

	if cancel != nil {
		cancel()
		// wait for the tick in flight, so nothing is written after the reset
		<-done
	}

	f.hardware.ForceResetFanMode()

	f.mu.Lock()
	f.resetDebounce()
	f.mu.Unlock()
}

func (f *fanController) Close() error {
	f.Stop()
	return nil
}

func (f *fanController) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			ui.ErrorAndNotify("Fan controller stopped", "Critical error in control loop: %v", r)
			ui.Critical("Control loop failed: %v", r)
			f.mu.Lock()
			f.running = false
			f.mu.Unlock()
			f.hardware.ForceResetFanMode()
		}
	}()

	ticker := time.NewTicker(f.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.tick()
		}
	}
}

// tick runs a single update cycle. A failing cycle never ends the loop.
func (f *fanController) tick() {
	start := time.Now()
	if f.recoverCycle(f.updateCycle) {
		f.tickDurations.Append(float64(time.Since(start)))
	}
}

// recoverCycle runs cycle and reports whether it completed without panicking
func (f *fanController) recoverCycle(cycle func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ui.Error("Error during update cycle: %v", r)
			f.mu.Lock()
			f.tickErrors++
			f.mu.Unlock()
			ok = false
		}
	}()
	cycle()
	return true
}

func (f *fanController) updateCycle() {
	stats := f.hardware.GetSystemStats()
	f.publishStats(stats)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastStats = stats
	f.applyCurves(stats)
}

// refreshCycle is an update cycle outside of the loop. It only writes
// while the loop is running, so it can't race with Stop.
func (f *fanController) refreshCycle() {
	stats := f.hardware.GetSystemStats()
	f.publishStats(stats)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastStats = stats
	if f.running {
		f.applyCurves(stats)
	}
}

func (f *fanController) applyCurves(stats hardware.SystemStats) {
	if f.mode != fans.ModeManual {
		return
	}

	cpuPwm := curves.Calculate(stats.CpuTemp, f.config.CpuCurve)
	gpuPwm := curves.Calculate(stats.GpuTemp, f.config.GpuCurve)
	f.applySpeed(false, cpuPwm, &f.lastCpuPwm)
	f.applySpeed(true, gpuPwm, &f.lastGpuPwm)
}

// applySpeed writes pwm unless it was the last value applied to that fan
func (f *fanController) applySpeed(isGpu bool, pwm int, lastApplied *int) {
	if pwm == *lastApplied {
		return
	}
	if err := f.hardware.SetFanSpeed(isGpu, pwm); err != nil {
		// not recorded, so the next tick tries again
		ui.Warning("Unable to set fan speed: %v", err)
		return
	}
	*lastApplied = pwm
}

func (f *fanController) SetMode(mode fans.Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.config.LastMode == mode {
		return
	}

	ui.Info("Changing fan mode to: %s", mode)
	f.config.LastMode = mode
	if err := f.store.Save(f.config.Clone()); err != nil {
		ui.Error("Failed to save fan profile: %v", err)
	}

	f.applyMode()
	f.resetDebounce()
	f.publishMode(mode)
}

func (f *fanController) LoadConfig(config configuration.FanConfig) {
	f.mu.Lock()
	ui.Info("Loading new fan profile...")
	f.config = config.Clone()
	f.resetDebounce()
	recompute := f.running && f.mode == fans.ModeManual
	f.mu.Unlock()

	if recompute {
		// new curves take effect right away instead of on the next tick
		f.recoverCycle(f.refreshCycle)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode != f.config.LastMode {
		f.applyMode()
		f.resetDebounce()
		f.publishMode(f.mode)
	}
}

// applyMode sends the mode of the active profile to the hardware
func (f *fanController) applyMode() {
	if err := f.hardware.SetFanMode(f.config.LastMode); err != nil {
		ui.Error("Failed to apply fan mode: %v", err)
	}
	f.mode = f.config.LastMode
}

func (f *fanController) resetDebounce() {
	f.lastCpuPwm = notApplied
	f.lastGpuPwm = notApplied
}

func (f *fanController) CurrentMode() fans.Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

func (f *fanController) Config() configuration.FanConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.config.Clone()
}

func (f *fanController) LastStats() hardware.SystemStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastStats
}

func (f *fanController) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fanController) Statistics() Statistics {
	f.mu.Lock()
	defer f.mu.Unlock()

	var avg, maxDuration time.Duration
	if f.tickDurations.Reduce(rolling.Count) > 0 {
		avg = time.Duration(util.GetWindowAvg(f.tickDurations))
		maxDuration = time.Duration(util.GetWindowMax(f.tickDurations))
	}
	return Statistics{
		Mode:            f.mode,
		Running:         f.running,
		LastCpuPwm:      f.lastCpuPwm,
		LastGpuPwm:      f.lastGpuPwm,
		TickErrors:      f.tickErrors,
		AvgTickDuration: avg,
		MaxTickDuration: maxDuration,
	}
}

func (f *fanController) nextSubscriberId() string {
	return strconv.FormatUint(f.subscriberId.Add(1), 10)
}

func (f *fanController) SubscribeStats() (<-chan hardware.SystemStats, func()) {
	id := f.nextSubscriberId()
	ch := make(chan hardware.SystemStats, f.bufferSize)
	f.statsSubscribers.Set(id, ch)
	return ch, func() {
		f.publishMu.Lock()
		defer f.publishMu.Unlock()
		if removed, ok := f.statsSubscribers.Pop(id); ok {
			close(removed)
		}
	}
}

func (f *fanController) SubscribeMode() (<-chan fans.Mode, func()) {
	id := f.nextSubscriberId()
	ch := make(chan fans.Mode, f.bufferSize)
	f.modeSubscribers.Set(id, ch)
	return ch, func() {
		f.publishMu.Lock()
		defer f.publishMu.Unlock()
		if removed, ok := f.modeSubscribers.Pop(id); ok {
			close(removed)
		}
	}
}

func (f *fanController) publishStats(stats hardware.SystemStats) {
	f.publishMu.Lock()
	defer f.publishMu.Unlock()
	for item := range f.statsSubscribers.IterBuffered() {
		select {
		case item.Val <- stats:
		default:
			ui.Debug("Stats subscriber %s is not keeping up, dropping snapshot", item.Key)
		}
	}
}

func (f *fanController) publishMode(mode fans.Mode) {
	f.publishMu.Lock()
	defer f.publishMu.Unlock()
	for item := range f.modeSubscribers.IterBuffered() {
		select {
		case item.Val <- mode:
		default:
			ui.Debug("Mode subscriber %s is not keeping up, dropping mode change", item.Key)
		}
	}
}
