package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/markusressel/hpfan/internal/configuration"
	"github.com/markusressel/hpfan/internal/curves"
	"github.com/markusressel/hpfan/internal/fans"
	"github.com/markusressel/hpfan/internal/hardware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCurve = curves.Curve{
		{Temperature: 40, Speed: 100},
		{Temperature: 80, Speed: 200},
	}
	testStats = hardware.SystemStats{CpuTemp: 60, GpuTemp: 40, CpuFanRpm: 2000, GpuFanRpm: 1800}
)

func manualConfig() configuration.FanConfig {
	return configuration.FanConfig{
		CpuCurve: testCurve,
		GpuCurve: testCurve,
		LastMode: fans.ModeManual,
	}
}

func createController(config configuration.FanConfig, tickRate time.Duration) (*fanController, *mockHardware, *mockStore) {
	hw := &mockHardware{stats: testStats}
	store := &mockStore{config: config}
	return newFanController(hw, store, tickRate, 4), hw, store
}

// createManualController returns a stopped controller in manual mode
func createManualController() (*fanController, *mockHardware, *mockStore) {
	controller, hw, store := createController(manualConfig(), time.Hour)
	controller.config = manualConfig()
	controller.mode = fans.ModeManual
	return controller, hw, store
}

func TestUpdateCycle_Manual(t *testing.T) {
	// GIVEN
	controller, hw, _ := createManualController()

	// WHEN
	controller.updateCycle()

	// THEN
	assert.Equal(t, []int{150}, hw.speedCalls(false))
	assert.Equal(t, []int{100}, hw.speedCalls(true))
	assert.Equal(t, testStats, controller.LastStats())
}

func TestUpdateCycle_Debounce(t *testing.T) {
	// GIVEN
	controller, hw, _ := createManualController()

	// WHEN
	controller.updateCycle()
	controller.updateCycle()

	// THEN
	assert.Len(t, hw.speedCalls(false), 1)
	assert.Len(t, hw.speedCalls(true), 1)

	// WHEN
	hw.setStats(hardware.SystemStats{CpuTemp: 80, GpuTemp: 40})
	controller.updateCycle()

	// THEN
	assert.Equal(t, []int{150, 200}, hw.speedCalls(false))
	assert.Equal(t, []int{100}, hw.speedCalls(true))
}

func TestUpdateCycle_FailedWriteIsRetried(t *testing.T) {
	// GIVEN
	controller, hw, _ := createManualController()
	hw.speedErr = errors.New("device busy")
	controller.updateCycle()
	assert.Empty(t, hw.speedCalls(false))

	// WHEN
	hw.speedErr = nil
	controller.updateCycle()

	// THEN
	assert.Equal(t, []int{150}, hw.speedCalls(false))
}

func TestUpdateCycle_NoWritesOutsideManual(t *testing.T) {
	for _, mode := range []fans.Mode{fans.ModeAuto, fans.ModeMax} {
		t.Run(mode.String(), func(t *testing.T) {
			// GIVEN
			controller, hw, _ := createManualController()
			controller.mode = mode
			stats, unsubscribe := controller.SubscribeStats()
			defer unsubscribe()

			// WHEN
			controller.updateCycle()

			// THEN
			assert.Empty(t, hw.speeds)
			assert.Equal(t, testStats, <-stats)
		})
	}
}

func TestSetMode_ResetsDebounce(t *testing.T) {
	// GIVEN
	controller, hw, _ := createManualController()
	controller.updateCycle()

	// WHEN
	controller.SetMode(fans.ModeMax)
	controller.SetMode(fans.ModeManual)
	controller.updateCycle()

	// THEN
	assert.Equal(t, []int{150, 150}, hw.speedCalls(false))
	assert.Equal(t, []fans.Mode{fans.ModeMax, fans.ModeManual}, hw.modeCalls())
}

func TestSetMode_Unchanged(t *testing.T) {
	// GIVEN
	controller, hw, store := createManualController()
	modes, unsubscribe := controller.SubscribeMode()
	defer unsubscribe()

	// WHEN
	controller.SetMode(fans.ModeManual)

	// THEN
	assert.Equal(t, 0, store.saveCount())
	assert.Empty(t, hw.modeCalls())
	assert.Len(t, modes, 0)
}

func TestSetMode_PersistsBeforeNotifying(t *testing.T) {
	// GIVEN
	controller, hw, store := createManualController()
	modes, unsubscribe := controller.SubscribeMode()
	defer unsubscribe()
	pendingAtSave := -1
	store.onSave = func() {
		pendingAtSave = len(modes)
	}

	// WHEN
	controller.SetMode(fans.ModeMax)

	// THEN
	assert.Equal(t, 0, pendingAtSave)
	require.Equal(t, 1, store.saveCount())
	assert.Equal(t, fans.ModeMax, store.saves[0].LastMode)
	assert.Equal(t, testCurve, store.saves[0].CpuCurve)
	assert.Equal(t, fans.ModeMax, <-modes)
	assert.Equal(t, []fans.Mode{fans.ModeMax}, hw.modeCalls())
	assert.Equal(t, fans.ModeMax, controller.CurrentMode())
}

func TestSetMode_SaveFailureStillAppliesMode(t *testing.T) {
	// GIVEN
	controller, hw, store := createManualController()
	store.saveErr = errors.New("read-only file system")
	modes, unsubscribe := controller.SubscribeMode()
	defer unsubscribe()

	// WHEN
	controller.SetMode(fans.ModeAuto)

	// THEN
	assert.Equal(t, []fans.Mode{fans.ModeAuto}, hw.modeCalls())
	assert.Equal(t, fans.ModeAuto, <-modes)
}

func TestLoadConfig_ResetsDebounce(t *testing.T) {
	// GIVEN
	controller, hw, _ := createManualController()
	controller.updateCycle()

	// WHEN
	controller.LoadConfig(manualConfig())
	controller.updateCycle()

	// THEN
	assert.Equal(t, []int{150, 150}, hw.speedCalls(false))
	assert.Empty(t, hw.modeCalls())
}

func TestLoadConfig_ChangedMode(t *testing.T) {
	// GIVEN
	controller, hw, store := createManualController()
	modes, unsubscribe := controller.SubscribeMode()
	defer unsubscribe()
	config := manualConfig()
	config.LastMode = fans.ModeMax

	// WHEN
	controller.LoadConfig(config)

	// THEN
	assert.Equal(t, fans.ModeMax, controller.CurrentMode())
	assert.Equal(t, []fans.Mode{fans.ModeMax}, hw.modeCalls())
	assert.Equal(t, fans.ModeMax, <-modes)
	assert.Equal(t, 0, store.saveCount())
}

func TestLoadConfig_KeepsOwnCopy(t *testing.T) {
	// GIVEN
	controller, _, _ := createManualController()
	config := manualConfig()
	config.CpuCurve = curves.Curve{{Temperature: 50, Speed: 120}}

	// WHEN
	controller.LoadConfig(config)
	config.CpuCurve[0].Speed = 1
	handedOut := controller.Config()
	handedOut.CpuCurve[0].Speed = 2

	// THEN
	assert.Equal(t, 120, controller.Config().CpuCurve[0].Speed)
}

func TestLoadConfig_AppliesImmediatelyWhileRunning(t *testing.T) {
	// GIVEN
	controller, hw, _ := createController(manualConfig(), time.Hour)
	controller.Start()
	defer controller.Stop()

	// WHEN
	config := manualConfig()
	config.CpuCurve = curves.Curve{{Temperature: 40, Speed: 180}}
	controller.LoadConfig(config)

	// THEN
	assert.Equal(t, []int{180}, hw.speedCalls(false))
	assert.Equal(t, []int{100}, hw.speedCalls(true))
}

func TestStart(t *testing.T) {
	// GIVEN
	controller, hw, store := createController(manualConfig(), time.Hour)
	modes, unsubscribe := controller.SubscribeMode()
	defer unsubscribe()

	// WHEN
	controller.Start()
	controller.Start()
	defer controller.Stop()

	// THEN
	assert.True(t, controller.IsRunning())
	assert.Equal(t, 1, store.loads)
	assert.Equal(t, fans.ModeManual, controller.CurrentMode())
	assert.Equal(t, []fans.Mode{fans.ModeManual}, hw.modeCalls())
	assert.Equal(t, fans.ModeManual, <-modes)
	assert.Equal(t, testCurve, controller.Config().CpuCurve)
}

func TestStart_RunsLoop(t *testing.T) {
	// GIVEN
	controller, hw, _ := createController(manualConfig(), 5*time.Millisecond)
	stats, unsubscribe := controller.SubscribeStats()
	defer unsubscribe()

	// WHEN
	controller.Start()
	defer controller.Stop()

	// THEN
	select {
	case received := <-stats:
		assert.Equal(t, testStats, received)
	case <-time.After(2 * time.Second):
		t.Fatal("no stats received")
	}
	assert.Eventually(t, func() bool {
		return len(hw.speedCalls(false)) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestStop_ForcesAutoWithoutStart(t *testing.T) {
	// GIVEN
	controller, hw, _ := createController(manualConfig(), time.Hour)

	// WHEN
	controller.Stop()

	// THEN
	assert.Equal(t, 1, hw.forceResetCount())
	assert.False(t, controller.IsRunning())
}

func TestStop(t *testing.T) {
	// GIVEN
	controller, hw, _ := createController(manualConfig(), 5*time.Millisecond)
	controller.Start()
	assert.Eventually(t, func() bool {
		return len(hw.speedCalls(false)) > 0
	}, 2*time.Second, 5*time.Millisecond)

	// WHEN
	controller.Stop()
	reads := hw.statsReads

	// THEN
	assert.False(t, controller.IsRunning())
	assert.Equal(t, 1, hw.forceResetCount())
	statistics := controller.Statistics()
	assert.Equal(t, notApplied, statistics.LastCpuPwm)
	assert.Equal(t, notApplied, statistics.LastGpuPwm)
	time.Sleep(30 * time.Millisecond)
	hw.mu.Lock()
	assert.Equal(t, reads, hw.statsReads)
	hw.mu.Unlock()
}

func TestStart_WaitsForStopInProgress(t *testing.T) {
	// GIVEN
	controller, hw, _ := createController(manualConfig(), 5*time.Millisecond)
	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	hw.mu.Lock()
	hw.statsGate = gate
	hw.statsEntered = entered
	hw.mu.Unlock()

	controller.Start()
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("no tick started")
	}

	stopped := make(chan struct{})
	go func() {
		controller.Stop()
		close(stopped)
	}()
	assert.Eventually(t, func() bool {
		return !controller.IsRunning()
	}, 2*time.Second, time.Millisecond)

	// WHEN
	started := make(chan struct{})
	go func() {
		controller.Start()
		close(started)
	}()

	// THEN
	select {
	case <-started:
		t.Fatal("Start returned while Stop was still waiting for the loop")
	case <-time.After(50 * time.Millisecond):
	}

	// WHEN
	close(gate)

	// THEN
	for _, done := range []chan struct{}{stopped, started} {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("lifecycle call did not finish")
		}
	}
	defer controller.Stop()

	assert.True(t, controller.IsRunning())
	assert.Equal(t, 1, hw.forceResetCount())
	events := hw.eventLog()
	resetIndex := -1
	lastModeIndex := -1
	for i, event := range events {
		switch event {
		case "reset":
			resetIndex = i
		case "mode":
			lastModeIndex = i
		}
	}
	require.NotEqual(t, -1, resetIndex)
	assert.Greater(t, lastModeIndex, resetIndex, "events: %v", events)
}

func TestRun(t *testing.T) {
	// GIVEN
	controller, hw, _ := createController(manualConfig(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error)

	// WHEN
	go func() {
		result <- controller.Run(ctx)
	}()
	assert.Eventually(t, controller.IsRunning, time.Second, time.Millisecond)
	cancel()

	// THEN
	assert.NoError(t, <-result)
	assert.False(t, controller.IsRunning())
	assert.Equal(t, 1, hw.forceResetCount())
}

func TestTick_RecoversFromPanic(t *testing.T) {
	// GIVEN
	controller, hw, _ := createManualController()
	hw.statsPanics = 1

	// WHEN
	assert.NotPanics(t, controller.tick)
	controller.tick()

	// THEN
	assert.Equal(t, 1, controller.Statistics().TickErrors)
	assert.Equal(t, []int{150}, hw.speedCalls(false))
	assert.Greater(t, controller.Statistics().AvgTickDuration, time.Duration(0))
	assert.GreaterOrEqual(t, controller.Statistics().MaxTickDuration, controller.Statistics().AvgTickDuration)
}

func TestLoop_FatalErrorStopsController(t *testing.T) {
	// GIVEN
	// a non-positive tick rate can't be scheduled
	controller, hw, _ := createController(manualConfig(), 0)

	// WHEN
	controller.Start()

	// THEN
	assert.Eventually(t, func() bool {
		return !controller.IsRunning()
	}, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		return hw.forceResetCount() == 1
	}, 2*time.Second, 5*time.Millisecond)

	// WHEN
	controller.tickRate = time.Hour
	controller.Start()

	// THEN
	assert.True(t, controller.IsRunning())
	controller.Stop()
}

func TestSubscribeStats_SlowSubscriberDoesNotBlock(t *testing.T) {
	// GIVEN
	controller, _, _ := createManualController()
	stats, unsubscribe := controller.SubscribeStats()
	defer unsubscribe()

	// WHEN
	for i := 0; i < 10; i++ {
		controller.updateCycle()
	}

	// THEN
	assert.Len(t, stats, 4)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	// GIVEN
	controller, _, _ := createManualController()
	stats, unsubscribeStats := controller.SubscribeStats()
	modes, unsubscribeModes := controller.SubscribeMode()

	// WHEN
	unsubscribeStats()
	unsubscribeModes()
	unsubscribeModes()
	controller.updateCycle()
	controller.SetMode(fans.ModeAuto)

	// THEN
	_, ok := <-stats
	assert.False(t, ok)
	_, ok = <-modes
	assert.False(t, ok)
}

func TestClose(t *testing.T) {
	controller, hw, _ := createController(manualConfig(), time.Hour)
	controller.Start()

	assert.NoError(t, controller.Close())
	assert.False(t, controller.IsRunning())
	assert.Equal(t, 1, hw.forceResetCount())
}
