package internal

import (
	"context"

	"github.com/markusressel/hpfan/internal/fans"
	"github.com/markusressel/hpfan/internal/hardware"
	"github.com/markusressel/hpfan/internal/ui"
)

const temperatureAverageWindow = 10

type StatsSource interface {
	SubscribeStats() (<-chan hardware.SystemStats, func())
	SubscribeMode() (<-chan fans.Mode, func())
}

// StatsMonitor follows the snapshots and mode changes of the controller
// and keeps a moving average of both temperatures
type StatsMonitor struct {
	source StatsSource

	avgCpuTemp float64
	avgGpuTemp float64
	samples    int
}

func NewStatsMonitor(source StatsSource) *StatsMonitor {
	return &StatsMonitor{
		source: source,
	}
}

func (s *StatsMonitor) Run(ctx context.Context) error {
	stats, unsubscribeStats := s.source.SubscribeStats()
	defer unsubscribeStats()
	modes, unsubscribeModes := s.source.SubscribeMode()
	defer unsubscribeModes()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snapshot, ok := <-stats:
			if !ok {
				return nil
			}
			s.update(snapshot)
			ui.Debug("%s (avg CPU %.1f°C, GPU %.1f°C)", snapshot, s.avgCpuTemp, s.avgGpuTemp)
		case mode, ok := <-modes:
			if !ok {
				return nil
			}
			ui.Info("Fan mode is now: %s", mode)
		}
	}
}

func (s *StatsMonitor) update(snapshot hardware.SystemStats) {
	if s.samples == 0 {
		s.avgCpuTemp = float64(snapshot.CpuTemp)
		s.avgGpuTemp = float64(snapshot.GpuTemp)
	} else {
		s.avgCpuTemp = updateSimpleMovingAvg(s.avgCpuTemp, temperatureAverageWindow, float64(snapshot.CpuTemp))
		s.avgGpuTemp = updateSimpleMovingAvg(s.avgGpuTemp, temperatureAverageWindow, float64(snapshot.GpuTemp))
	}
	s.samples++
}

// calculates the new moving average, based on an existing average and buffer size
func updateSimpleMovingAvg(oldAvg float64, n int, newValue float64) float64 {
	return oldAvg + (1/float64(n))*(newValue-oldAvg)
}
