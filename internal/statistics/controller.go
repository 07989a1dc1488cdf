package statistics

import (
	"github.com/markusressel/hpfan/internal/controller"
	"github.com/prometheus/client_golang/prometheus"
)

const controllerSubsystem = "controller"

type ControllerCollector struct {
	controller controller.FanController

	mode            *prometheus.Desc
	running         *prometheus.Desc
	tickErrors      *prometheus.Desc
	avgTickDuration *prometheus.Desc
	maxTickDuration *prometheus.Desc
}

func NewControllerCollector(c controller.FanController) *ControllerCollector {
	return &ControllerCollector{
		controller: c,
		mode: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "mode"),
			"Active fan mode (0 = auto, 1 = manual, 2 = max)",
			nil, nil,
		),
		running: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "running"),
			"1 if the control loop is running",
			nil, nil,
		),
		tickErrors: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "tick_errors_total"),
			"Counter for update cycles that failed with an error",
			nil, nil,
		),
		avgTickDuration: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "tick_duration_avg_seconds"),
			"Average duration of the last update cycles",
			nil, nil,
		),
		maxTickDuration: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "tick_duration_max_seconds"),
			"Longest duration of the last update cycles",
			nil, nil,
		),
	}
}

func (collector *ControllerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.mode
	ch <- collector.running
	ch <- collector.tickErrors
	ch <- collector.avgTickDuration
	ch <- collector.maxTickDuration
}

// Collect implements required collect function for all prometheus collectors
func (collector *ControllerCollector) Collect(ch chan<- prometheus.Metric) {
	statistics := collector.controller.Statistics()
	running := 0.0
	if statistics.Running {
		running = 1
	}
	ch <- prometheus.MustNewConstMetric(collector.mode, prometheus.GaugeValue, float64(statistics.Mode))
	ch <- prometheus.MustNewConstMetric(collector.running, prometheus.GaugeValue, running)
	ch <- prometheus.MustNewConstMetric(collector.tickErrors, prometheus.CounterValue, float64(statistics.TickErrors))
	ch <- prometheus.MustNewConstMetric(collector.avgTickDuration, prometheus.GaugeValue, statistics.AvgTickDuration.Seconds())
	ch <- prometheus.MustNewConstMetric(collector.maxTickDuration, prometheus.GaugeValue, statistics.MaxTickDuration.Seconds())
}
