package statistics

import (
	"github.com/markusressel/hpfan/internal/controller"
	"github.com/prometheus/client_golang/prometheus"
)

const fanSubsystem = "fan"

type FanCollector struct {
	controller controller.FanController
	pwm        *prometheus.Desc
	rpm        *prometheus.Desc
}

func NewFanCollector(c controller.FanController) *FanCollector {
	return &FanCollector{
		controller: c,
		pwm: prometheus.NewDesc(prometheus.BuildFQName(namespace, fanSubsystem, "pwm"),
			"Last PWM value applied to the fan, -1 if none",
			[]string{"id"}, nil,
		),
		rpm: prometheus.NewDesc(prometheus.BuildFQName(namespace, fanSubsystem, "rpm"),
			"Current RPM value of the fan",
			[]string{"id"}, nil,
		),
	}
}

func (collector *FanCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.pwm
	ch <- collector.rpm
}

// Collect implements required collect function for all prometheus collectors
func (collector *FanCollector) Collect(ch chan<- prometheus.Metric) {
	stats := collector.controller.LastStats()
	statistics := collector.controller.Statistics()
	ch <- prometheus.MustNewConstMetric(collector.pwm, prometheus.GaugeValue, float64(statistics.LastCpuPwm), cpuId)
	ch <- prometheus.MustNewConstMetric(collector.pwm, prometheus.GaugeValue, float64(statistics.LastGpuPwm), gpuId)
	ch <- prometheus.MustNewConstMetric(collector.rpm, prometheus.GaugeValue, float64(stats.CpuFanRpm), cpuId)
	ch <- prometheus.MustNewConstMetric(collector.rpm, prometheus.GaugeValue, float64(stats.GpuFanRpm), gpuId)
}
