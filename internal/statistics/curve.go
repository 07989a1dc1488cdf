package statistics

import (
	"github.com/markusressel/hpfan/internal/controller"
	"github.com/markusressel/hpfan/internal/curves"
	"github.com/prometheus/client_golang/prometheus"
)

const subsystemCurve = "curve"

type CurveCollector struct {
	controller controller.FanController
	value      *prometheus.Desc
}

func NewCurveCollector(c controller.FanController) *CurveCollector {
	return &CurveCollector{
		controller: c,
		value: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemCurve, "value"),
			"Current value of the curve for the last temperature read",
			[]string{"id"}, nil,
		),
	}
}

func (collector *CurveCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.value
}

// Collect implements required collect function for all prometheus collectors
func (collector *CurveCollector) Collect(ch chan<- prometheus.Metric) {
	stats := collector.controller.LastStats()
	config := collector.controller.Config()
	cpuValue := curves.Calculate(stats.CpuTemp, config.CpuCurve)
	gpuValue := curves.Calculate(stats.GpuTemp, config.GpuCurve)
	ch <- prometheus.MustNewConstMetric(collector.value, prometheus.GaugeValue, float64(cpuValue), cpuId)
	ch <- prometheus.MustNewConstMetric(collector.value, prometheus.GaugeValue, float64(gpuValue), gpuId)
}
