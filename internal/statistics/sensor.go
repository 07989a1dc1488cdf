package statistics

import (
	"github.com/markusressel/hpfan/internal/controller"
	"github.com/prometheus/client_golang/prometheus"
)

const subsystemSensor = "sensor"

type SensorCollector struct {
	controller  controller.FanController
	temperature *prometheus.Desc
}

func NewSensorCollector(c controller.FanController) *SensorCollector {
	return &SensorCollector{
		controller: c,
		temperature: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemSensor, "temperature"),
			"Last temperature read by the control loop, in degrees Celsius",
			[]string{"id"}, nil,
		),
	}
}

func (collector *SensorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.temperature
}

// Collect implements required collect function for all prometheus collectors
func (collector *SensorCollector) Collect(ch chan<- prometheus.Metric) {
	stats := collector.controller.LastStats()
	ch <- prometheus.MustNewConstMetric(collector.temperature, prometheus.GaugeValue, float64(stats.CpuTemp), cpuId)
	ch <- prometheus.MustNewConstMetric(collector.temperature, prometheus.GaugeValue, float64(stats.GpuTemp), gpuId)
}
