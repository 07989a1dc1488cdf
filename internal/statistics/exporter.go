package statistics

import (
	"github.com/markusressel/hpfan/internal/controller"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "hpfan"
)

const (
	cpuId = "cpu"
	gpuId = "gpu"
)

func Register(collector prometheus.Collector) {
	prometheus.MustRegister(collector)
}

// RegisterController registers all collectors exposing the state of c
func RegisterController(c controller.FanController) {
	Register(NewSensorCollector(c))
	Register(NewFanCollector(c))
	Register(NewCurveCollector(c))
	Register(NewControllerCollector(c))
}
