package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *restHandler) registerStatsEndpoints(rest *echo.Echo) {
	group := rest.Group("/stats")

	group.GET("/", h.getStats)
	group.GET("/controller/", h.getControllerStatistics)
}

// returns the last snapshot read by the control loop
func (h *restHandler) getStats(c echo.Context) error {
	data := h.controller.LastStats()
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

type controllerStatisticsResponse struct {
	Mode              string  `json:"mode"`
	Running           bool    `json:"running"`
	LastCpuPwm        int     `json:"lastCpuPwm"`
	LastGpuPwm        int     `json:"lastGpuPwm"`
	TickErrors        int     `json:"tickErrors"`
	AvgTickDurationMs float64 `json:"avgTickDurationMs"`
	MaxTickDurationMs float64 `json:"maxTickDurationMs"`
}

func (h *restHandler) getControllerStatistics(c echo.Context) error {
	statistics := h.controller.Statistics()
	data := controllerStatisticsResponse{
		Mode:              statistics.Mode.String(),
		Running:           statistics.Running,
		LastCpuPwm:        statistics.LastCpuPwm,
		LastGpuPwm:        statistics.LastGpuPwm,
		TickErrors:        statistics.TickErrors,
		AvgTickDurationMs: float64(statistics.AvgTickDuration.Microseconds()) / 1000,
		MaxTickDurationMs: float64(statistics.MaxTickDuration.Microseconds()) / 1000,
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}
