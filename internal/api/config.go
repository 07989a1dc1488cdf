package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/hpfan/internal/ui"
)

func (h *restHandler) registerConfigEndpoints(rest *echo.Echo) {
	group := rest.Group("/config")

	group.GET("/", h.getConfig)
	group.PUT("/", h.putConfig)
}

func (h *restHandler) getConfig(c echo.Context) error {
	data := h.controller.Config()
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

// replaces the active profile. Fields missing in the body keep their current value.
func (h *restHandler) putConfig(c echo.Context) error {
	config := h.controller.Config()
	if err := c.Bind(&config); err != nil {
		return returnBadRequest(c, err)
	}
	if err := config.Validate(); err != nil {
		return returnBadRequest(c, err)
	}

	h.controller.LoadConfig(config)
	if err := h.store.Save(config.Clone()); err != nil {
		ui.Error("Failed to save fan profile: %v", err)
		return returnError(c, fmt.Errorf("profile applied but not saved: %w", err))
	}

	return c.JSONPretty(http.StatusOK, h.controller.Config(), indentationChar)
}
