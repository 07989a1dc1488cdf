package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/hpfan/internal/fans"
)

type modeBody struct {
	Mode *fans.Mode `json:"mode"`
}

func (h *restHandler) registerModeEndpoints(rest *echo.Echo) {
	group := rest.Group("/mode")

	group.GET("/", h.getMode)
	group.POST("/", h.setMode)
}

func (h *restHandler) getMode(c echo.Context) error {
	mode := h.controller.CurrentMode()
	return c.JSONPretty(http.StatusOK, &modeBody{Mode: &mode}, indentationChar)
}

func (h *restHandler) setMode(c echo.Context) error {
	var body modeBody
	if err := c.Bind(&body); err != nil {
		return returnBadRequest(c, err)
	}
	if body.Mode == nil {
		return returnBadRequest(c, errors.New("missing field: mode"))
	}

	h.controller.SetMode(*body.Mode)

	mode := h.controller.CurrentMode()
	return c.JSONPretty(http.StatusOK, &modeBody{Mode: &mode}, indentationChar)
}
