package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crazylearners/portal/internal/core/ports"
)

// TutorHandler backs the chat widget.
type TutorHandler struct {
	tutor ports.TutorService
}

func NewTutorHandler(tutor ports.TutorService) *TutorHandler {
	return &TutorHandler{tutor: tutor}
}

func (h *TutorHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, messagesResponse{Messages: h.tutor.Messages()})
}

// Ask sends a prompt and returns the model's reply. Blank prompts are
// rejected by the tutor itself.
func (h *TutorHandler) Ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.tutor.Ask(c.Request().Context(), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msg)
}
