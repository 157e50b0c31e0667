// Package handlers provides the HTTP handlers for the relay API.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/otpgate/otpgate/internal/logger"
	"github.com/otpgate/otpgate/internal/review"
)

// apiResponse is the wire shape every /api route answers with.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type tgUserPayload struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

type logCodeRequest struct {
	Code   string         `json:"code"`
	TGUser *tgUserPayload `json:"tgUser"`
}

// IntakeHandler serves POST /api/log-code, the web form's submission endpoint.
type IntakeHandler struct {
	service *review.Service
}

// NewIntakeHandler creates the intake handler.
func NewIntakeHandler(service *review.Service) *IntakeHandler {
	return &IntakeHandler{service: service}
}

// Register mounts the intake route on the Echo instance.
func (h *IntakeHandler) Register(e *echo.Echo) {
	e.POST("/api/log-code", h.LogCode)
}

// LogCode accepts {code, tgUser?} and relays the submission to the reviewer.
func (h *IntakeHandler) LogCode(c echo.Context) error {
	var req logCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: "invalid request body"})
	}

	intake := review.IntakeRequest{Code: req.Code}
	if req.TGUser != nil {
		intake.User = &review.TGUser{
			ID:        req.TGUser.ID,
			Username:  req.TGUser.Username,
			FirstName: req.TGUser.FirstName,
		}
	}

	if _, err := h.service.Intake(c.Request().Context(), intake); err != nil {
		if errors.Is(err, review.ErrCodeRequired) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: err.Error()})
		}
		logger.FromContext(c.Request().Context()).Error("intake failed", slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: "failed to relay code"})
	}
	return c.JSON(http.StatusOK, apiResponse{OK: true})
}
