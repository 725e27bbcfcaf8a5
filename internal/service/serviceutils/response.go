package serviceutils

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/task_management_sample/internal/domain"
	"github.com/locvowork/task_management_sample/internal/logger"
)

type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ResponseSuccess(c echo.Context, code int, msg string, data interface{}) error {
	return c.JSON(code, GenericResponse{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

func ResponseError(c echo.Context, code int, msg string, err error) error {
	resp := GenericResponse{
		Success: false,
		Message: msg,
		Error:   msg,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return c.JSON(code, resp)
}

// StatusFor maps a domain error kind to its HTTP status. Unknown errors are 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleError logs err and writes the client response. Domain errors expose their
// public message; everything else becomes a generic internal error built from
// fallback, with no internal detail.
func HandleError(ctx context.Context, c echo.Context, fallback string, err error) error {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		logger.ErrorLog(ctx, "%s: %v", fallback, err)
		return ResponseError(c, code, fallback, nil)
	}

	logger.WarnLog(ctx, "%s: %v", fallback, err)
	msg, ok := domain.PublicMessage(err)
	if !ok {
		msg = http.StatusText(code)
	}
	return ResponseError(c, code, msg, nil)
}
