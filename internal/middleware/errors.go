package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/userhub/internal/apperr"
	"github.com/sudo-init-do/userhub/internal/logging"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandler renders coded errors with their mapped status and logs every
// 5xx with its oops context.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := apperr.Status(err)
		resp := ErrorResponse{Message: err.Error(), Code: apperr.Code(err)}

		var he *echo.HTTPError
		if resp.Code == "" && errors.As(err, &he) {
			status = he.Code
			resp.Message = fmt.Sprint(he.Message)
		}

		if status >= http.StatusInternalServerError {
			logging.LogError(c.Request().Context(), logger, "request failed", err,
				"method", c.Request().Method,
				"path", c.Path(),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, resp)
		}
		if writeErr != nil {
			logger.Error("write error response", "error", writeErr)
		}
	}
}
