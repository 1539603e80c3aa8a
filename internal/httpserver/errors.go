package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ShubhamRajbabu/taskvault/internal/apperror"
	"github.com/ShubhamRajbabu/taskvault/internal/logging"
)

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorHandler renders every failure once, as {"success":false,"message"}.
// Unexpected errors are logged with their cause and reported generically.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	if appErr, ok := apperror.As(err); ok {
		status = appErr.Status
		message = appErr.Message
	} else if httpErr, ok := err.(*echo.HTTPError); ok {
		status = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(status)
		}
	} else {
		logging.FromContext(c.Request().Context()).Error("unhandled error", "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, errorEnvelope{Success: false, Message: message})
}
