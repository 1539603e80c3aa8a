package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ShubhamRajbabu/taskvault/internal/middleware"
	"github.com/ShubhamRajbabu/taskvault/internal/service"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Profile(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	user, err := h.Svc.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}
