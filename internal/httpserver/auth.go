package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ShubhamRajbabu/taskvault/internal/apperror"
	"github.com/ShubhamRajbabu/taskvault/internal/models"
	"github.com/ShubhamRajbabu/taskvault/internal/service"
	"github.com/ShubhamRajbabu/taskvault/internal/tokens"
)

type AuthHTTP struct {
	Svc           *service.AuthService
	SecureCookies bool
}

type userSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func summarize(u *models.User) userSummary {
	return userSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

func (h *AuthHTTP) setSessionCookies(c echo.Context, pair *tokens.Pair) {
	c.SetCookie(createCookie("accessToken", pair.AccessToken, pair.AccessExp, h.SecureCookies))
	c.SetCookie(createCookie("refreshToken", pair.RefreshToken, pair.RefreshExp, h.SecureCookies))
}

func (h *AuthHTTP) clearSessionCookies(c echo.Context) {
	c.SetCookie(deleteCookie("accessToken", h.SecureCookies))
	c.SetCookie(deleteCookie("refreshToken", h.SecureCookies))
}

func (h *AuthHTTP) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("invalid body")
	}

	res, err := h.Svc.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookies(c, res.Pair)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "user registered successfully",
		"user":    summarize(res.User),
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("invalid body")
	}

	res, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookies(c, res.Pair)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "user logged in successfully",
		"user":    summarize(res.User),
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	refreshCookie, err := c.Cookie("refreshToken")
	if err != nil || refreshCookie.Value == "" {
		return apperror.Unauthorized("missing refresh token")
	}

	pair, err := h.Svc.Refresh(c.Request().Context(), refreshCookie.Value)
	if err != nil {
		return err
	}

	h.setSessionCookies(c, pair)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "tokens refreshed successfully",
	})
}

// Logout never fails, with or without a cookie.
func (h *AuthHTTP) Logout(c echo.Context) error {
	if refreshCookie, err := c.Cookie("refreshToken"); err == nil {
		h.Svc.Logout(c.Request().Context(), refreshCookie.Value)
	}

	h.clearSessionCookies(c)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "user logged out successfully",
	})
}
