package middleware

import (
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/ShubhamRajbabu/taskvault/internal/apperror"
	"github.com/ShubhamRajbabu/taskvault/internal/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

type Auth struct {
	Issuer *tokens.Issuer
}

func NewAuth(issuer *tokens.Issuer) *Auth { return &Auth{Issuer: issuer} }

// RequireAuth is a pure gate over the access cookie: signature and expiry
// only, the session store is never consulted. On success the decoded
// identity is attached to the echo context.
func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		accessCookie, err := c.Cookie("accessToken")
		if err != nil || accessCookie.Value == "" {
			return apperror.Unauthorized("missing access token")
		}

		claims, err := m.Issuer.ParseAccess(accessCookie.Value)
		if err != nil {
			return apperror.Unauthorized("invalid or expired token")
		}
		userID, err := claims.UserID()
		if err != nil {
			return apperror.Unauthorized("invalid or expired token")
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxRole, claims.Role)

		return next(c)
	}
}

// RequireRole must be composed after RequireAuth; it reads the identity the
// gate attached.
func RequireRole(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return apperror.Unauthorized("missing access token")
			}
			if !slices.Contains(allowed, role) {
				return apperror.Forbidden("insufficient permissions")
			}
			return next(c)
		}
	}
}

// UserID returns the identity attached by RequireAuth.
func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get(CtxUserID).(uint)
	if !ok {
		return 0, apperror.Unauthorized("missing access token")
	}
	return id, nil
}
