package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ShubhamRajbabu/taskvault/internal/middleware"
)

type Deps struct {
	Auth   *AuthHTTP
	Tasks  *TaskHTTP
	Users  *UserHTTP
	AuthMW *middleware.Auth

	// SearchEnabled gates the search route; without an Elasticsearch
	// client there is nothing to query.
	SearchEnabled bool
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)

	users := api.Group("/users", d.AuthMW.RequireAuth)
	users.GET("/profile", d.Users.Profile)

	tasks := api.Group("/tasks", d.AuthMW.RequireAuth)
	tasks.GET("", d.Tasks.List)
	tasks.POST("", d.Tasks.Create)
	if d.SearchEnabled {
		tasks.GET("/search", d.Tasks.Search)
	}
	tasks.GET("/:id", d.Tasks.Get)
	tasks.PATCH("/:id", d.Tasks.Update)
	tasks.DELETE("/:id", d.Tasks.Delete)
	tasks.DELETE("", d.Tasks.DeleteAll)

	admin := api.Group("/admin/tasks", d.AuthMW.RequireAuth, middleware.RequireRole("admin"))
	admin.GET("", d.Tasks.AdminList)
	admin.GET("/:id", d.Tasks.AdminGet)
	admin.PATCH("/:id", d.Tasks.AdminUpdate)
	admin.DELETE("/:id", d.Tasks.AdminDelete)
	admin.DELETE("", d.Tasks.AdminDeleteAll)
}
