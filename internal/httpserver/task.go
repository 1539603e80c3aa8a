package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ShubhamRajbabu/taskvault/internal/apperror"
	"github.com/ShubhamRajbabu/taskvault/internal/middleware"
	"github.com/ShubhamRajbabu/taskvault/internal/repo"
	"github.com/ShubhamRajbabu/taskvault/internal/service"
)

type TaskHTTP struct {
	Svc *service.TaskService
}

func taskID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperror.BadRequest("invalid task id")
	}
	return uint(id), nil
}

func (h *TaskHTTP) List(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	tasks, err := h.Svc.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks})
}

func (h *TaskHTTP) Get(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}
	task, err := h.Svc.Get(c.Request().Context(), id, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"task": task})
}

func (h *TaskHTTP) Create(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("invalid body")
	}
	task, err := h.Svc.Create(c.Request().Context(), userID, req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"task": task})
}

func (h *TaskHTTP) Update(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}
	var update repo.TaskUpdate
	if err := c.Bind(&update); err != nil {
		return apperror.BadRequest("invalid body")
	}
	task, err := h.Svc.Update(c.Request().Context(), id, userID, update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"task": task})
}

func (h *TaskHTTP) Delete(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	id, err := taskID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), id, userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TaskHTTP) DeleteAll(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteAll(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TaskHTTP) Search(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	pageParam, _ := strconv.Atoi(c.QueryParam("page"))
	sizeParam, _ := strconv.Atoi(c.QueryParam("size"))

	total, tasks, err := h.Svc.Search(c.Request().Context(), userID, c.QueryParam("q"), pageParam, sizeParam)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "tasks": tasks})
}

// Admin surface.

func (h *TaskHTTP) AdminList(c echo.Context) error {
	tasks, err := h.Svc.AdminList(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks})
}

func (h *TaskHTTP) AdminGet(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	task, err := h.Svc.AdminGet(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"task": task})
}

func (h *TaskHTTP) AdminUpdate(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	var update repo.TaskUpdate
	if err := c.Bind(&update); err != nil {
		return apperror.BadRequest("invalid body")
	}
	task, err := h.Svc.AdminUpdate(c.Request().Context(), id, update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"task": task})
}

func (h *TaskHTTP) AdminDelete(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.AdminDelete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TaskHTTP) AdminDeleteAll(c echo.Context) error {
	if err := h.Svc.AdminDeleteAll(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
