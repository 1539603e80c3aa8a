package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ShubhamRajbabu/taskvault/internal/apperror"
	"github.com/ShubhamRajbabu/taskvault/internal/events"
	"github.com/ShubhamRajbabu/taskvault/internal/logging"
	"github.com/ShubhamRajbabu/taskvault/internal/models"
	"github.com/ShubhamRajbabu/taskvault/internal/repo"
	"github.com/ShubhamRajbabu/taskvault/internal/search"
)

type TaskService struct {
	Repo     *repo.GormRepo
	Producer *events.Producer
	Index    *search.TaskIndex
}

var errTaskNotFound = apperror.NotFound("task not found")

func (s *TaskService) Create(ctx context.Context, userID uint, title, description string) (*models.Task, error) {
	l := logging.FromContext(ctx).With("svc", "task.create")

	if title == "" {
		return nil, apperror.BadRequest("title is required")
	}
	task := models.Task{
		Title:       title,
		Description: description,
		UserID:      userID,
	}
	if err := s.Repo.CreateTask(ctx, &task); err != nil {
		l.Error("create failed", "error", err)
		return nil, apperror.Internal()
	}

	s.indexTask(ctx, &task)
	s.publishTaskEvent(ctx, "task_created", &task)
	return &task, nil
}

func (s *TaskService) List(ctx context.Context, userID uint) ([]models.Task, error) {
	items, err := s.Repo.TasksByUser(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("task list failed", "error", err)
		return nil, apperror.Internal()
	}
	return items, nil
}

func (s *TaskService) Get(ctx context.Context, taskID, userID uint) (*models.Task, error) {
	task, err := s.Repo.TaskByID(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errTaskNotFound
		}
		logging.FromContext(ctx).Error("task lookup failed", "error", err)
		return nil, apperror.Internal()
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, taskID, userID uint, update repo.TaskUpdate) (*models.Task, error) {
	l := logging.FromContext(ctx).With("svc", "task.update")

	if update.Empty() {
		return nil, apperror.BadRequest("nothing to update")
	}
	task, err := s.Repo.UpdateTask(ctx, taskID, userID, update)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errTaskNotFound
		}
		l.Error("update failed", "error", err)
		return nil, apperror.Internal()
	}

	s.indexTask(ctx, task)
	s.publishTaskEvent(ctx, "task_updated", task)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, taskID, userID uint) error {
	l := logging.FromContext(ctx).With("svc", "task.delete")

	if err := s.Repo.DeleteTask(ctx, taskID, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errTaskNotFound
		}
		l.Error("delete failed", "error", err)
		return apperror.Internal()
	}

	s.removeFromIndex(ctx, taskID)
	s.publish(ctx, map[string]any{"type": "task_deleted", "task_id": taskID, "user_id": userID}, fmt.Sprint(taskID))
	return nil
}

func (s *TaskService) DeleteAll(ctx context.Context, userID uint) error {
	if err := s.Repo.DeleteTasksByUser(ctx, userID); err != nil {
		logging.FromContext(ctx).Error("delete all failed", "error", err)
		return apperror.Internal()
	}
	s.publish(ctx, map[string]any{"type": "tasks_cleared", "user_id": userID}, fmt.Sprint(userID))
	return nil
}

func (s *TaskService) Search(ctx context.Context, userID uint, query string, page, size int) (int64, []models.Task, error) {
	if query == "" {
		return 0, nil, apperror.BadRequest("query is required")
	}
	from, limit := search.Calculate(page, size)
	total, items, err := s.Index.SearchTasks(ctx, userID, query, from, limit)
	if err != nil {
		logging.FromContext(ctx).Error("task search failed", "error", err)
		return 0, nil, apperror.Internal()
	}
	return total, items, nil
}

// Admin surface: same operations without the owner filter.

func (s *TaskService) AdminList(ctx context.Context) ([]models.Task, error) {
	items, err := s.Repo.AllTasks(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("admin list failed", "error", err)
		return nil, apperror.Internal()
	}
	return items, nil
}

func (s *TaskService) AdminGet(ctx context.Context, taskID uint) (*models.Task, error) {
	task, err := s.Repo.AnyTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errTaskNotFound
		}
		logging.FromContext(ctx).Error("admin lookup failed", "error", err)
		return nil, apperror.Internal()
	}
	return task, nil
}

func (s *TaskService) AdminUpdate(ctx context.Context, taskID uint, update repo.TaskUpdate) (*models.Task, error) {
	if update.Empty() {
		return nil, apperror.BadRequest("nothing to update")
	}
	task, err := s.Repo.UpdateAnyTask(ctx, taskID, update)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errTaskNotFound
		}
		logging.FromContext(ctx).Error("admin update failed", "error", err)
		return nil, apperror.Internal()
	}
	s.indexTask(ctx, task)
	s.publishTaskEvent(ctx, "task_updated", task)
	return task, nil
}

func (s *TaskService) AdminDelete(ctx context.Context, taskID uint) error {
	if err := s.Repo.DeleteAnyTask(ctx, taskID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errTaskNotFound
		}
		logging.FromContext(ctx).Error("admin delete failed", "error", err)
		return apperror.Internal()
	}
	s.removeFromIndex(ctx, taskID)
	s.publish(ctx, map[string]any{"type": "task_deleted", "task_id": taskID}, fmt.Sprint(taskID))
	return nil
}

func (s *TaskService) AdminDeleteAll(ctx context.Context) error {
	if err := s.Repo.DeleteAllTasks(ctx); err != nil {
		logging.FromContext(ctx).Error("admin delete all failed", "error", err)
		return apperror.Internal()
	}
	s.publish(ctx, map[string]any{"type": "tasks_cleared"}, "all")
	return nil
}

// Indexing and event publishing are side paths: failures are logged, never
// surfaced to the client.

func (s *TaskService) indexTask(ctx context.Context, task *models.Task) {
	if !s.Index.Enabled() {
		return
	}
	if err := s.Index.IndexTask(ctx, task); err != nil {
		logging.FromContext(ctx).Error("task indexing failed", "task_id", task.ID, "error", err)
	}
}

func (s *TaskService) removeFromIndex(ctx context.Context, taskID uint) {
	if !s.Index.Enabled() {
		return
	}
	if err := s.Index.RemoveTask(ctx, taskID); err != nil {
		logging.FromContext(ctx).Error("task deindexing failed", "task_id", taskID, "error", err)
	}
}

func (s *TaskService) publishTaskEvent(ctx context.Context, typ string, task *models.Task) {
	s.publish(ctx, map[string]any{
		"type":    typ,
		"task_id": task.ID,
		"user_id": task.UserID,
		"title":   task.Title,
	}, fmt.Sprint(task.ID))
}

func (s *TaskService) publish(ctx context.Context, event map[string]any, key string) {
	if s.Producer == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, events.TopicTaskEvents, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "topic", events.TopicTaskEvents, "error", err)
	}
}
