package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ShubhamRajbabu/taskvault/internal/models"
)

// TaskUpdate carries a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (u TaskUpdate) changes() map[string]any {
	changes := map[string]any{}
	if u.Title != nil {
		changes["title"] = *u.Title
	}
	if u.Description != nil {
		changes["description"] = *u.Description
	}
	if u.Completed != nil {
		changes["completed"] = *u.Completed
	}
	return changes
}

func (u TaskUpdate) Empty() bool { return len(u.changes()) == 0 }

func (r *GormRepo) CreateTask(ctx context.Context, task *models.Task) error {
	return r.DB.WithContext(ctx).Create(task).Error
}

func (r *GormRepo) TasksByUser(ctx context.Context, userID uint) ([]models.Task, error) {
	var items []models.Task
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *GormRepo) TaskByID(ctx context.Context, taskID, userID uint) (*models.Task, error) {
	var task models.Task
	err := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *GormRepo) UpdateTask(ctx context.Context, taskID, userID uint, update TaskUpdate) (*models.Task, error) {
	result := r.DB.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Updates(update.changes())
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.TaskByID(ctx, taskID, userID)
}

func (r *GormRepo) DeleteTask(ctx context.Context, taskID, userID uint) error {
	result := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteTasksByUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Task{}).Error
}

// Admin variants operate across all users.

func (r *GormRepo) AllTasks(ctx context.Context) ([]models.Task, error) {
	var items []models.Task
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error
	return items, err
}

func (r *GormRepo) AnyTaskByID(ctx context.Context, taskID uint) (*models.Task, error) {
	var task models.Task
	if err := r.DB.WithContext(ctx).First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *GormRepo) UpdateAnyTask(ctx context.Context, taskID uint, update TaskUpdate) (*models.Task, error) {
	result := r.DB.WithContext(ctx).Model(&models.Task{}).
		Where("id = ?", taskID).
		Updates(update.changes())
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.AnyTaskByID(ctx, taskID)
}

func (r *GormRepo) DeleteAnyTask(ctx context.Context, taskID uint) error {
	result := r.DB.WithContext(ctx).Delete(&models.Task{}, taskID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteAllTasks(ctx context.Context) error {
	return r.DB.WithContext(ctx).Where("1 = 1").Delete(&models.Task{}).Error
}
