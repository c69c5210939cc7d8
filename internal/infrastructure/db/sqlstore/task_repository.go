package sqlstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/routinely/tracker/internal/core/domain"
)

type TaskRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	model := toTaskModel(task)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, storeError("create task", err)
	}
	created := model.toDomain()
	return &created, nil
}

// Update rewrites the editable fields and fills task back with the stored
// completion flag and creation time.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current taskModel
		err := tx.Where("id = ? AND user_id = ?", task.ID, task.OwnerID).Take(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		err = tx.Model(&current).Updates(map[string]any{
			"title":       task.Title,
			"description": task.Description,
			"priority":    string(task.Priority),
			"due_date":    nullable(task.DueDate),
			"updated_at":  task.UpdatedAt,
		}).Error
		if err != nil {
			return err
		}
		task.Completed = current.Completed
		task.CreatedAt = current.CreatedAt
		return nil
	})
	if err != nil {
		return storeError("update task", err)
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Toggle(ctx context.Context, ownerID, taskID int64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.WithContext(ctx).Model(&taskModel{}).
		Where("id = ? AND user_id = ?", taskID, ownerID).
		Updates(map[string]any{
			"completed":  gorm.Expr("NOT completed"),
			"updated_at": at,
		}).Error
	return storeError("toggle task", err)
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", taskID, ownerID).Delete(&taskModel{}).Error
	return storeError("delete task", err)
}

func (r *TaskRepository) List(ctx context.Context, ownerID int64, filter domain.TaskFilter) ([]domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	switch filter {
	case domain.TaskFilterPending:
		query = query.Where("completed = ?", false)
	case domain.TaskFilterCompleted:
		query = query.Where("completed = ?", true)
	}

	var models []taskModel
	if err := query.Order("id").Find(&models).Error; err != nil {
		return nil, storeError("list tasks", err)
	}
	tasks := make([]domain.Task, 0, len(models))
	for _, m := range models {
		tasks = append(tasks, m.toDomain())
	}
	return tasks, nil
}
