package sqlstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/routinely/tracker/internal/core/domain"
)

type RoutineRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func (r *RoutineRepository) Create(ctx context.Context, routine *domain.Routine) (*domain.Routine, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	model := toRoutineModel(routine)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, storeError("create routine", err)
	}
	created := model.toDomain()
	return &created, nil
}

func (r *RoutineRepository) FindByID(ctx context.Context, ownerID, routineID int64) (*domain.Routine, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var model routineModel
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", routineID, ownerID).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeError("find routine", err)
	}
	routine := model.toDomain()
	return &routine, nil
}

func (r *RoutineRepository) Toggle(ctx context.Context, ownerID, routineID int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.WithContext(ctx).Model(&routineModel{}).
		Where("id = ? AND user_id = ?", routineID, ownerID).
		Update("active", gorm.Expr("NOT active")).Error
	return storeError("toggle routine", err)
}

func (r *RoutineRepository) Delete(ctx context.Context, ownerID, routineID int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", routineID, ownerID).Delete(&routineModel{})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		return tx.Where("routine_id = ?", routineID).Delete(&routineExecutionModel{}).Error
	})
	return storeError("delete routine", err)
}

func (r *RoutineRepository) List(ctx context.Context, ownerID int64) ([]domain.Routine, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var models []routineModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("id").Find(&models).Error; err != nil {
		return nil, storeError("list routines", err)
	}
	routines := make([]domain.Routine, 0, len(models))
	for _, m := range models {
		routines = append(routines, m.toDomain())
	}
	return routines, nil
}

func (r *RoutineRepository) AppendExecution(ctx context.Context, exec *domain.RoutineExecution) (*domain.RoutineExecution, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	model := routineExecutionModel{
		RoutineID:    exec.RoutineID,
		ExecutedDate: exec.ExecutedDate,
		ExecutedTime: exec.ExecutedTime,
		Notes:        exec.Notes,
		CreatedAt:    exec.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, storeError("append execution", err)
	}
	out := *exec
	out.ID = model.ID
	return &out, nil
}
