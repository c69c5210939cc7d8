package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/routinely/tracker/internal/core/domain"
)

type UserRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	model := toUserModel(user)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&userModel{}).Where("username = ?", model.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrDuplicateUsername
		}
		return tx.Create(&model).Error
	})
	if errors.Is(err, domain.ErrDuplicateUsername) {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err != nil {
		return nil, storeError("create user", err)
	}

	created := model.toDomain()
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var model userModel
	err := r.db.WithContext(ctx).Where(query, arg).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, storeError("find user", err)
	}
	user := model.toDomain()
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var models []userModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, storeError("list users", err)
	}
	users := make([]domain.User, 0, len(models))
	for _, m := range models {
		users = append(users, m.toDomain())
	}
	return users, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.update(ctx, "update password", id, map[string]any{"password_hash": passwordHash})
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, email string, emailNotifications bool) error {
	return r.update(ctx, "update profile", id, map[string]any{
		"email":               email,
		"email_notifications": emailNotifications,
	})
}

func (r *UserRepository) update(ctx context.Context, op string, id int64, fields map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return storeError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero rows when the values did not change.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the user and everything it owns in one transaction. The
// explicit deletes keep the cascade working on backends without enforced
// foreign keys.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model userModel
		if err := tx.Where("id = ?", id).Take(&model).Error; err != nil {
			return err
		}
		owned := tx.Model(&routineModel{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("routine_id IN (?)", owned).Delete(&routineExecutionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&routineModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&taskModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrUserNotFound
	}
	return storeError("delete user", err)
}
