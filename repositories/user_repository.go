package repositories

import (
	"context"
	"errors"

	"github.com/evercare/scheduling/models"
	"gorm.io/gorm"
)

// UserRepository resolves directory records. It stands in for the external
// identity service; the engine only needs existence and role.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).First(&u, "user_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("role = ?", role).Find(&users).Error
	return users, err
}
