package repositories

import (
	"context"
	"errors"

	"github.com/evercare/scheduling/models"
	"gorm.io/gorm"
)

type ConsultationTypeRepository interface {
	Create(ctx context.Context, t *models.ConsultationType) error
	FindByID(ctx context.Context, id string) (*models.ConsultationType, error)
	FindAll(ctx context.Context) ([]models.ConsultationType, error)
	FindActive(ctx context.Context) ([]models.ConsultationType, error)
	Save(ctx context.Context, t *models.ConsultationType) error
	Delete(ctx context.Context, t *models.ConsultationType) error
}

type consultationTypeRepository struct {
	db *gorm.DB
}

func NewConsultationTypeRepository(db *gorm.DB) ConsultationTypeRepository {
	return &consultationTypeRepository{db: db}
}

func (r *consultationTypeRepository) Create(ctx context.Context, t *models.ConsultationType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *consultationTypeRepository) FindByID(ctx context.Context, id string) (*models.ConsultationType, error) {
	var t models.ConsultationType
	err := r.db.WithContext(ctx).First(&t, "type_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *consultationTypeRepository) FindAll(ctx context.Context) ([]models.ConsultationType, error) {
	var types []models.ConsultationType
	err := r.db.WithContext(ctx).Find(&types).Error
	return types, err
}

func (r *consultationTypeRepository) FindActive(ctx context.Context) ([]models.ConsultationType, error) {
	var types []models.ConsultationType
	err := r.db.WithContext(ctx).Where("active = ?", true).Find(&types).Error
	return types, err
}

func (r *consultationTypeRepository) Save(ctx context.Context, t *models.ConsultationType) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *consultationTypeRepository) Delete(ctx context.Context, t *models.ConsultationType) error {
	return r.db.WithContext(ctx).Delete(t).Error
}
