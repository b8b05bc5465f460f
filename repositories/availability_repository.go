package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/evercare/scheduling/models"
	"gorm.io/gorm"
)

// AvailabilityRepository is the persistence surface for doctor availability
// windows. Windows are independent rows owned by a single doctor.
type AvailabilityRepository interface {
	Create(ctx context.Context, a *models.Availability) error
	FindByID(ctx context.Context, id string) (*models.Availability, error)
	FindAll(ctx context.Context) ([]models.Availability, error)
	FindByDoctor(ctx context.Context, doctorID string) ([]models.Availability, error)
	FindByDoctorAndDay(ctx context.Context, doctorID string, day models.DayOfWeek) ([]models.Availability, error)
	FindValidForDate(ctx context.Context, doctorID string, date time.Time) ([]models.Availability, error)
	FindBlocked(ctx context.Context, doctorID string) ([]models.Availability, error)
	FindByRecurrence(ctx context.Context, recurrence models.Recurrence) ([]models.Availability, error)
	FindByDoctorAndPeriod(ctx context.Context, doctorID string, from, to time.Time) ([]models.Availability, error)
	Save(ctx context.Context, a *models.Availability) error
	Delete(ctx context.Context, a *models.Availability) error
	DeleteByDoctor(ctx context.Context, doctorID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type availabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) Create(ctx context.Context, a *models.Availability) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *availabilityRepository) FindByID(ctx context.Context, id string) (*models.Availability, error) {
	var a models.Availability
	err := r.db.WithContext(ctx).First(&a, "availability_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *availabilityRepository) FindAll(ctx context.Context) ([]models.Availability, error) {
	var windows []models.Availability
	err := r.db.WithContext(ctx).Find(&windows).Error
	return windows, err
}

func (r *availabilityRepository) FindByDoctor(ctx context.Context, doctorID string) ([]models.Availability, error) {
	var windows []models.Availability
	err := r.db.WithContext(ctx).Where("doctor_id = ?", doctorID).Find(&windows).Error
	return windows, err
}

func (r *availabilityRepository) FindByDoctorAndDay(ctx context.Context, doctorID string, day models.DayOfWeek) ([]models.Availability, error) {
	var windows []models.Availability
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND day_of_week = ?", doctorID, day).
		Find(&windows).Error
	return windows, err
}

func (r *availabilityRepository) FindValidForDate(ctx context.Context, doctorID string, date time.Time) ([]models.Availability, error) {
	var windows []models.Availability
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND valid_from <= ? AND valid_to >= ? AND blocked = ?",
			doctorID, models.DateOnly(date), models.DateOnly(date), false).
		Find(&windows).Error
	return windows, err
}

func (r *availabilityRepository) FindBlocked(ctx context.Context, doctorID string) ([]models.Availability, error) {
	var windows []models.Availability
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND blocked = ?", doctorID, true).
		Find(&windows).Error
	return windows, err
}

func (r *availabilityRepository) FindByRecurrence(ctx context.Context, recurrence models.Recurrence) ([]models.Availability, error) {
	var windows []models.Availability
	err := r.db.WithContext(ctx).Where("recurrence = ?", recurrence).Find(&windows).Error
	return windows, err
}

func (r *availabilityRepository) FindByDoctorAndPeriod(ctx context.Context, doctorID string, from, to time.Time) ([]models.Availability, error) {
	var windows []models.Availability
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND valid_from <= ? AND valid_to >= ?",
			doctorID, models.DateOnly(from), models.DateOnly(to)).
		Find(&windows).Error
	return windows, err
}

func (r *availabilityRepository) Save(ctx context.Context, a *models.Availability) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *availabilityRepository) Delete(ctx context.Context, a *models.Availability) error {
	return r.db.WithContext(ctx).Delete(a).Error
}

func (r *availabilityRepository) DeleteByDoctor(ctx context.Context, doctorID string) error {
	return r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Delete(&models.Availability{}).Error
}

func (r *availabilityRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("valid_to < ?", models.DateOnly(before)).
		Delete(&models.Availability{})
	return res.RowsAffected, res.Error
}
