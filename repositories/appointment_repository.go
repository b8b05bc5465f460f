package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/evercare/scheduling/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppointmentRepository is the persistence surface for appointments. Book and
// Rebook are the only write paths allowed to place an appointment on a slot:
// they re-run the availability and conflict checks inside one transaction so
// that two concurrent bookings for the same doctor cannot both succeed.
type AppointmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	FindAll(ctx context.Context) ([]models.Appointment, error)
	FindByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	FindByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	FindByCaregiver(ctx context.Context, caregiverID string) ([]models.Appointment, error)
	FindByStatus(ctx context.Context, status models.AppointmentStatus) ([]models.Appointment, error)
	FindByStartBetween(ctx context.Context, start, end time.Time) ([]models.Appointment, error)
	FindByDoctorAndStartBetween(ctx context.Context, doctorID string, start, end time.Time) ([]models.Appointment, error)
	FindFutureByPatient(ctx context.Context, patientID string, now time.Time) ([]models.Appointment, error)
	HasConflict(ctx context.Context, doctorID string, start, end time.Time, excludeID string) (bool, error)
	CountByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) (int64, error)
	Book(ctx context.Context, a *models.Appointment) error
	Rebook(ctx context.Context, a *models.Appointment) error
	Save(ctx context.Context, a *models.Appointment) error
	Delete(ctx context.Context, a *models.Appointment) error
	DeleteByPatient(ctx context.Context, patientID string) error
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Patient").Preload("Doctor").Preload("Caregiver").Preload("ConsultationType")
}

func (r *appointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	err := r.preloaded(ctx).First(&a, "appointment_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepository) FindAll(ctx context.Context) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.preloaded(ctx).Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) FindByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.preloaded(ctx).Where("patient_id = ?", patientID).Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) FindByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.preloaded(ctx).Where("doctor_id = ?", doctorID).Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) FindByCaregiver(ctx context.Context, caregiverID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.preloaded(ctx).Where("caregiver_id = ?", caregiverID).Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) FindByStatus(ctx context.Context, status models.AppointmentStatus) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.preloaded(ctx).Where("status = ?", status).Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) FindByStartBetween(ctx context.Context, start, end time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.preloaded(ctx).
		Where("start_date_time BETWEEN ? AND ?", start, end).
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) FindByDoctorAndStartBetween(ctx context.Context, doctorID string, start, end time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.preloaded(ctx).
		Where("doctor_id = ? AND start_date_time BETWEEN ? AND ?", doctorID, start, end).
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) FindFutureByPatient(ctx context.Context, patientID string, now time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.preloaded(ctx).
		Where("patient_id = ? AND start_date_time > ?", patientID, now).
		Order("start_date_time").
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepository) HasConflict(ctx context.Context, doctorID string, start, end time.Time, excludeID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("doctor_id = ? AND status <> ? AND start_date_time < ? AND end_date_time > ?",
			doctorID, models.StatusCancelled, end, start)
	if excludeID != "" {
		q = q.Where("appointment_id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *appointmentRepository) CountByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) (int64, error) {
	dayStart := models.DateOnly(date)
	dayEnd := dayStart.AddDate(0, 0, 1)
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("doctor_id = ? AND status <> ? AND start_date_time >= ? AND start_date_time < ?",
			doctorID, models.StatusCancelled, dayStart, dayEnd).
		Count(&count).Error
	return count, err
}

// Book inserts a new appointment after re-verifying the slot inside a
// serializing transaction.
func (r *appointmentRepository) Book(ctx context.Context, a *models.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := guardSlot(tx, a, ""); err != nil {
			return err
		}
		return tx.Create(a).Error
	})
}

// Rebook moves an existing appointment to a new slot under the same guard,
// excluding the appointment itself from the conflict check.
func (r *appointmentRepository) Rebook(ctx context.Context, a *models.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := guardSlot(tx, a, a.ID); err != nil {
			return err
		}
		return tx.Save(a).Error
	})
}

// guardSlot serializes bookings per doctor and re-runs the two booking
// predicates. A plain FOR UPDATE cannot lock rows that do not exist yet, so
// concurrent inserts into an empty slot would both pass; the per-doctor
// advisory lock closes that gap.
func guardSlot(tx *gorm.DB, a *models.Appointment, excludeID string) error {
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", a.DoctorID).Error; err != nil {
		return err
	}

	start := models.TimeOfDay(a.StartDateTime.Hour()*60 + a.StartDateTime.Minute())
	var windows int64
	err := tx.Model(&models.Availability{}).
		Where("doctor_id = ? AND day_of_week = ? AND blocked = ? AND valid_from <= ? AND valid_to >= ? AND start_time <= ? AND end_time > ?",
			a.DoctorID, models.DayOfWeek(a.StartDateTime.Weekday()), false,
			models.DateOnly(a.StartDateTime), models.DateOnly(a.StartDateTime),
			start, start).
		Count(&windows).Error
	if err != nil {
		return err
	}
	if windows == 0 {
		return models.ErrSlotUnavailable
	}

	conflictQ := tx.
		Where("doctor_id = ? AND status <> ? AND start_date_time < ? AND end_date_time > ?",
			a.DoctorID, models.StatusCancelled, a.EndDateTime, a.StartDateTime)
	if excludeID != "" {
		conflictQ = conflictQ.Where("appointment_id <> ?", excludeID)
	}
	var conflicts []models.Appointment
	if err := conflictQ.Clauses(clause.Locking{Strength: "UPDATE"}).Find(&conflicts).Error; err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return models.ErrDoubleBooking
	}
	return nil
}

func (r *appointmentRepository) Save(ctx context.Context, a *models.Appointment) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *appointmentRepository) Delete(ctx context.Context, a *models.Appointment) error {
	return r.db.WithContext(ctx).Delete(a).Error
}

func (r *appointmentRepository) DeleteByPatient(ctx context.Context, patientID string) error {
	return r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Delete(&models.Appointment{}).Error
}
