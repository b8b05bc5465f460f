package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusScheduled            AppointmentStatus = "SCHEDULED"
	StatusConfirmedByPatient   AppointmentStatus = "CONFIRMED_BY_PATIENT"
	StatusConfirmedByCaregiver AppointmentStatus = "CONFIRMED_BY_CAREGIVER"
	StatusRescheduled          AppointmentStatus = "RESCHEDULED"
	StatusCancelled            AppointmentStatus = "CANCELLED"
	StatusCompleted            AppointmentStatus = "COMPLETED"
	StatusMissed               AppointmentStatus = "MISSED"
)

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmedByPatient, StatusConfirmedByCaregiver,
		StatusRescheduled, StatusCancelled, StatusCompleted, StatusMissed:
		return true
	}
	return false
}

type CaregiverPresence string

const (
	PresencePhysical CaregiverPresence = "PHYSICAL"
	PresenceRemote   CaregiverPresence = "REMOTE"
	PresenceNone     CaregiverPresence = "NONE"
)

type Appointment struct {
	ID                 string           `json:"id" gorm:"primaryKey;column:appointment_id"`
	PatientID          string           `json:"patient_id" gorm:"index;not null"`
	Patient            User             `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	DoctorID           string           `json:"doctor_id" gorm:"index;not null"`
	Doctor             User             `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	CaregiverID        *string          `json:"caregiver_id,omitempty" gorm:"index"`
	Caregiver          *User            `json:"caregiver,omitempty" gorm:"foreignKey:CaregiverID"`
	ConsultationTypeID string           `json:"consultation_type_id"`
	ConsultationType   ConsultationType `json:"consultation_type,omitempty" gorm:"foreignKey:ConsultationTypeID"`

	StartDateTime time.Time `json:"start_date_time" gorm:"index"`
	EndDateTime   time.Time `json:"end_date_time"`

	Status AppointmentStatus `json:"status"`

	ConfirmationDatePatient   *time.Time `json:"confirmation_date_patient,omitempty"`
	ConfirmationDateCaregiver *time.Time `json:"confirmation_date_caregiver,omitempty"`

	CaregiverPresence CaregiverPresence `json:"caregiver_presence"`
	VideoLink         string            `json:"video_link"`

	DoctorNotes   string `json:"doctor_notes,omitempty" gorm:"size:1000"`
	SimpleSummary string `json:"simple_summary,omitempty" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if a.CaregiverPresence == "" {
		a.CaregiverPresence = PresenceNone
	}
	return nil
}

// Overlaps reports whether the appointment's [start, end) interval
// intersects the candidate interval.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartDateTime.Before(end) && a.EndDateTime.After(start)
}

// CountsForConflict reports whether the appointment still occupies its slot.
// Cancelled appointments free the slot but are retained for audit.
func (a *Appointment) CountsForConflict() bool {
	return a.Status != StatusCancelled
}

// CanTransitionTo encodes the appointment lifecycle. Confirmations may
// overwrite each other and live appointments can be rescheduled, cancelled
// or closed out; CANCELLED, COMPLETED and MISSED are terminal.
func (a *Appointment) CanTransitionTo(newStatus AppointmentStatus) bool {
	live := []AppointmentStatus{
		StatusConfirmedByPatient, StatusConfirmedByCaregiver,
		StatusRescheduled, StatusCancelled, StatusCompleted, StatusMissed,
	}
	allowed := map[AppointmentStatus][]AppointmentStatus{
		StatusScheduled:            live,
		StatusConfirmedByPatient:   live,
		StatusConfirmedByCaregiver: live,
		StatusRescheduled:          live,
		StatusCancelled:            {},
		StatusCompleted:            {},
		StatusMissed:               {},
	}

	for _, s := range allowed[a.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// Transition applies a status change after checking the lifecycle rules.
func (a *Appointment) Transition(newStatus AppointmentStatus) error {
	if !a.CanTransitionTo(newStatus) {
		return fmt.Errorf("%w: invalid transition from %s to %s", ErrValidation, a.Status, newStatus)
	}
	a.Status = newStatus
	return nil
}
