package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evercare/scheduling/models"
	"github.com/evercare/scheduling/repositories"
	"go.uber.org/zap"
)

const videoRoomBaseURL = "https://consult.evercare.com/room"

// CreateAppointmentInput carries a booking request. End time and video link
// are derived, never supplied by the caller.
type CreateAppointmentInput struct {
	PatientID          string                   `json:"patient_id"`
	DoctorID           string                   `json:"doctor_id"`
	CaregiverID        *string                  `json:"caregiver_id"`
	ConsultationTypeID string                   `json:"consultation_type_id"`
	StartDateTime      time.Time                `json:"start_date_time"`
	CaregiverPresence  models.CaregiverPresence `json:"caregiver_presence"`
}

// UpdateAppointmentInput is a partial update; nil fields keep stored values.
type UpdateAppointmentInput struct {
	StartDateTime      *time.Time                `json:"start_date_time"`
	CaregiverID        *string                   `json:"caregiver_id"`
	ConsultationTypeID *string                   `json:"consultation_type_id"`
	CaregiverPresence  *models.CaregiverPresence `json:"caregiver_presence"`
	DoctorNotes        *string                   `json:"doctor_notes"`
	SimpleSummary      *string                   `json:"simple_summary"`
}

// AppointmentService owns the appointment lifecycle. Booking requires that an
// unblocked window covers the slot and that no non-cancelled appointment
// overlaps it; the repository re-runs both checks atomically before inserting.
type AppointmentService struct {
	appointments repositories.AppointmentRepository
	availability *AvailabilityService
	catalog      repositories.ConsultationTypeRepository
	users        repositories.UserRepository
	log          *zap.Logger
}

func NewAppointmentService(
	appointments repositories.AppointmentRepository,
	availability *AvailabilityService,
	catalog repositories.ConsultationTypeRepository,
	users repositories.UserRepository,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		availability: availability,
		catalog:      catalog,
		users:        users,
		log:          log,
	}
}

func (s *AppointmentService) resolveUser(ctx context.Context, id string, role models.UserRole) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolving %s %s: %w", role, id, err)
	}
	if u.Role != role {
		return nil, fmt.Errorf("%w: user %s is not a %s", models.ErrNotFound, id, role)
	}
	return u, nil
}

// Create books a new appointment. The pre-checks give the caller a precise
// error; the repository's Book transaction is what actually guarantees the
// slot cannot be taken twice.
func (s *AppointmentService) Create(ctx context.Context, in *CreateAppointmentInput) (*models.Appointment, error) {
	if _, err := s.resolveUser(ctx, in.PatientID, models.RolePatient); err != nil {
		return nil, err
	}
	if _, err := s.resolveUser(ctx, in.DoctorID, models.RoleDoctor); err != nil {
		return nil, err
	}

	ctype, err := s.catalog.FindByID(ctx, in.ConsultationTypeID)
	if err != nil {
		return nil, fmt.Errorf("resolving consultation type %s: %w", in.ConsultationTypeID, err)
	}

	caregiverID := in.CaregiverID
	if caregiverID != nil {
		// Caregiver is optional even when the consultation type asks for
		// one; a missing record degrades to no caregiver, as before.
		if _, err := s.users.FindByID(ctx, *caregiverID); err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				return nil, err
			}
			caregiverID = nil
		}
	}
	if ctype.RequiresCaregiver && caregiverID == nil {
		s.log.Warn("consultation type requires a caregiver but none was resolved",
			zap.String("consultation_type", ctype.Name),
			zap.String("patient_id", in.PatientID))
	}

	start := in.StartDateTime
	end := start.Add(time.Duration(ctype.DefaultDurationMinutes) * time.Minute)

	startOfDay := models.TimeOfDay(start.Hour()*60 + start.Minute())
	bookable, err := s.availability.IsBookable(ctx, in.DoctorID, start, startOfDay)
	if err != nil {
		return nil, err
	}
	if !bookable {
		return nil, fmt.Errorf("%w: doctor %s at %s", models.ErrSlotUnavailable, in.DoctorID, start.Format(time.RFC3339))
	}

	conflict, err := s.appointments.HasConflict(ctx, in.DoctorID, start, end, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, fmt.Errorf("%w: doctor %s between %s and %s",
			models.ErrDoubleBooking, in.DoctorID, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	presence := in.CaregiverPresence
	if presence == "" {
		presence = models.PresenceNone
	}

	now := time.Now()
	a := &models.Appointment{
		PatientID:          in.PatientID,
		DoctorID:           in.DoctorID,
		CaregiverID:        caregiverID,
		ConsultationTypeID: ctype.ID,
		StartDateTime:      start,
		EndDateTime:        end,
		Status:             models.StatusScheduled,
		CaregiverPresence:  presence,
		VideoLink:          VideoLink(in.DoctorID, in.PatientID),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.appointments.Book(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("appointment booked",
		zap.String("id", a.ID),
		zap.String("doctor_id", a.DoctorID),
		zap.String("patient_id", a.PatientID),
		zap.Time("start", a.StartDateTime))
	return a, nil
}

// VideoLink builds the deterministic consultation room URL from truncated
// doctor and patient identifiers.
func VideoLink(doctorID, patientID string) string {
	return fmt.Sprintf("%s/%s-%s", videoRoomBaseURL, truncateID(doctorID), truncateID(patientID))
}

func truncateID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func (s *AppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	return s.appointments.FindByID(ctx, id)
}

func (s *AppointmentService) List(ctx context.Context) ([]models.Appointment, error) {
	return s.appointments.FindAll(ctx)
}

func (s *AppointmentService) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	if _, err := s.resolveUser(ctx, patientID, models.RolePatient); err != nil {
		return nil, err
	}
	return s.appointments.FindByPatient(ctx, patientID)
}

func (s *AppointmentService) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	if _, err := s.resolveUser(ctx, doctorID, models.RoleDoctor); err != nil {
		return nil, err
	}
	return s.appointments.FindByDoctor(ctx, doctorID)
}

func (s *AppointmentService) ListByCaregiver(ctx context.Context, caregiverID string) ([]models.Appointment, error) {
	if _, err := s.resolveUser(ctx, caregiverID, models.RoleCaregiver); err != nil {
		return nil, err
	}
	return s.appointments.FindByCaregiver(ctx, caregiverID)
}

func (s *AppointmentService) ListByStatus(ctx context.Context, status models.AppointmentStatus) ([]models.Appointment, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
	}
	return s.appointments.FindByStatus(ctx, status)
}

func (s *AppointmentService) ListByDateRange(ctx context.Context, start, end time.Time) ([]models.Appointment, error) {
	return s.appointments.FindByStartBetween(ctx, start, end)
}

func (s *AppointmentService) ListByDoctorAndDateRange(ctx context.Context, doctorID string, start, end time.Time) ([]models.Appointment, error) {
	if _, err := s.resolveUser(ctx, doctorID, models.RoleDoctor); err != nil {
		return nil, err
	}
	return s.appointments.FindByDoctorAndStartBetween(ctx, doctorID, start, end)
}

func (s *AppointmentService) ListFutureByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	if _, err := s.resolveUser(ctx, patientID, models.RolePatient); err != nil {
		return nil, err
	}
	return s.appointments.FindFutureByPatient(ctx, patientID, time.Now())
}

// IsDoctorAvailable reports whether no non-cancelled appointment overlaps
// the interval starting at the given time with the given duration.
func (s *AppointmentService) IsDoctorAvailable(ctx context.Context, doctorID string, start time.Time, durationMinutes int) (bool, error) {
	if _, err := s.resolveUser(ctx, doctorID, models.RoleDoctor); err != nil {
		return false, err
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	conflict, err := s.appointments.HasConflict(ctx, doctorID, start, end, "")
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// Update applies a partial update. Changing the start time goes through the
// full rebooking guard, like Reschedule.
func (s *AppointmentService) Update(ctx context.Context, id string, in *UpdateAppointmentInput) (*models.Appointment, error) {
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.ConsultationTypeID != nil {
		ctype, err := s.catalog.FindByID(ctx, *in.ConsultationTypeID)
		if err != nil {
			return nil, fmt.Errorf("resolving consultation type %s: %w", *in.ConsultationTypeID, err)
		}
		a.ConsultationTypeID = ctype.ID
		a.ConsultationType = *ctype
		a.EndDateTime = a.StartDateTime.Add(time.Duration(ctype.DefaultDurationMinutes) * time.Minute)
	}
	if in.CaregiverID != nil {
		if _, err := s.users.FindByID(ctx, *in.CaregiverID); err == nil {
			a.CaregiverID = in.CaregiverID
		} else if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}
	if in.CaregiverPresence != nil {
		a.CaregiverPresence = *in.CaregiverPresence
	}
	if in.DoctorNotes != nil {
		a.DoctorNotes = *in.DoctorNotes
	}
	if in.SimpleSummary != nil {
		a.SimpleSummary = *in.SimpleSummary
	}

	a.UpdatedAt = time.Now()

	if in.StartDateTime != nil && !in.StartDateTime.Equal(a.StartDateTime) {
		return s.rebookAt(ctx, a, *in.StartDateTime, a.Status)
	}

	if err := s.appointments.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AppointmentService) ConfirmByPatient(ctx context.Context, id string) (*models.Appointment, error) {
	return s.confirm(ctx, id, models.StatusConfirmedByPatient)
}

func (s *AppointmentService) ConfirmByCaregiver(ctx context.Context, id string) (*models.Appointment, error) {
	return s.confirm(ctx, id, models.StatusConfirmedByCaregiver)
}

// confirm records the confirming party's timestamp and overwrites the
// status with that party's confirmation. Both timestamps survive a second
// confirmation; the status only reflects the most recent confirming actor.
func (s *AppointmentService) confirm(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Transition(status); err != nil {
		return nil, err
	}

	now := time.Now()
	switch status {
	case models.StatusConfirmedByPatient:
		a.ConfirmationDatePatient = &now
	case models.StatusConfirmedByCaregiver:
		a.ConfirmationDateCaregiver = &now
	}
	a.UpdatedAt = now

	if err := s.appointments.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel frees the slot but keeps the record for audit. Cancelling an
// already-cancelled appointment is a no-op.
func (s *AppointmentService) Cancel(ctx context.Context, id string) (*models.Appointment, error) {
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == models.StatusCancelled {
		return a, nil
	}
	if err := a.Transition(models.StatusCancelled); err != nil {
		return nil, err
	}
	a.UpdatedAt = time.Now()
	if err := s.appointments.Save(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("appointment cancelled", zap.String("id", a.ID))
	return a, nil
}

// Reschedule moves the appointment to a new start, recomputing the end from
// the consultation type and re-running the booking checks with the
// appointment excluded from its own conflict check.
func (s *AppointmentService) Reschedule(ctx context.Context, id string, newStart time.Time) (*models.Appointment, error) {
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.CanTransitionTo(models.StatusRescheduled) {
		return nil, fmt.Errorf("%w: cannot reschedule a %s appointment", models.ErrValidation, a.Status)
	}
	return s.rebookAt(ctx, a, newStart, models.StatusRescheduled)
}

func (s *AppointmentService) rebookAt(ctx context.Context, a *models.Appointment, newStart time.Time, status models.AppointmentStatus) (*models.Appointment, error) {
	ctype, err := s.catalog.FindByID(ctx, a.ConsultationTypeID)
	if err != nil {
		return nil, fmt.Errorf("resolving consultation type %s: %w", a.ConsultationTypeID, err)
	}
	newEnd := newStart.Add(time.Duration(ctype.DefaultDurationMinutes) * time.Minute)

	startOfDay := models.TimeOfDay(newStart.Hour()*60 + newStart.Minute())
	bookable, err := s.availability.IsBookable(ctx, a.DoctorID, newStart, startOfDay)
	if err != nil {
		return nil, err
	}
	if !bookable {
		return nil, fmt.Errorf("%w: doctor %s at %s", models.ErrSlotUnavailable, a.DoctorID, newStart.Format(time.RFC3339))
	}

	conflict, err := s.appointments.HasConflict(ctx, a.DoctorID, newStart, newEnd, a.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, fmt.Errorf("%w: doctor %s between %s and %s",
			models.ErrDoubleBooking, a.DoctorID, newStart.Format(time.RFC3339), newEnd.Format(time.RFC3339))
	}

	a.StartDateTime = newStart
	a.EndDateTime = newEnd
	a.Status = status
	a.UpdatedAt = time.Now()

	if err := s.appointments.Rebook(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("appointment rescheduled",
		zap.String("id", a.ID),
		zap.Time("new_start", newStart))
	return a, nil
}

func (s *AppointmentService) UpdateDoctorNotes(ctx context.Context, id, notes string) (*models.Appointment, error) {
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.DoctorNotes = notes
	a.UpdatedAt = time.Now()
	if err := s.appointments.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AppointmentService) UpdateSimpleSummary(ctx context.Context, id, summary string) (*models.Appointment, error) {
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.SimpleSummary = summary
	a.UpdatedAt = time.Now()
	if err := s.appointments.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes the record entirely. Admin purge path; cancel is the
// normal way to release a slot.
func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.appointments.Delete(ctx, a)
}

func (s *AppointmentService) DeleteByPatient(ctx context.Context, patientID string) error {
	if _, err := s.resolveUser(ctx, patientID, models.RolePatient); err != nil {
		return err
	}
	return s.appointments.DeleteByPatient(ctx, patientID)
}

func (s *AppointmentService) CountByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) (int64, error) {
	if _, err := s.resolveUser(ctx, doctorID, models.RoleDoctor); err != nil {
		return 0, err
	}
	return s.appointments.CountByDoctorAndDate(ctx, doctorID, date)
}
