package services

import (
	"context"
	"time"

	"github.com/evercare/scheduling/models"
	"github.com/evercare/scheduling/repositories"
	"go.uber.org/zap"
)

const (
	reminderLookBehind = time.Hour
	reminderLookAhead  = 24 * time.Hour
)

// Notifier dispatches a reminder for an appointment. Delivery, retries and
// receipts are the notifier's concern, not the scanner's.
type Notifier interface {
	Send(ctx context.Context, a *models.Appointment) error
}

// LogNotifier is the default no-op hook: it only records that a reminder
// was due.
type LogNotifier struct {
	Log *zap.Logger
}

func (n *LogNotifier) Send(ctx context.Context, a *models.Appointment) error {
	n.Log.Info("reminder due",
		zap.String("appointment_id", a.ID),
		zap.String("patient_id", a.PatientID),
		zap.Time("start", a.StartDateTime))
	return nil
}

// ReminderService periodically selects appointments that start soon and
// hands them to the notifier. It computes the candidate set only.
type ReminderService struct {
	appointments repositories.AppointmentRepository
	notifier     Notifier
	log          *zap.Logger
}

func NewReminderService(appointments repositories.AppointmentRepository, notifier Notifier, log *zap.Logger) *ReminderService {
	return &ReminderService{appointments: appointments, notifier: notifier, log: log}
}

// AppointmentsNeedingReminder selects appointments starting between one hour
// ago and 24 hours ahead whose status is SCHEDULED or CONFIRMED_BY_PATIENT.
func (s *ReminderService) AppointmentsNeedingReminder(ctx context.Context, now time.Time) ([]models.Appointment, error) {
	candidates, err := s.appointments.FindByStartBetween(ctx, now.Add(-reminderLookBehind), now.Add(reminderLookAhead))
	if err != nil {
		return nil, err
	}

	due := candidates[:0]
	for _, a := range candidates {
		if a.Status == models.StatusScheduled || a.Status == models.StatusConfirmedByPatient {
			due = append(due, a)
		}
	}
	return due, nil
}

// SendReminders runs one scan. Notifier failures are logged and skipped so
// one bad address never aborts the rest of the batch.
func (s *ReminderService) SendReminders(ctx context.Context) (int, error) {
	due, err := s.AppointmentsNeedingReminder(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		if err := s.notifier.Send(ctx, &due[i]); err != nil {
			s.log.Error("failed to send reminder",
				zap.String("appointment_id", due[i].ID),
				zap.Error(err))
			continue
		}
		sent++
	}
	if len(due) > 0 {
		s.log.Info("reminder scan finished", zap.Int("due", len(due)), zap.Int("sent", sent))
	}
	return sent, nil
}
