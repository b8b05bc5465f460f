package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evercare/scheduling/models"
)

func seedAppointment(t *testing.T, repo *fakeAppointmentRepo, id string, start time.Time, status models.AppointmentStatus) {
	t.Helper()
	err := repo.Save(context.Background(), &models.Appointment{
		ID:            id,
		PatientID:     "patient",
		DoctorID:      "doctor",
		StartDateTime: start,
		EndDateTime:   start.Add(20 * time.Minute),
		Status:        status,
	})
	require.NoError(t, err)
}

func TestAppointmentsNeedingReminder(t *testing.T) {
	repo := newFakeAppointmentRepo(newFakeAvailabilityRepo())
	svc := NewReminderService(repo, &LogNotifier{Log: zap.NewNop()}, zap.NewNop())
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

	seedAppointment(t, repo, "soon-scheduled", now.Add(2*time.Hour), models.StatusScheduled)
	seedAppointment(t, repo, "soon-confirmed", now.Add(20*time.Hour), models.StatusConfirmedByPatient)
	seedAppointment(t, repo, "just-started", now.Add(-30*time.Minute), models.StatusScheduled)
	seedAppointment(t, repo, "too-old", now.Add(-2*time.Hour), models.StatusScheduled)
	seedAppointment(t, repo, "too-far", now.Add(30*time.Hour), models.StatusScheduled)
	seedAppointment(t, repo, "cancelled", now.Add(2*time.Hour), models.StatusCancelled)
	seedAppointment(t, repo, "caregiver-confirmed", now.Add(2*time.Hour), models.StatusConfirmedByCaregiver)

	due, err := svc.AppointmentsNeedingReminder(context.Background(), now)
	require.NoError(t, err)

	var ids []string
	for _, a := range due {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []string{"soon-scheduled", "soon-confirmed", "just-started"}, ids)
}

func TestSendRemindersContinuesOnNotifierFailure(t *testing.T) {
	repo := newFakeAppointmentRepo(newFakeAvailabilityRepo())
	notifier := newRecordingNotifier()
	svc := NewReminderService(repo, notifier, zap.NewNop())

	now := time.Now()
	seedAppointment(t, repo, "first", now.Add(2*time.Hour), models.StatusScheduled)
	seedAppointment(t, repo, "broken", now.Add(3*time.Hour), models.StatusScheduled)
	seedAppointment(t, repo, "last", now.Add(4*time.Hour), models.StatusScheduled)
	notifier.failOn["broken"] = errors.New("smtp unreachable")

	sent, err := svc.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.ElementsMatch(t, []string{"first", "last"}, notifier.sent)
}
