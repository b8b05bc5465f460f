package cron

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/evercare/scheduling/models"
	"github.com/evercare/scheduling/services"
	"github.com/evercare/scheduling/utils"
)

// StartCronJobs initializes and starts the cron scheduler for appointment reminders
func StartCronJobs(reminders *services.ReminderService) {
	c := cron.New()
	// Run every minute to pick up appointments entering the reminder window
	_, err := c.AddFunc("* * * * *", func() {
		if _, err := reminders.SendReminders(context.Background()); err != nil {
			log.Printf("reminder scan failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}
	c.Start()
	log.Println("Cron job scheduler started for appointment reminders")
}

// EmailNotifier delivers reminders over SMTP to the patient on record.
type EmailNotifier struct {
	Log *zap.Logger
}

func (n *EmailNotifier) Send(ctx context.Context, appointment *models.Appointment) error {
	if appointment.Patient.Email == "" {
		n.Log.Warn("appointment has no patient email, skipping reminder",
			zap.String("appointment_id", appointment.ID))
		return nil
	}

	subject := "Reminder: Upcoming Consultation"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your upcoming consultation.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Doctor:</strong> %s</li>
			<li><strong>Start Time:</strong> %s</li>
			<li><strong>End Time:</strong> %s</li>
			<li><strong>Video Link:</strong> %s</li>
		</ul>
		<p>If you need to reschedule or cancel, please do so as soon as possible.</p>
		<p>Best regards,</p>
		<p>The EverCare Team</p>
	`, appointment.Patient.Name, appointment.Doctor.Name,
		appointment.StartDateTime.Format("2006-01-02 15:04:05"),
		appointment.EndDateTime.Format("2006-01-02 15:04:05"),
		appointment.VideoLink)

	return utils.SendEmail(appointment.Patient.Email, subject, body)
}
