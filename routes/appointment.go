package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/evercare/scheduling/controllers"
)

// SetupAppointmentRoutes configures all appointment related routes
func SetupAppointmentRoutes(app *fiber.App, ctl *controllers.AppointmentController) {
	appointment := app.Group("/appointments")

	appointment.Post("/", ctl.CreateAppointment)
	appointment.Post("/reminders/run", ctl.TriggerReminders)

	appointment.Get("/", ctl.GetAllAppointments)
	appointment.Get("/range", ctl.GetAppointmentsByDateRange)
	appointment.Get("/status/:status", ctl.GetAppointmentsByStatus)
	appointment.Get("/patient/:patientID/upcoming", ctl.GetFutureAppointmentsByPatient)
	appointment.Get("/patient/:patientID", ctl.GetAppointmentsByPatient)
	appointment.Get("/doctor/:doctorID/range", ctl.GetAppointmentsByDoctorAndDateRange)
	appointment.Get("/doctor/:doctorID/available", ctl.CheckDoctorAvailability)
	appointment.Get("/doctor/:doctorID/count", ctl.CountByDoctorAndDate)
	appointment.Get("/doctor/:doctorID", ctl.GetAppointmentsByDoctor)
	appointment.Get("/caregiver/:caregiverID", ctl.GetAppointmentsByCaregiver)

	appointment.Patch("/:id/confirm/patient", ctl.ConfirmByPatient)
	appointment.Patch("/:id/confirm/caregiver", ctl.ConfirmByCaregiver)
	appointment.Patch("/:id/cancel", ctl.CancelAppointment)
	appointment.Patch("/:id/reschedule", ctl.RescheduleAppointment)
	appointment.Patch("/:id/notes", ctl.UpdateDoctorNotes)
	appointment.Patch("/:id/summary", ctl.UpdateSimpleSummary)
	appointment.Patch("/:id", ctl.UpdateAppointment)

	appointment.Delete("/patient/:patientID", ctl.DeleteAppointmentsByPatient)
	appointment.Delete("/:id", ctl.DeleteAppointment)

	appointment.Get("/:id", ctl.GetAppointment)
}
