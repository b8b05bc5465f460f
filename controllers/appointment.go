package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/evercare/scheduling/models"
	"github.com/evercare/scheduling/redis"
	"github.com/evercare/scheduling/services"
	"github.com/evercare/scheduling/utils"
)

type AppointmentController struct {
	svc       *services.AppointmentService
	reminders *services.ReminderService
}

func NewAppointmentController(svc *services.AppointmentService, reminders *services.ReminderService) *AppointmentController {
	return &AppointmentController{svc: svc, reminders: reminders}
}

// CreateAppointment books a new appointment on an open slot
func (ctl *AppointmentController) CreateAppointment(c *fiber.Ctx) error {
	var in services.CreateAppointmentInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	created, err := ctl.svc.Create(c.Context(), &in)
	if err != nil {
		return utils.Fail(c, "Failed to create appointment", err)
	}
	redis.InvalidateDoctorSlots(c.Context(), created.DoctorID)
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (ctl *AppointmentController) GetAllAppointments(c *fiber.Ctx) error {
	appointments, err := ctl.svc.List(c.Context())
	if err != nil {
		return utils.Fail(c, "Failed to fetch appointments", err)
	}
	return c.JSON(appointments)
}

func (ctl *AppointmentController) GetAppointment(c *fiber.Ctx) error {
	appointment, err := ctl.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, "Appointment not found", err)
	}
	return c.JSON(appointment)
}

func (ctl *AppointmentController) GetAppointmentsByPatient(c *fiber.Ctx) error {
	appointments, err := ctl.svc.ListByPatient(c.Context(), c.Params("patientID"))
	if err != nil {
		return utils.Fail(c, "Failed to fetch patient appointments", err)
	}
	return c.JSON(appointments)
}

func (ctl *AppointmentController) GetAppointmentsByDoctor(c *fiber.Ctx) error {
	appointments, err := ctl.svc.ListByDoctor(c.Context(), c.Params("doctorID"))
	if err != nil {
		return utils.Fail(c, "Failed to fetch doctor appointments", err)
	}
	return c.JSON(appointments)
}

func (ctl *AppointmentController) GetAppointmentsByCaregiver(c *fiber.Ctx) error {
	appointments, err := ctl.svc.ListByCaregiver(c.Context(), c.Params("caregiverID"))
	if err != nil {
		return utils.Fail(c, "Failed to fetch caregiver appointments", err)
	}
	return c.JSON(appointments)
}

func (ctl *AppointmentController) GetAppointmentsByStatus(c *fiber.Ctx) error {
	appointments, err := ctl.svc.ListByStatus(c.Context(), models.AppointmentStatus(c.Params("status")))
	if err != nil {
		return utils.Fail(c, "Failed to fetch appointments by status", err)
	}
	return c.JSON(appointments)
}

func parseRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (ctl *AppointmentController) GetAppointmentsByDateRange(c *fiber.Ctx) error {
	start, end, err := parseRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date range",
			Error:   err.Error(),
		})
	}
	appointments, err := ctl.svc.ListByDateRange(c.Context(), start, end)
	if err != nil {
		return utils.Fail(c, "Failed to fetch appointments", err)
	}
	return c.JSON(appointments)
}

func (ctl *AppointmentController) GetAppointmentsByDoctorAndDateRange(c *fiber.Ctx) error {
	start, end, err := parseRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date range",
			Error:   err.Error(),
		})
	}
	appointments, err := ctl.svc.ListByDoctorAndDateRange(c.Context(), c.Params("doctorID"), start, end)
	if err != nil {
		return utils.Fail(c, "Failed to fetch appointments", err)
	}
	return c.JSON(appointments)
}

func (ctl *AppointmentController) GetFutureAppointmentsByPatient(c *fiber.Ctx) error {
	appointments, err := ctl.svc.ListFutureByPatient(c.Context(), c.Params("patientID"))
	if err != nil {
		return utils.Fail(c, "Failed to fetch upcoming appointments", err)
	}
	return c.JSON(appointments)
}

// CheckDoctorAvailability answers whether the doctor has no conflicting
// appointment for the interval
func (ctl *AppointmentController) CheckDoctorAvailability(c *fiber.Ctx) error {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid start time",
			Error:   err.Error(),
		})
	}
	duration, err := strconv.Atoi(c.Query("duration", "15"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid duration",
			Error:   err.Error(),
		})
	}
	available, err := ctl.svc.IsDoctorAvailable(c.Context(), c.Params("doctorID"), start, duration)
	if err != nil {
		return utils.Fail(c, "Failed to check doctor availability", err)
	}
	return c.JSON(fiber.Map{"available": available})
}

func (ctl *AppointmentController) UpdateAppointment(c *fiber.Ctx) error {
	var in services.UpdateAppointmentInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	updated, err := ctl.svc.Update(c.Context(), c.Params("id"), &in)
	if err != nil {
		return utils.Fail(c, "Failed to update appointment", err)
	}
	redis.InvalidateDoctorSlots(c.Context(), updated.DoctorID)
	return c.JSON(updated)
}

func (ctl *AppointmentController) ConfirmByPatient(c *fiber.Ctx) error {
	confirmed, err := ctl.svc.ConfirmByPatient(c.Context(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, "Failed to confirm appointment", err)
	}
	return c.JSON(confirmed)
}

func (ctl *AppointmentController) ConfirmByCaregiver(c *fiber.Ctx) error {
	confirmed, err := ctl.svc.ConfirmByCaregiver(c.Context(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, "Failed to confirm appointment", err)
	}
	return c.JSON(confirmed)
}

func (ctl *AppointmentController) CancelAppointment(c *fiber.Ctx) error {
	cancelled, err := ctl.svc.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, "Failed to cancel appointment", err)
	}
	redis.InvalidateDoctorSlots(c.Context(), cancelled.DoctorID)
	return c.JSON(cancelled)
}

func (ctl *AppointmentController) RescheduleAppointment(c *fiber.Ctx) error {
	var body struct {
		StartDateTime time.Time `json:"start_date_time"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	rescheduled, err := ctl.svc.Reschedule(c.Context(), c.Params("id"), body.StartDateTime)
	if err != nil {
		return utils.Fail(c, "Failed to reschedule appointment", err)
	}
	redis.InvalidateDoctorSlots(c.Context(), rescheduled.DoctorID)
	return c.JSON(rescheduled)
}

func (ctl *AppointmentController) UpdateDoctorNotes(c *fiber.Ctx) error {
	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	updated, err := ctl.svc.UpdateDoctorNotes(c.Context(), c.Params("id"), body.Notes)
	if err != nil {
		return utils.Fail(c, "Failed to update doctor notes", err)
	}
	return c.JSON(updated)
}

func (ctl *AppointmentController) UpdateSimpleSummary(c *fiber.Ctx) error {
	var body struct {
		Summary string `json:"summary"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	updated, err := ctl.svc.UpdateSimpleSummary(c.Context(), c.Params("id"), body.Summary)
	if err != nil {
		return utils.Fail(c, "Failed to update summary", err)
	}
	return c.JSON(updated)
}

func (ctl *AppointmentController) DeleteAppointment(c *fiber.Ctx) error {
	appointment, err := ctl.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, "Appointment not found", err)
	}
	if err := ctl.svc.Delete(c.Context(), appointment.ID); err != nil {
		return utils.Fail(c, "Failed to delete appointment", err)
	}
	redis.InvalidateDoctorSlots(c.Context(), appointment.DoctorID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (ctl *AppointmentController) DeleteAppointmentsByPatient(c *fiber.Ctx) error {
	if err := ctl.svc.DeleteByPatient(c.Context(), c.Params("patientID")); err != nil {
		return utils.Fail(c, "Failed to delete patient appointments", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (ctl *AppointmentController) CountByDoctorAndDate(c *fiber.Ctx) error {
	date, err := time.Parse(time.DateOnly, c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date",
			Error:   err.Error(),
		})
	}
	count, err := ctl.svc.CountByDoctorAndDate(c.Context(), c.Params("doctorID"), date)
	if err != nil {
		return utils.Fail(c, "Failed to count appointments", err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// TriggerReminders runs one reminder scan on demand
func (ctl *AppointmentController) TriggerReminders(c *fiber.Ctx) error {
	sent, err := ctl.reminders.SendReminders(c.Context())
	if err != nil {
		return utils.Fail(c, "Failed to send reminders", err)
	}
	return c.JSON(fiber.Map{"sent": sent})
}
