package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/evercare/scheduling/controllers"
)

// SetupAvailabilityRoutes configures all availability related routes
func SetupAvailabilityRoutes(app *fiber.App, ctl *controllers.AvailabilityController) {
	availability := app.Group("/availabilities")

	availability.Post("/", ctl.CreateAvailability)
	availability.Post("/batch", ctl.CreateAvailabilityBatch)
	availability.Post("/weekly", ctl.CreateWeeklyAvailability)

	availability.Get("/", ctl.GetAllAvailabilities)
	availability.Get("/recurrence/:recurrence", ctl.GetAvailabilitiesByRecurrence)
	availability.Get("/doctor/:doctorID", ctl.GetAvailabilitiesByDoctor)
	availability.Get("/doctor/:doctorID/day/:day", ctl.GetAvailabilitiesByDoctorAndDay)
	availability.Get("/doctor/:doctorID/date/:date", ctl.GetValidAvailabilitiesForDate)
	availability.Get("/doctor/:doctorID/blocked", ctl.GetBlockedAvailabilities)
	availability.Get("/doctor/:doctorID/period", ctl.GetAvailabilitiesByPeriod)
	availability.Get("/doctor/:doctorID/check", ctl.CheckSlot)
	availability.Get("/doctor/:doctorID/slots", ctl.GetAvailableSlots)
	availability.Post("/doctor/:doctorID/conflicts", ctl.FindConflicts)

	availability.Patch("/:id/block", ctl.BlockAvailability)
	availability.Patch("/:id/unblock", ctl.UnblockAvailability)
	availability.Patch("/:id/extend", ctl.ExtendValidity)
	availability.Patch("/:id", ctl.UpdateAvailability)

	availability.Delete("/expired", ctl.DeleteExpiredAvailabilities)
	availability.Delete("/doctor/:doctorID", ctl.DeleteAvailabilitiesByDoctor)
	availability.Delete("/:id", ctl.DeleteAvailability)

	availability.Get("/:id", ctl.GetAvailability)
}
