package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/evercare/scheduling/controllers"
)

// SetupConsultationTypeRoutes configures the consultation type catalog routes
func SetupConsultationTypeRoutes(app *fiber.App, ctl *controllers.ConsultationTypeController) {
	types := app.Group("/consultation-types")

	types.Post("/", ctl.CreateConsultationType)
	types.Get("/", ctl.GetAllConsultationTypes)
	types.Get("/:id", ctl.GetConsultationType)
	types.Patch("/:id", ctl.UpdateConsultationType)
	types.Delete("/:id", ctl.DeleteConsultationType)
}
