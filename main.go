package main

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/evercare/scheduling/controllers"
	"github.com/evercare/scheduling/cron"
	"github.com/evercare/scheduling/db"
	"github.com/evercare/scheduling/logger"
	"github.com/evercare/scheduling/redis"
	"github.com/evercare/scheduling/repositories"
	"github.com/evercare/scheduling/routes"
	"github.com/evercare/scheduling/services"
)

func main() {
	log, err := logger.Init()
	if err != nil {
		fmt.Println("Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	app := fiber.New()
	db.Migrate()
	redis.InitRedis()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Evercare scheduling service")
	})

	availabilityRepo := repositories.NewAvailabilityRepository(db.DB)
	appointmentRepo := repositories.NewAppointmentRepository(db.DB)
	catalogRepo := repositories.NewConsultationTypeRepository(db.DB)
	userRepo := repositories.NewUserRepository(db.DB)

	availabilitySvc := services.NewAvailabilityService(availabilityRepo, appointmentRepo, userRepo, log)
	appointmentSvc := services.NewAppointmentService(appointmentRepo, availabilitySvc, catalogRepo, userRepo, log)
	catalogSvc := services.NewConsultationTypeService(catalogRepo)
	reminderSvc := services.NewReminderService(appointmentRepo, &cron.EmailNotifier{Log: log}, log)

	routes.SetupAvailabilityRoutes(app, controllers.NewAvailabilityController(availabilitySvc))
	routes.SetupAppointmentRoutes(app, controllers.NewAppointmentController(appointmentSvc, reminderSvc))
	routes.SetupConsultationTypeRoutes(app, controllers.NewConsultationTypeController(catalogSvc))

	cron.StartCronJobs(reminderSvc)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	app.Listen(":" + port)
}
