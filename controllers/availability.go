package controllers

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/evercare/scheduling/models"
	"github.com/evercare/scheduling/redis"
	"github.com/evercare/scheduling/services"
	"github.com/evercare/scheduling/utils"
)

type AvailabilityController struct {
	svc *services.AvailabilityService
}

func NewAvailabilityController(svc *services.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{svc: svc}
}

type createWeeklyRequest struct {
	DoctorID  string           `json:"doctor_id"`
	DayOfWeek models.DayOfWeek `json:"day_of_week"`
	StartTime models.TimeOfDay `json:"start_time"`
	EndTime   models.TimeOfDay `json:"end_time"`
	ValidFrom *time.Time       `json:"valid_from"`
	ValidTo   *time.Time       `json:"valid_to"`
}

// CreateAvailability creates a single availability window
func (ctl *AvailabilityController) CreateAvailability(c *fiber.Ctx) error {
	var window models.Availability
	if err := c.BodyParser(&window); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	created, err := ctl.svc.CreateWindow(c.Context(), &window)
	if err != nil {
		return utils.Fail(c, "Failed to create availability", err)
	}
	redis.InvalidateDoctorSlots(c.Context(), created.DoctorID)
	return c.Status(fiber.StatusCreated).JSON(created)
}

// CreateAvailabilityBatch creates several windows in one call
func (ctl *AvailabilityController) CreateAvailabilityBatch(c *fiber.Ctx) error {
	var windows []models.Availability
	if err := c.BodyParser(&windows); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	created, err := ctl.svc.CreateBatch(c.Context(), windows)
	if err != nil {
		return utils.Fail(c, "Failed to create availabilities", err)
	}
	for i := range created {
		redis.InvalidateDoctorSlots(c.Context(), created[i].DoctorID)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// CreateWeeklyAvailability creates a weekly recurring window with defaults
func (ctl *AvailabilityController) CreateWeeklyAvailability(c *fiber.Ctx) error {
	var req createWeeklyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	var validFrom, validTo time.Time
	if req.ValidFrom != nil {
		validFrom = *req.ValidFrom
	}
	if req.ValidTo != nil {
		validTo = *req.ValidTo
	}
	created, err := ctl.svc.CreateWeekly(c.Context(), req.DoctorID, req.DayOfWeek, req.StartTime, req.EndTime, validFrom, validTo)
	if err != nil {
		return utils.Fail(c, "Failed to create weekly availability", err)
	}
	redis.InvalidateDoctorSlots(c.Context(), created.DoctorID)
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (ctl *AvailabilityController) GetAllAvailabilities(c *fiber.Ctx) error {
	windows, err := ctl.svc.List(c.Context())
	if err != nil {
		return utils.Fail(c, "Failed to fetch availabilities", err)
	}
	return c.JSON(windows)
}

func (ctl *AvailabilityController) GetAvailability(c *fiber.Ctx) error {
	window, err := ctl.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, "Availability not found", err)
	}
	return c.JSON(window)
}

func (ctl *AvailabilityController) GetAvailabilitiesByDoctor(c *fiber.Ctx) error {
	windows, err := ctl.svc.ListByDoctor(c.Context(), c.Params("doctorID"))
	if err != nil {
		return utils.Fail(c, "Failed to fetch doctor availabilities", err)
	}
	return c.JSON(windows)
}

func (ctl *AvailabilityController) GetAvailabilitiesByDoctorAndDay(c *fiber.Ctx) error {
	day, err := strconv.Atoi(c.Params("day"))
	if err != nil || day < 0 || day > 6 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid day of week",
			Error:   "day must be 0 (Sunday) through 6 (Saturday)",
		})
	}
	windows, err := ctl.svc.ListByDoctorAndDay(c.Context(), c.Params("doctorID"), models.DayOfWeek(day))
	if err != nil {
		return utils.Fail(c, "Failed to fetch doctor availabilities", err)
	}
	return c.JSON(windows)
}

func (ctl *AvailabilityController) GetValidAvailabilitiesForDate(c *fiber.Ctx) error {
	date, err := time.Parse(time.DateOnly, c.Params("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date",
			Error:   err.Error(),
		})
	}
	windows, err := ctl.svc.ListValidForDate(c.Context(), c.Params("doctorID"), date)
	if err != nil {
		return utils.Fail(c, "Failed to fetch valid availabilities", err)
	}
	return c.JSON(windows)
}

func (ctl *AvailabilityController) GetBlockedAvailabilities(c *fiber.Ctx) error {
	windows, err := ctl.svc.ListBlocked(c.Context(), c.Params("doctorID"))
	if err != nil {
		return utils.Fail(c, "Failed to fetch blocked availabilities", err)
	}
	return c.JSON(windows)
}

func (ctl *AvailabilityController) GetAvailabilitiesByRecurrence(c *fiber.Ctx) error {
	windows, err := ctl.svc.ListByRecurrence(c.Context(), models.Recurrence(c.Params("recurrence")))
	if err != nil {
		return utils.Fail(c, "Failed to fetch availabilities", err)
	}
	return c.JSON(windows)
}

func (ctl *AvailabilityController) GetAvailabilitiesByPeriod(c *fiber.Ctx) error {
	from, err := time.Parse(time.DateOnly, c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid from date",
			Error:   err.Error(),
		})
	}
	to, err := time.Parse(time.DateOnly, c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid to date",
			Error:   err.Error(),
		})
	}
	windows, err := ctl.svc.ListByDoctorAndPeriod(c.Context(), c.Params("doctorID"), from, to)
	if err != nil {
		return utils.Fail(c, "Failed to fetch availabilities", err)
	}
	return c.JSON(windows)
}

func (ctl *AvailabilityController) UpdateAvailability(c *fiber.Ctx) error {
	var patch services.UpdateAvailabilityInput
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	updated, err := ctl.svc.Update(c.Context(), c.Params("id"), &patch)
	if err != nil {
		return utils.Fail(c, "Failed to update availability", err)
	}
	redis.InvalidateDoctorSlots(c.Context(), updated.DoctorID)
	return c.JSON(updated)
}

// BlockAvailability marks a window as an exception (vacation, meeting)
func (ctl *AvailabilityController) BlockAvailability(c *fiber.Ctx) error {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	blocked, err := ctl.svc.Block(c.Context(), c.Params("id"), body.Reason)
	if err != nil {
		return utils.Fail(c, "Failed to block availability", err)
	}
	redis.InvalidateDoctorSlots(c.Context(), blocked.DoctorID)
	return c.JSON(blocked)
}

func (ctl *AvailabilityController) UnblockAvailability(c *fiber.Ctx) error {
	unblocked, err := ctl.svc.Unblock(c.Context(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, "Failed to unblock availability", err)
	}
	redis.InvalidateDoctorSlots(c.Context(), unblocked.DoctorID)
	return c.JSON(unblocked)
}

func (ctl *AvailabilityController) ExtendValidity(c *fiber.Ctx) error {
	var body struct {
		ValidTo time.Time `json:"valid_to"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	extended, err := ctl.svc.ExtendValidity(c.Context(), c.Params("id"), body.ValidTo)
	if err != nil {
		return utils.Fail(c, "Failed to extend validity", err)
	}
	redis.InvalidateDoctorSlots(c.Context(), extended.DoctorID)
	return c.JSON(extended)
}

func (ctl *AvailabilityController) DeleteAvailability(c *fiber.Ctx) error {
	window, err := ctl.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, "Availability not found", err)
	}
	if err := ctl.svc.Delete(c.Context(), window.ID); err != nil {
		return utils.Fail(c, "Failed to delete availability", err)
	}
	redis.InvalidateDoctorSlots(c.Context(), window.DoctorID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (ctl *AvailabilityController) DeleteAvailabilitiesByDoctor(c *fiber.Ctx) error {
	doctorID := c.Params("doctorID")
	if err := ctl.svc.DeleteByDoctor(c.Context(), doctorID); err != nil {
		return utils.Fail(c, "Failed to delete doctor availabilities", err)
	}
	redis.InvalidateDoctorSlots(c.Context(), doctorID)
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteExpiredAvailabilities sweeps windows whose validity already ended
func (ctl *AvailabilityController) DeleteExpiredAvailabilities(c *fiber.Ctx) error {
	before := time.Now()
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "Invalid before date",
				Error:   err.Error(),
			})
		}
		before = parsed
	}
	count, err := ctl.svc.DeleteExpired(c.Context(), before)
	if err != nil {
		return utils.Fail(c, "Failed to delete expired availabilities", err)
	}
	return c.JSON(fiber.Map{"deleted": count})
}

// FindConflicts reports stored windows colliding with the candidate
func (ctl *AvailabilityController) FindConflicts(c *fiber.Ctx) error {
	var candidate models.Availability
	if err := c.BodyParser(&candidate); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	conflicts, err := ctl.svc.FindConflicts(c.Context(), c.Params("doctorID"), &candidate)
	if err != nil {
		return utils.Fail(c, "Failed to find conflicts", err)
	}
	return c.JSON(conflicts)
}

// CheckSlot answers whether an unblocked window covers the date and time
func (ctl *AvailabilityController) CheckSlot(c *fiber.Ctx) error {
	date, err := time.Parse(time.DateOnly, c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date",
			Error:   err.Error(),
		})
	}
	t, err := models.ParseTimeOfDay(c.Query("time"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid time",
			Error:   err.Error(),
		})
	}
	bookable, err := ctl.svc.IsBookable(c.Context(), c.Params("doctorID"), date, t)
	if err != nil {
		return utils.Fail(c, "Failed to check slot", err)
	}
	return c.JSON(fiber.Map{"bookable": bookable})
}

// GetAvailableSlots enumerates bookable start times, served from the redis
// cache when fresh
func (ctl *AvailabilityController) GetAvailableSlots(c *fiber.Ctx) error {
	doctorID := c.Params("doctorID")
	rawDate := c.Query("date")
	date, err := time.Parse(time.DateOnly, rawDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date",
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

	if cached := redis.GetSlots(c.Context(), doctorID, rawDate, duration); cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	seq, err := ctl.svc.EnumerateSlots(c.Context(), doctorID, date, duration)
	if err != nil {
		return utils.Fail(c, "Failed to enumerate slots", err)
	}
	slots := make([]models.TimeOfDay, 0)
	for slot := range seq {
		slots = append(slots, slot)
	}

	payload, err := json.Marshal(fiber.Map{"doctor_id": doctorID, "date": rawDate, "slots": slots})
	if err != nil {
		return utils.Fail(c, "Failed to encode slots", err)
	}
	redis.SetSlots(c.Context(), doctorID, rawDate, duration, string(payload))
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}
