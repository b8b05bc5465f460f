package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/evercare/scheduling/models"
	"github.com/evercare/scheduling/services"
	"github.com/evercare/scheduling/utils"
)

type ConsultationTypeController struct {
	svc *services.ConsultationTypeService
}

func NewConsultationTypeController(svc *services.ConsultationTypeService) *ConsultationTypeController {
	return &ConsultationTypeController{svc: svc}
}

func (ctl *ConsultationTypeController) CreateConsultationType(c *fiber.Ctx) error {
	var ctype models.ConsultationType
	if err := c.BodyParser(&ctype); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	created, err := ctl.svc.Create(c.Context(), &ctype)
	if err != nil {
		return utils.Fail(c, "Failed to create consultation type", err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (ctl *ConsultationTypeController) GetAllConsultationTypes(c *fiber.Ctx) error {
	types, err := ctl.svc.List(c.Context(), c.QueryBool("active"))
	if err != nil {
		return utils.Fail(c, "Failed to fetch consultation types", err)
	}
	return c.JSON(types)
}

func (ctl *ConsultationTypeController) GetConsultationType(c *fiber.Ctx) error {
	ctype, err := ctl.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, "Consultation type not found", err)
	}
	return c.JSON(ctype)
}

func (ctl *ConsultationTypeController) UpdateConsultationType(c *fiber.Ctx) error {
	var patch models.ConsultationType
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	updated, err := ctl.svc.Update(c.Context(), c.Params("id"), &patch)
	if err != nil {
		return utils.Fail(c, "Failed to update consultation type", err)
	}
	return c.JSON(updated)
}

func (ctl *ConsultationTypeController) DeleteConsultationType(c *fiber.Ctx) error {
	if err := ctl.svc.Delete(c.Context(), c.Params("id")); err != nil {
		return utils.Fail(c, "Failed to delete consultation type", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
