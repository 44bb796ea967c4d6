package controllers

import (
	"github.com/gofiber/fiber/v2"

	"ledgerbook-backend/middlewares"
	"ledgerbook-backend/models"
)

type costCenterInput struct {
	Code        string `json:"code" validate:"required,max=50"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

func (h *Handlers) CreateCostCenter(c *fiber.Ctx) error {
	var in costCenterInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	cc := models.CostCenter{
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
	}
	if err := h.db.Create(&cc).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not create cost center",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(cc)
}

func (h *Handlers) GetCostCenters(c *fiber.Ctx) error {
	var centers []models.CostCenter
	if err := h.db.Order("code").Find(&centers).Error; err != nil {
		return err
	}
	return c.JSON(centers)
}

func (h *Handlers) GetCostCenter(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid cost center id")
	}
	var cc models.CostCenter
	if h.db.First(&cc, id).RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "cost center not found")
	}
	return c.JSON(cc)
}

func (h *Handlers) UpdateCostCenter(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid cost center id")
	}
	var cc models.CostCenter
	if h.db.First(&cc, id).RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "cost center not found")
	}

	var in costCenterInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	cc.Code = in.Code
	cc.Name = in.Name
	cc.Description = in.Description
	if err := h.db.Save(&cc).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not update cost center",
			"error":   err.Error(),
		})
	}
	return c.JSON(cc)
}

// DeleteCostCenter refuses to delete a center still referenced by a
// budget or transaction.
func (h *Handlers) DeleteCostCenter(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid cost center id")
	}

	var cc models.CostCenter
	if h.db.First(&cc, id).RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "cost center not found")
	}

	var budgetRefs, txnRefs int64
	h.db.Model(&models.Budget{}).Where("cost_center_id = ?", cc.Id).Count(&budgetRefs)
	h.db.Model(&models.Transaction{}).Where("cost_center_id = ?", cc.Id).Count(&txnRefs)
	if budgetRefs > 0 || txnRefs > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":      "cost center is referenced and cannot be deleted",
			"budgets":      budgetRefs,
			"transactions": txnRefs,
		})
	}

	if err := h.db.Delete(&cc).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Cost center deleted successfully"})
}
