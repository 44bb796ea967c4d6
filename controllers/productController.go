package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"ledgerbook-backend/middlewares"
	"ledgerbook-backend/models"
	"ledgerbook-backend/utils"
)

type productCreateInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Sku         string          `json:"sku" validate:"max=50"`
	Category    string          `json:"category" validate:"max=100"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

type productUpdateInput struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Sku         *string          `json:"sku" validate:"omitempty,max=50"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
}

func (h *Handlers) CreateProduct(c *fiber.Ctx) error {
	var in productCreateInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)
	if in.Price.Sign() < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "price must not be negative")
	}

	product := models.Product{
		Name:        in.Name,
		Sku:         in.Sku,
		Category:    in.Category,
		Price:       in.Price,
		Description: in.Description,
	}
	if err := h.db.Create(&product).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not create product",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *Handlers) GetProducts(c *fiber.Ctx) error {
	var products []models.Product
	if err := h.db.Order("name").Find(&products).Error; err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *Handlers) GetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	var product models.Product
	if h.db.First(&product, id).RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	return c.JSON(product)
}

func (h *Handlers) UpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	var product models.Product
	if h.db.First(&product, id).RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}

	var in productUpdateInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)
	if in.Price != nil && in.Price.Sign() < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "price must not be negative")
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) == 0 {
		return c.JSON(product)
	}
	if err := h.db.Model(&product).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not update product",
			"error":   err.Error(),
		})
	}
	return c.JSON(product)
}

func (h *Handlers) DeleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}
	res := h.db.Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}
