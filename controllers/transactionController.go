package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"ledgerbook-backend/middlewares"
	"ledgerbook-backend/models"
	"ledgerbook-backend/utils"
)

type transactionCreateInput struct {
	Kind         string          `json:"type" validate:"required,oneof=purchase sale"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	Status       string          `json:"status" validate:"omitempty,oneof=paid not_paid partially_paid"`
	CostCenterID uint            `json:"cost_center_id" validate:"required"`
	ProductID    *uint           `json:"product_id"`
	Quantity     int             `json:"quantity" validate:"omitempty,min=1"`
	Description  string          `json:"description"`
	Date         models.Date     `json:"transaction_date" validate:"required"`
}

type transactionUpdateInput struct {
	Kind        *string          `json:"type" validate:"omitempty,oneof=purchase sale"`
	Amount      *decimal.Decimal `json:"amount"`
	Status      *string          `json:"status" validate:"omitempty,oneof=paid not_paid partially_paid"`
	ProductID   *uint            `json:"product_id"`
	Quantity    *int             `json:"quantity" validate:"omitempty,min=1"`
	Description *string          `json:"description"`
	Date        *models.Date     `json:"transaction_date"`
}

func (h *Handlers) CreateTransaction(c *fiber.Ctx) error {
	var in transactionCreateInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	if in.Amount.Sign() <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be positive")
	}

	var cc models.CostCenter
	if h.db.First(&cc, in.CostCenterID).RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "cost center not found")
	}
	if in.ProductID != nil {
		var product models.Product
		if h.db.First(&product, *in.ProductID).RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
	}

	status := in.Status
	if status == "" {
		status = models.TxnPaid
	}
	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}

	txn := models.Transaction{
		Kind:         in.Kind,
		Amount:       in.Amount,
		Status:       status,
		CostCenterID: in.CostCenterID,
		ProductID:    in.ProductID,
		Quantity:     quantity,
		Description:  in.Description,
		Date:         in.Date,
	}
	if err := h.db.Create(&txn).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not create transaction",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Transaction created successfully",
		"transaction": txn,
	})
}

func (h *Handlers) GetTransactions(c *fiber.Ctx) error {
	q := h.db.Order("date DESC")

	if kind := c.Query("type"); kind != "" {
		if !models.ValidKind(kind) {
			return fiber.NewError(fiber.StatusBadRequest, "type must be 'purchase' or 'sale'")
		}
		q = q.Where("kind = ?", kind)
	}
	if cc := c.QueryInt("cost_center_id"); cc > 0 {
		q = q.Where("cost_center_id = ?", cc)
	}
	if from := c.Query("start_date"); from != "" {
		d, err := models.ParseDate(from)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		q = q.Where("date >= ?", d.Time)
	}
	if to := c.Query("end_date"); to != "" {
		d, err := models.ParseDate(to)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		q = q.Where("date <= ?", d.Time)
	}

	var transactions []models.Transaction
	if err := q.Find(&transactions).Error; err != nil {
		return err
	}
	return c.JSON(transactions)
}

func (h *Handlers) GetTransaction(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}
	var txn models.Transaction
	if h.db.First(&txn, id).RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "transaction not found")
	}
	return c.JSON(txn)
}

func (h *Handlers) UpdateTransaction(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}
	var txn models.Transaction
	if h.db.First(&txn, id).RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "transaction not found")
	}

	var in transactionUpdateInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	if in.Amount != nil && in.Amount.Sign() <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be positive")
	}
	if in.ProductID != nil {
		var product models.Product
		if h.db.First(&product, *in.ProductID).RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
	}

	if in.Kind != nil {
		txn.Kind = *in.Kind
	}
	if in.Amount != nil {
		txn.Amount = *in.Amount
	}
	if in.Status != nil {
		txn.Status = *in.Status
	}
	if in.ProductID != nil {
		txn.ProductID = in.ProductID
	}
	if in.Quantity != nil {
		txn.Quantity = *in.Quantity
	}
	if in.Description != nil {
		txn.Description = *in.Description
	}
	if in.Date != nil {
		txn.Date = *in.Date
	}

	if err := h.db.Save(&txn).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not update transaction",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message":     "Transaction updated successfully",
		"transaction": txn,
	})
}

func (h *Handlers) DeleteTransaction(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}
	res := h.db.Delete(&models.Transaction{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "transaction not found")
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted successfully"})
}

func (h *Handlers) GetTransactionSummary(c *fiber.Ctx) error {
	var transactions []models.Transaction
	if err := h.db.Order("date DESC").Find(&transactions).Error; err != nil {
		return err
	}

	purchases, sales := decimal.Zero, decimal.Zero
	for _, t := range transactions {
		if t.Kind == models.KindSale {
			sales = sales.Add(t.Amount)
		} else {
			purchases = purchases.Add(t.Amount)
		}
	}

	limit := utils.ParseIntDefault(c.Query("limit"), 10)
	recent := transactions
	if len(recent) > limit {
		recent = recent[:limit]
	}

	return c.JSON(fiber.Map{
		"total_transactions":  len(transactions),
		"total_purchase":      purchases,
		"total_sales":         sales,
		"net_flow":            sales.Sub(purchases),
		"recent_transactions": recent,
	})
}
