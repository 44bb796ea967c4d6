package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"ledgerbook-backend/finance"
	"ledgerbook-backend/middlewares"
	"ledgerbook-backend/models"
)

type invoiceCreateInput struct {
	CustomerID  string          `json:"customer_id" validate:"required"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"required"`
	DueDate     *models.Date    `json:"due_date"`
}

// invoiceView decorates a stored invoice with its reconciled totals.
func (h *Handlers) invoiceView(c *fiber.Ctx, inv models.Invoice) (finance.InvoiceSummary, error) {
	payments, err := h.store.FindPayments(c.Context(), inv.Id)
	if err != nil {
		return finance.InvoiceSummary{}, err
	}
	rec := finance.Reconcile(inv, payments)
	return finance.InvoiceSummary{
		Invoice:    inv,
		PaidAmount: rec.PaidAmount,
		Balance:    rec.Balance,
	}, nil
}

func (h *Handlers) CreateInvoice(c *fiber.Ctx) error {
	var in invoiceCreateInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	if in.TotalAmount.Sign() <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "total_amount must be positive")
	}

	var customer models.User
	if h.db.Where("id = ?", in.CustomerID).First(&customer).RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "customer not found")
	}

	invoice := models.Invoice{
		CustomerID:  in.CustomerID,
		TotalAmount: in.TotalAmount,
		Status:      models.InvoiceUnpaid,
		DueDate:     in.DueDate,
	}

	// Generated numbers can collide on the unique column; retry a few times.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		invoice.InvoiceNumber = models.NewInvoiceNumber(time.Now())
		if err = h.db.Create(&invoice).Error; err == nil {
			break
		}
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not create invoice",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Invoice created successfully",
		"invoice": invoice,
	})
}

func (h *Handlers) GetInvoices(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)
	userID, _ := c.Locals("userID").(string)

	q := h.db.Order("id")
	if role != models.RoleAdmin {
		q = q.Where("customer_id = ?", userID)
	}

	var invoices []models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		return err
	}

	views := make([]finance.InvoiceSummary, 0, len(invoices))
	for _, inv := range invoices {
		view, err := h.invoiceView(c, inv)
		if err != nil {
			return err
		}
		views = append(views, view)
	}
	return c.JSON(views)
}

func (h *Handlers) GetInvoice(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}
	var invoice models.Invoice
	if h.db.First(&invoice, id).RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "invoice not found")
	}

	role, _ := c.Locals("role").(string)
	userID, _ := c.Locals("userID").(string)
	if role != models.RoleAdmin && invoice.CustomerID != userID {
		return fiber.NewError(fiber.StatusForbidden, "access denied")
	}

	view, err := h.invoiceView(c, invoice)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// UpdateInvoiceStatus is the manual admin override; normal status changes
// come from payment reconciliation.
func (h *Handlers) UpdateInvoiceStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
	}
	var invoice models.Invoice
	if h.db.First(&invoice, id).RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "invoice not found")
	}

	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	status, ok := data["status"]
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "status is required")
	}
	if !models.ValidInvoiceStatus(status) {
		return fiber.NewError(fiber.StatusBadRequest, "status must be 'unpaid', 'partial', or 'paid'")
	}

	if err := h.store.UpdateInvoiceStatus(c.Context(), invoice.Id, status); err != nil {
		return err
	}
	invoice.Status = status

	view, err := h.invoiceView(c, invoice)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Invoice status updated",
		"invoice": view,
	})
}

func (h *Handlers) GetCustomerInvoices(c *fiber.Ctx) error {
	customerID := c.Params("customerId")

	var invoices []models.Invoice
	if err := h.db.Where("customer_id = ?", customerID).Order("id").Find(&invoices).Error; err != nil {
		return err
	}

	totalAmount, totalPaid := decimal.Zero, decimal.Zero
	views := make([]finance.InvoiceSummary, 0, len(invoices))
	for _, inv := range invoices {
		view, err := h.invoiceView(c, inv)
		if err != nil {
			return err
		}
		views = append(views, view)
		totalAmount = totalAmount.Add(inv.TotalAmount)
		totalPaid = totalPaid.Add(view.PaidAmount)
	}

	return c.JSON(fiber.Map{
		"customer_id":    customerID,
		"total_invoices": len(invoices),
		"total_amount":   totalAmount,
		"total_paid":     totalPaid,
		"total_balance":  totalAmount.Sub(totalPaid),
		"invoices":       views,
	})
}
